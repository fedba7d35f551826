package typeset

// Stack is a persistent stack of style frames. Push and Pop never modify the
// receiver, so a stack value captured at any point of a tree walk keeps
// describing exactly the styles that were in effect at that point.
type Stack[T any] struct {
	top *frame[T]
}

type frame[T any] struct {
	value  T
	parent *frame[T]
	depth  int
}

// NewStack returns stack holding single root frame.
func NewStack[T any](root T) Stack[T] {
	return Stack[T]{top: &frame[T]{value: root, depth: 1}}
}

// Top returns current frame value, zero value for empty stack.
func (s Stack[T]) Top() T {
	if s.top == nil {
		var zero T
		return zero
	}
	return s.top.value
}

// Push returns new stack with v on top.
func (s Stack[T]) Push(v T) Stack[T] {
	depth := 1
	if s.top != nil {
		depth = s.top.depth + 1
	}
	return Stack[T]{top: &frame[T]{value: v, parent: s.top, depth: depth}}
}

// Pop returns stack without its top frame. Root frame is never removed.
func (s Stack[T]) Pop() Stack[T] {
	if s.top == nil || s.top.parent == nil {
		return s
	}
	return Stack[T]{top: s.top.parent}
}

// Depth returns number of frames on the stack.
func (s Stack[T]) Depth() int {
	if s.top == nil {
		return 0
	}
	return s.top.depth
}

// Update returns stack where top frame is replaced with result of fn.
func (s Stack[T]) Update(fn func(T) T) Stack[T] {
	if s.top == nil {
		return NewStack(fn(s.Top()))
	}
	return Stack[T]{top: &frame[T]{value: fn(s.top.value), parent: s.top.parent, depth: s.top.depth}}
}
