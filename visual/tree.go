// Package visual abstracts the rendering surface pages are mapped onto and
// provides in-memory implementation of it which can be written out as HTML.
package visual

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrAttached is returned when attaching node which already has parent.
	ErrAttached = errors.New("node is already attached")
	// ErrNotChild is returned when detaching node from wrong parent.
	ErrNotChild = errors.New("node is not a child of parent")
	// ErrForeignNode is returned for nodes created by another tree.
	ErrForeignNode = errors.New("node does not belong to the tree")
)

// Node is an opaque handle of a node created by Tree.
type Node any

// Property names understood by trees. Names starting with StylePrefix set
// inline style properties, any other name sets an attribute.
const (
	PropText    = "#text"
	PropClass   = "class"
	StylePrefix = "style:"
)

// Style returns property name of inline style property.
func Style(name string) string {
	return StylePrefix + name
}

// Tree is the rendering surface capability.
type Tree interface {
	CreateNode(tag string) Node
	SetProperty(n Node, name, value string)
	Attach(parent, child Node) error
	Detach(parent, child Node) error
}

// Element is a node of the in-memory tree.
type Element struct {
	Tag      string
	Text     string
	Attrs    map[string]string
	Styles   map[string]string
	Parent   *Element
	Children []*Element
}

// Document is in-memory Tree implementation.
type Document struct {
	Root *Element

	// Number of Attach and Detach calls which succeeded
	Attaches, Detaches int
}

// NewDocument returns empty tree with root element of given tag.
func NewDocument(rootTag string) *Document {
	return &Document{Root: newElement(rootTag)}
}

func newElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: make(map[string]string), Styles: make(map[string]string)}
}

func (d *Document) CreateNode(tag string) Node {
	return newElement(tag)
}

func (d *Document) SetProperty(n Node, name, value string) {
	el, ok := n.(*Element)
	if !ok || el == nil {
		return
	}
	switch {
	case name == PropText:
		el.Text = value
	case strings.HasPrefix(name, StylePrefix):
		name = strings.TrimPrefix(name, StylePrefix)
		if value == "" {
			delete(el.Styles, name)
		} else {
			el.Styles[name] = value
		}
	default:
		if value == "" {
			delete(el.Attrs, name)
		} else {
			el.Attrs[name] = value
		}
	}
}

func (d *Document) Attach(parent, child Node) error {
	p, c, err := elements(parent, child)
	if err != nil {
		return err
	}
	if c.Parent != nil {
		return fmt.Errorf("%s: %w", c.Tag, ErrAttached)
	}
	c.Parent = p
	p.Children = append(p.Children, c)
	d.Attaches++
	return nil
}

func (d *Document) Detach(parent, child Node) error {
	p, c, err := elements(parent, child)
	if err != nil {
		return err
	}
	i := slices.Index(p.Children, c)
	if i < 0 || c.Parent != p {
		return fmt.Errorf("%s: %w", c.Tag, ErrNotChild)
	}
	p.Children = slices.Delete(p.Children, i, i+1)
	c.Parent = nil
	d.Detaches++
	return nil
}

func elements(parent, child Node) (*Element, *Element, error) {
	p, ok := parent.(*Element)
	if !ok || p == nil {
		return nil, nil, ErrForeignNode
	}
	c, ok := child.(*Element)
	if !ok || c == nil {
		return nil, nil, ErrForeignNode
	}
	return p, c, nil
}

// HasClass reports whether element class list contains name.
func (el *Element) HasClass(name string) bool {
	return slices.Contains(strings.Fields(el.Attrs[PropClass]), name)
}

// Find returns all descendants of element (element included) matching
// predicate in document order.
func (el *Element) Find(match func(*Element) bool) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(e *Element) {
		if match(e) {
			out = append(out, e)
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(el)
	return out
}

// ByClass returns descendants having class name.
func (el *Element) ByClass(name string) []*Element {
	return el.Find(func(e *Element) bool { return e.HasClass(name) })
}

// First returns first descendant having class name or nil.
func (el *Element) First(name string) *Element {
	if found := el.ByClass(name); len(found) > 0 {
		return found[0]
	}
	return nil
}
