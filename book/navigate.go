package book

import (
	"slices"

	"go.uber.org/zap"
)

// Key names of navigation keys.
var (
	ForwardKeys  = []string{"ArrowRight", "Enter", " ", "l", "d"}
	BackwardKeys = []string{"ArrowLeft", "h", "a"}
)

// HandleKey reacts to a key press. It returns false for keys view does not
// use.
func (v *View) HandleKey(key string) bool {
	if v.closed {
		return false
	}
	switch {
	case key == v.opts.OpenKey:
		v.Toggle()
	case slices.Contains(ForwardKeys, key):
		v.Forward()
	case slices.Contains(BackwardKeys, key):
		v.Backward()
	default:
		return false
	}
	return true
}

// Toggle opens closed view and closes open one. Relayout postponed while view
// was closed happens first.
func (v *View) Toggle() {
	v.open = !v.open
	if !v.open {
		v.persist(false)
	}
	if v.pendingRelayout {
		v.pendingRelayout = false
		v.relayout()
		return
	}
	v.updatePages()
}

func (v *View) step() int {
	if v.layout.TwoPages {
		return 2
	}
	return 1
}

// Forward turns to the next page (pair). From the last page it stays there and
// emits EventNextChapter.
func (v *View) Forward() {
	v.current += v.step()
	if v.current >= len(v.pages) {
		v.current = max(len(v.pages)-1, 0)
		v.beforeNavigate()
		v.emit(EventNextChapter)
	}
	v.updatePages()
}

// Backward turns to the previous page (pair). From the first page it stays
// there and emits EventPrevChapter.
func (v *View) Backward() {
	v.current -= v.step()
	if v.current < 0 {
		v.current = 0
		v.beforeNavigate()
		v.emit(EventPrevChapter)
	}
	v.updatePages()
}

// beforeNavigate remembers book mode for the view replacing this one after
// chapter change.
func (v *View) beforeNavigate() {
	v.persist(v.open)
}

// SetViewport changes viewport size. Open view is laid out immediately,
// closed one when it opens next time.
func (v *View) SetViewport(vp Viewport) {
	if v.closed || vp == v.viewport {
		return
	}
	v.viewport = vp
	if !v.open {
		v.pendingRelayout = true
		v.log.Debug("Relayout postponed", zap.Float64("width", vp.Width), zap.Float64("height", vp.Height))
		return
	}
	v.relayout()
}
