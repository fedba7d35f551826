package images

import (
	"sync"

	"go.uber.org/zap"

	"bookview/content"
)

type size struct {
	width, height float64
	err           error
}

// Loader measures images from document resources in background. Results are
// delivered through post so callbacks run on the goroutine owning the
// caller, without post callbacks run synchronously.
type Loader struct {
	res  content.Resources
	post func(func())
	log  *zap.Logger

	mu    sync.Mutex
	sizes map[string]size
	wg    sync.WaitGroup
}

// NewLoader returns loader reading images from res.
func NewLoader(res content.Resources, post func(func()), log *zap.Logger) *Loader {
	return &Loader{res: res, post: post, log: log.Named("images"), sizes: make(map[string]size)}
}

// Load measures image referenced by src and calls done with its natural
// size. Measured sizes are remembered.
func (l *Loader) Load(src string, done func(width, height float64, err error)) {
	l.mu.Lock()
	s, ok := l.sizes[src]
	l.mu.Unlock()
	if ok {
		l.deliver(s, done)
		return
	}
	if l.post == nil {
		l.deliver(l.measure(src), done)
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		s := l.measure(src)
		l.post(func() { done(s.width, s.height, s.err) })
	}()
}

// Wait blocks until all background measurements are posted.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) deliver(s size, done func(width, height float64, err error)) {
	if l.post == nil {
		done(s.width, s.height, s.err)
		return
	}
	l.post(func() { done(s.width, s.height, s.err) })
}

func (l *Loader) measure(src string) size {
	var s size
	data, err := content.Load(l.res, src)
	if err == nil {
		s.width, s.height, err = Measure(data)
	}
	s.err = err
	if err != nil {
		l.log.Debug("Unable to measure image", zap.String("src", trim(src)), zap.Error(err))
	}
	l.mu.Lock()
	l.sizes[src] = s
	l.mu.Unlock()
	return s
}

// trim shortens data URIs for logging.
func trim(src string) string {
	if len(src) > 64 {
		return src[:61] + "..."
	}
	return src
}
