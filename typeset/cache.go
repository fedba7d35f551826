package typeset

import (
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

type cacheEntry struct {
	sum   [32]byte
	width float64
	lines []*Line
}

// Cache remembers lines produced for a paragraph as long as paragraph content
// and requested width stay the same. Callers must not modify returned lines.
// NOTE: not to be used concurrently.
type Cache struct {
	next    Breaker
	entries map[*Paragraph]cacheEntry

	hits, misses int
}

// NewCache wraps breaker.
func NewCache(next Breaker) *Cache {
	return &Cache{next: next, entries: make(map[*Paragraph]cacheEntry)}
}

func (c *Cache) Break(p *Paragraph, width float64) []*Line {
	sum := Fingerprint(p)
	if e, ok := c.entries[p]; ok && e.sum == sum && e.width == width {
		c.hits++
		return e.lines
	}
	c.misses++
	lines := c.next.Break(p, width)
	c.entries[p] = cacheEntry{sum: sum, width: width, lines: lines}
	return lines
}

// Forget drops all entries not belonging to paragraphs in keep.
func (c *Cache) Forget(keep []*Paragraph) {
	live := make(map[*Paragraph]struct{}, len(keep))
	for _, p := range keep {
		live[p] = struct{}{}
	}
	for p := range c.entries {
		if _, ok := live[p]; !ok {
			delete(c.entries, p)
		}
	}
}

// Len returns number of remembered paragraphs.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns number of cache hits and misses so far.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Fingerprint hashes everything in paragraph which may affect line breaking.
func Fingerprint(p *Paragraph) [32]byte {
	h := blake3.New()
	writeParagraph(h, p)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

func writeParagraph(w io.Writer, p *Paragraph) {
	fmt.Fprintf(w, "%+v|", p.Style)
	for _, item := range p.Content {
		switch it := item.(type) {
		case *Text:
			fmt.Fprintf(w, "t%q %s %t %t|", it.Content, styleKey(it.Style), it.ExceptStart, it.Hyphen)
		case *Image:
			fmt.Fprintf(w, "i%q %g %g|", it.Source, it.Width, it.Height)
		case *Spacer:
			fmt.Fprintf(w, "s%g %g|", it.Width, it.Height)
		}
	}
}

func styleKey(cs CharStyle) string {
	return fmt.Sprintf("%t%t%t%t%g", cs.Bold, cs.Italic, cs.SmallCaps, cs.Code, cs.Scale())
}
