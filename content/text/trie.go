package text

import (
	"unicode"
	"unicode/utf8"
)

// trie stores hyphenation patterns indexed by runes. Value of a leaf is the
// list of inter-letter priorities of the pattern ending there.
type trie struct {
	leaf     bool
	value    []int
	children map[rune]*trie
}

func newTrie() *trie {
	return &trie{children: make(map[rune]*trie)}
}

// insert adds letters to the trie and returns the node where they end.
func (p *trie) insert(letters []rune) *trie {
	for _, sym := range letters {
		n := p.children[sym]
		if n == nil {
			n = newTrie()
			p.children[sym] = n
		}
		p = n
	}
	p.leaf = true
	return p
}

// addPatternString adds TeX pattern of the form ".hy2p". Digit preceding a
// letter is its priority, missing digits are implied zeros. When the pattern
// starts with a digit the value gets one extra leading element.
func (p *trie) addPatternString(s string) {
	var (
		letters []rune
		values  []int
	)
	runes := []rune(s)
	for i, sym := range runes {
		if unicode.IsDigit(sym) {
			if i == 0 {
				values = append(values, int(sym-'0'))
			}
			continue
		}
		letters = append(letters, sym)
		if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			values = append(values, int(runes[i+1]-'0'))
		} else {
			values = append(values, 0)
		}
	}
	if len(letters) == 0 {
		return
	}
	p.insert(letters).value = values
}

// size counts all the nodes of the trie not including the root.
func (p *trie) size() int {
	sz := len(p.children)
	for _, child := range p.children {
		sz += child.size()
	}
	return sz
}

// allSubstringsAndValues returns all stored prefixes of s with their values.
func (p *trie) allSubstringsAndValues(s string) ([]string, [][]int) {
	var (
		sv []string
		vv [][]int
	)
	for pos, sym := range s {
		child, ok := p.children[sym]
		if !ok {
			break
		}
		if child.leaf {
			sv = append(sv, s[0:pos+utf8.RuneLen(sym)])
			vv = append(vv, child.value)
		}
		p = child
	}
	return sv, vv
}
