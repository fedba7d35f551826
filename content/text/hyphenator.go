// Package text splits words into syllables using TeX hyphenation patterns.
package text

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/scanner"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const SOFTHYPHEN = "\u00AD"

//go:embed dictionaries/*.gz
var dictionaryFiles embed.FS

// Hyphenator splits words on syllable boundaries. Nil Hyphenator is valid and
// never splits anything.
type Hyphenator struct {
	*hyph
}

// Some languages require additional specification.
var langMap = map[string]string{
	"en":    "en-us",
	"en-gb": "en-us",
}

func readCompressed(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func loadEmbedded(name, suffix string) ([]byte, error) {
	data, err := dictionaryFiles.ReadFile(fmt.Sprintf("dictionaries/hyph-%s.%s.txt.gz", name, suffix))
	if err != nil {
		return nil, err
	}
	return readCompressed(data)
}

// loadFile reads patterns file, gzip compressed when name ends with ".gz".
func loadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		return readCompressed(data)
	}
	return data, nil
}

// NewHyphenator loads hyphenation dictionary for specified language. When
// patternsPath is not empty patterns are read from this file instead of
// embedded dictionaries. Returns nil when no dictionary could be loaded.
func NewHyphenator(lang language.Tag, patternsPath string, log *zap.Logger) *Hyphenator {
	if len(patternsPath) > 0 {
		data, err := loadFile(patternsPath)
		if err != nil {
			log.Warn("Unable to read hyphenation patterns, turning off hyphenation", zap.String("path", patternsPath), zap.Error(err))
			return nil
		}
		h, err := LoadHyphenator(lang.String(), bytes.NewReader(data), nil)
		if err != nil {
			log.Warn("Unable to load hyphenation patterns", zap.String("path", patternsPath), zap.Error(err))
			return nil
		}
		return h
	}

	var candidates []string
	name := strings.ToLower(lang.String())
	candidates = append(candidates, name, langMap[name])
	if base, confidence := lang.Base(); confidence != language.No {
		name = strings.ToLower(base.String())
		candidates = append(candidates, name, langMap[name])
	} else {
		log.Warn("Unable to determine language base", zap.Stringer("tag", lang))
	}

	var (
		langName string
		patterns []byte
	)
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if data, err := loadEmbedded(c, "pat"); err == nil {
			langName, patterns = c, data
			break
		}
	}
	if langName == "" {
		log.Warn("Unable to find suitable hyphenation dictionary, turning off hyphenation", zap.Stringer("language", lang))
		return nil
	}

	exceptions, err := loadEmbedded(langName, "hyp")
	if err != nil {
		log.Debug("No exceptions dictionary found, leaving empty", zap.Stringer("tag", lang), zap.String("name", langName))
	}

	h, err := LoadHyphenator(langName, bytes.NewReader(patterns), bytes.NewReader(exceptions))
	if err != nil {
		log.Warn("Unable to load hyphenation dictionary", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	return h
}

// LoadHyphenator builds hyphenator from TeX patterns, one per line, and
// optional exceptions list in "hy-phen-ation" form.
func LoadHyphenator(name string, patterns, exceptions io.Reader) (*Hyphenator, error) {
	h := &hyph{language: name, patterns: newTrie(), exceptions: make(map[string]string)}
	if err := h.loadPatterns(patterns); err != nil {
		return nil, fmt.Errorf("unable to read patterns: %w", err)
	}
	if exceptions != nil {
		if err := h.loadExceptions(exceptions); err != nil {
			return nil, fmt.Errorf("unable to read exceptions: %w", err)
		}
	}
	if h.patterns.size() == 0 {
		return nil, fmt.Errorf("no patterns for %s", name)
	}
	return &Hyphenator{h}, nil
}

// Hyphenate inserts soft-hyphens into words in string.
func (h *Hyphenator) Hyphenate(in string) string {
	if h == nil || h.hyph == nil {
		return in
	}
	return h.hyphString(in, SOFTHYPHEN)
}

// Syllables splits single word into syllables, word is returned whole when
// it cannot be split.
func (h *Hyphenator) Syllables(word string) []string {
	if len(word) == 0 {
		return nil
	}
	if h == nil || h.hyph == nil {
		return []string{word}
	}
	return strings.Split(h.hyphString(word, SOFTHYPHEN), SOFTHYPHEN)
}

// Language returns name of loaded dictionary.
func (h *Hyphenator) Language() string {
	if h == nil || h.hyph == nil {
		return ""
	}
	return h.language
}

type hyph struct {
	patterns   *trie
	exceptions map[string]string
	language   string
}

func (h *hyph) loadPatterns(reader io.Reader) error {
	sc := bufio.NewScanner(reader)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || strings.HasPrefix(line, "%") {
			continue
		}
		for pattern := range strings.FieldsSeq(line) {
			h.patterns.addPatternString(pattern)
		}
	}
	return sc.Err()
}

func (h *hyph) loadExceptions(reader io.Reader) error {
	sc := bufio.NewScanner(reader)
	for sc.Scan() {
		str := strings.TrimSpace(sc.Text())
		if len(str) == 0 {
			continue
		}
		h.exceptions[strings.ReplaceAll(str, `-`, ``)] = str
	}
	return sc.Err()
}

// breakpoints returns rune indexes in s after which hyphen may be placed.
func (h *hyph) breakpoints(s string) []int {
	testStr := `.` + strings.ToLower(s) + `.`
	v := make([]int, utf8.RuneCountInString(testStr))

	vIndex := 0
	for pos := range testStr {
		strs, values := h.patterns.allSubstringsAndValues(testStr[pos:])
		for i := range values {
			val := values[i]
			diff := len(val) - utf8.RuneCountInString(strs[i])
			if vIndex-diff < 0 {
				continue
			}
			vs := v[vIndex-diff:]
			for j := range val {
				if val[j] > vs[j] {
					vs[j] = val[j]
				}
			}
		}
		vIndex++
	}

	// trim the values for the beginning and ending dots
	markers := v[1 : len(v)-1]
	var res []int
	// never break before the second or after the second to last character
	for i := 1; i < len(markers)-2; i++ {
		// hyphens are inserted on odd values, skipped on even ones
		if markers[i]%2 != 0 {
			res = append(res, i)
		}
	}
	return res
}

func (h *hyph) hyphenateWord(s, hyphen string) string {
	points := h.breakpoints(s)

	var sb strings.Builder
	i := 0
	for _, ch := range s {
		sb.WriteRune(ch)
		if len(points) > 0 && points[0] == i {
			sb.WriteString(hyphen)
			points = points[1:]
		}
		i++
	}
	return sb.String()
}

// hyphString hyphenates every word of s.
func (h *hyph) hyphString(s, hyphen string) string {
	var sc scanner.Scanner
	sc.Init(strings.NewReader(s))
	sc.Mode = scanner.ScanIdents
	sc.Whitespace = 0
	sc.Error = func(*scanner.Scanner, string) {}

	var sb strings.Builder
	for tok := sc.Scan(); tok != scanner.EOF; tok = sc.Scan() {
		if tok != scanner.Ident {
			sb.WriteRune(tok)
			continue
		}
		word := sc.TokenText()
		if exc, ok := h.exceptions[strings.ToLower(word)]; ok && utf8.RuneCountInString(exc) == utf8.RuneCountInString(word)+strings.Count(exc, "-") {
			sb.WriteString(restoreCase(exc, word, hyphen))
			continue
		}
		sb.WriteString(h.hyphenateWord(word, hyphen))
	}
	return sb.String()
}

// restoreCase applies exception hyphenation to word keeping its letter case.
func restoreCase(exc, word, hyphen string) string {
	var sb strings.Builder
	src := []rune(word)
	i := 0
	for _, ch := range exc {
		if ch == '-' {
			sb.WriteString(hyphen)
			continue
		}
		sb.WriteRune(src[i])
		i++
	}
	return sb.String()
}
