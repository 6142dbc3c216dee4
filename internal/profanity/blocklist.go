// Package profanity holds the profanity blocklist and the grid scanner that
// finds blocked words hidden in rows, columns and diagonals.
package profanity

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/zyedidia/generic/mapset"
)

var (
	ErrEmptyWord     = errors.New("word cannot be empty")
	ErrDuplicateWord = errors.New("word already exists in list")
	ErrUnknownWord   = errors.New("word not found in list")
)

// Blocklist is an immutable set of upper-case blocked words.
// Changing the list means building a new Blocklist.
type Blocklist struct {
	words  mapset.Set[string]
	maxLen int
}

// Normalize upper-cases word and strips everything that is not a letter.
func Normalize(word string) string {
	var sb strings.Builder
	sb.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToUpper(r))
		}
	}
	return sb.String()
}

// NewBlocklist normalises words and drops the ones that end up empty.
func NewBlocklist(words []string) *Blocklist {
	b := &Blocklist{words: mapset.New[string]()}
	for _, w := range words {
		b.put(Normalize(w))
	}
	return b
}

func (b *Blocklist) put(w string) {
	if w == "" {
		return
	}
	b.words.Put(w)
	if len(w) > b.maxLen {
		b.maxLen = len(w)
	}
}

// Contains reports whether s, once normalised, is blocked.
func (b *Blocklist) Contains(s string) bool {
	if b == nil || b.words.Size() == 0 {
		return false
	}
	return b.words.Has(Normalize(s))
}

func (b *Blocklist) has(upper string) bool {
	return b.words.Has(upper)
}

// Len returns the number of blocked words.
func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return b.words.Size()
}

// MaxLen returns the length of the longest blocked word.
func (b *Blocklist) MaxLen() int {
	if b == nil {
		return 0
	}
	return b.maxLen
}

// Words returns the blocked words sorted alphabetically.
func (b *Blocklist) Words() []string {
	if b == nil {
		return []string{}
	}
	out := make([]string, 0, b.words.Size())
	b.words.Each(func(w string) {
		out = append(out, w)
	})
	slices.Sort(out)
	return out
}

// With returns a new Blocklist that also blocks word.
func (b *Blocklist) With(word string) (*Blocklist, error) {
	w := Normalize(word)
	if w == "" {
		return nil, ErrEmptyWord
	}
	if b.Contains(w) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateWord, w)
	}
	return NewBlocklist(append(b.Words(), w)), nil
}

// Without returns a new Blocklist that no longer blocks word.
func (b *Blocklist) Without(word string) (*Blocklist, error) {
	w := Normalize(word)
	if !b.Contains(w) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWord, w)
	}
	words := slices.DeleteFunc(b.Words(), func(s string) bool { return s == w })
	return NewBlocklist(words), nil
}

// LoadFile reads one word per line. Blank lines and lines starting with '#'
// are ignored.
func LoadFile(path string) (*Blocklist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist %s: %w", path, err)
	}
	return NewBlocklist(words), nil
}

// SaveFile writes the list sorted, one word per line.
func SaveFile(path string, b *Blocklist) error {
	data := strings.Join(b.Words(), "\n")
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(path, []byte(data), 0o644)
}
