// Package wordlist holds the themed word list a puzzle book is built from
// and the checks it must pass before any grid is generated.
package wordlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bodul/wordsearch/internal/profanity"
)

// ErrInvalidWordlist marks input that must be fixed before generation starts.
var ErrInvalidWordlist = errors.New("invalid word list")

// Wordlist is the input to a puzzle book: one Category per puzzle.
type Wordlist struct {
	Title          string     `json:"title" validate:"min=3,max=80"`
	CategoryPrompt string     `json:"category_prompt"`
	WordlistPrompt string     `json:"wordlist_prompt"`
	CreatedAt      time.Time  `json:"creation_date"`
	Categories     []Category `json:"category_list" validate:"min=1,dive"`
}

// Category is one themed group of words; it becomes one puzzle.
type Category struct {
	Name      string   `json:"category" validate:"min=3,max=80"`
	Words     []string `json:"word_list" validate:"min=3,max=75,dive,puzzleword"`
	LongFact  string   `json:"long_fact"`
	ShortFact string   `json:"short_fact"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("puzzleword", validatePuzzleWord); err != nil {
		panic(fmt.Sprintf("register puzzleword validation: %v", err))
	}
}

// IsPuzzleWord reports whether w only uses ASCII letters, spaces and hyphens
// and has at least one letter.
func IsPuzzleWord(w string) bool {
	letters := 0
	for i := 0; i < len(w); i++ {
		switch c := w[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			letters++
		case c == ' ', c == '-':
		default:
			return false
		}
	}
	return letters > 0
}

func validatePuzzleWord(fl validator.FieldLevel) bool {
	return IsPuzzleWord(fl.Field().String())
}

// Validate checks title length, category count, word counts and word
// characters. All problems are reported in one error wrapping
// ErrInvalidWordlist.
func (w *Wordlist) Validate() error {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidWordlist, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidWordlist, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Wordlist.")
	switch fe.Tag() {
	case "puzzleword":
		return fmt.Sprintf("illegal character in word %q (%s)", fe.Value(), field)
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// Warning is a blocked word found in the free text of a word list.
type Warning struct {
	Field string `json:"field"`
	Word  string `json:"word"`
}

func (w Warning) String() string {
	return fmt.Sprintf("profanity in %s: %s", w.Field, w.Word)
}

// ProfanityWarnings checks every whitespace-separated token of the title,
// prompts, category names, facts and words against b. Hits never make the
// list invalid; the caller decides what to do with them.
func (w *Wordlist) ProfanityWarnings(b *profanity.Blocklist) []Warning {
	if b.Len() == 0 {
		return nil
	}
	var out []Warning
	check := func(field, text string) {
		for _, tok := range strings.Fields(text) {
			if b.Contains(tok) {
				out = append(out, Warning{Field: field, Word: tok})
			}
		}
	}
	check("title", w.Title)
	check("category_prompt", w.CategoryPrompt)
	check("wordlist_prompt", w.WordlistPrompt)
	for i, c := range w.Categories {
		prefix := fmt.Sprintf("category_list[%d].", i)
		check(prefix+"category", c.Name)
		check(prefix+"long_fact", c.LongFact)
		check(prefix+"short_fact", c.ShortFact)
		for _, word := range c.Words {
			check(prefix+"word_list", word)
		}
	}
	return out
}

// Parse decodes a word list from JSON. It does not validate.
func Parse(data []byte) (*Wordlist, error) {
	var w Wordlist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWordlist, err)
	}
	return &w, nil
}
