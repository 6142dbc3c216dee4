package wordlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordsearch/internal/profanity"
)

func validList() *Wordlist {
	return &Wordlist{
		Title: "Animals of the World",
		Categories: []Category{
			{
				Name:      "Big Cats",
				Words:     []string{"lion", "tiger", "snow leopard", "cheetah"},
				LongFact:  "Tigers are the largest cat species.",
				ShortFact: "Lions live in prides.",
			},
			{
				Name:  "Bears",
				Words: []string{"grizzly", "polar-bear", "panda"},
			},
		},
	}
}

func TestValidateAcceptsGoodList(t *testing.T) {
	require.NoError(t, validList().Validate())
}

func TestValidateRejectsIllegalCharacters(t *testing.T) {
	for _, bad := range []string{"A4", "100", "café", "rock'n'roll", " - "} {
		t.Run(bad, func(t *testing.T) {
			wl := validList()
			wl.Categories[1].Words = append(wl.Categories[1].Words, bad)

			err := wl.Validate()
			require.ErrorIs(t, err, ErrInvalidWordlist)
			assert.Contains(t, err.Error(), "illegal character")
			assert.Contains(t, err.Error(), "Categories[1].Words[3]")
		})
	}
}

func TestValidateBounds(t *testing.T) {
	wl := validList()
	wl.Title = "AB"
	assert.ErrorIs(t, wl.Validate(), ErrInvalidWordlist)

	wl = validList()
	wl.Categories[0].Words = []string{"lion", "tiger"}
	err := wl.Validate()
	require.ErrorIs(t, err, ErrInvalidWordlist)
	assert.Contains(t, err.Error(), "Categories[0].Words must satisfy min=3")

	wl = validList()
	words := make([]string, 76)
	for i := range words {
		words[i] = "word"
	}
	wl.Categories[0].Words = words
	assert.ErrorIs(t, wl.Validate(), ErrInvalidWordlist)

	wl = validList()
	wl.Categories = nil
	assert.ErrorIs(t, wl.Validate(), ErrInvalidWordlist)
}

func TestIsPuzzleWord(t *testing.T) {
	assert.True(t, IsPuzzleWord("ice-cream"))
	assert.True(t, IsPuzzleWord("sea lion"))
	assert.False(t, IsPuzzleWord(""))
	assert.False(t, IsPuzzleWord("--"))
	assert.False(t, IsPuzzleWord("naïve"))
}

func TestProfanityWarnings(t *testing.T) {
	wl := validList()
	wl.Categories[0].ShortFact = "Lions are darn lazy."
	wl.Categories[1].Words = append(wl.Categories[1].Words, "darn bear")

	warnings := wl.ProfanityWarnings(profanity.NewBlocklist([]string{"darn"}))
	assert.Equal(t, []Warning{
		{Field: "category_list[0].short_fact", Word: "darn"},
		{Field: "category_list[1].word_list", Word: "darn"},
	}, warnings)
	assert.NoError(t, wl.Validate(), "profanity is a warning, not a validation failure")

	assert.Empty(t, wl.ProfanityWarnings(nil))
}

func TestParse(t *testing.T) {
	wl, err := Parse([]byte(`{
		"title": "Fruit",
		"category_prompt": "fruit",
		"wordlist_prompt": "list fruit",
		"creation_date": "2024-05-01T10:00:00Z",
		"category_list": [{"category": "Citrus", "word_list": ["lemon", "lime", "orange"], "long_fact": "", "short_fact": ""}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Citrus", wl.Categories[0].Name)
	assert.Equal(t, 2024, wl.CreatedAt.Year())
	assert.NoError(t, wl.Validate())

	_, err = Parse([]byte(`{"title": 3}`))
	assert.ErrorIs(t, err, ErrInvalidWordlist)
}
