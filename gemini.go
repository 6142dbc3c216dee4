package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/bodul/wordsearch/internal/wordlist"
)

const topicsPrompt = `You plan themed word-search puzzle books.

Create %d distinct subtopics for a book about "%s". Each subtopic becomes one
puzzle, so it must be concrete enough to list at least 20 well-known words.

Respond ONLY with JSON in this shape, no markdown:
{"title": "<book title, 3 to 80 characters>", "subtopics": ["<subtopic>", ...]}`

const categoryPrompt = `You write word lists for word-search puzzles.

Create the puzzle input for the subtopic "%s" with %d entries.

Rules:
- Entries use only the letters A-Z, spaces and hyphens. No digits, accents or apostrophes.
- Entries are at most 12 letters long, ignoring spaces and hyphens.
- No duplicates, nothing offensive.
- "long_fact" is one or two sentences of trivia about the subtopic; "short_fact" is under 80 characters.

Respond ONLY with JSON in this shape, no markdown:
{"category": "<subtopic title>", "word_list": ["<entry>", ...], "long_fact": "...", "short_fact": "..."}`

// maxDraftLetters matches the longest entry the prompt asks for.
const maxDraftLetters = 12

// generateJSON sends prompt to Gemini and returns the raw JSON reply.
func (g *GeminiClient) generateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}

// DraftTopics asks for a book title and n subtopics of mainTopic.
func (g *GeminiClient) DraftTopics(ctx context.Context, mainTopic string, n int) (string, []string, error) {
	text, err := g.generateJSON(ctx, fmt.Sprintf(topicsPrompt, n, mainTopic))
	if err != nil {
		return "", nil, err
	}
	return parseTopics(text, n)
}

// DraftCategory asks for one category of about entries words.
func (g *GeminiClient) DraftCategory(ctx context.Context, subtopic string, entries int) (*wordlist.Category, error) {
	text, err := g.generateJSON(ctx, fmt.Sprintf(categoryPrompt, subtopic, entries))
	if err != nil {
		return nil, err
	}
	return parseCategory(text)
}

// DraftWordlist drafts the subtopics of mainTopic, then one category per
// subtopic in parallel. The result still has to pass Validate.
func (g *GeminiClient) DraftWordlist(ctx context.Context, mainTopic string, categories, entries int) (*wordlist.Wordlist, error) {
	title, topics, err := g.DraftTopics(ctx, mainTopic, categories)
	if err != nil {
		return nil, err
	}

	cats := make([]wordlist.Category, len(topics))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, topic := range topics {
		eg.Go(func() error {
			c, err := g.DraftCategory(egCtx, topic, entries)
			if err != nil {
				return fmt.Errorf("draft %q: %w", topic, err)
			}
			cats[i] = *c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &wordlist.Wordlist{
		Title:          title,
		CategoryPrompt: fmt.Sprintf(topicsPrompt, categories, mainTopic),
		WordlistPrompt: fmt.Sprintf(categoryPrompt, "<subtopic>", entries),
		CreatedAt:      time.Now().UTC(),
		Categories:     cats,
	}, nil
}

func parseTopics(text string, n int) (string, []string, error) {
	var out struct {
		Title     string   `json:"title"`
		Subtopics []string `json:"subtopics"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", nil, fmt.Errorf("parse topics JSON: %w\nraw response: %s", err, text)
	}

	seen := make(map[string]bool, len(out.Subtopics))
	topics := make([]string, 0, len(out.Subtopics))
	for _, t := range out.Subtopics {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		topics = append(topics, t)
	}
	if len(topics) > n {
		topics = topics[:n]
	}
	if len(topics) == 0 {
		return "", nil, fmt.Errorf("gemini returned no subtopics")
	}
	return strings.TrimSpace(out.Title), topics, nil
}

// parseCategory decodes a drafted category and drops entries a grid cannot
// hold, so a single bad word does not sink the whole draft.
func parseCategory(text string) (*wordlist.Category, error) {
	var c wordlist.Category
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, fmt.Errorf("parse category JSON: %w\nraw response: %s", err, text)
	}

	c.Name = strings.TrimSpace(c.Name)
	seen := make(map[string]bool, len(c.Words))
	words := make([]string, 0, len(c.Words))
	for _, w := range c.Words {
		w = strings.TrimSpace(w)
		key := strings.ToUpper(w)
		if !wordlist.IsPuzzleWord(w) || seen[key] {
			continue
		}
		if n := len(strings.NewReplacer(" ", "", "-", "").Replace(w)); n > maxDraftLetters {
			continue
		}
		seen[key] = true
		words = append(words, w)
	}
	c.Words = words
	return &c, nil
}
