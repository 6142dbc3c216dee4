package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/config"
	"github.com/bodul/wordsearch/internal/profanity"
	"github.com/bodul/wordsearch/internal/puzzle"
	"github.com/bodul/wordsearch/internal/storage"
	"github.com/bodul/wordsearch/internal/wordlist"
)

const testWordlistJSON = `{
  "title": "Nature",
  "category_list": [
    {"category": "Big Cats", "word_list": ["lion", "tiger", "leopard", "cheetah", "jaguar", "puma"], "long_fact": "Cats are fast.", "short_fact": "Meow."},
    {"category": "Trees", "word_list": ["oak", "maple", "birch", "willow", "cedar"]},
    {"category": "Fish", "word_list": ["salmon", "trout", "cod", "tuna", "carp", "perch", "pike"]}
  ]
}`

type fakeDrafter struct {
	topic string
	err   error
}

func (f *fakeDrafter) DraftWordlist(_ context.Context, mainTopic string, categories, entries int) (*wordlist.Wordlist, error) {
	f.topic = mainTopic
	if f.err != nil {
		return nil, f.err
	}
	wl, err := wordlist.Parse([]byte(testWordlistJSON))
	if err != nil {
		return nil, err
	}
	wl.Categories = wl.Categories[:min(categories, len(wl.Categories))]
	return wl, nil
}

func newTestServer(t *testing.T, drafter wordlistDrafter) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Book.Seed = 11

	source, err := profanity.NewSource(filepath.Join(dir, "profanity.txt"), nil)
	if err != nil {
		t.Fatal(err)
	}
	fs := storage.NewFS(filepath.Join(dir, "projects"), cfg.ProjectDefaults())
	srv := NewServer(NewStore(fs), source, drafter, cfg.App, nil)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createProject(t *testing.T, srv *Server, name string) {
	t.Helper()
	w := do(t, srv, "POST", "/api/projects", `{"name":"`+name+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func waitForJob(t *testing.T, srv *Server, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		w := do(t, srv, "GET", "/api/jobs/"+id, "")
		if w.Code != http.StatusOK {
			t.Fatalf("get job: expected 200, got %d", w.Code)
		}
		var job Job
		json.NewDecoder(w.Body).Decode(&job)
		if job.Status != JobRunning {
			return &job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestFullBookFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")

	// Store the word list.
	w := do(t, srv, "PUT", "/api/projects/nature/wordlist", testWordlistJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("put wordlist: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Start generation.
	w = do(t, srv, "POST", "/api/projects/nature/puzzledata", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("generate: expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var job Job
	json.NewDecoder(w.Body).Decode(&job)
	if job.ID == "" {
		t.Fatal("job ID is empty")
	}

	done := waitForJob(t, srv, job.ID)
	if done.Status != JobDone {
		t.Fatalf("expected job done, got %s: %s", done.Status, done.Error)
	}
	if done.Done != 3 || done.Total != 3 {
		t.Fatalf("expected 3/3 progress, got %d/%d", done.Done, done.Total)
	}

	// Read the book back.
	w = do(t, srv, "GET", "/api/projects/nature/puzzledata", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get puzzledata: expected 200, got %d", w.Code)
	}
	var b book.Book
	json.NewDecoder(w.Body).Decode(&b)
	if b.Title != "Nature" || len(b.Puzzles) != 3 {
		t.Fatalf("unexpected book %q with %d puzzles", b.Title, len(b.Puzzles))
	}
	id := b.Puzzles[0].ID

	// Edit one cell.
	w = do(t, srv, "PUT", "/api/projects/nature/puzzles/"+id+"/cells/0/0", `{"letter":"q"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("edit cell: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p puzzle.Puzzle
	json.NewDecoder(w.Body).Decode(&p)
	if p.Cells[0][0].Value != "Q" {
		t.Fatalf("expected cell (0,0) = 'Q', got %q", p.Cells[0][0].Value)
	}

	// Rebuild keeps the puzzle ID.
	w = do(t, srv, "POST", "/api/projects/nature/puzzles/"+id+"/rebuild", "")
	if w.Code != http.StatusOK {
		t.Fatalf("rebuild: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	json.NewDecoder(w.Body).Decode(&p)
	if p.ID != id {
		t.Fatalf("rebuild changed ID from %q to %q", id, p.ID)
	}

	// The project lists all three files.
	w = do(t, srv, "GET", "/api/projects", "")
	var projects []storage.Project
	json.NewDecoder(w.Body).Decode(&projects)
	if len(projects) != 1 || len(projects[0].Files) != 3 {
		t.Fatalf("unexpected project listing %+v", projects)
	}
}

func TestPutWordlistRejectsInvalid(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")

	body := `{"title":"Nature","category_list":[{"category":"Cats","word_list":["lion","tiger","p1ma"]}]}`
	w := do(t, srv, "PUT", "/api/projects/nature/wordlist", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "p1ma") {
		t.Fatalf("error should name the bad word: %s", w.Body.String())
	}

	// Nothing was stored, so generation has no input.
	w = do(t, srv, "POST", "/api/projects/nature/puzzledata", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("generate without word list: expected 404, got %d", w.Code)
	}
}

func TestWordlistProfanityWarnings(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")

	w := do(t, srv, "POST", "/api/profanity", `{"word":"cod"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add profanity: expected 201, got %d", w.Code)
	}

	w = do(t, srv, "PUT", "/api/projects/nature/wordlist", testWordlistJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("put wordlist: expected 200, got %d", w.Code)
	}
	var resp struct {
		Warnings []wordlist.Warning `json:"warnings"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Warnings) != 1 || resp.Warnings[0].Word != "cod" {
		t.Fatalf("expected one warning for COD, got %+v", resp.Warnings)
	}
}

func TestProjectErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")

	cases := []struct {
		method, path, body string
		code               int
	}{
		{"POST", "/api/projects", `{"name":"nature"}`, http.StatusConflict},
		{"POST", "/api/projects", `{"name":"../etc"}`, http.StatusBadRequest},
		{"POST", "/api/projects", `{}`, http.StatusBadRequest},
		{"GET", "/api/projects/missing/wordlist", "", http.StatusNotFound},
		{"GET", "/api/projects/nature/puzzledata", "", http.StatusNotFound},
		{"GET", "/api/projects/missing/events", "", http.StatusNotFound},
		{"PUT", "/api/projects/nature/settings", `{"puzzle":{"max_density":2}}`, http.StatusBadRequest},
		{"POST", "/api/projects/nature/wordlist/draft", `{"topic":"Animals","categories":2,"entries":10}`, http.StatusServiceUnavailable},
		{"GET", "/api/jobs/nonexistent", "", http.StatusNotFound},
		{"DELETE", "/api/projects/missing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := do(t, srv, tc.method, tc.path, tc.body)
		if w.Code != tc.code {
			t.Errorf("%s %s: expected %d, got %d: %s", tc.method, tc.path, tc.code, w.Code, w.Body.String())
		}
	}
}

func TestSettingsPartialUpdate(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")

	w := do(t, srv, "PUT", "/api/projects/nature/settings", `{"puzzle":{"min_density":0.4}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/projects/nature/settings", "")
	var ps config.ProjectSettings
	json.NewDecoder(w.Body).Decode(&ps)
	if ps.Puzzle.MinDensity != 0.4 {
		t.Fatalf("expected min density 0.4, got %v", ps.Puzzle.MinDensity)
	}
	if ps.Puzzle.MaxDensity != puzzle.DefaultSettings().MaxDensity {
		t.Fatalf("max density should keep its default, got %v", ps.Puzzle.MaxDensity)
	}
}

func TestEditCellValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")
	do(t, srv, "PUT", "/api/projects/nature/wordlist", testWordlistJSON)

	w := do(t, srv, "POST", "/api/projects/nature/puzzledata", "")
	var job Job
	json.NewDecoder(w.Body).Decode(&job)
	waitForJob(t, srv, job.ID)

	w = do(t, srv, "GET", "/api/projects/nature/puzzledata", "")
	var b book.Book
	json.NewDecoder(w.Body).Decode(&b)
	id := b.Puzzles[0].ID

	cases := []struct {
		path, body string
		code       int
	}{
		{"/cells/0/0", `{"letter":"5"}`, http.StatusBadRequest},
		{"/cells/99/99", `{"letter":"A"}`, http.StatusBadRequest},
		{"/cells/a/0", `{"letter":"A"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := do(t, srv, "PUT", "/api/projects/nature/puzzles/"+id+tc.path, tc.body)
		if w.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.code, w.Code)
		}
	}

	w = do(t, srv, "PUT", "/api/projects/nature/puzzles/unknown/cells/0/0", `{"letter":"A"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown puzzle: expected 404, got %d", w.Code)
	}
}

func TestRescanFindsNewWord(t *testing.T) {
	srv := newTestServer(t, nil)
	createProject(t, srv, "nature")
	do(t, srv, "PUT", "/api/projects/nature/wordlist", testWordlistJSON)

	w := do(t, srv, "POST", "/api/projects/nature/puzzledata", "")
	var job Job
	json.NewDecoder(w.Body).Decode(&job)
	waitForJob(t, srv, job.ID)

	w = do(t, srv, "GET", "/api/projects/nature/puzzledata", "")
	var b book.Book
	json.NewDecoder(w.Body).Decode(&b)
	if len(b.Puzzles[0].PlacedWords) == 0 {
		t.Fatal("expected placed words")
	}

	// A placed word is always readable in the grid, so blocking it must hit.
	do(t, srv, "POST", "/api/profanity", `{"word":"`+b.Puzzles[0].PlacedWords[0]+`"}`)
	w = do(t, srv, "POST", "/api/projects/nature/rescan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("rescan: expected 200, got %d", w.Code)
	}
	var resp struct {
		Hits int `json:"hits"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Hits < 1 {
		t.Fatalf("expected at least one hit, got %d", resp.Hits)
	}
}

func TestDraftWordlistHandler(t *testing.T) {
	drafter := &fakeDrafter{}
	srv := newTestServer(t, drafter)
	createProject(t, srv, "nature")

	w := do(t, srv, "POST", "/api/projects/nature/wordlist/draft", `{"topic":"  Nature  ","categories":2,"entries":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if drafter.topic != "Nature" {
		t.Fatalf("expected trimmed topic, got %q", drafter.topic)
	}
	var resp struct {
		Wordlist *wordlist.Wordlist `json:"wordlist"`
		Problems string             `json:"problems"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Wordlist == nil || len(resp.Wordlist.Categories) != 2 || resp.Problems != "" {
		t.Fatalf("unexpected draft %+v", resp)
	}

	// Drafts are not stored.
	w = do(t, srv, "GET", "/api/projects/nature/wordlist", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before the draft is saved, got %d", w.Code)
	}

	w = do(t, srv, "POST", "/api/projects/nature/wordlist/draft", `{"topic":"","categories":2,"entries":10}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty topic: expected 400, got %d", w.Code)
	}

	drafter.err = errors.New("quota exceeded")
	w = do(t, srv, "POST", "/api/projects/nature/wordlist/draft", `{"topic":"Nature","categories":2,"entries":10}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("drafter failure: expected 502, got %d", w.Code)
	}
}

func TestProfanityAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	words := func(w *httptest.ResponseRecorder) []string {
		var resp struct {
			Words []string `json:"words"`
		}
		json.NewDecoder(w.Body).Decode(&resp)
		return resp.Words
	}

	w := do(t, srv, "PUT", "/api/profanity", `{"words":["darn","heck"]}`)
	if got := words(w); !slices.Equal(got, []string{"DARN", "HECK"}) {
		t.Fatalf("unexpected words %v", got)
	}

	if w := do(t, srv, "POST", "/api/profanity", `{"word":"Darn"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/profanity", `{"word":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty: expected 400, got %d", w.Code)
	}

	w = do(t, srv, "DELETE", "/api/profanity/heck", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if got := words(w); !slices.Equal(got, []string{"DARN"}) {
		t.Fatalf("unexpected words %v", got)
	}
	if w := do(t, srv, "DELETE", "/api/profanity/heck", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown word: expected 404, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/profanity", "")
	if got := words(w); !slices.Equal(got, []string{"DARN"}) {
		t.Fatalf("unexpected words %v", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for key, expected := range headers {
		if got := w.Header().Get(key); got != expected {
			t.Errorf("header %s: expected %q, got %q", key, expected, got)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatal("metrics output is missing the Go collector")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Second)

	// First 3 should pass.
	for i := range 3 {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th should be blocked.
	if rl.allow("1.2.3.4") {
		t.Fatal("4th request should be rate limited")
	}

	// Different IP should still be allowed.
	if !rl.allow("5.6.7.8") {
		t.Fatal("different IP should be allowed")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0, time.Second)
	for range 100 {
		if !rl.allow("1.2.3.4") {
			t.Fatal("a zero rate should disable limiting")
		}
	}
}

func TestClientIP(t *testing.T) {
	for addr, want := range map[string]string{
		"10.0.0.1:51234":     "10.0.0.1",
		"[2001:db8::1]:8443": "2001:db8::1",
		"10.0.0.1":           "10.0.0.1",
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		if got := clientIP(r); got != want {
			t.Errorf("clientIP(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestRateLimitSharedAcrossPorts(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.draftRL = newRateLimiter(1, time.Minute)

	draft := func(remote string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/projects/alpha/wordlist/draft", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		r.RemoteAddr = remote
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)
		return w.Code
	}

	if code := draft("10.0.0.1:40000"); code == http.StatusTooManyRequests {
		t.Fatal("first request should not be rate limited")
	}
	if code := draft("10.0.0.1:40001"); code != http.StatusTooManyRequests {
		t.Fatalf("a new port from the same host should share the bucket, got %d", code)
	}
	if code := draft("10.0.0.2:40000"); code == http.StatusTooManyRequests {
		t.Fatal("another host should have its own bucket")
	}
}
