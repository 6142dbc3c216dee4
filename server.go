package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/config"
	"github.com/bodul/wordsearch/internal/profanity"
	"github.com/bodul/wordsearch/internal/puzzle"
	"github.com/bodul/wordsearch/internal/storage"
	"github.com/bodul/wordsearch/internal/wordlist"
)

const maxBodySize = 1 << 20 // 1 MiB

// wordlistDrafter drafts a word list from a topic, e.g. with Gemini.
type wordlistDrafter interface {
	DraftWordlist(ctx context.Context, mainTopic string, categories, entries int) (*wordlist.Wordlist, error)
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	// Cleanup stale entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

// clientIP keys rate limiting on the remote host so that new connections
// from the same client share one bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *rateLimiter) allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux     *http.ServeMux
	store   *Store
	source  *profanity.Source
	drafter wordlistDrafter
	sse     *Broadcaster
	logger  *slog.Logger

	generateRL *rateLimiter
	draftRL    *rateLimiter

	// profanityMu serialises read-modify-write updates of the blocklist.
	profanityMu sync.Mutex

	// Background jobs run on ctx so they outlive the request that started them.
	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

// NewServer creates a configured HTTP server. drafter may be nil, which
// disables AI drafting.
func NewServer(store *Store, source *profanity.Source, drafter wordlistDrafter, cfg config.AppConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		mux:        http.NewServeMux(),
		store:      store,
		source:     source,
		drafter:    drafter,
		sse:        NewBroadcaster(logger),
		logger:     logger,
		generateRL: newRateLimiter(cfg.RateLimit, time.Minute),
		draftRL:    newRateLimiter(cfg.RateLimit, time.Minute),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.routes()
	return s
}

// Close cancels running jobs and waits for them to stop.
func (s *Server) Close() {
	s.cancel()
	s.jobs.Wait()
}

func (s *Server) routes() {
	// Project API
	s.mux.HandleFunc("GET /api/projects", s.handleListProjects)
	s.mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	s.mux.HandleFunc("DELETE /api/projects/{name}", s.handleDeleteProject)
	s.mux.HandleFunc("GET /api/projects/{name}/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/projects/{name}/settings", s.handlePutSettings)

	// Word list API
	s.mux.HandleFunc("GET /api/projects/{name}/wordlist", s.handleGetWordlist)
	s.mux.HandleFunc("PUT /api/projects/{name}/wordlist", s.handlePutWordlist)
	s.mux.HandleFunc("POST /api/projects/{name}/wordlist/validate", s.handleValidateWordlist)
	s.mux.HandleFunc("POST /api/projects/{name}/wordlist/draft", s.handleDraftWordlist)

	// Puzzle data API
	s.mux.HandleFunc("POST /api/projects/{name}/puzzledata", s.handleGenerate)
	s.mux.HandleFunc("GET /api/projects/{name}/puzzledata", s.handleGetBook)
	s.mux.HandleFunc("POST /api/projects/{name}/rescan", s.handleRescan)
	s.mux.HandleFunc("GET /api/projects/{name}/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("POST /api/projects/{name}/puzzles/{id}/rebuild", s.handleRebuildPuzzle)
	s.mux.HandleFunc("PUT /api/projects/{name}/puzzles/{id}/cells/{x}/{y}", s.handleEditCell)
	s.mux.HandleFunc("GET /api/projects/{name}/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/projects/{name}/events", s.handleProjectEvents)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)

	// Profanity list API
	s.mux.HandleFunc("GET /api/profanity", s.handleListProfanity)
	s.mux.HandleFunc("POST /api/profanity", s.handleAddProfanity)
	s.mux.HandleFunc("PUT /api/profanity", s.handleReplaceProfanity)
	s.mux.HandleFunc("DELETE /api/profanity/{word}", s.handleRemoveProfanity)

	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// builder loads the project's settings and binds the current blocklist.
func (s *Server) builder(ctx context.Context, project string) (*book.Builder, error) {
	ps, err := s.store.Files().LoadSettings(ctx, project)
	if err != nil {
		return nil, err
	}
	return book.NewBuilder(ps.Puzzle, ps.Book, s.source.Current(), s.logger)
}

// --- Project handlers ---

// GET /api/projects: list projects with their files.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.Files().List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// POST /api/projects: create an empty project.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.Name == "" {
		jsonError(w, "field 'name' is required", http.StatusBadRequest)
		return
	}
	if err := s.store.Files().Create(r.Context(), req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("project created", slog.String("project", req.Name))
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// DELETE /api/projects/{name}
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	if err := s.store.DeleteProject(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("project deleted", slog.String("project", name))
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/projects/{name}/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.Files().LoadSettings(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// PUT /api/projects/{name}/settings: fields missing from the body keep
// their current values.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	ps, err := s.store.Files().LoadSettings(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := decodeJSON(w, r, &ps); err != nil {
		jsonError(w, "invalid settings body", http.StatusBadRequest)
		return
	}
	if err := s.store.Files().SaveSettings(r.Context(), name, ps); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// --- Word list handlers ---

type wordlistResponse struct {
	Wordlist *wordlist.Wordlist `json:"wordlist"`
	Warnings []wordlist.Warning `json:"warnings"`
	Problems string             `json:"problems,omitempty"`
}

func (s *Server) describeWordlist(wl *wordlist.Wordlist) wordlistResponse {
	resp := wordlistResponse{Wordlist: wl, Warnings: wl.ProfanityWarnings(s.source.Current())}
	if resp.Warnings == nil {
		resp.Warnings = []wordlist.Warning{}
	}
	if err := wl.Validate(); err != nil {
		resp.Problems = err.Error()
	}
	return resp
}

// GET /api/projects/{name}/wordlist
func (s *Server) handleGetWordlist(w http.ResponseWriter, r *http.Request) {
	wl, err := s.store.Files().LoadWordlist(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describeWordlist(wl))
}

// PUT /api/projects/{name}/wordlist: only valid lists are stored.
func (s *Server) handlePutWordlist(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var wl wordlist.Wordlist
	if err := decodeJSON(w, r, &wl); err != nil {
		jsonError(w, "invalid word list body", http.StatusBadRequest)
		return
	}
	if err := wl.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}

	unlock := s.store.Lock(name)
	defer unlock()
	if err := s.store.Files().SaveWordlist(r.Context(), name, &wl); err != nil {
		s.writeError(w, err)
		return
	}
	resp := s.describeWordlist(&wl)
	for _, warn := range resp.Warnings {
		s.logger.Warn("profanity in word list", slog.String("project", name), slog.String("field", warn.Field), slog.String("word", warn.Word))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/projects/{name}/wordlist/validate: check the stored list.
func (s *Server) handleValidateWordlist(w http.ResponseWriter, r *http.Request) {
	wl, err := s.store.Files().LoadWordlist(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := s.describeWordlist(wl)
	resp.Wordlist = nil
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/projects/{name}/wordlist/draft: ask the AI for a draft. The
// draft is returned, not stored.
func (s *Server) handleDraftWordlist(w http.ResponseWriter, r *http.Request) {
	if !s.draftRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	if s.drafter == nil {
		jsonError(w, "AI drafting is not configured", http.StatusServiceUnavailable)
		return
	}
	if !s.store.Files().Exists(r.Context(), r.PathValue("name")) {
		jsonError(w, "project not found", http.StatusNotFound)
		return
	}

	var req struct {
		Topic      string `json:"topic"`
		Categories int    `json:"categories"`
		Entries    int    `json:"entries"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid draft request", http.StatusBadRequest)
		return
	}
	topic := sanitizeTopic(req.Topic)
	if topic == "" || req.Categories < 1 || req.Categories > 50 || req.Entries < 3 || req.Entries > 75 {
		jsonError(w, "topic, categories (1-50) and entries (3-75) are required", http.StatusBadRequest)
		return
	}

	wl, err := s.drafter.DraftWordlist(r.Context(), topic, req.Categories, req.Entries)
	if err != nil {
		s.logger.Error("draft word list", slog.String("topic", topic), slog.Any("error", err))
		jsonError(w, "could not draft a word list", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, s.describeWordlist(wl))
}

// --- Puzzle data handlers ---

// POST /api/projects/{name}/puzzledata: build the book in the background.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.generateRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	name := r.PathValue("name")

	wl, err := s.store.Files().LoadWordlist(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := wl.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	bd, err := s.builder(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, err := s.store.StartJob(name, "generate")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jobs.Add(1)
	go s.runBuild(job, bd, wl)

	writeJSON(w, http.StatusAccepted, job.Snapshot())
}

func (s *Server) runBuild(job *Job, bd *book.Builder, wl *wordlist.Wordlist) {
	defer s.jobs.Done()
	logger := s.logger.With(slog.String("project", job.Project), slog.String("job", job.ID))
	logger.Info("book build started", slog.Int("categories", len(wl.Categories)))

	b, err := bd.Build(s.ctx, wl, func(done, total int, title string) {
		job.Progress(done, total, title)
		s.sse.Publish(job.Project, "progress", map[string]any{
			"job_id": job.ID,
			"done":   done,
			"total":  total,
			"puzzle": title,
		})
	})
	if err == nil {
		unlock := s.store.Lock(job.Project)
		err = s.store.SaveBook(s.ctx, job.Project, b)
		unlock()
	}
	s.store.FinishJob(job, err)

	if err != nil {
		logger.Error("book build failed", slog.Any("error", err))
		s.sse.Publish(job.Project, "job_failed", map[string]any{"job_id": job.ID, "error": err.Error()})
		return
	}
	logger.Info("book build finished", slog.Int("puzzles", len(b.Puzzles)), slog.Int("warnings", len(b.Warnings)))
	s.sse.Publish(job.Project, "job_done", map[string]any{
		"job_id":   job.ID,
		"puzzles":  len(b.Puzzles),
		"warnings": b.Warnings,
	})
}

// GET /api/projects/{name}/puzzledata
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	b, err := s.store.Book(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /api/projects/{name}/rescan: rerun the profanity scan on every
// puzzle with the current blocklist.
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	b, err := s.store.Book(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bd, err := s.builder(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	hits := bd.Rescan(b)
	if err := s.store.SaveBook(r.Context(), name, b); err != nil {
		s.writeError(w, err)
		return
	}
	s.sse.Publish(name, "rescanned", map[string]any{"hits": hits})
	writeJSON(w, http.StatusOK, map[string]int{"hits": hits})
}

// GET /api/projects/{name}/puzzles/{id}
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	b, err := s.store.Book(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := b.Puzzle(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /api/projects/{name}/puzzles/{id}/rebuild: regenerate one puzzle.
func (s *Server) handleRebuildPuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.generateRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	name := r.PathValue("name")
	unlock := s.store.Lock(name)
	defer unlock()

	b, err := s.store.Book(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bd, err := s.builder(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := bd.Rebuild(r.Context(), b, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SaveBook(r.Context(), name, b); err != nil {
		s.writeError(w, err)
		return
	}
	s.sse.Publish(name, "puzzle_rebuilt", map[string]any{"puzzle_id": p.ID})
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/projects/{name}/puzzles/{id}/cells/{x}/{y}: replace one letter.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errX != nil || errY != nil {
		jsonError(w, "cell coordinates must be integers", http.StatusBadRequest)
		return
	}
	var req struct {
		Letter string `json:"letter"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}

	name, id := r.PathValue("name"), r.PathValue("id")
	unlock := s.store.Lock(name)
	defer unlock()

	b, err := s.store.Book(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bd, err := s.builder(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := bd.EditCell(b, id, x, y, req.Letter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SaveBook(r.Context(), name, b); err != nil {
		s.writeError(w, err)
		return
	}

	s.sse.Publish(name, "cell_update", map[string]any{
		"puzzle_id": id,
		"x":         x,
		"y":         y,
		"value":     p.Cells[y][x].Value,
		"profanity": len(p.Profanity),
	})
	writeJSON(w, http.StatusOK, p)
}

// GET /api/projects/{name}/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListJobs(r.PathValue("name")))
}

// GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job := s.store.GetJob(r.PathValue("id"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// GET /api/projects/{name}/events: SSE stream.
func (s *Server) handleProjectEvents(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.store.Files().Exists(r.Context(), name) {
		jsonError(w, "project not found", http.StatusNotFound)
		return
	}

	s.sse.ServeSSE(w, r, name, func(c *client) {
		// Send the job list on connect so late subscribers catch up.
		evt, _ := json.Marshal(map[string]any{
			"type": "jobs",
			"jobs": s.store.ListJobs(name),
		})
		c.ch <- string(evt)
	}, func() {
		s.logger.Debug("event stream closed", slog.String("project", name))
	})
}

// --- Profanity handlers ---

// GET /api/profanity
func (s *Server) handleListProfanity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"words": s.source.Current().Words()})
}

// POST /api/profanity: add one word.
func (s *Server) handleAddProfanity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "field 'word' is required", http.StatusBadRequest)
		return
	}
	s.updateProfanity(w, http.StatusCreated, func(b *profanity.Blocklist) (*profanity.Blocklist, error) {
		return b.With(req.Word)
	})
}

// PUT /api/profanity: replace the whole list.
func (s *Server) handleReplaceProfanity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Words []string `json:"words"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "field 'words' is required", http.StatusBadRequest)
		return
	}
	s.updateProfanity(w, http.StatusOK, func(*profanity.Blocklist) (*profanity.Blocklist, error) {
		return profanity.NewBlocklist(req.Words), nil
	})
}

// DELETE /api/profanity/{word}
func (s *Server) handleRemoveProfanity(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	s.updateProfanity(w, http.StatusOK, func(b *profanity.Blocklist) (*profanity.Blocklist, error) {
		return b.Without(word)
	})
}

func (s *Server) updateProfanity(w http.ResponseWriter, code int, change func(*profanity.Blocklist) (*profanity.Blocklist, error)) {
	s.profanityMu.Lock()
	defer s.profanityMu.Unlock()

	next, err := change(s.source.Current())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.source.Update(next); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("profanity list updated", slog.Int("words", next.Len()))
	writeJSON(w, code, map[string][]string{"words": next.Words()})
}

// --- Helpers ---

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, book.ErrPuzzleNotFound),
		errors.Is(err, profanity.ErrUnknownWord):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrExists),
		errors.Is(err, profanity.ErrDuplicateWord),
		errors.Is(err, errJobRunning):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, wordlist.ErrInvalidWordlist),
		errors.Is(err, puzzle.ErrInvalidSettings),
		errors.Is(err, puzzle.ErrOutOfBounds),
		errors.Is(err, puzzle.ErrInvalidLetter),
		errors.Is(err, profanity.ErrEmptyWord):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.Any("error", err))
		jsonError(w, "internal error", code)
		return
	}
	jsonError(w, err.Error(), code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeTopic(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 80 {
		s = string([]rune(s)[:80])
	}
	return s
}
