package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/config"
	"github.com/bodul/wordsearch/internal/profanity"
	"github.com/bodul/wordsearch/internal/storage"
	"github.com/bodul/wordsearch/internal/wordlist"
)

var (
	configPath string
	puzzleOut  string
	draftOut   string
	seedFlag   uint64
	categories int
	entries    int

	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "wordsearch",
		Short:         "Generate themed word-search puzzle books",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err = newLogger(os.Stderr, cfg.App)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	validateCmd = &cobra.Command{
		Use:   "validate [wordlist.json]",
		Short: "Check a word list and report profanity in it",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	generateCmd = &cobra.Command{
		Use:   "generate [wordlist.json]",
		Short: "Build the puzzle data for a word list",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}

	rescanCmd = &cobra.Command{
		Use:   "rescan [puzzledata.json]",
		Short: "Rerun the profanity scan on generated puzzle data",
		Args:  cobra.ExactArgs(1),
		RunE:  runRescan,
	}

	draftCmd = &cobra.Command{
		Use:   "draft [topic]",
		Short: "Draft a word list with Gemini",
		Args:  cobra.ExactArgs(1),
		RunE:  runDraft,
	}

	profanityCmd = &cobra.Command{
		Use:   "profanity",
		Short: "Manage the profanity list",
	}
	profanityListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the blocked words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
			if err != nil {
				return err
			}
			for _, w := range source.Current().Words() {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}
	profanityAddCmd = &cobra.Command{
		Use:   "add [word...]",
		Short: "Block one or more words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProfanity(args, (*profanity.Blocklist).With)
		},
	}
	profanityRemoveCmd = &cobra.Command{
		Use:   "remove [word...]",
		Short: "Unblock one or more words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProfanity(args, (*profanity.Blocklist).Without)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "wordsearch.yaml", "path to the config file")

	generateCmd.Flags().StringVarP(&puzzleOut, "output", "o", storage.PuzzleFile, "where to write the puzzle data")
	generateCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "random seed, 0 picks one")

	draftCmd.Flags().StringVarP(&draftOut, "output", "o", storage.WordlistFile, "where to write the word list")
	draftCmd.Flags().IntVar(&categories, "categories", 10, "number of puzzles to draft")
	draftCmd.Flags().IntVar(&entries, "entries", 20, "words per puzzle")

	profanityCmd.AddCommand(profanityListCmd, profanityAddCmd, profanityRemoveCmd)
	rootCmd.AddCommand(serveCmd, validateCmd, generateCmd, rescanCmd, draftCmd, profanityCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
	if err != nil {
		return err
	}
	if cfg.App.WatchProfanity {
		go func() {
			if err := source.Watch(ctx); err != nil {
				logger.Error("profanity watcher stopped", slog.Any("error", err))
			}
		}()
	}

	fs := storage.NewFS(cfg.App.DataDir, cfg.ProjectDefaults())

	var drafter wordlistDrafter
	if cfg.AI.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.AI)
		if err != nil {
			return err
		}
		defer gemini.Close()
		drafter = gemini
		logger.Info("gemini client ready", slog.String("project", cfg.AI.ProjectID), slog.String("model", cfg.AI.Model))
	} else {
		logger.Info("GCP project not set, word list drafting disabled")
	}

	srv := NewServer(NewStore(fs), source, drafter, cfg.App, logger)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", slog.String("addr", "http://localhost:"+cfg.App.Port), slog.String("data_dir", cfg.App.DataDir))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = httpSrv.Shutdown(shutdownCtx)
	srv.Close()
	return err
}

func readWordlist(path string) (*wordlist.Wordlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wordlist.Parse(data)
}

func runValidate(cmd *cobra.Command, args []string) error {
	wl, err := readWordlist(args[0])
	if err != nil {
		return err
	}
	source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range wl.ProfanityWarnings(source.Current()) {
		fmt.Fprintln(out, "warning:", w)
	}
	if err := wl.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d categories OK\n", wl.Title, len(wl.Categories))
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	wl, err := readWordlist(args[0])
	if err != nil {
		return err
	}
	source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
	if err != nil {
		return err
	}

	opts := cfg.Book
	if seedFlag != 0 {
		opts.Seed = seedFlag
	}
	bd, err := book.NewBuilder(cfg.Puzzle, opts, source.Current(), logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	b, err := bd.Build(cmd.Context(), wl, func(done, total int, title string) {
		fmt.Fprintf(out, "[%d/%d] %s\n", done, total, title)
	})
	if err != nil {
		return err
	}
	for _, w := range b.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	if err := writeJSONFile(puzzleOut, b); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d puzzles to %s (seed %d)\n", len(b.Puzzles), puzzleOut, b.Seed)
	return nil
}

func runRescan(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
	if err != nil {
		return err
	}
	bd, err := book.NewBuilder(cfg.Puzzle, cfg.Book, source.Current(), logger)
	if err != nil {
		return err
	}

	hits := bd.Rescan(&b)
	if err := writeJSONFile(args[0], &b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d profanity hits\n", hits)
	return nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	gemini, err := NewGeminiClient(cmd.Context(), cfg.AI)
	if err != nil {
		return err
	}
	defer gemini.Close()

	wl, err := gemini.DraftWordlist(cmd.Context(), sanitizeTopic(args[0]), categories, entries)
	if err != nil {
		return err
	}
	if err := wl.Validate(); err != nil {
		logger.Warn("drafted word list needs edits", slog.Any("error", err))
	}
	if err := writeJSONFile(draftOut, wl); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %q to %s\n", wl.Title, draftOut)
	return nil
}

func editProfanity(words []string, change func(*profanity.Blocklist, string) (*profanity.Blocklist, error)) error {
	source, err := profanity.NewSource(cfg.App.ProfanityFile, logger)
	if err != nil {
		return err
	}
	b := source.Current()
	for _, w := range words {
		if b, err = change(b, w); err != nil {
			return err
		}
	}
	return source.Update(b)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
