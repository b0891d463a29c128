package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/ranking"
)

// =============================================================================
// 🔁 cycle 命令
// =============================================================================

func runCycle(args []string) {
	fs := flag.NewFlagSet("cycle", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	app, err := newApp(cfg, logger, nil)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.engine.RunOnce(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cycle failed: %v\n", err)
		app.Close()
		os.Exit(1)
	}
	writeJSON(os.Stdout, cycleSummary(report.ID, report.Outcome, report.SkipReason, report.Committed))
}

func cycleSummary(id, outcome, skipReason string, committed []string) map[string]any {
	out := map[string]any{
		"cycle_id":  id,
		"outcome":   outcome,
		"committed": committed,
	}
	if skipReason != "" {
		out["skip_reason"] = skipReason
	}
	return out
}

// =============================================================================
// 👍 upvote 命令
// =============================================================================

func runUpvote(args []string) {
	fs := flag.NewFlagSet("upvote", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dallevision upvote [--config <path>] <YYYYMMDD_n>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	app, err := newApp(cfg, logger, nil)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	affected, err := app.recorder.Upvote(ctx, id)
	if err != nil {
		app.metrics.RecordUpvote("error")
		fmt.Fprintf(os.Stderr, "Upvote failed: %v\n", err)
		app.Close()
		os.Exit(1)
	}
	if affected == 0 {
		app.metrics.RecordUpvote("unknown_id")
		fmt.Fprintf(os.Stderr, "No archived entry with id %s\n", id)
		return
	}
	app.metrics.RecordUpvote("recorded")

	rec, err := app.store.Get(ctx, id)
	if err != nil {
		fmt.Printf("Upvoted %s\n", id)
		return
	}
	fmt.Printf("Upvoted %s (%d votes)\n", id, rec.Upvotes)
}

// =============================================================================
// 🖼️ latest 命令
// =============================================================================

// latestView 某日最新条目的展示结构
type latestView struct {
	ID     string        `json:"id"`
	Entry  archive.Entry `json:"entry"`
	Prompt string        `json:"prompt"`
	Story  string        `json:"story"`
}

func runLatest(args []string) {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	date := fs.String("date", "", "Day to inspect (YYYY-MM-DD)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	loc, err := cfg.Archive.TimeLocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid location: %v\n", err)
		os.Exit(1)
	}

	view, err := latest(cfg.Archive.RootDir, *date, time.Now().In(loc))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Latest lookup failed: %v\n", err)
		os.Exit(1)
	}
	writeJSON(os.Stdout, view)
}

// latest 读取某日序号最大的条目；date 为空时取 now 所在日
func latest(root, date string, now time.Time) (*latestView, error) {
	day := archive.DayOf(now)
	if date != "" {
		d, err := archive.ParseDay(date)
		if err != nil {
			return nil, err
		}
		day = d
	}

	entry, err := archive.Latest(root, day)
	if err != nil {
		return nil, err
	}

	prompt, err := os.ReadFile(entry.PromptPath)
	if err != nil {
		return nil, fmt.Errorf("read prompt: %w", err)
	}
	story, err := os.ReadFile(entry.StoryPath)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}

	return &latestView{
		ID:     entry.ID(),
		Entry:  entry,
		Prompt: string(prompt),
		Story:  string(story),
	}, nil
}

// =============================================================================
// 🏆 top 命令
// =============================================================================

func runTop(args []string) {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	limit := fs.Int("limit", 10, "Number of entries")
	fs.Parse(args)

	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "--limit must be positive")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	app, err := newApp(cfg, logger, nil)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := app.store.Top(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		app.Close()
		os.Exit(1)
	}
	if rows == nil {
		rows = []ranking.Ranking{}
	}
	writeJSON(os.Stdout, rows)
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
	}
}
