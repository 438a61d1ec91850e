// Package main implements a Craigslist keyword watcher: it scans
// search results for new posts, matches posting bodies against user
// keywords, and alerts via local sendmail/ssmtp at most once per post.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"craigslist-watcher/mail"
	"craigslist-watcher/match"
	"craigslist-watcher/scan"
	"craigslist-watcher/scraper"
	"craigslist-watcher/seen"
)

func main() {
	region := flag.String("region", "boston", "Craigslist region subdomain")
	category := flag.String("category", "gms", "Craigslist category path")
	query := flag.String("query", "", "optional search query string")
	keywords := flag.String("keywords", "mario,ps3,ps4,xbox,gameboy,linux,sega,brewing",
		"comma-separated keywords to match")
	seenFile := flag.String("seen-file", "seen_craigslist.json", "JSON file storing seen listing IDs")
	pages := flag.Int("pages", 1, "how many search pages to scan")
	pageSize := flag.Int("page-size", 120, "pagination step size")
	sleep := flag.Float64("sleep", 1.5, "seconds to sleep between requests")
	loop := flag.Int("loop", 0, "if >0, rerun every N seconds")
	dryRun := flag.Bool("dry-run", false, "print matches; do not send email")
	flag.Parse()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Notifier configuration comes from the environment so mail
	// settings stay out of shell history. Read once here, passed down
	// as explicit values.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment")
	}
	alertTo := os.Getenv("ALERT_TO")
	alertFrom := os.Getenv("ALERT_FROM")
	mailDebug := os.Getenv("MAIL_DEBUG") == "1"

	cfg := scan.Config{
		Region:   *region,
		Category: *category,
		Query:    *query,
		Pages:    *pages,
		PageSize: *pageSize,
		Sleep:    time.Duration(*sleep * float64(time.Second)),
		DryRun:   *dryRun,
	}

	client := &http.Client{Timeout: 20 * time.Second}
	notifier := mail.New(mail.NewSendmailProvider(alertTo, alertFrom, mailDebug, logger), logger)

	monitor := scan.New(
		scraper.New(client, logger),
		seen.NewFileStore(*seenFile, logger),
		match.New(strings.Split(*keywords, ",")),
		notifier,
		cfg,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *loop > 0 {
		err := monitor.RunLoop(ctx, time.Duration(*loop)*time.Second)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watcher stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if _, err := monitor.Run(ctx); err != nil {
		logger.Error("Scan pass failed", "error", err)
		os.Exit(1)
	}
}
