package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/mkarimof/jurybox/internal/scoregen"
	"github.com/mkarimof/jurybox/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		eventPath = flag.String("event", "event.json", "Path to the event configuration JSON")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Log each failed submission")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &scoregen.Config{
		BaseURL:   *baseURL,
		EventPath: *eventPath,
		Workers:   *workers,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}
	if err := scoregen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("score generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
