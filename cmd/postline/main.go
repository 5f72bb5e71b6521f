package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/postline"
	"github.com/pevans/postline/config"
	"github.com/pevans/postline/format"
	"github.com/pevans/postline/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run is the whole program; it returns the process exit code. The record,
// or the error line, goes to stdout. Logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	// Flags default to whatever the config file, settings store and
	// environment resolve to.
	settings, loadErr := config.Load(getenv)

	fs := flag.NewFlagSet("postline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	includeTitle := fs.Bool("title", settings.IncludeTitle, "Include the title field before the body ("+config.EnvVar(config.KeyIncludeTitle)+")")
	timeout := fs.Duration("timeout", settings.Timeout, "Request timeout ("+config.EnvVar(config.KeyTimeout)+")")
	userAgent := fs.String("user-agent", settings.UserAgent, "User-Agent header sent with the request ("+config.EnvVar(config.KeyUserAgent)+")")
	feeds := fs.Bool("feeds", settings.Feeds, "Extract the newest entry from RSS/Atom feed URLs ("+config.EnvVar(config.KeyFeeds)+")")
	logLevel := fs.String("log-level", settings.LogLevel, "Log level on stderr: debug, info, warn, error ("+config.EnvVar(config.KeyLogLevel)+")")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	settings.IncludeTitle = *includeTitle
	settings.Feeds = *feeds
	if err := settings.Set(config.KeyTimeout, timeout.String()); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if err := settings.Set(config.KeyUserAgent, *userAgent); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if err := settings.Set(config.KeyLogLevel, *logLevel); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	log := logger.NewWithWriter(stderr, settings.LogLevel)
	if loadErr != nil {
		log.Warn("ignoring part of the configuration", "error", loadErr)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stdout, "Error: %s\n", postline.Describe(postline.ErrUsage))
		return 1
	}

	grabber := postline.NewGrabber(settings, log)
	result, err := grabber.Grab(ctx, fs.Arg(0))
	if err != nil {
		log.Debug("run failed", "error", err)
		fmt.Fprintf(stdout, "Error: %s\n", postline.Describe(err))
		return 1
	}

	fmt.Fprintln(stdout, result.Line(format.Options{IncludeTitle: settings.IncludeTitle}))
	return 0
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "postline - Print a post, comment or article as one tab-delimited line")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  postline [flags] <url>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Output fields:")
	fmt.Fprintln(out, "  published  url  origin  type  [title]  text")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment Variables:")
	fmt.Fprintln(out, "  POSTLINE_HOME          Directory holding config.yaml and settings.db (default: ~/.postline)")
	fmt.Fprintln(out, "  POSTLINE_SETTINGS_DSN  Path to the settings database (default: $POSTLINE_HOME/settings.db)")
}
