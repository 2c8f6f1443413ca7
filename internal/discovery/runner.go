/*
Package discovery implements the event discovery pipeline: launching the
external scraper process and extracting AI-sourced event candidates.

# Fire and Forget

Triggering a scrape is an asynchronous accept. The API acknowledges that the
process was launched, never that it succeeded; clients observe results by
re-reading the city's events later. Nothing tracks or deduplicates running
scrapes, so two triggers for the same city run two processes.
*/
package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Runner launches the external scraper for a city.
type Runner interface {
	// Start launches the scraper for the target token and city id. It returns
	// once the process has been spawned; completion is never awaited by the
	// caller.
	Start(ctx context.Context, target string, cityID int) error
}

// ExecRunner runs the scraper as a child process.
type ExecRunner struct {
	bin    string
	logger *slog.Logger
}

// NewExecRunner constructs an ExecRunner for the given executable path.
func NewExecRunner(bin string, logger *slog.Logger) *ExecRunner {
	return &ExecRunner{
		bin:    bin,
		logger: logger,
	}
}

/*
Start spawns the scraper process and returns without waiting for it.

Description: The process is invoked as "<bin> <target> <cityID>" and outlives
the triggering request; the request context deliberately does not cancel it.
A goroutine reaps the process and logs its output and exit status so the
scrape leaves a trace even though no caller observes it.

Parameters:
  - ctx: context.Context (Unused for cancellation; the scrape is detached)
  - target: string (City token passed as the first argument)
  - cityID: int

Returns:
  - error: Spawn failures (missing binary, permissions); nil once launched
*/
func (runner *ExecRunner) Start(_ context.Context, target string, cityID int) error {
	command := exec.Command(runner.bin, target, strconv.Itoa(cityID))

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Start(); err != nil {
		return err
	}

	runner.logger.Info("scraper_launched",
		slog.String("target", target),
		slog.Int("city_id", cityID),
		slog.Int("pid", command.Process.Pid),
	)

	go func() {
		err := command.Wait()

		logger := runner.logger.With(
			slog.String("target", target),
			slog.Int("city_id", cityID),
		)

		if err != nil {
			logger.Error("scraper_exited_with_error",
				slog.Any("error", err),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
			)
			return
		}

		// A clean exit can still carry diagnostics on the error stream;
		// that content is part of the trace too.
		if stderrText := strings.TrimSpace(stderr.String()); stderrText != "" {
			logger.Warn("scraper_stderr", slog.String("stderr", stderrText))
		}

		logger.Info("scraper_finished",
			slog.String("stdout", strings.TrimSpace(stdout.String())),
		)
	}()

	return nil
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// TargetToken derives the scraper's city argument from a display name:
// lowercased, with whitespace runs collapsed to single hyphens.
//
// "New York City" becomes "new-york-city". Unlike browse slugs, accents and
// punctuation pass through untouched; the scraper owns their interpretation.
func TargetToken(name string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(name), "-")
}
