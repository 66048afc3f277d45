// Package app dispatches CLI commands against the session controller.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/textwaves/waveline/internal/api"
	"github.com/textwaves/waveline/internal/cli"
	"github.com/textwaves/waveline/internal/config"
	"github.com/textwaves/waveline/internal/doctor"
	"github.com/textwaves/waveline/internal/logging"
	"github.com/textwaves/waveline/internal/progress"
	"github.com/textwaves/waveline/internal/session"
	"github.com/textwaves/waveline/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("waveline"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("waveline"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(parsed.Debug)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	cfg := cfgLoaded.Config
	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandWords:
		return r.commandWords(ctx, cfg, logger)
	case cli.CommandUpload:
		return r.commandUpload(ctx, cfg, logger, parsed.Arg)
	case cli.CommandResume:
		return r.commandResume(ctx, cfg, logger, parsed.Arg)
	case cli.CommandRender:
		return r.commandRender(ctx, cfg, logger, parsed.Arg, parsed.OutPath)
	case cli.CommandAudition:
		return r.commandAudition(ctx, cfg, logger, parsed.Arg)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// newBackend builds the API client shared by every session-bound command.
func (r Runner) newBackend(cfg config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), logger)
}

// newController wires the backend, push feed dialer, and console notifier
// into a fresh session controller.
func (r Runner) newController(client *api.Client, cfg config.Config, logger *slog.Logger) *session.Controller {
	opener := session.ChannelOpener{Dialer: &progress.Dialer{
		BaseURL: cfg.API.BaseURL,
		Logger:  logger,
	}}
	return session.NewController(logger, client, opener, consoleNotifier{out: r.Stderr}, cfg.RetryInterval())
}

func (r Runner) commandWords(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	words, err := r.newBackend(cfg, logger).SuggestedWords(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(words) == 0 {
		fmt.Fprintln(r.Stdout, "backend suggests no forbidden words")
		return 0
	}

	rows := make([][]string, 0, len(words))
	for i, word := range words {
		rows = append(rows, []string{strconv.Itoa(i + 1), word})
	}
	fmt.Fprintln(r.Stdout, renderTable(
		[]string{"#", "Word"},
		rows,
		[]columnAlignment{alignRight, alignLeft},
	))
	return 0
}

func (r Runner) commandUpload(ctx context.Context, cfg config.Config, logger *slog.Logger, path string) int {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	client := r.newBackend(cfg, logger)
	words := cfg.Words.Forbidden
	if len(words) == 0 {
		suggested, err := client.SuggestedWords(ctx)
		if err != nil {
			logger.Warn("suggested words unavailable", "error", err.Error())
		} else {
			words = suggested
		}
	}

	ctrl := r.newController(client, cfg, logger)
	jobID, err := ctrl.Submit(ctx, path, words)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "job %s\n", jobID)

	return r.watchAndShow(ctx, ctrl)
}

func (r Runner) commandResume(ctx context.Context, cfg config.Config, logger *slog.Logger, jobID string) int {
	client := r.newBackend(cfg, logger)
	ctrl := r.newController(client, cfg, logger)
	if err := ctrl.Resume(jobID); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.watchAndShow(ctx, ctrl)
}

// watchAndShow drives the session to readiness and prints the timeline.
func (r Runner) watchAndShow(ctx context.Context, ctrl *session.Controller) int {
	result := ctrl.Watch(ctx)
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		ctrl.Teardown()
		return 1
	}

	r.printTimeline(ctrl)
	ctrl.Teardown()
	return 0
}

func (r Runner) printTimeline(ctrl *session.Controller) {
	model := ctrl.Timeline()

	cues := model.Cues()
	if len(cues) > 0 {
		rows := make([][]string, 0, len(cues))
		for _, cue := range cues {
			rows = append(rows, []string{
				formatSeconds(cue.Start),
				formatSeconds(cue.End),
				cue.DisplayText,
			})
		}
		fmt.Fprintln(r.Stdout, renderTable(
			[]string{"Start", "End", "Text"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignLeft},
		))
	}

	beeps := model.Beeps()
	if len(beeps) > 0 {
		rows := make([][]string, 0, len(beeps))
		for _, beep := range beeps {
			rows = append(rows, []string{
				strconv.Itoa(beep.ID),
				formatSeconds(beep.Start),
				formatSeconds(beep.End),
				beep.SourceWord,
			})
		}
		fmt.Fprintln(r.Stdout, renderTable(
			[]string{"Beep", "Start", "End", "Source"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
		))
	}

	fmt.Fprintf(r.Stdout, "%d cues, %d beeps, %d forbidden words\n",
		model.CueCount(), model.BeepCount(), len(model.Words()))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// consoleNotifier mirrors session progress onto stderr so stdout stays
// reserved for command output.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Progress(snap progress.Snapshot) {
	fmt.Fprintf(n.out, "%3d%% %s", snap.Progress, snap.Stage)
	if snap.Message != "" {
		fmt.Fprintf(n.out, ": %s", snap.Message)
	}
	fmt.Fprintln(n.out)
}

func (n consoleNotifier) Ready(cueCount, beepCount int) {
	fmt.Fprintf(n.out, "session ready: %d cues, %d beeps\n", cueCount, beepCount)
}

func (n consoleNotifier) Failed(message string, lastProgress int) {
	fmt.Fprintf(n.out, "failed at %d%%: %s\n", lastProgress, message)
}
