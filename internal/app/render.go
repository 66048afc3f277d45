package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/textwaves/waveline/internal/api"
	"github.com/textwaves/waveline/internal/config"
)

func (r Runner) commandRender(ctx context.Context, cfg config.Config, logger *slog.Logger, jobID, outPath string) int {
	client := r.newBackend(cfg, logger)
	ctrl := r.newController(client, cfg, logger)
	if err := ctrl.Resume(jobID); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	result := ctrl.Watch(ctx)
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		ctrl.Teardown()
		return 1
	}

	if outPath == "" {
		outPath = "render_" + jobID + ".mp4"
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		ctrl.Teardown()
		return 1
	}

	rendered := ctrl.Render(ctx, out, api.DefaultRenderConfig())
	closeErr := out.Close()
	ctrl.Teardown()

	if rendered.Err != nil {
		fmt.Fprintf(r.Stderr, "error: render: %v\n", rendered.Err)
		_ = os.Remove(outPath)
		return 1
	}
	if closeErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", closeErr)
		return 1
	}

	fmt.Fprintf(r.Stdout, "rendered %s (%d bytes)\n", outPath, rendered.Written)
	return 0
}
