package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// newController builds the list controller used by every backend command.
// The logger comes from ctx, where the dispatcher puts it.
func newController(ctx context.Context, cfg *config.Config, svc service.Service) *controller.Controller {
	return controller.New(svc,
		controller.WithRequestTimeout(cfg.Timeout),
		controller.WithLogger(log.FromContext(ctx)),
	)
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	var target *targetError
	switch {
	case errors.As(err, &target):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, service.ErrMissingID), errors.Is(err, service.ErrMissingTitle):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the success marker unless quiet.
func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
