package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/ui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command: the interactive task page.
type UICmd struct{}

func (c *UICmd) Name() string       { return "ui" }
func (c *UICmd) Aliases() []string  { return []string{"tui"} }
func (c *UICmd) Synopsis() string   { return "Open the interactive task page" }
func (c *UICmd) Usage() string      { return "todo ui" }
func (c *UICmd) NeedsBackend() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !ui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: ui requires a terminal")
		return exitcode.UserError
	}

	ctrl := newController(ctx, cfg, svc)
	if err := ui.Run(ctx, ctrl, tea.WithOutput(out)); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
