package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// errNoTerminal is returned when the dashboard is started without a TTY.
var errNoTerminal = errors.New("the dashboard needs an interactive terminal; use the emails, respond or analytics commands instead")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long: `Launch the interactive terminal dashboard for the support inbox.

The dashboard lists incoming emails with their AI-assigned priority and
sentiment, lets you draft, edit and send responses, and shows inbox
analytics with email volume and sentiment charts.

Controls:
  ↑/k, ↓/j - Navigate emails
  Enter    - Open email
  /        - Search
  p, m, f  - Cycle priority, sentiment and status filters
  1, 2, 3  - All, urgent and resolved presets
  g, e, s  - Generate, edit and send a response
  a, i     - Analytics and inbox
  r        - Refresh everything
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if !isTerminal() {
		return errNoTerminal
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	if svc.NewDashboard == nil {
		return errors.New("dashboard not configured")
	}

	// The alt screen owns the terminal; logs go to a file.
	if svc.LogDir != "" {
		restore, logErr := logger.ToFile(svc.LogDir)
		if logErr != nil {
			return logErr
		}
		defer func() {
			if cerr := restore(); cerr != nil {
				fmt.Fprintf(os.Stderr, "closing log file: %v\n", cerr)
			}
		}()
	}

	bridge := tui.NewBridge()
	dashboard := svc.NewDashboard(bridge.Notify)

	app, err := tui.NewApp(tui.NewPorts(dashboard, svc.Settings))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithBridge(bridge).WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
