// Package cli provides the cobra command tree for deskpilot.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// version is set at build time or through SetVersion.
var version = "dev"

// Persistent flag values.
var (
	verbose   bool
	apiURL    string
	configDir string
	noConfig  bool
)

// Options carries the persistent flags to the service builder.
type Options struct {
	// APIURL overrides the configured API base URL when set.
	APIURL string

	// ConfigDir overrides the configuration directory when set.
	ConfigDir string

	// NoConfig keeps settings in memory and never touches disk.
	NoConfig bool
}

// Services are the core services the commands drive.
type Services struct {
	Settings driving.SettingsService
	Inbox    driving.InboxService

	// NewDashboard builds the interactive dashboard. Notices raised by
	// response actions are passed to notify.
	NewDashboard func(notify func(domain.Notice)) driving.DashboardService

	// LogDir receives the log file while the TUI runs.
	LogDir string

	// Close releases the session. Optional.
	Close func()
}

// Builder constructs services once flags are parsed.
type Builder func(opts Options) (*Services, error)

var (
	builder Builder
	active  *Services
)

// errNotConfigured is returned when a command runs without services.
var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "deskpilot",
	Short: "Operator dashboard for an AI-assisted support inbox",
	Long: `deskpilot is a terminal dashboard for a customer support inbox.

Emails arrive already classified by priority and sentiment. deskpilot lists
and filters them, drafts AI responses, lets you edit and send them, and
shows inbox analytics. Run without a subcommand to open the dashboard.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		Shutdown()
	},
	RunE: runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&apiURL, "api-url", "", "override the API base URL for this run")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.deskpilot)")
	flags.BoolVar(&noConfig, "no-config", false, "use default settings without reading or writing the config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands see
// through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBuilder registers how services are constructed.
func SetBuilder(b Builder) {
	builder = b
}

// SetServices installs prebuilt services, bypassing the builder.
func SetServices(s *Services) {
	active = s
}

// getServices builds services on first use.
func getServices() (*Services, error) {
	if active != nil {
		return active, nil
	}
	if builder == nil {
		return nil, errNotConfigured
	}
	built, err := builder(Options{APIURL: apiURL, ConfigDir: configDir, NoConfig: noConfig})
	if err != nil {
		return nil, fmt.Errorf("initialising: %w", err)
	}
	active = built
	return active, nil
}

func settingsService() (driving.SettingsService, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	if s.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return s.Settings, nil
}

func inboxService() (driving.InboxService, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	if s.Inbox == nil {
		return nil, errors.New("inbox service not configured")
	}
	return s.Inbox, nil
}

// Shutdown releases services built by the builder. It is safe to call
// more than once.
func Shutdown() {
	if active == nil || builder == nil {
		return
	}
	if active.Close != nil {
		active.Close()
	}
	active = nil
}
