package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// Setting keys edited by the wizard.
const (
	keyBaseURL   = "api.base_url"
	keyTimeRange = "dashboard.time_range_days"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change deskpilot settings.

Settings live in config.toml in the configuration directory. Values that
are missing or invalid fall back to their defaults.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting and save it.

Keys:
  api.base_url               root URL of the support API
  api.timeout_seconds        per-request timeout in seconds
  api.rate_limit             sustained requests per second
  api.burst                  requests allowed back to back
  dashboard.time_range_days  initial volume chart range (1, 7 or 30)
  cache.gc_seconds           seconds an unobserved cache entry is kept`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where settings are stored",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := settingsService()
		if err != nil {
			return err
		}
		cmd.Println(settings.Path())
		return nil
	},
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to point deskpilot at your support API.`,
	RunE:  runConfigWizard,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := settingsService()
	if err != nil {
		return err
	}

	list, err := settings.List()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	section := ""
	for _, s := range list {
		if prefix, _, ok := strings.Cut(s.Key, "."); ok && prefix != section {
			if section != "" {
				cmd.Println()
			}
			section = prefix
			cmd.Printf("[%s]\n", section)
		}
		line := fmt.Sprintf("  %-26s %s", s.Key, s.Value)
		if s.Value != s.Default {
			line += fmt.Sprintf("  (default %s)", s.Default)
		}
		cmd.Println(line)
	}
	cmd.Println()
	cmd.Printf("Stored in: %s\n", settings.Path())
	if apiURL != "" {
		cmd.Printf("Overridden for this run: api.base_url = %s\n", apiURL)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	settings, err := settingsService()
	if err != nil {
		return err
	}

	if err := settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	settings, err := settingsService()
	if err != nil {
		return err
	}
	current, err := settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("deskpilot Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: API base URL
	cmd.Println("Step 1: Support API")
	cmd.Println("-------------------")
	cmd.Printf("Base URL [%s]: ", current.API.BaseURL)
	if input := readLine(reader); input != "" {
		if err := settings.Set(keyBaseURL, input); err != nil {
			return fmt.Errorf("failed to set base URL: %w", err)
		}
		cmd.Printf("Set base URL to: %s\n", input)
	}
	cmd.Println()

	// Step 2: default analytics range
	cmd.Println("Step 2: Default Time Range")
	cmd.Println("--------------------------")
	ranges := domain.AllTimeRanges()
	defaultChoice := 1
	for i, r := range ranges {
		cmd.Printf("  %d. %s\n", i+1, r.Label())
		if r == current.Dashboard.TimeRange {
			defaultChoice = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	selected := ranges[parseChoice(readLine(reader), len(ranges), defaultChoice)-1]
	if err := settings.Set(keyTimeRange, strconv.Itoa(int(selected))); err != nil {
		return fmt.Errorf("failed to set time range: %w", err)
	}
	cmd.Printf("Set default time range to: %s\n\n", selected.Label())

	cmd.Printf("Settings saved to %s\n", settings.Path())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}
