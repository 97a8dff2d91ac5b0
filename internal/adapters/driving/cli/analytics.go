package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// barWidth is the widest volume bar printed.
const barWidth = 40

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show inbox analytics",
	Long: `Show inbox counters, response metrics, email volume and sentiment.

--days selects the volume window (1, 7 or 30); it defaults to the
dashboard.time_range_days setting. --json prints the report as JSON and
--output writes that JSON to a file instead.`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().IntP("days", "d", 0, "volume window in days (1, 7 or 30)")
	analyticsCmd.Flags().Bool("json", false, "print JSON")
	analyticsCmd.Flags().StringP("output", "o", "", "write the JSON report to a file")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	days, err := analyticsDays(cmd)
	if err != nil {
		return err
	}

	report, err := inbox.Analytics(cmd.Context(), days)
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := writeJSON(f, report); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", output, err)
		}
		cmd.Printf("Analytics written to %s\n", output)
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	printReport(cmd, report)
	return nil
}

// analyticsDays resolves --days, falling back to the configured range.
func analyticsDays(cmd *cobra.Command) (domain.TimeRange, error) {
	days, _ := cmd.Flags().GetInt("days")
	if days != 0 {
		r := domain.TimeRange(days)
		if !r.IsValid() {
			return 0, fmt.Errorf("%w: --days must be 1, 7 or 30", domain.ErrInvalidInput)
		}
		return r, nil
	}

	settings, err := settingsService()
	if err != nil {
		return domain.RangeWeek, nil
	}
	s, err := settings.Get()
	if err != nil || !s.Dashboard.TimeRange.IsValid() {
		return domain.RangeWeek, nil
	}
	return s.Dashboard.TimeRange, nil
}

func printReport(cmd *cobra.Command, report *domain.AnalyticsReport) {
	snap := report.Snapshot

	cmd.Println("Inbox")
	cmd.Println("=====")
	cmd.Printf("  Total Emails:    %d\n", snap.TotalEmails)
	cmd.Printf("  Urgent:          %d\n", snap.UrgentEmails)
	cmd.Printf("  Resolved:        %d\n", snap.ResolvedEmails)
	cmd.Printf("  Pending:         %d\n", snap.PendingEmails)
	cmd.Println()

	cmd.Println("Response Metrics")
	cmd.Println("================")
	cmd.Printf("  Avg Response:    %s\n", snap.AvgResponseLabel())
	cmd.Printf("  Resolution Rate: %s\n", snap.ResolutionRateLabel())
	cmd.Printf("  Satisfaction:    %s\n", snap.SatisfactionLabel())
	cmd.Println()

	cmd.Printf("Email Volume (%s)\n", report.Days.Label())
	cmd.Println("============")
	if len(report.Volume) == 0 {
		cmd.Println("  No emails in this period.")
	}
	peak := 0
	for _, p := range report.Volume {
		peak = max(peak, p.Count)
	}
	for _, p := range report.Volume {
		cmd.Printf("  %s %s %d\n", p.Date.Format(time.DateOnly), bar(p.Count, peak), p.Count)
	}
	cmd.Println()

	cmd.Println("Sentiment")
	cmd.Println("=========")
	for _, c := range domain.SentimentDistribution(report.Sentiment) {
		cmd.Printf("  %-9s %d\n", c.Sentiment, c.Count)
	}
}

// bar scales count against peak into a run of block characters.
func bar(count, peak int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	n := max(count*barWidth/peak, 1)
	return strings.Repeat("█", n)
}
