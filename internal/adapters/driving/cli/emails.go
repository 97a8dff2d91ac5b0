package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 100

// now is replaced in tests.
var now = time.Now

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "List and inspect support emails",
}

var emailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emails",
	Long: `List support emails, newest as returned by the API.

Filters are applied locally to the fetched collection:
  --priority   urgent, normal, low or all
  --sentiment  positive, neutral, negative or all
  --status     new, processing, responded, resolved or all
  --query      text matched against sender, subject and body
  --preset     all, urgent or resolved (overrides the filters above)`,
	Args: cobra.NoArgs,
	RunE: runEmailsList,
}

var emailsShowCmd = &cobra.Command{
	Use:   "show [email-id]",
	Short: "Show an email and its responses",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmailsShow,
}

func init() {
	flags := emailsListCmd.Flags()
	flags.String("priority", domain.All, "filter by priority")
	flags.String("sentiment", domain.All, "filter by sentiment")
	flags.String("status", domain.All, "filter by status")
	flags.StringP("query", "q", "", "filter by text")
	flags.String("preset", "", "quick filter: all, urgent or resolved")
	flags.Bool("json", false, "print JSON")

	emailsShowCmd.Flags().Bool("json", false, "print JSON")

	emailsCmd.AddCommand(emailsListCmd)
	emailsCmd.AddCommand(emailsShowCmd)
	rootCmd.AddCommand(emailsCmd)
}

func runEmailsList(cmd *cobra.Command, _ []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	emails, err := inbox.ListEmails(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list emails: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), emails)
	}

	if len(emails) == 0 {
		cmd.Println("No emails match the current filters.")
		return nil
	}

	width := terminalWidth()
	current := now()
	for i := range emails {
		e := &emails[i]
		header := fmt.Sprintf("%-8s  %-7s %-8s %-13s %s",
			e.ShortID(), e.Priority, e.Sentiment, e.Status.Label(), domain.TimeAgo(e.SentDate, current))
		cmd.Println(truncate(header, width))
		cmd.Println(truncate(fmt.Sprintf("  %s  %s", e.Sender, e.Subject), width))
	}
	cmd.Printf("\n%d email(s)\n", len(emails))
	return nil
}

func filterFromFlags(cmd *cobra.Command) (domain.Filter, error) {
	flags := cmd.Flags()
	if preset, _ := flags.GetString("preset"); preset != "" {
		p := domain.Preset(preset)
		switch p {
		case domain.PresetAll, domain.PresetUrgent, domain.PresetResolved:
		default:
			return domain.Filter{}, fmt.Errorf("%w: preset %q", domain.ErrInvalidInput, preset)
		}
		return domain.PresetFilter(p), nil
	}

	f := domain.DefaultFilter()
	f.Priority, _ = flags.GetString("priority")
	f.Sentiment, _ = flags.GetString("sentiment")
	f.Status, _ = flags.GetString("status")
	f.Query, _ = flags.GetString("query")
	f = f.Normalize()
	return f, f.Validate()
}

func runEmailsShow(cmd *cobra.Command, args []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	detail, err := inbox.GetEmail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get email: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), detail)
	}

	printDetail(cmd, detail)
	return nil
}

func printDetail(cmd *cobra.Command, detail *driving.EmailDetail) {
	e := &detail.Email
	cmd.Printf("%s\n", e.Subject)
	cmd.Println(strings.Repeat("=", len([]rune(e.Subject))))
	cmd.Printf("ID:        #%s (%s)\n", e.ShortID(), e.ID)
	cmd.Printf("From:      %s\n", e.Sender)
	cmd.Printf("Received:  %s (%s)\n", e.SentDate.Format(time.RFC1123), domain.TimeAgo(e.SentDate, now()))
	cmd.Printf("Priority:  %s\n", e.Priority.Label())
	cmd.Printf("Sentiment: %s\n", e.Sentiment)
	cmd.Printf("Status:    %s\n", e.Status.Label())
	cmd.Printf("Issue:     %s\n", e.IssueSummary())
	if info := e.ExtractedInfo; info.Present {
		if len(info.ContactDetails) > 0 {
			cmd.Printf("Contacts:  %s\n", strings.Join(info.ContactDetails, ", "))
		}
		if len(info.SentimentKeywords) > 0 {
			cmd.Printf("Sentiment keywords: %s\n", strings.Join(info.SentimentKeywords, ", "))
		}
		if len(info.PriorityKeywords) > 0 {
			cmd.Printf("Priority keywords:  %s\n", strings.Join(info.PriorityKeywords, ", "))
		}
	}
	cmd.Println()
	cmd.Println(e.Body)
	cmd.Println()

	current, ok := detail.Current()
	if !ok {
		cmd.Printf("No response yet. Run 'deskpilot respond generate %s'.\n", e.ID)
		return
	}
	printResponse(cmd, &current)
	if older := len(detail.Responses) - 1; older > 0 {
		cmd.Printf("\n(%d earlier response(s))\n", older)
	}
}

func printResponse(cmd *cobra.Command, r *domain.Response) {
	state := "Draft"
	if r.IsSent {
		state = "Sent"
	}
	cmd.Printf("[Response %s - %s]\n", r.ID, state)
	if r.Tone != "" {
		cmd.Printf("Tone:    %s\n", r.Tone)
	}
	if r.Context != "" {
		cmd.Printf("Context: %s\n", r.Context)
	}
	if r.QualityScore != nil {
		cmd.Printf("Quality: %d%%\n", *r.QualityScore)
	}
	cmd.Println()
	cmd.Println(r.Content)
}

// terminalWidth returns the width of stdout, or defaultWidth.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// truncate shortens s to width runes, ending with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
