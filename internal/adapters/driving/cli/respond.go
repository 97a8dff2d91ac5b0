package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Generate, edit and send AI responses",
	Long: `Act on the current response of an email.

The current response is the newest one. Each action refreshes the
affected emails, responses and analytics afterwards.`,
}

var respondGenerateCmd = &cobra.Command{
	Use:   "generate [email-id]",
	Short: "Draft a new AI response",
	Args:  cobra.ExactArgs(1),
	RunE:  runRespondGenerate,
}

var respondEditCmd = &cobra.Command{
	Use:   "edit [email-id]",
	Short: "Replace the text of the current response",
	Long: `Replace the text of the current response.

The new text comes from --content, or from --file ("-" reads stdin).
Blank text is rejected before anything is sent to the server.`,
	Args: cobra.ExactArgs(1),
	RunE: runRespondEdit,
}

var respondSendCmd = &cobra.Command{
	Use:   "send [email-id]",
	Short: "Send the current response to the customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runRespondSend,
}

func init() {
	respondEditCmd.Flags().StringP("content", "c", "", "new response text")
	respondEditCmd.Flags().StringP("file", "f", "", "read the response text from a file, or - for stdin")

	respondCmd.AddCommand(respondGenerateCmd)
	respondCmd.AddCommand(respondEditCmd)
	respondCmd.AddCommand(respondSendCmd)
	rootCmd.AddCommand(respondCmd)
}

func runRespondGenerate(cmd *cobra.Command, args []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	resp, err := inbox.GenerateResponse(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to generate response: %w", err)
	}

	cmd.Println("Response Generated: AI response has been generated successfully.")
	cmd.Println()
	printResponse(cmd, resp)
	return nil
}

func runRespondEdit(cmd *cobra.Command, args []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	content, err := editContent(cmd)
	if err != nil {
		return err
	}

	resp, err := inbox.UpdateResponse(cmd.Context(), args[0], content)
	if err != nil {
		return fmt.Errorf("failed to update response: %w", err)
	}

	cmd.Println("Response Updated: Response has been updated successfully.")
	cmd.Println()
	printResponse(cmd, resp)
	return nil
}

// editContent reads the replacement text from --content or --file.
func editContent(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	path, _ := cmd.Flags().GetString("file")

	switch {
	case content != "" && path != "":
		return "", errors.New("use either --content or --file, not both")
	case path == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		content = string(data)
	}

	trimmed, err := domain.ValidateResponseContent(content)
	if err != nil {
		return "", fmt.Errorf("response content is empty: %w", err)
	}
	return trimmed, nil
}

func runRespondSend(cmd *cobra.Command, args []string) error {
	inbox, err := inboxService()
	if err != nil {
		return err
	}

	resp, err := inbox.SendResponse(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	cmd.Printf("Response Sent: response %s for email %s has been sent successfully.\n", resp.ID, args[0])
	return nil
}
