package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"tui", "--help"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "interactive terminal dashboard")
}

func TestTUICmd_RequiresTerminal(t *testing.T) {
	prev := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = prev }()

	_, err := execute(t, testServices(&MockInboxService{}), "tui")
	assert.ErrorIs(t, err, errNoTerminal)

	// The root command opens the dashboard too.
	_, err = execute(t, testServices(&MockInboxService{}))
	assert.ErrorIs(t, err, errNoTerminal)
}

func TestTUICmd_RequiresDashboard(t *testing.T) {
	prev := isTerminal
	isTerminal = func() bool { return true }
	defer func() { isTerminal = prev }()

	_, err := execute(t, testServices(&MockInboxService{}), "tui")

	assert.EqualError(t, err, "dashboard not configured")
}
