package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

func TestRespondGenerate(t *testing.T) {
	inbox := &MockInboxService{
		GenerateResponseFunc: func(_ context.Context, emailID string) (*domain.Response, error) {
			return &domain.Response{ID: "r9", EmailID: emailID, Content: "Happy to help.", Tone: "friendly"}, nil
		},
	}

	out, err := execute(t, testServices(inbox), "respond", "generate", "e1")

	require.NoError(t, err)
	assert.Contains(t, out, "Response Generated")
	assert.Contains(t, out, "[Response r9 - Draft]")
	assert.Contains(t, out, "Happy to help.")
}

func TestRespondGenerate_Error(t *testing.T) {
	inbox := &MockInboxService{
		GenerateResponseFunc: func(context.Context, string) (*domain.Response, error) {
			return nil, &domain.RequestError{Method: "POST", Resource: "emails/e1/generate-response", StatusCode: 502}
		},
	}

	_, err := execute(t, testServices(inbox), "respond", "generate", "e1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "failed to generate response")
}

func TestRespondEdit_Content(t *testing.T) {
	var gotID, gotContent string
	inbox := &MockInboxService{
		UpdateResponseFunc: func(_ context.Context, emailID, content string) (*domain.Response, error) {
			gotID, gotContent = emailID, content
			return &domain.Response{ID: "r1", EmailID: emailID, Content: content}, nil
		},
	}

	out, err := execute(t, testServices(inbox), "respond", "edit", "e1", "--content", "  New text  ")

	require.NoError(t, err)
	assert.Equal(t, "e1", gotID)
	assert.Equal(t, "New text", gotContent)
	assert.Contains(t, out, "Response Updated")
}

func TestRespondEdit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("From a file\n"), 0600))

	var gotContent string
	inbox := &MockInboxService{
		UpdateResponseFunc: func(_ context.Context, emailID, content string) (*domain.Response, error) {
			gotContent = content
			return &domain.Response{ID: "r1", EmailID: emailID, Content: content}, nil
		},
	}

	_, err := execute(t, testServices(inbox), "respond", "edit", "e1", "--file", path)

	require.NoError(t, err)
	assert.Equal(t, "From a file", gotContent)
}

func TestRespondEdit_Stdin(t *testing.T) {
	var gotContent string
	inbox := &MockInboxService{
		UpdateResponseFunc: func(_ context.Context, emailID, content string) (*domain.Response, error) {
			gotContent = content
			return &domain.Response{ID: "r1", EmailID: emailID, Content: content}, nil
		},
	}

	_, err := executeWithInput(t, testServices(inbox), "Piped reply\n", "respond", "edit", "e1", "-f", "-")

	require.NoError(t, err)
	assert.Equal(t, "Piped reply", gotContent)
}

func TestRespondEdit_Rejected(t *testing.T) {
	called := false
	inbox := &MockInboxService{
		UpdateResponseFunc: func(context.Context, string, string) (*domain.Response, error) {
			called = true
			return nil, nil
		},
	}

	tests := []struct {
		name string
		args []string
	}{
		{"blank content", []string{"--content", "   "}},
		{"no content", nil},
		{"both sources", []string{"--content", "x", "--file", "y"}},
		{"missing file", []string{"--file", filepath.Join(t.TempDir(), "absent.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, testServices(inbox), append([]string{"respond", "edit", "e1"}, tt.args...)...)
			assert.Error(t, err)
		})
	}

	_, err := execute(t, testServices(inbox), "respond", "edit", "e1", "--content", "\n\t")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called)
}

func TestRespondSend(t *testing.T) {
	out, err := execute(t, testServices(&MockInboxService{}), "respond", "send", "e1")

	require.NoError(t, err)
	assert.Contains(t, out, "Response Sent: response r1 for email e1 has been sent successfully.")
}

func TestRespondSend_AlreadySent(t *testing.T) {
	inbox := &MockInboxService{
		SendResponseFunc: func(context.Context, string) (*domain.Response, error) {
			return nil, domain.ErrAlreadySent
		},
	}

	_, err := execute(t, testServices(inbox), "respond", "send", "e1")

	assert.ErrorIs(t, err, domain.ErrAlreadySent)
}
