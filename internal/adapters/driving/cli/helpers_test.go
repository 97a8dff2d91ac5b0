package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/deskpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
	"github.com/custodia-labs/deskpilot/internal/core/services"
)

// MockInboxService implements driving.InboxService for CLI tests.
type MockInboxService struct {
	ListEmailsFunc       func(ctx context.Context, filter domain.Filter) ([]domain.Email, error)
	GetEmailFunc         func(ctx context.Context, id string) (*driving.EmailDetail, error)
	AnalyticsFunc        func(ctx context.Context, days domain.TimeRange) (*domain.AnalyticsReport, error)
	GenerateResponseFunc func(ctx context.Context, emailID string) (*domain.Response, error)
	UpdateResponseFunc   func(ctx context.Context, emailID, content string) (*domain.Response, error)
	SendResponseFunc     func(ctx context.Context, emailID string) (*domain.Response, error)
	Refreshed            int
}

func (m *MockInboxService) ListEmails(ctx context.Context, filter domain.Filter) ([]domain.Email, error) {
	if m.ListEmailsFunc != nil {
		return m.ListEmailsFunc(ctx, filter)
	}
	return []domain.Email{}, nil
}

func (m *MockInboxService) GetEmail(ctx context.Context, id string) (*driving.EmailDetail, error) {
	if m.GetEmailFunc != nil {
		return m.GetEmailFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockInboxService) Analytics(ctx context.Context, days domain.TimeRange) (*domain.AnalyticsReport, error) {
	if m.AnalyticsFunc != nil {
		return m.AnalyticsFunc(ctx, days)
	}
	return &domain.AnalyticsReport{Days: days}, nil
}

func (m *MockInboxService) GenerateResponse(ctx context.Context, emailID string) (*domain.Response, error) {
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, emailID)
	}
	return &domain.Response{ID: "r-new", EmailID: emailID}, nil
}

func (m *MockInboxService) UpdateResponse(ctx context.Context, emailID, content string) (*domain.Response, error) {
	if m.UpdateResponseFunc != nil {
		return m.UpdateResponseFunc(ctx, emailID, content)
	}
	return &domain.Response{ID: "r1", EmailID: emailID, Content: content}, nil
}

func (m *MockInboxService) SendResponse(ctx context.Context, emailID string) (*domain.Response, error) {
	if m.SendResponseFunc != nil {
		return m.SendResponseFunc(ctx, emailID)
	}
	return &domain.Response{ID: "r1", EmailID: emailID, IsSent: true}, nil
}

func (m *MockInboxService) Refresh() {
	m.Refreshed++
}

// testServices returns services backed by the mock inbox and an
// in-memory settings store.
func testServices(inbox *MockInboxService) *Services {
	return &Services{
		Settings: services.NewSettingsService(memory.NewConfigStore()),
		Inbox:    inbox,
	}
}

// execute runs the root command with args against svc and returns
// everything written to stdout and stderr.
func execute(t *testing.T, svc *Services, args ...string) (string, error) {
	t.Helper()

	prevServices, prevBuilder, prevNow := active, builder, now
	active, builder = svc, nil
	now = func() time.Time { return time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		active, builder, now = prevServices, prevBuilder, prevNow
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	// Nil args make cobra fall back to os.Args, which holds test flags.
	if args == nil {
		args = []string{}
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// executeWithInput is execute with stdin set to input.
func executeWithInput(t *testing.T, svc *Services, input string, args ...string) (string, error) {
	t.Helper()
	rootCmd.SetIn(strings.NewReader(input))
	return execute(t, svc, args...)
}

// resetFlags restores every flag in the tree to its default so state
// does not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
