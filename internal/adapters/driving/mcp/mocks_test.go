package mcp

import (
	"context"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// mockInboxService is a mock implementation of driving.InboxService.
type mockInboxService struct {
	emails   []domain.Email
	detail   *driving.EmailDetail
	report   *domain.AnalyticsReport
	response *domain.Response
	err      error

	// Recorded arguments.
	filter  domain.Filter
	days    domain.TimeRange
	emailID string
	content string
}

func (m *mockInboxService) ListEmails(_ context.Context, filter domain.Filter) ([]domain.Email, error) {
	m.filter = filter
	return m.emails, m.err
}

func (m *mockInboxService) GetEmail(_ context.Context, id string) (*driving.EmailDetail, error) {
	m.emailID = id
	return m.detail, m.err
}

func (m *mockInboxService) Analytics(_ context.Context, days domain.TimeRange) (*domain.AnalyticsReport, error) {
	m.days = days
	return m.report, m.err
}

func (m *mockInboxService) GenerateResponse(_ context.Context, emailID string) (*domain.Response, error) {
	m.emailID = emailID
	return m.response, m.err
}

func (m *mockInboxService) UpdateResponse(_ context.Context, emailID, content string) (*domain.Response, error) {
	m.emailID = emailID
	m.content = content
	return m.response, m.err
}

func (m *mockInboxService) SendResponse(_ context.Context, emailID string) (*domain.Response, error) {
	m.emailID = emailID
	return m.response, m.err
}

func (m *mockInboxService) Refresh() {}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) { return m.settings, m.err }

func (m *mockSettingsService) Save(_ *domain.Settings) error { return m.err }

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) List() ([]driving.Setting, error) { return nil, m.err }

func (m *mockSettingsService) Path() string { return "" }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }
