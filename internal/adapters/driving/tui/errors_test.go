package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingDashboardService.Error(), ErrInvalidPorts.Error())
}

func TestErrors_Prefixed(t *testing.T) {
	assert.Contains(t, ErrMissingDashboardService.Error(), "tui: dashboard service")
	assert.Contains(t, ErrInvalidPorts.Error(), "tui:")
}
