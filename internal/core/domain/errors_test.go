package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrNotFound, ErrInvalidInput, ErrValidation, ErrNetwork, ErrUnknownResource,
		ErrSessionClosed, ErrActionPending, ErrNoResponse, ErrAlreadySent, ErrSurfaceBusy,
	}
	for i := range errs {
		for j := range errs {
			if i != j {
				assert.False(t, errors.Is(errs[i], errs[j]), "%v should not match %v", errs[i], errs[j])
			}
		}
	}
}

func TestRequestError_StatusMessage(t *testing.T) {
	err := &RequestError{Method: "GET", Resource: "emails", StatusCode: 503}

	assert.Equal(t, "GET emails: unexpected status 503", err.Error())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestRequestError_TransportMessage(t *testing.T) {
	err := &RequestError{Method: "POST", Resource: "responses/r1/send", Err: context.DeadlineExceeded}

	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestError_Wrapped(t *testing.T) {
	err := fmt.Errorf("fetch emails: %w", &RequestError{Method: "GET", Resource: "emails", StatusCode: 500})

	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 500, reqErr.StatusCode)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&RequestError{Method: "GET", Resource: "emails/x", StatusCode: 404}))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.False(t, IsNotFound(&RequestError{Method: "GET", Resource: "emails", StatusCode: 500}))
	assert.False(t, IsNotFound(errors.New("other")))
}
