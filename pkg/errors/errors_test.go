package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", Clone(ErrNotFound, "document not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "document not found", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("boom")

	appErr := FromError(cause)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "riskThreshold is invalid")

	assert.Equal(t, "riskThreshold is invalid", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, Clone(nil, "x"))
}
