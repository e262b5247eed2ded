package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "", UserSafeMessage(nil))
	assert.Equal(t, "Please select a date range", UserSafeMessage(NewValidationError("dateRange", "Please select a date range")))

	network := &NetworkError{Op: "list merchants", Status: 503}
	assert.Equal(t, "The portal service is unavailable. Please try again.", UserSafeMessage(fmt.Errorf("load: %w", network)))
	assert.True(t, IsRemote(&MalformedResponseError{Op: "dashboard", Err: errors.New("bad json")}))
	assert.False(t, IsRemote(errors.New("plain")))
	assert.Equal(t, "Something went wrong.", UserSafeMessage(errors.New("plain")))
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "export report", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "export report")
}
