package sys

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/disgoorg/disgo/rest"
	"github.com/stretchr/testify/assert"
)

func restStatusErr(code int) error {
	return &rest.Error{Response: &http.Response{StatusCode: code}}
}

func TestRestErrorClassification(t *testing.T) {
	assert.True(t, IsForbidden(restStatusErr(http.StatusForbidden)))
	assert.True(t, IsNotFound(restStatusErr(http.StatusNotFound)))
	assert.True(t, IsRateLimited(restStatusErr(http.StatusTooManyRequests)))

	assert.False(t, IsForbidden(restStatusErr(http.StatusNotFound)))
	assert.False(t, IsNotFound(restStatusErr(http.StatusForbidden)))
	assert.False(t, IsRateLimited(restStatusErr(http.StatusForbidden)))
}

func TestRestErrorClassification_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("sending message: %w", restStatusErr(http.StatusForbidden))
	assert.True(t, IsForbidden(wrapped))
}

func TestRestErrorClassification_PlainErrors(t *testing.T) {
	assert.False(t, IsForbidden(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsRateLimited(&rest.Error{}))
}
