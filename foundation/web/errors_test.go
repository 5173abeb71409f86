package web

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestErrorKeepsSentinel(t *testing.T) {
	sentinel := errors.New("row not found")

	err := NewRequestError(errors.Wrap(sentinel, "selecting row"), http.StatusNotFound)

	var webErr *Error
	require.ErrorAs(t, err, &webErr)
	assert.Equal(t, http.StatusNotFound, webErr.Status)
	assert.True(t, errors.Is(err, sentinel))
}

func TestRequestErrorMessage(t *testing.T) {
	err := NewRequestError(errors.New("boom"), http.StatusConflict)
	assert.Equal(t, "boom", err.Error())
}
