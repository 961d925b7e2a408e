package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robertvazan/hookless-servlets/http/status"
)

func TestResponseDefaults(t *testing.T) {
	r := NewResponse()
	require.Equal(t, status.OK, r.Status())
	require.True(t, r.Headers().Empty())
	require.Empty(t, r.Cookies())
	require.Equal(t, 0, r.Body().Remaining())
}

func TestResponseJSON(t *testing.T) {
	r := NewResponse()
	resp, err := r.TryJSON([]int{1, 2, 3})
	require.NoError(t, err)

	body := resp.Body()
	require.Equal(t, "[1,2,3]", string(body.Data[body.Pos:body.Limit]))
	require.Equal(t, "application/json", resp.Headers().Value("Content-Type"))
}

func TestResponseError(t *testing.T) {
	r := NewResponse().Error(status.ErrGatewayTimeout)
	require.Equal(t, status.GatewayTimeout, r.Status())
}

func TestResponseErrorNil(t *testing.T) {
	r := NewResponse().Error(nil)
	require.Equal(t, status.OK, r.Status())
}

func TestBodyDuplicateIsIndependent(t *testing.T) {
	body := NewBody([]byte("hello"))
	dup := body.Duplicate()
	dup.Pos = 3

	require.Equal(t, 0, body.Pos)
	require.Equal(t, 3, dup.Pos)
	require.Equal(t, 2, dup.Remaining())
}

func TestDefaultResponses(t *testing.T) {
	require.Equal(t, status.MethodNotAllowed, NewDisallowed().Status())
	require.Equal(t, "no-cache, no-store", NewDisallowed().Headers().Value("Cache-Control"))
	require.Equal(t, status.InternalServerError, NewServiceError().Status())
	require.Equal(t, status.GatewayTimeout, NewTimeout().Status())
}
