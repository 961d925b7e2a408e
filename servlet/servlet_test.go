package servlet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robertvazan/hookless-servlets/http"
	"github.com/robertvazan/hookless-servlets/http/status"
)

func request(method string) *http.Request {
	return http.NewRequest().SetMethod(method)
}

func TestServiceDefaultsTo405(t *testing.T) {
	s := New()

	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "TRACE", "PATCH", "FROBNICATE"} {
		resp := s.Service(request(m))
		require.Equal(t, status.MethodNotAllowed, resp.Status(), m)
		require.Equal(t, "no-cache, no-store", resp.Headers().Value("Cache-Control"), m)
	}
}

func TestHeadDefersToGet(t *testing.T) {
	s := New().Get(func(r *http.Request) *http.Response {
		return http.NewResponse().String("body")
	})

	resp := s.Service(request("HEAD"))
	require.Equal(t, status.OK, resp.Status())
	require.Equal(t, 0, resp.Body().Remaining())
}

func TestHeadWithoutGetStays405(t *testing.T) {
	s := New()
	resp := s.Service(request("HEAD"))
	require.Equal(t, status.MethodNotAllowed, resp.Status())
}

func TestOptionsReflectsDeclaredGet(t *testing.T) {
	s := New().Get(func(r *http.Request) *http.Response { return http.NewResponse() })

	resp := s.Service(request("OPTIONS"))
	require.Equal(t, status.OK, resp.Status())
	require.Equal(t, "GET, HEAD, OPTIONS", resp.Headers().Value("Allow"))
	require.Equal(t, "no-cache, no-store", resp.Headers().Value("Cache-Control"))
}

func TestOptionsWithNothingDeclared(t *testing.T) {
	s := New()
	resp := s.Service(request("OPTIONS"))
	require.Equal(t, "OPTIONS", resp.Headers().Value("Allow"))
}

func TestOptionsReflectsDirectHeadWithoutGet(t *testing.T) {
	s := New().Head(func(r *http.Request) *http.Response { return http.NewResponse() })
	resp := s.Service(request("OPTIONS"))
	require.Equal(t, "HEAD, OPTIONS", resp.Headers().Value("Allow"))
}

func TestCustomOptionsOverridesDefault(t *testing.T) {
	custom := http.NewResponse().String("custom")
	s := New().Options(func(r *http.Request) *http.Response { return custom })

	resp := s.Service(request("OPTIONS"))
	require.Same(t, custom, resp)
}

func TestServicePureAcrossInvocations(t *testing.T) {
	calls := 0
	s := New().Get(func(r *http.Request) *http.Response {
		calls++
		return http.NewResponse()
	})

	req := request("GET")
	s.Service(req)
	s.Service(req)
	require.Equal(t, 2, calls)
}
