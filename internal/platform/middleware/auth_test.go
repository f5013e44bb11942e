// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/ctxutil"
	"github.com/corven-io/corven/internal/platform/sec"
)

type stubResolver struct {
	principals map[string]*sec.Principal
}

func (resolver *stubResolver) ResolvePrincipal(ctx context.Context, token string) (*sec.Principal, error) {
	if principal, ok := resolver.principals[token]; ok {
		return principal, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired token")
}

func testGate(resolver PrincipalResolver) (http.Handler, *capture) {
	captured := &capture{}
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		captured.principal = GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
	cfg := BearerConfig{Header: "Authorization", Scheme: "Bearer"}
	return Authenticate(cfg, resolver)(next), captured
}

type capture struct {
	principal *sec.Principal
}

func TestAuthenticateMissingHeaderIsAnonymous(t *testing.T) {
	t.Parallel()

	gate, captured := testGate(&stubResolver{})

	recorder := httptest.NewRecorder()
	gate.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured.principal)
}

func TestAuthenticateWrongSchemeIsAnonymous(t *testing.T) {
	t.Parallel()

	gate, captured := testGate(&stubResolver{})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	recorder := httptest.NewRecorder()
	gate.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured.principal)
}

func TestAuthenticateBadTokenDowngradesToAnonymous(t *testing.T) {
	t.Parallel()

	gate, captured := testGate(&stubResolver{})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer junk")

	recorder := httptest.NewRecorder()
	gate.ServeHTTP(recorder, request)

	// The request goes through, just without an identity.
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured.principal)
}

func TestAuthenticateValidTokenAttachesPrincipal(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{principals: map[string]*sec.Principal{
		"good-token": sec.NewPrincipal("alice", true),
	}}
	gate, captured := testGate(resolver)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")

	recorder := httptest.NewRecorder()
	gate.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured.principal)
	assert.Equal(t, "alice", captured.principal.Username)
}

func TestAuthenticateCustomHeaderAndScheme(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{principals: map[string]*sec.Principal{
		"tok": sec.NewPrincipal("alice", true),
	}}
	captured := &capture{}
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		captured.principal = GetPrincipal(request.Context())
	})
	cfg := BearerConfig{Header: "X-Auth-Token", Scheme: "Token"}
	gate := Authenticate(cfg, resolver)(next)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Auth-Token", "Token tok")

	gate.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, captured.principal)
	assert.Equal(t, "alice", captured.principal.Username)
}

func requireAuthHarness() (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reached = true
		writer.WriteHeader(http.StatusOK)
	})
	return RequireAuth(next), &reached
}

func TestRequireAuthBlocksAnonymous(t *testing.T) {
	t.Parallel()

	guard, reached := requireAuthHarness()

	recorder := httptest.NewRecorder()
	guard.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, *reached)
}

func TestRequireAuthBlocksDisabledPrincipal(t *testing.T) {
	t.Parallel()

	guard, reached := requireAuthHarness()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxutil.WithPrincipal(request.Context(), sec.NewPrincipal("alice", false))

	recorder := httptest.NewRecorder()
	guard.ServeHTTP(recorder, request.WithContext(ctx))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, *reached)
}

func TestRequireAuthPassesEnabledPrincipal(t *testing.T) {
	t.Parallel()

	guard, reached := requireAuthHarness()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxutil.WithPrincipal(request.Context(), sec.NewPrincipal("alice", true))

	recorder := httptest.NewRecorder()
	guard.ServeHTTP(recorder, request.WithContext(ctx))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, *reached)
}
