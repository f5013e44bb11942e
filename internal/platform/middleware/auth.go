// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/ctxutil"
	"github.com/corven-io/corven/internal/platform/respond"
	"github.com/corven-io/corven/internal/platform/sec"
)

// PrincipalResolver defines the interface needed to authenticate requests.
//
// # Why an interface?
//
// Defining PrincipalResolver here decouples the middleware from the auth
// service implementation, allowing us to easily inject fakes during unit testing.
type PrincipalResolver interface {
	// ResolvePrincipal verifies the token and resolves its subject against
	// the credential store. It must only succeed for tokens whose subject
	// still resolves to an existing account.
	ResolvePrincipal(ctx context.Context, token string) (*sec.Principal, error)
}

// BearerConfig carries the header name and scheme label the gate reads the
// token from. Both are fixed at process start.
type BearerConfig struct {
	Header string // e.g. "Authorization"
	Scheme string // e.g. "Bearer"
}

// Authenticate extracts and verifies the bearer token on every request.
//
// # Flow
//  1. Read the configured header. Absence is not an error: the request
//     proceeds as anonymous.
//  2. A value without the configured scheme prefix also means anonymous.
//  3. On a well-formed bearer value, resolve the principal and attach it
//     to the request context for downstream use.
//  4. Any failure during resolution downgrades the request to anonymous
//     rather than rejecting it. Downstream guards (RequireAuth) decide
//     whether a missing identity is acceptable.
//
// The request is always forwarded to the next handler, whatever the
// authentication outcome.
func Authenticate(cfg BearerConfig, resolver PrincipalResolver) func(http.Handler) http.Handler {
	prefix := cfg.Scheme + " "

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			headerValue := request.Header.Get(cfg.Header)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if headerValue == "" || !strings.HasPrefix(headerValue, prefix) {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Principal Resolution ───────────────────────────────────────
			token := headerValue[len(prefix):]
			principal, err := resolver.ResolvePrincipal(request.Context(), token)
			if err != nil {
				// Fail open: an expired, forged, or orphaned token is treated
				// as no identity at all. The original request (with a clean,
				// principal-free context) continues down the chain.
				ctxutil.GetLogger(request.Context()).Log(request.Context(), slog.LevelDebug,
					"authentication_downgraded_to_anonymous",
					slog.String("reason", err.Error()),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if a [*sec.Principal] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
//  3. If the principal is disabled (soft-deleted account), abort with 401
//     as well: an inactive account must not act.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		if !principal.Enabled {
			respond.Error(writer, request, apperr.Unauthorized("Account is disabled"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetPrincipal retrieves the [*sec.Principal] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.Principal] if the request is authenticated.
//   - nil if the request is anonymous.
func GetPrincipal(ctx context.Context) *sec.Principal {
	return ctxutil.GetPrincipal(ctx)
}
