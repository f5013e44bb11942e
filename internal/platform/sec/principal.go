// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package sec

// AuthorityUser is the single authority granted to every authenticated
// account. The platform performs authentication only; all users share
// one role.
const AuthorityUser = "ROLE_USER"

// Principal is the resolved authenticated identity attached to a request.
//
// It is a transient, request-scoped value: never persisted, recomputed on
// every request from the token's subject plus a fresh credential lookup.
type Principal struct {
	// Username is the token subject the principal was resolved from.
	Username string `json:"username"`

	// Authorities is the fixed authority set (always [AuthorityUser]).
	Authorities []string `json:"authorities"`

	// Enabled mirrors the credential record's active flag at resolution
	// time. A disabled principal is still constructed; enforcement is the
	// gate's responsibility, not the resolver's.
	Enabled bool `json:"enabled"`
}

// NewPrincipal constructs a [Principal] with the standard authority set.
func NewPrincipal(username string, enabled bool) *Principal {
	return &Principal{
		Username:    username,
		Authorities: []string{AuthorityUser},
		Enabled:     enabled,
	}
}
