// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

// Package user implements the user account domain: the entity, its
// persistence, the merge strategy for partial updates, and the HTTP
// surface built on the generic CRUD layer.
package user

import (
	"time"

	"github.com/corven-io/corven/internal/platform/crud"
	"github.com/corven-io/corven/pkg/uuidv7"
)

// User is a registered account. Username and email are unique across all
// records, including soft-deleted ones, so a removed account still
// reserves its identity.
type User struct {
	crud.Base[string]

	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
}

// FullName returns the display name, falling back to the username when
// no name was provided.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// Mapper binds User to the users table for the generic postgres store.
type Mapper struct{}

func (Mapper) Table() string { return "users" }

func (Mapper) Columns() []string {
	return []string{
		"username",
		"email",
		"password_hash",
		"first_name",
		"last_name",
		"phone_number",
		"birth_date",
	}
}

func (Mapper) Values(u *User) []any {
	return []any{
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.BirthDate,
	}
}

func (Mapper) New() *User { return &User{} }

func (Mapper) ScanDests(u *User) []any {
	return []any{
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.BirthDate,
	}
}

func (Mapper) NewID() string { return uuidv7.New() }
