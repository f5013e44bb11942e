// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

/*
Package crud implements the generic entity/store/service/handler hierarchy
that every Corven collection is built on.

It provides soft-delete semantics and active-record filtering once, so that
concrete entities only contribute their own columns, validation, and an
update-merge strategy.

Architecture:

  - Entity/Base: lifecycle fields shared by every persisted record.
  - Store: the generic persistence contract (Postgres and in-memory impls).
  - Service: transaction-scoped operations with an injected merge step.
  - Handler: the reusable HTTP surface for the five CRUD primitives.
*/
package crud

import "time"

// Entity is the capability every persisted record must provide.
//
// It is satisfied by embedding [Base]; concrete entities never implement
// these methods by hand.
type Entity[ID comparable] interface {
	GetID() ID
	SetID(id ID)
	GetCreatedAt() time.Time
	MarkCreated(now time.Time)
	GetUpdatedAt() *time.Time
	MarkUpdated(now time.Time)
	IsActive() bool
	SetActive(active bool)

	// hydrate restores lifecycle state when scanning a persisted row.
	// Unexported so that it can only be satisfied by embedding [Base].
	hydrate(createdAt time.Time, updatedAt *time.Time, active bool)
}

// Base carries the lifecycle attributes shared by all entities.
//
// # Invariants
//
//   - ID is assigned exactly once, on creation, and never reused.
//   - CreatedAt is set exactly once, at creation.
//   - UpdatedAt is nil until the first mutation and refreshed on every
//     subsequent one.
//   - Active defaults to true at creation; soft delete flips it to false
//     without removing the row.
type Base[ID comparable] struct {
	ID        ID         `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Active    bool       `json:"active"`
}

// GetID returns the entity's identifier.
func (b *Base[ID]) GetID() ID { return b.ID }

// SetID assigns the identifier. Stores call this exactly once, on creation.
func (b *Base[ID]) SetID(id ID) { b.ID = id }

// GetCreatedAt returns the creation timestamp.
func (b *Base[ID]) GetCreatedAt() time.Time { return b.CreatedAt }

// MarkCreated stamps the creation time and applies creation defaults:
// active true, no update timestamp yet.
func (b *Base[ID]) MarkCreated(now time.Time) {
	b.CreatedAt = now
	b.UpdatedAt = nil
	b.Active = true
}

// GetUpdatedAt returns the last mutation time, or nil if never mutated.
func (b *Base[ID]) GetUpdatedAt() *time.Time { return b.UpdatedAt }

// MarkUpdated refreshes the mutation timestamp. CreatedAt is untouched.
func (b *Base[ID]) MarkUpdated(now time.Time) {
	b.UpdatedAt = &now
}

// hydrate restores lifecycle fields from a persisted row without applying
// creation defaults.
func (b *Base[ID]) hydrate(createdAt time.Time, updatedAt *time.Time, active bool) {
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
	b.Active = active
}

// IsActive reports whether the record is in the default visible state.
func (b *Base[ID]) IsActive() bool { return b.Active }

// SetActive flips the soft-delete flag.
func (b *Base[ID]) SetActive(active bool) { b.Active = active }
