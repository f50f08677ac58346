// Package repository implements the relational store behind the API.
// Each repo is a thin struct over *sql.DB; multi-step writes run in a
// transaction opened by the repo itself so callers see one atomic
// operation. The sentinel values defined here let higher layers such
// as handlers distinguish between failure scenarios without string
// matching.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent state, such as deleting a plan that still has
// membership records pointing at it. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when an update targets a row that does not
// exist. Reads report absence with sql.ErrNoRows instead, following
// database/sql convention.
var ErrNotFound = errors.New("not found")
