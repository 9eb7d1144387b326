// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports input that can never be accepted as-is, such as
// an empty name or a malformed slug.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a uniqueness violation, e.g. a duplicate slug.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

// CycleError reports a parent assignment that would close a loop in the
// category tree.
type CycleError struct {
	ID       uuid.UUID
	ParentID uuid.UUID
}

func (e *CycleError) Error() string {
	if e.ID == e.ParentID {
		return fmt.Sprintf("category %s cannot be its own parent", e.ID)
	}
	return fmt.Sprintf("moving category %s under %s would create a cycle", e.ID, e.ParentID)
}

// NotFoundError reports an operation on an id that does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StoreError wraps an underlying persistence failure. The cause is passed
// through untouched.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err as a StoreError unless it already is one of the
// domain errors above.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		ce *ConflictError
		cy *CycleError
		nf *NotFoundError
		se *StoreError
	)
	if errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &cy) ||
		errors.As(err, &nf) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
