// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Every YaMDb primary key is a UUIDv7, so rows inserted later sort later and
// B-tree indexes stay append-mostly.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
// Path parameters are checked with it before they reach a query, so a typo
// surfaces as NOT_FOUND instead of a uuid cast failure in Postgres.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}
