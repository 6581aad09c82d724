// Package shared contains common domain types, errors, events, and value
// objects used across all domain packages.
package shared

import (
	"errors"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// ErrInvalidAccountID indicates a malformed account identifier.
var ErrInvalidAccountID = errors.New("invalid account ID")

// AccountID identifies an account in the remote store. The identity boundary
// supplies it; the core never mints one.
type AccountID string

// IsValid checks that the account ID is non-empty and has no whitespace.
func (a AccountID) IsValid() bool {
	s := string(a)
	return s != "" && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation.
func (a AccountID) String() string {
	return string(a)
}

// NewAccountID creates an AccountID with validation.
func NewAccountID(s string) (AccountID, error) {
	id := AccountID(s)
	if !id.IsValid() {
		return "", ErrInvalidAccountID
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Experience
// ═══════════════════════════════════════════════════════════════════════════

// XP represents cumulative experience points. Monotonically non-decreasing
// at the account level; arithmetic helpers never clamp so callers can
// validate explicitly.
type XP int

// IsValid checks that the XP value is non-negative.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add returns the sum of two XP values.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}

// ═══════════════════════════════════════════════════════════════════════════
// Mastery
// ═══════════════════════════════════════════════════════════════════════════

// Mastery is the 1..5 tier classification of a single attempt.
type Mastery int

// Mastery bounds.
const (
	MasteryMin Mastery = 1
	MasteryMax Mastery = 5
)

// IsValid checks that the mastery tier is within 1..5.
func (m Mastery) IsValid() bool {
	return m >= MasteryMin && m <= MasteryMax
}

// Int returns the underlying int value.
func (m Mastery) Int() int {
	return int(m)
}
