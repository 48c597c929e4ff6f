package core

import (
	"errors"
	"strings"
	"time"
)

// Direction is the money-flow direction of a transaction.
type Direction string

const (
	DirectionIncome Direction = "INCOME"
	DirectionOutgo  Direction = "OUTGO"
)

var (
	ErrInvalidDirection = errors.New("invalid transaction direction")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountTooLarge   = errors.New("amount exceeds the storage cap")
	ErrEmptyName        = errors.New("empty transaction name")
	ErrInvalidDate      = errors.New("invalid transaction date")
	ErrCategoryRequired = errors.New("outgoing transactions require a category")
)

// ParseDirection normalizes a form value into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionIncome:
		return DirectionIncome, nil
	case DirectionOutgo:
		return DirectionOutgo, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Label returns the display name for the direction.
func (d Direction) Label() string {
	switch d {
	case DirectionIncome:
		return "Income"
	case DirectionOutgo:
		return "Outgoing"
	default:
		return string(d)
	}
}

// TransactionDraft carries validated user input for creating or updating a
// transaction. CategoryID is nil for uncategorized entries.
type TransactionDraft struct {
	Name          string
	Direction     Direction
	AmountInCents int64
	CategoryID    *uint
	OccurredOn    time.Time
	Note          string
}

// Validate enforces the domain invariants: a non-empty name, a known
// direction, a positive capped amount, a real date, and a category on every
// outgoing transaction. Income never keeps a category, whatever was
// submitted.
func (d *TransactionDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Direction != DirectionIncome && d.Direction != DirectionOutgo {
		return ErrInvalidDirection
	}
	if d.AmountInCents <= 0 {
		return ErrInvalidAmount
	}
	if d.AmountInCents > MaxMinorUnits {
		return ErrAmountTooLarge
	}
	if d.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if d.Direction == DirectionOutgo && d.CategoryID == nil {
		return ErrCategoryRequired
	}
	if d.Direction == DirectionIncome {
		d.CategoryID = nil
	}
	return nil
}
