// Package ledger keeps the shop's single cash balance.
//
// The balance is never negative: a debit larger than the balance empties
// it instead of failing. Callers detect bankruptcy by checking for a
// zero balance.
package ledger

import (
	"time"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// Entry is one journal record. Applied differs from Requested only for
// debits that hit the zero floor.
type Entry struct {
	Kind      EntryKind
	Requested decimal.Decimal
	Applied   decimal.Decimal
	Balance   decimal.Decimal
	Reason    string
	At        time.Time
}

// Ledger is not safe for concurrent use on its own
type Ledger struct {
	balance decimal.Decimal
	journal []Entry
	now     func() time.Time
}

// New creates a ledger holding initialBalance
func New(initialBalance decimal.Decimal) (*Ledger, error) {
	if initialBalance.IsNegative() {
		return nil, apperror.InvalidArgument("initial balance cannot be negative, got %s", initialBalance)
	}
	return &Ledger{balance: initialBalance, now: time.Now}, nil
}

// WithClock replaces the journal timestamp source
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Balance returns the current balance
func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// Credit adds amount to the balance
func (l *Ledger) Credit(amount decimal.Decimal, reason string) error {
	if amount.IsNegative() {
		return apperror.InvalidArgument("credit amount cannot be negative, got %s", amount)
	}
	l.balance = l.balance.Add(amount)
	l.record(EntryCredit, amount, amount, reason)
	return nil
}

// Debit subtracts amount from the balance, stopping at zero. It returns
// the amount actually taken.
func (l *Ledger) Debit(amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, apperror.InvalidArgument("debit amount cannot be negative, got %s", amount)
	}

	applied := amount
	if amount.GreaterThan(l.balance) {
		applied = l.balance
	}
	l.balance = l.balance.Sub(applied)
	l.record(EntryDebit, amount, applied, reason)
	return applied, nil
}

// CanAfford reports whether the balance covers amount
func (l *Ledger) CanAfford(amount decimal.Decimal) bool {
	return l.balance.GreaterThanOrEqual(amount)
}

// IsBankrupt reports whether the balance has run out
func (l *Ledger) IsBankrupt() bool {
	return !l.balance.IsPositive()
}

// Entries returns a copy of the journal, oldest first
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.journal))
	copy(out, l.journal)
	return out
}

func (l *Ledger) record(kind EntryKind, requested, applied decimal.Decimal, reason string) {
	l.journal = append(l.journal, Entry{
		Kind:      kind,
		Requested: requested,
		Applied:   applied,
		Balance:   l.balance,
		Reason:    reason,
		At:        l.now(),
	})
}
