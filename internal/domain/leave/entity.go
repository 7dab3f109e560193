package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind enum
type Kind string

const (
	KindAnnual       Kind = "annual"
	KindSick         Kind = "sick"
	KindSubstitute   Kind = "substitute"
	KindCompensatory Kind = "compensatory"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAnnual, KindSick, KindSubstitute, KindCompensatory:
		return true
	}
	return false
}

// Earned kinds accrue from weekend and holiday work instead of grants.
func (k Kind) Earned() bool {
	return k == KindSubstitute || k == KindCompensatory
}

// TransactionType enum
type TransactionType string

const (
	TransactionGrant TransactionType = "grant"
	TransactionDebit TransactionType = "debit"
)

// One leave day is eight hours; half a day is the smallest debit unit.
const (
	MinutesPerDay      int64 = 480
	MinimumUnitMinutes int64 = 240
)

// Transaction is one append-only ledger row. Quantities are minutes.
type Transaction struct {
	ID         string
	EmployeeID string
	Kind       Kind
	Type       TransactionType
	Minutes    int64
	Reference  *string
	CreatedAt  time.Time
}

// LedgerTotals sums grants and debits per kind.
type LedgerTotals struct {
	Granted map[Kind]int64
	Debited map[Kind]int64
}

func NewLedgerTotals() LedgerTotals {
	return LedgerTotals{Granted: map[Kind]int64{}, Debited: map[Kind]int64{}}
}

// EarnedMinutes is the sum of per-day credits on the employee's work summaries.
type EarnedMinutes struct {
	Substitute   int64
	Compensatory int64
}

// LeaveBalance is derived, never stored.
type LeaveBalance struct {
	EmployeeID             string
	AnnualDays             decimal.Decimal
	UsedAnnualDays         decimal.Decimal
	SickDays               decimal.Decimal
	UsedSickDays           decimal.Decimal
	SubstituteLeaveHours   decimal.Decimal
	CompensatoryLeaveHours decimal.Decimal
}

// RejectReason enum
type RejectReason string

const (
	RejectInsufficientBalance RejectReason = "insufficient_balance"
	RejectInvalidUnit         RejectReason = "invalid_unit"
)

// DebitResult reports a debit decision. A rejection is not an error.
type DebitResult struct {
	Approved    bool
	Reason      RejectReason
	Requested   decimal.Decimal
	Available   decimal.Decimal
	Balance     LeaveBalance
	Transaction *Transaction
}
