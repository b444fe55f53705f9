package types

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies which typed attribute table a value belongs to.
type Kind string

// The five attribute kinds. The set is closed: attributes are a small closed
// set of variants, not open inheritance. The kinds are independent
// namespaces; the same attribute name may appear in more than one kind's
// table for the same resource.
const (
	KindString    Kind = "string"
	KindReference Kind = "reference"
	KindInteger   Kind = "integer"
	KindAmount    Kind = "amount"
	KindDate      Kind = "date"
)

// Kinds lists all attribute kinds for enumeration.
var Kinds = []Kind{KindString, KindReference, KindInteger, KindAmount, KindDate}

// validKinds is the set of recognized kind values.
var validKinds = map[Kind]bool{
	KindString:    true,
	KindReference: true,
	KindInteger:   true,
	KindAmount:    true,
	KindDate:      true,
}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// Value errors.
var (
	ErrInvalidKind = errors.New("invalid attribute kind")
	ErrInvalidDate = errors.New("invalid date")
)

// Amount is a signed quantity in minor currency units. Debits are positive,
// credits are negative. No floating point anywhere.
type Amount int64

// IsDebit reports whether the amount is a debit amount.
func (a Amount) IsDebit() bool { return a > 0 }

// IsCredit reports whether the amount is a credit amount.
func (a Amount) IsCredit() bool { return a < 0 }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// dateLayout is the stored form of a Date.
const dateLayout = "2006-01-02"

// Date is a civil date without a time zone, stored as YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
// Returns ErrInvalidDate on malformed input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Value is the tagged union carried by attribute operations. Exactly one of
// the payload fields is meaningful, selected by Kind: Text for string and
// date kinds, Int for reference, integer, and amount kinds.
type Value struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
	Int  int64  `json:"int,omitempty"`
}

// StringValue builds a string-kind value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// ReferenceValue builds a reference-kind value naming another resource id.
func ReferenceValue(id int64) Value {
	return Value{Kind: KindReference, Int: id}
}

// IntegerValue builds an integer-kind value.
func IntegerValue(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// AmountValue builds an amount-kind value in minor currency units.
func AmountValue(a Amount) Value {
	return Value{Kind: KindAmount, Int: int64(a)}
}

// DateValue builds a date-kind value.
func DateValue(d Date) Value {
	return Value{Kind: KindDate, Text: d.String()}
}

// Ref returns the referenced resource id of a reference-kind value.
func (v Value) Ref() int64 { return v.Int }

// Amount returns the amount payload of an amount-kind value.
func (v Value) Amount() Amount { return Amount(v.Int) }

// Date returns the date payload of a date-kind value.
func (v Value) Date() (Date, error) { return ParseDate(v.Text) }
