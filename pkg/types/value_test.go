package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), "kind %q should be valid", k)
	}
	assert.False(t, Kind("blob").Valid())
	assert.False(t, Kind("").Valid())
}

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Value
	}{
		{"string", StringValue("Cash"), Value{Kind: KindString, Text: "Cash"}},
		{"reference", ReferenceValue(42), Value{Kind: KindReference, Int: 42}},
		{"integer", IntegerValue(-3), Value{Kind: KindInteger, Int: -3}},
		{"amount", AmountValue(Amount(1500)), Value{Kind: KindAmount, Int: 1500}},
		{"date", DateValue(Date{Year: 2024, Month: 1, Day: 15}), Value{Kind: KindDate, Text: "2024-01-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v)
		})
	}
}

func TestValueAccessors(t *testing.T) {
	assert.Equal(t, int64(42), ReferenceValue(42).Ref())
	assert.Equal(t, Amount(-500), AmountValue(-500).Amount())

	d, err := DateValue(Date{Year: 2024, Month: 2, Day: 29}).Date()
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: 2, Day: 29}, d)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", d.String())

	_, err = ParseDate("15/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAmountSign(t *testing.T) {
	assert.True(t, Amount(500).IsDebit())
	assert.True(t, Amount(-500).IsCredit())
	assert.True(t, Amount(0).IsZero())
	assert.False(t, Amount(0).IsDebit())
	assert.False(t, Amount(0).IsCredit())
}
