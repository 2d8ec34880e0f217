package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want Quantity
	}{
		{"0", 0},
		{"1", 10000},
		{"2.5", 25000},
		{"10.1234", 101234},
		{"10.12345", 101234}, // extra digits truncated
		{"-3.5", -35000},
		{"+7", 70000},
		{".5", 5000},
		{"100", 1000000},
	}

	for _, tc := range cases {
		got, err := ParseQuantity(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3"} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "2.5000", Quantity(25000).String())
	assert.Equal(t, "-0.2500", Quantity(-2500).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	q := Quantity(101234)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "10.1234", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)

	// String form is accepted too.
	require.NoError(t, json.Unmarshal([]byte(`"2.5"`), &back))
	assert.Equal(t, Quantity(25000), back)
}

func TestCoerceMoney(t *testing.T) {
	def := MustMoney("99")

	cases := []struct {
		in   string
		want Money
	}{
		{"1250.50", MustMoney("1250.50")},
		{"$1,250.50", MustMoney("1250.50")},
		{"Rs 45", MustMoney("45")},
		{"  68.00  ", MustMoney("68.00")},
		{"-120", MustMoney("-120")},
		{"", def},
		{"garbage", def},
		{"-", def},
	}

	for _, tc := range cases {
		got := CoerceMoney(tc.in, def)
		assert.True(t, tc.want.Equal(got), "input %q: want %s got %s", tc.in, tc.want, got)
	}
}

func TestCoerceQuantity(t *testing.T) {
	assert.Equal(t, Quantity(25000), CoerceQuantity("2.5 kg", 0))
	assert.Equal(t, Quantity(25000), CoerceQuantity("2.5", 0))
	assert.Equal(t, Quantity(0), CoerceQuantity("junk", 0))
	assert.Equal(t, Quantity(10000), CoerceQuantity("", 10000))
}
