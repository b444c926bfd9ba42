package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}{Money{Cents: 15000}, Money{Cents: 1999}, Money{Cents: -250}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":150,"b":19.99,"c":-2.5}`, string(b))

	var in struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 12.5}`), &in))
	assert.Equal(t, int64(1250), in.Amount.Cents)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "12,75"}`), &in))
	assert.Equal(t, int64(1275), in.Amount.Cents)

	assert.Error(t, json.Unmarshal([]byte(`{"amount": -3}`), &in))
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 2000}
	assert.Equal(t, Money{Cents: 3050}, a.Add(b))
	assert.Equal(t, Money{Cents: -950}, a.Sub(b))
	assert.Equal(t, "10.50", a.String())
}
