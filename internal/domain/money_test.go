package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := map[string]Money{
		"0":       0,
		"40":      4000,
		"40.2":    4020,
		"40.25":   4025,
		".5":      50,
		"-3.10":   -310,
		" 12.00 ": 1200,
		"+7":      700,
	}
	for raw, want := range cases {
		got, err := ParseMoney(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "1.234", "1.", ".", "1,5", "--1", "1.+5", "99999999999999999999"} {
		_, err := ParseMoney(raw)
		assert.ErrorIs(t, err, ErrInvalidMoney, raw)
	}
}

func TestMoneyPercentFloors(t *testing.T) {
	assert.Equal(t, Money(5000), Money(20000).Percent(25))
	assert.Equal(t, Money(0), Money(3).Percent(25))
	assert.Equal(t, Money(2), Money(11).Percent(25))
	assert.Equal(t, Money(0), Money(0).Percent(25))
	assert.Equal(t, Money(12345), Money(12345).Percent(100))
}

func TestMoneyPercentDoesNotOverflow(t *testing.T) {
	huge := Money(math.MaxInt64)
	assert.Equal(t, Money(math.MaxInt64/4), huge.Percent(25))
	assert.Equal(t, huge, huge.Percent(100))
	assert.Positive(t, int64(Money(math.MaxInt64/2).Percent(25)))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "40.05", Money(4005).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: 6000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 60.00}`, string(out))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 0.1, "b": "25.50", "c": null}`), &in))
	assert.Equal(t, Money(10), in.A)
	assert.Equal(t, Money(2550), in.B)
	assert.Equal(t, Money(0), in.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": 0.001}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &in))
}
