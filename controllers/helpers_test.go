package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMobile(t *testing.T) {
	assert.Equal(t, "9876543210", cleanMobile("98765-43210"))
	assert.Equal(t, "9876543210", cleanMobile(" 9876543210 "))
	assert.Equal(t, "9876543210", cleanMobile("(98765) 43210"))
	assert.Equal(t, "", cleanMobile("abc"))
}

func TestValidMobile(t *testing.T) {
	valid := []string{"9876543210", "6000000000", "7123456789", "8999999999"}
	for _, m := range valid {
		assert.True(t, validMobile(m), m)
	}

	invalid := []string{"", "5876543210", "987654321", "98765432101", "987654321a"}
	for _, m := range invalid {
		assert.False(t, validMobile(m), m)
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, validName("Asha Verma"))
	assert.True(t, validName("  Jo  "))
	assert.False(t, validName("A"))
	assert.False(t, validName(""))
	assert.False(t, validName("Name123"))
	assert.False(t, validName("Name!"))
}

func TestValidOTP(t *testing.T) {
	assert.True(t, validOTP("123456"))
	assert.True(t, validOTP("000000"))
	assert.False(t, validOTP("12345"))
	assert.False(t, validOTP("1234567"))
	assert.False(t, validOTP("12345a"))
}

func TestStrictBool(t *testing.T) {
	cases := []struct {
		in       interface{}
		fallback bool
		want     bool
		ok       bool
	}{
		{nil, true, true, true},
		{nil, false, false, true},
		{true, false, true, true},
		{false, true, false, true},
		{"true", false, true, true},
		{"FALSE", true, false, true},
		{" True ", false, true, true},
		{"yes", false, false, false},
		{"1", false, false, false},
		{1, false, false, false},
		{float64(0), true, false, false},
	}

	for _, tc := range cases {
		got, ok := strictBool(tc.in, tc.fallback)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if ok {
			assert.Equal(t, tc.want, got, "input %v", tc.in)
		}
	}
}
