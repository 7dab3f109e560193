package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "이재혁", NormalizeName(" 이 재혁\t"))
	assert.Equal(t, "JaneDoe", NormalizeName("Jane Doe"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestPickMatch(t *testing.T) {
	code := func(s string) *string { return &s }
	a := Employee{ID: "a", FullName: "이재혁", EmployeeCode: code("23")}
	b := Employee{ID: "b", FullName: "이재혁", EmployeeCode: code("41")}

	_, err := PickMatch(nil, "23")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	got, err := PickMatch([]Employee{a}, "999")
	assert.NoError(t, err)
	assert.Equal(t, "a", got.ID, "a single match wins even when the number differs")

	_, err = PickMatch([]Employee{a, b}, "")
	assert.ErrorIs(t, err, ErrAmbiguousName)

	got, err = PickMatch([]Employee{a, b}, "41")
	assert.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = PickMatch([]Employee{a, b}, "7")
	assert.ErrorIs(t, err, ErrAmbiguousName)
}
