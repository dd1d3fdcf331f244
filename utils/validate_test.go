package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("84999998888"))
	assert.True(t, ValidatePhone("(84) 99999-8888"))
	assert.False(t, ValidatePhone("8499999888"))
	assert.False(t, ValidatePhone("849999988880"))
	assert.False(t, ValidatePhone(""))
	assert.Equal(t, "84999998888", StripNonDigits("(84) 99999-8888"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("1990-05-17")
	assert.True(t, ok)
	assert.Equal(t, time.May, d.Month())

	for _, in := range []string{"17/05/1990", "1990-5-17", "2001-02-30", "", "abcd-ef-gh"} {
		_, ok := ParseDate(in)
		assert.Falsef(t, ok, "input %q", in)
	}
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 18, AgeAt(time.Date(2006, time.June, 10, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 17, AgeAt(time.Date(2006, time.June, 11, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 34, AgeAt(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("morador@carona.dev"))
	assert.True(t, ValidateEmail(" a@b.co "))
	assert.False(t, ValidateEmail("morador@carona"))
	assert.False(t, ValidateEmail("mora dor@carona.dev"))
	assert.False(t, ValidateEmail(""))
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("Senha123"))
	assert.False(t, StrongPassword("Senh123"), "too short")
	assert.False(t, StrongPassword("senha123"), "no upper case")
	assert.False(t, StrongPassword("SENHA123"), "no lower case")
	assert.False(t, StrongPassword("SenhaForte"), "no digit")
}
