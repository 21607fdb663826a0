package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/isdelr/accounts-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func input(name, email, password string) UserInput {
	return UserInput{Name: ptr(name), Email: ptr(email), Password: ptr(password)}
}

func violations(t *testing.T, err error) Errors {
	t.Helper()
	var errs Errors
	require.True(t, errors.As(err, &errs), "expected validation.Errors, got %T", err)
	return errs
}

func TestValidateUser_Valid(t *testing.T) {
	cases := []UserInput{
		input("Jo", "jo@example.com", "Passw1"),
		input("John Doe", "john.doe@mail.example.org", "Password123"),
		input(strings.Repeat("n", 100), "a@b.co", strings.Repeat("aB3", 16)+"xy"),
		input("Zoë", "zoe@example.com", "Sp3cial!@#chars"),
	}
	v := New()
	for _, in := range cases {
		t.Run(*in.Name, func(t *testing.T) {
			got, err := v.ValidateUser(in)
			require.NoError(t, err)
			assert.Equal(t, models.NewUser{Name: *in.Name, Email: *in.Email, Password: *in.Password}, got)
		})
	}
}

func TestValidateUser_TrimsNameAndEmail(t *testing.T) {
	got, err := New().ValidateUser(input("  Ana  ", " ana@example.com\t", " Passw0rd "))
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, " Passw0rd ", got.Password)
}

func TestValidateUser_Rules(t *testing.T) {
	tests := []struct {
		name  string
		in    UserInput
		field string
		msg   string
	}{
		{"name too short", input("J", "j@example.com", "Password1"), "name", "Name must have at least 2 characters"},
		{"name too long", input(strings.Repeat("n", 101), "j@example.com", "Password1"), "name", "Name must have at most 100 characters"},
		{"email without at", input("John", "invalid-email", "Password1"), "email", "Email must have a valid format"},
		{"email without dot in domain", input("John", "john@localhost", "Password1"), "email", "Email must have a valid format"},
		{"password too short", input("John", "j@example.com", "Pa1"), "password", "Password must have at least 6 characters"},
		{"password too long", input("John", "j@example.com", strings.Repeat("aB3", 17)), "password", "Password must have at most 50 characters"},
		{"password without uppercase", input("John", "j@example.com", "password1"), "password", "Password must contain at least: 1 lowercase letter, 1 uppercase letter and 1 number"},
		{"password without lowercase", input("John", "j@example.com", "PASSWORD1"), "password", "Password must contain at least: 1 lowercase letter, 1 uppercase letter and 1 number"},
		{"password without digit", input("John", "j@example.com", "Password"), "password", "Password must contain at least: 1 lowercase letter, 1 uppercase letter and 1 number"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateUser(tt.in)
			errs := violations(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, Violation{Field: tt.field, Message: tt.msg}, errs[0])
		})
	}
}

func TestValidateUser_CollectsAllFields(t *testing.T) {
	_, err := New().ValidateUser(input("J", "invalid-email", "123"))
	errs := violations(t, err)

	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "password", errs[2].Field)
	assert.Equal(t,
		"Name must have at least 2 characters, Email must have a valid format, Password must have at least 6 characters",
		err.Error())
}

func TestValidateUser_FirstRuleOnlyPerField(t *testing.T) {
	// "abc" is both too short and missing uppercase and digit.
	_, err := New().ValidateUser(input("John", "j@example.com", "abc"))
	errs := violations(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Password must have at least 6 characters", errs[0].Message)
}

func TestValidateUser_MissingFields(t *testing.T) {
	_, err := New().ValidateUser(UserInput{})
	errs := violations(t, err)

	assert.Equal(t, []string{"Name is required", "Email is required", "Password is required"}, errs.Messages())
}

func TestValidateUser_EmptyFields(t *testing.T) {
	_, err := New().ValidateUser(input("", "", ""))
	errs := violations(t, err)

	assert.Equal(t, []string{
		"Name must have at least 2 characters",
		"Email must have a valid format",
		"Password must have at least 6 characters",
	}, errs.Messages())
}

func TestValidateUser_WhitespaceOnlyNameIsEmpty(t *testing.T) {
	_, err := New().ValidateUser(input("    ", "j@example.com", "Password1"))
	errs := violations(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
}

func TestValidatePatch(t *testing.T) {
	v := New()

	t.Run("empty patch", func(t *testing.T) {
		out, err := v.ValidatePatch(models.UserPatch{})
		require.NoError(t, err)
		assert.Equal(t, models.UserPatch{}, out)
	})

	t.Run("valid fields are trimmed", func(t *testing.T) {
		out, err := v.ValidatePatch(models.UserPatch{Name: ptr(" New Name "), Email: ptr(" new@example.com ")})
		require.NoError(t, err)
		assert.Equal(t, "New Name", *out.Name)
		assert.Equal(t, "new@example.com", *out.Email)
		assert.Nil(t, out.Password)
	})

	t.Run("only present fields are checked", func(t *testing.T) {
		_, err := v.ValidatePatch(models.UserPatch{Email: ptr("not-an-email"), Password: ptr("weak")})
		errs := violations(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, "password", errs[1].Field)
	})

	t.Run("empty string is present", func(t *testing.T) {
		_, err := v.ValidatePatch(models.UserPatch{Name: ptr("")})
		errs := violations(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "Name must have at least 2 characters", errs[0].Message)
	})
}
