// Package validation checks user input against the account rules.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/accounts-be/internal/models"
)

// Per-field rules, evaluated left to right. Presence is checked separately so
// that a missing field and an empty one are reported differently.
const (
	nameRules     = "min=2,max=100"
	emailRules    = "email,dotdomain"
	passwordRules = "min=6,max=50,pwcomplex"
)

// UserInput is a registration as received from a client. A nil field was not sent.
type UserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Violation is a single rule failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the ordered list of violations found in one validation pass.
type Errors []Violation

func (e Errors) Error() string {
	return strings.Join(e.Messages(), ", ")
}

// Messages returns the human-readable messages in order.
func (e Errors) Messages() []string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return msgs
}

// Validator validates user records. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the custom account rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("dotdomain", dottedDomain)
	_ = v.RegisterValidation("pwcomplex", complexPassword)
	return &Validator{v: v}
}

// ValidateUser checks every field of in and returns the normalized user, or
// Errors listing the first failing rule of each invalid field.
func (val *Validator) ValidateUser(in UserInput) (models.NewUser, error) {
	var errs Errors
	name, nameOK := val.required("name", trimmed(in.Name), nameRules, &errs)
	email, emailOK := val.required("email", trimmed(in.Email), emailRules, &errs)
	password, passwordOK := val.required("password", in.Password, passwordRules, &errs)

	if !nameOK || !emailOK || !passwordOK {
		return models.NewUser{}, errs
	}
	return models.NewUser{Name: name, Email: email, Password: password}, nil
}

// ValidatePatch applies the same per-field rules to the fields present in p and
// returns the patch with name and email trimmed.
func (val *Validator) ValidatePatch(p models.UserPatch) (models.UserPatch, error) {
	var errs Errors
	out := models.UserPatch{
		Name:     trimmed(p.Name),
		Email:    trimmed(p.Email),
		Password: p.Password,
	}
	if out.Name != nil {
		val.check("name", *out.Name, nameRules, &errs)
	}
	if out.Email != nil {
		val.check("email", *out.Email, emailRules, &errs)
	}
	if out.Password != nil {
		val.check("password", *out.Password, passwordRules, &errs)
	}

	if len(errs) > 0 {
		return models.UserPatch{}, errs
	}
	return out, nil
}

func (val *Validator) required(field string, value *string, rules string, errs *Errors) (string, bool) {
	if value == nil {
		*errs = append(*errs, Violation{Field: field, Message: message(field, "required", "")})
		return "", false
	}
	return *value, val.check(field, *value, rules, errs)
}

func (val *Validator) check(field, value, rules string, errs *Errors) bool {
	err := val.v.Var(value, rules)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		*errs = append(*errs, Violation{Field: field, Message: message(field, fe.Tag(), fe.Param())})
	} else {
		*errs = append(*errs, Violation{Field: field, Message: message(field, "", "")})
	}
	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func message(field, tag, param string) string {
	label := strings.ToUpper(field[:1]) + field[1:]
	switch tag {
	case "required":
		return label + " is required"
	case "min":
		return label + " must have at least " + param + " characters"
	case "max":
		return label + " must have at most " + param + " characters"
	case "email", "dotdomain":
		return label + " must have a valid format"
	case "pwcomplex":
		return label + " must contain at least: 1 lowercase letter, 1 uppercase letter and 1 number"
	default:
		return label + " is invalid"
	}
}

// dottedDomain rejects addresses like user@localhost.
func dottedDomain(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func complexPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}
