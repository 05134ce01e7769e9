// Package validate implements the local field and form validation rules.
// It performs no I/O and never touches session or view state; its only side
// effect is updating each field's own error presentation.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quollsoft/passgate/internal/forms"
)

// emailPattern is intentionally loose: anything with a local part, an @ and
// a dotted domain. Stricter checking belongs to the server.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgEmailFormat    = "Please enter a valid email address"
	msgPasswordLength = "Password must be at least 8 characters long"
	msgGenericFormat  = "Please enter a valid format"

	minPasswordLength = 8
)

// FieldState is the derived validation result for one field.
type FieldState struct {
	Valid   bool
	Message string
}

// Field validates a single field and updates its error state. Rules apply in
// precedence order, first match wins: required, email format, password
// length, custom pattern.
func Field(f *forms.Field) FieldState {
	value := strings.TrimSpace(f.Value())

	switch {
	case f.Required && value == "":
		return invalid(f, fmt.Sprintf("%s is required", f.DisplayLabel()))

	case f.Kind == forms.KindEmail && value != "" && !emailPattern.MatchString(value):
		return invalid(f, msgEmailFormat)

	case f.Kind == forms.KindPassword && value != "" && len(value) < minPasswordLength:
		return invalid(f, msgPasswordLength)

	case f.Pattern != "" && value != "" && !matchesPattern(f.Pattern, value):
		return invalid(f, msgGenericFormat)
	}

	f.ClearError()
	return FieldState{Valid: true}
}

// Form validates every field in document order. It returns whether the whole
// form passed and, when it did not, the first invalid field so the caller
// can focus it.
func Form(fm *forms.Form) (bool, *forms.Field) {
	ok := true
	var firstInvalid *forms.Field

	for _, f := range fm.Fields() {
		state := Field(f)
		if !state.Valid {
			ok = false
			if firstInvalid == nil {
				firstInvalid = f
			}
		}
	}
	return ok, firstInvalid
}

func invalid(f *forms.Field, message string) FieldState {
	f.SetError(message)
	return FieldState{Valid: false, Message: message}
}

func matchesPattern(pattern, value string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		// A broken constraint must not lock the user out of the form.
		return true
	}
	return re.MatchString(value)
}
