package forms

import (
	"strings"
	"sync"
)

// Kind declares how a field's value is validated.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPassword
)

// Field is a single input in a form. It holds the typed value and the
// derived validation state; it is never persisted.
type Field struct {
	Name     string
	Label    string // message label; defaults to the capitalized Name
	Kind     Kind
	Required bool
	Pattern  string // optional custom format constraint

	mu      sync.Mutex
	value   string
	message string
}

// NewField creates a required field of the given kind.
func NewField(name string, kind Kind) *Field {
	return &Field{Name: name, Kind: kind, Required: true}
}

// Value returns the current raw value.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// SetValue records a new value and clears any prior validation error,
// mirroring the clear-on-input behavior of the reference UI.
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
	f.message = ""
}

// Error returns the current validation message, or "" when the field is
// considered valid.
func (f *Field) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// SetError marks the field invalid with a message.
func (f *Field) SetError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = message
}

// ClearError resets the field to the valid state.
func (f *Field) ClearError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = ""
}

// DisplayLabel returns the label used in validation messages.
func (f *Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	if f.Name == "" {
		return ""
	}
	return strings.ToUpper(f.Name[:1]) + f.Name[1:]
}

// Form is an ordered collection of fields plus the per-form in-flight guard
// that serializes submissions.
type Form struct {
	Name string // alert scope, e.g. "login"

	fields []*Field
	byName map[string]*Field

	mu       sync.Mutex
	inFlight bool
}

// New creates a form with fields in document order.
func New(name string, fields ...*Field) *Form {
	fm := &Form{
		Name:   name,
		fields: fields,
		byName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		fm.byName[f.Name] = f
	}
	return fm
}

// Field returns the named field, or nil when the form has no such field.
func (fm *Form) Field(name string) *Field {
	return fm.byName[name]
}

// Fields returns the fields in document order.
func (fm *Form) Fields() []*Field {
	return fm.fields
}

// Set writes a value into the named field. Unknown names are ignored; the
// reference UI silently drops writes to absent inputs.
func (fm *Form) Set(name, value string) {
	if f := fm.byName[name]; f != nil {
		f.SetValue(value)
	}
}

// Get returns the named field's value, or "".
func (fm *Form) Get(name string) string {
	if f := fm.byName[name]; f != nil {
		return f.Value()
	}
	return ""
}

// Reset clears all values and validation errors.
func (fm *Form) Reset() {
	for _, f := range fm.fields {
		f.SetValue("")
	}
}

// Begin marks the form's submission in flight. It returns false when a
// submission is already pending; the caller must abort, this is the only
// duplicate-submission guard in the system.
func (fm *Form) Begin() bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if fm.inFlight {
		return false
	}
	fm.inFlight = true
	return true
}

// End clears the in-flight guard. It must run on every outcome, including
// failures.
func (fm *Form) End() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.inFlight = false
}

// InFlight reports whether a submission is pending.
func (fm *Form) InFlight() bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.inFlight
}
