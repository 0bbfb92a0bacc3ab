// Package schema describes valid payload shapes as ordered field rules plus
// whole-object refinements, and reports every violation as a field-scoped error.
package schema

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageRequired is reported for absent or non-string values.
const MessageRequired = "This field is required!"

// FieldError is a single violation attached to one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the ordered result of a validation pass. A nil value means valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// For returns the messages attached to field, in rule order.
func (e Errors) For(field string) []string {
	var out []string
	for _, fe := range e {
		if fe.Field == field {
			out = append(out, fe.Message)
		}
	}
	return out
}

// Has reports whether any message is attached to field.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// ByField groups messages per field.
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string)
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Check is one validator tag evaluated against a field value.
type Check struct {
	Tag     string
	Message string
}

// FieldRule lists the checks of one field. When Empty is set an empty value
// reports only that message; otherwise every check runs, none short-circuits.
type FieldRule struct {
	Field  string
	Empty  string
	Checks []Check
}

// Refinement is a rule spanning several fields. It is skipped when any field
// in Requires is absent or not a string.
type Refinement struct {
	Requires []string
	Target   string
	Message  string
	Valid    func(values map[string]string) bool
}

// Schema validates one payload shape.
type Schema struct {
	name        string
	validate    *validator.Validate
	fields      []FieldRule
	refinements []Refinement
}

// New builds a schema. Rules are evaluated in the given order.
func New(name string, v *validator.Validate, fields []FieldRule, refinements ...Refinement) *Schema {
	if v == nil {
		v = NewValidator()
	}
	return &Schema{
		name:        name,
		validate:    v,
		fields:      fields,
		refinements: refinements,
	}
}

// Name identifies the schema in logs.
func (s *Schema) Name() string {
	return s.name
}

// Fields returns the field names in rule order.
func (s *Schema) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for _, rule := range s.fields {
		out = append(out, rule.Field)
	}
	return out
}

// Validate runs every field rule, then every refinement, over candidate.
func (s *Schema) Validate(candidate map[string]any) Errors {
	values, present := s.collect(candidate)

	var errs Errors
	for _, rule := range s.fields {
		errs = append(errs, s.checkField(rule, values, present)...)
	}
	for _, ref := range s.refinements {
		if fe, ok := s.refine(ref, values, present); !ok {
			errs = append(errs, fe)
		}
	}
	return errs
}

// ValidateField returns the violations attached to one field, including
// refinement errors targeted at it.
func (s *Schema) ValidateField(field string, candidate map[string]any) Errors {
	values, present := s.collect(candidate)

	var errs Errors
	for _, rule := range s.fields {
		if rule.Field == field {
			errs = append(errs, s.checkField(rule, values, present)...)
		}
	}
	for _, ref := range s.refinements {
		if ref.Target != field {
			continue
		}
		if fe, ok := s.refine(ref, values, present); !ok {
			errs = append(errs, fe)
		}
	}
	return errs
}

func (s *Schema) collect(candidate map[string]any) (map[string]string, map[string]bool) {
	values := make(map[string]string, len(s.fields))
	present := make(map[string]bool, len(s.fields))
	for _, rule := range s.fields {
		raw, ok := candidate[rule.Field]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		values[rule.Field] = str
		present[rule.Field] = true
	}
	return values, present
}

func (s *Schema) checkField(rule FieldRule, values map[string]string, present map[string]bool) Errors {
	if !present[rule.Field] {
		return Errors{{Field: rule.Field, Message: MessageRequired}}
	}
	value := values[rule.Field]
	if value == "" && rule.Empty != "" {
		return Errors{{Field: rule.Field, Message: rule.Empty}}
	}

	var errs Errors
	for _, check := range rule.Checks {
		if err := s.validate.Var(value, check.Tag); err != nil {
			errs = append(errs, FieldError{Field: rule.Field, Message: check.Message})
		}
	}
	return errs
}

func (s *Schema) refine(ref Refinement, values map[string]string, present map[string]bool) (FieldError, bool) {
	for _, field := range ref.Requires {
		if !present[field] {
			return FieldError{}, true
		}
	}
	if ref.Valid(values) {
		return FieldError{}, true
	}
	return FieldError{Field: ref.Target, Message: ref.Message}, false
}
