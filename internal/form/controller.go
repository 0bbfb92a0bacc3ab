// Package form binds a schema to editable field state and drives one
// submission at a time through an auth backend.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"authpages/internal/entity/dto"
	"authpages/internal/schema"

	"github.com/sirupsen/logrus"
)

// MsgGeneric replaces failures that carry no usable text.
const MsgGeneric = "An error occurred!"

// ErrSubmitInProgress is returned by Submit while an earlier call is still waiting on the backend.
var ErrSubmitInProgress = errors.New("form: submission already in progress")

// Submitter performs the external call with validated values.
type Submitter func(ctx context.Context, values map[string]any) (*dto.Session, error)

// Navigator moves the user elsewhere after a successful submission.
type Navigator interface {
	GoTo(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) GoTo(path string) { f(path) }

// Options tune a controller.
type Options struct {
	// ValidateOnChange re-validates a field every time it is set.
	ValidateOnChange bool
	// SuccessPath is handed to the Navigator on success. Defaults to "/".
	SuccessPath string
	Navigator   Navigator
}

// Controller owns the state of one form instance.
type Controller struct {
	schema *schema.Schema
	submit Submitter
	opts   Options

	mu          sync.Mutex
	values      map[string]any
	fieldErrors schema.Errors
	status      Status
	errMessage  string
	session     *dto.Session
}

// New creates a controller with every schema field set to "".
func New(s *schema.Schema, submit Submitter, opts Options) *Controller {
	if strings.TrimSpace(opts.SuccessPath) == "" {
		opts.SuccessPath = "/"
	}
	values := make(map[string]any)
	for _, field := range s.Fields() {
		values[field] = ""
	}
	return &Controller{
		schema: s,
		submit: submit,
		opts:   opts,
		values: values,
	}
}

// Fields returns the schema's field names in rule order.
func (c *Controller) Fields() []string {
	return c.schema.Fields()
}

// SetField stores a value. Validation waits for Submit unless ValidateOnChange is set.
func (c *Controller) SetField(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	if c.opts.ValidateOnChange {
		c.refreshField(name)
	}
}

// SetFields stores several values at once.
func (c *Controller) SetFields(values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, value := range values {
		c.values[name] = value
		if c.opts.ValidateOnChange {
			c.refreshField(name)
		}
	}
}

func (c *Controller) refreshField(name string) {
	kept := c.fieldErrors[:0:0]
	for _, fe := range c.fieldErrors {
		if fe.Field != name {
			kept = append(kept, fe)
		}
	}
	c.fieldErrors = append(kept, c.schema.ValidateField(name, c.values)...)
}

// Submit validates the current values and, when they pass, calls the
// submitter. Validation failures return schema.Errors and leave the status
// untouched. Backend failures set a top-level message and are returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == Submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	candidate := make(map[string]any, len(c.values))
	for k, v := range c.values {
		candidate[k] = v
	}
	errs := c.schema.Validate(candidate)
	c.fieldErrors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		return errs
	}
	c.status = Submitting
	c.errMessage = ""
	c.mu.Unlock()

	session, err := c.call(ctx, candidate)

	c.mu.Lock()
	if err != nil {
		c.status = Failed
		c.errMessage = messageOf(err)
		c.mu.Unlock()
		logrus.WithError(err).WithField("form", c.schema.Name()).Warn("form submission failed")
		return err
	}
	c.status = Succeeded
	c.session = session
	c.mu.Unlock()

	if c.opts.Navigator != nil {
		c.opts.Navigator.GoTo(c.opts.SuccessPath)
	}
	return nil
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("form: submitter panicked: %v", p.value)
}

func (c *Controller) call(ctx context.Context, values map[string]any) (session *dto.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return c.submit(ctx, values)
}

func messageOf(err error) string {
	var p *panicError
	if errors.As(err, &p) {
		return MsgGeneric
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return MsgGeneric
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Values      map[string]any
	FieldErrors map[string][]string
	Status      Status
	Error       string
	Session     *dto.Session
}

// Submitting reports whether a backend call is in flight.
func (s Snapshot) Submitting() bool {
	return s.Status == Submitting
}

// Invalid reports whether field has at least one error.
func (s Snapshot) Invalid(field string) bool {
	return len(s.FieldErrors[field]) > 0
}

// Value returns a field value as a string.
func (s Snapshot) Value(field string) string {
	v, _ := s.Values[field].(string)
	return v
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make(map[string]any, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	return Snapshot{
		Values:      values,
		FieldErrors: c.fieldErrors.ByField(),
		Status:      c.status,
		Error:       c.errMessage,
		Session:     c.session,
	}
}
