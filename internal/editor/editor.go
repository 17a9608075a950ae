// Package editor drives the question form through its open, validate and
// submit lifecycle.
package editor

import (
	"errors"
	"fmt"

	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/validator"
)

// State is the editor lifecycle state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateValidating
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode distinguishes creating a question from editing one.
type Mode int

const (
	ModeCreate Mode = iota + 1
	ModeEdit
)

var (
	ErrAlreadyOpen  = errors.New("an edit form is already open")
	ErrNotOpen      = errors.New("no edit form is open")
	ErrTypeMismatch = errors.New("form type does not match the open form; use SwitchType")
)

// Submission is the result of a successful Submit.
type Submission struct {
	Mode       Mode
	QuestionID model.ID
	Form       form.Form
	Payload    model.QuestionPayload
	// MarksOverridden is set when a user-entered parent marks value was
	// replaced with 0 because sub-questions carry the marks.
	MarksOverridden bool
}

// Editor holds at most one open question form.
type Editor struct {
	state  State
	mode   Mode
	form   form.Form
	source model.ID
	errors validator.FieldErrors
}

// New returns a closed editor.
func New() *Editor {
	return &Editor{state: StateClosed}
}

// State returns the current lifecycle state.
func (e *Editor) State() State { return e.state }

// Mode returns the mode of the open form. It is zero when closed.
func (e *Editor) Mode() Mode { return e.mode }

// Form returns the open form, or nil when closed.
func (e *Editor) Form() form.Form { return e.form }

// Errors returns field errors from the last failed Submit.
func (e *Editor) Errors() validator.FieldErrors { return e.errors }

// OpenCreate opens an empty form for a new question of type t.
func (e *Editor) OpenCreate(t model.QuestionType) error {
	if e.state != StateClosed {
		return ErrAlreadyOpen
	}
	f, err := form.New(t)
	if err != nil {
		return err
	}
	e.open(ModeCreate, f, "")
	return nil
}

// OpenEdit opens a form seeded from q. Every call re-seeds from q, so edits
// made in an earlier session that was never submitted are discarded.
func (e *Editor) OpenEdit(q model.Question, t model.QuestionType) error {
	if e.state != StateClosed {
		return ErrAlreadyOpen
	}
	f, err := mapper.FromEntity(q, t)
	if err != nil {
		return err
	}
	e.open(ModeEdit, f, q.ID)
	return nil
}

func (e *Editor) open(mode Mode, f form.Form, source model.ID) {
	e.state = StateOpen
	e.mode = mode
	e.form = f
	e.source = source
	e.errors = nil
}

// Update replaces the open form with f, which must be of the same type.
func (e *Editor) Update(f form.Form) error {
	if !e.isOpen() {
		return ErrNotOpen
	}
	if f == nil || f.Type() != e.form.Type() {
		return ErrTypeMismatch
	}
	e.form = f
	if e.state == StateInvalid {
		e.state = StateOpen
	}
	return nil
}

// SwitchType converts the open form to type t, resetting type-specific fields.
func (e *Editor) SwitchType(t model.QuestionType) error {
	if !e.isOpen() {
		return ErrNotOpen
	}
	f, err := form.Switch(e.form, t)
	if err != nil {
		return err
	}
	e.form = f
	e.errors = nil
	e.state = StateOpen
	return nil
}

// Submit validates the open form. On failure the form stays open in
// StateInvalid and the returned error is the validator.FieldErrors. On
// success the editor closes. order is the question's 1-based position.
func (e *Editor) Submit(order int) (Submission, error) {
	if !e.isOpen() {
		return Submission{}, ErrNotOpen
	}
	e.state = StateValidating
	if errs := validator.Validate(e.form); len(errs) > 0 {
		e.errors = errs
		e.state = StateInvalid
		return Submission{}, errs
	}

	sub := Submission{
		Mode:            e.mode,
		QuestionID:      e.source,
		Form:            e.form,
		Payload:         mapper.ToPayload(e.form, order),
		MarksOverridden: mapper.MarksOverridden(e.form),
	}
	e.close()
	return sub, nil
}

// Cancel discards the open form.
func (e *Editor) Cancel() {
	e.close()
}

func (e *Editor) close() {
	e.state = StateClosed
	e.mode = 0
	e.form = nil
	e.source = ""
	e.errors = nil
}

func (e *Editor) isOpen() bool {
	return e.state == StateOpen || e.state == StateInvalid
}
