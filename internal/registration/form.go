package registration

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"idcard/internal/apiclient"
	"idcard/internal/metrics"
	"idcard/internal/photo"
)

// Phase is where a visit sits in the registration flow.
type Phase int

const (
	Editing Phase = iota
	Confirming
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Messages shown inline on the public form.
const (
	SuccessMessage = "Registration successful!"
	FailureMessage = "Registration failed"
)

// ErrWrongPhase is returned when an action does not apply to the current phase.
var ErrWrongPhase = errors.New("action not allowed in current phase")

// Creator is the remote call a confirmed registration goes to.
type Creator interface {
	CreateStudent(ctx context.Context, reg apiclient.Registration) error
}

// Form is one visitor's registration draft and its confirm-before-submit flow.
type Form struct {
	phase    Phase
	fields   Fields
	photo    *photo.Photo
	previews *photo.Previews
	message  string
	errMsg   string
	invalid  []string
}

// NewForm returns an empty form whose photos are tracked in previews.
func NewForm(previews *photo.Previews) *Form {
	return &Form{previews: previews}
}

// Phase is the current step of the flow.
func (f *Form) Phase() Phase {
	return f.phase
}

// Fields returns the draft's text values.
func (f *Form) Fields() Fields {
	return f.fields
}

// Photo returns the selected photo, or nil.
func (f *Form) Photo() *photo.Photo {
	return f.photo
}

// Message is the inline success text, if any.
func (f *Form) Message() string {
	return f.message
}

// ErrorMessage is the inline failure text, if any.
func (f *Form) ErrorMessage() string {
	return f.errMsg
}

// InvalidFields names the inputs that blocked the last submit.
func (f *Form) InvalidFields() []string {
	return f.invalid
}

// ShowPreview reports whether the live card preview has anything to show.
func (f *Form) ShowPreview() bool {
	return f.fields.Name != "" || f.photo != nil
}

func (f *Form) editable() bool {
	return f.phase == Editing || f.phase == Succeeded || f.phase == Failed
}

// Edit replaces the text fields. It has no validation effect.
func (f *Form) Edit(fields Fields) error {
	if !f.editable() {
		return ErrWrongPhase
	}
	f.fields = fields
	f.phase = Editing
	return nil
}

// SelectPhoto swaps in a new photo and releases the one it replaces.
func (f *Form) SelectPhoto(p *photo.Photo) error {
	if !f.editable() {
		return ErrWrongPhase
	}
	if p == nil {
		return nil
	}
	f.previews.Release(f.photo)
	f.previews.Add(p)
	f.photo = p
	f.phase = Editing
	return nil
}

// Submit clears the inline messages and opens the confirmation step when
// every field and the photo are present.
func (f *Form) Submit() error {
	if !f.editable() {
		return ErrWrongPhase
	}
	f.message, f.errMsg = "", ""
	f.invalid = nil
	f.phase = Editing
	if err := check(f.fields, f.photo != nil); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.invalid = verr.Fields
		}
		return err
	}
	f.phase = Confirming
	return nil
}

// Cancel closes the confirmation step leaving the draft untouched.
func (f *Form) Cancel() error {
	if f.phase != Confirming {
		return ErrWrongPhase
	}
	f.phase = Editing
	return nil
}

// Confirm closes the confirmation step and hands back the payload to send.
func (f *Form) Confirm() (apiclient.Registration, error) {
	if f.phase != Confirming {
		return apiclient.Registration{}, ErrWrongPhase
	}
	f.phase = Submitting
	fl := f.fields
	return apiclient.Registration{
		Name:       fl.Name,
		Email:      fl.Email,
		Phone:      fl.Phone,
		RollNumber: fl.RollNumber,
		Department: fl.Department,
		Address:    fl.Address,
		BloodGroup: fl.BloodGroup,
		Validity:   fl.Validity,
		Image: apiclient.File{
			Name:        f.photo.Filename,
			ContentType: f.photo.ContentType,
			Body:        bytes.NewReader(f.photo.Data),
		},
	}, nil
}

// Resolve records the outcome of the create call. Success discards the
// draft unconditionally; failure keeps it and shows why.
func (f *Form) Resolve(err error) {
	if f.phase != Submitting {
		return
	}
	if err != nil {
		f.phase = Failed
		f.errMsg = apiclient.UserMessage(err, FailureMessage)
		metrics.CountRegistration("failure")
		return
	}
	f.previews.Release(f.photo)
	f.photo = nil
	f.fields = Fields{}
	f.invalid = nil
	f.phase = Succeeded
	f.message = SuccessMessage
	metrics.CountRegistration("success")
}

// SubmitTo confirms and sends the draft with exactly one create call.
func (f *Form) SubmitTo(ctx context.Context, c Creator) error {
	reg, err := f.Confirm()
	if err != nil {
		return err
	}
	err = c.CreateStudent(ctx, reg)
	f.Resolve(err)
	return err
}

// Reset drops the draft and any photo, as a page reload would.
func (f *Form) Reset() {
	f.previews.Release(f.photo)
	*f = Form{previews: f.previews}
}
