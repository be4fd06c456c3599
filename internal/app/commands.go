package app

import (
	"context"
	"errors"

	"idcard/internal/apiclient"
	"idcard/internal/photo"
	"idcard/internal/registration"
)

// LoginFailedMessage is shown when the login response carries no message.
const LoginFailedMessage = "Login failed"

// Command is one user action applied to a workspace.
type Command interface {
	name() string
	apply(ctx context.Context, w *Workspace) error
}

// SelectPhoto replaces the draft photo.
type SelectPhoto struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (SelectPhoto) name() string { return "select_photo" }

func (c SelectPhoto) apply(_ context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	if len(c.Data) == 0 {
		return nil
	}
	return w.form.SelectPhoto(photo.New(c.Filename, c.ContentType, c.Data))
}

// EditDraft stores the typed field values without validating them.
type EditDraft struct {
	Fields registration.Fields
}

func (EditDraft) name() string { return "edit_draft" }

func (c EditDraft) apply(_ context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	return w.form.Edit(c.Fields)
}

// SubmitRegistration stores the fields and opens the confirmation step when
// the draft is complete.
type SubmitRegistration struct {
	Fields registration.Fields
}

func (SubmitRegistration) name() string { return "submit_registration" }

func (c SubmitRegistration) apply(_ context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	if err := w.form.Edit(c.Fields); err != nil {
		return err
	}
	return w.form.Submit()
}

// ConfirmRegistration sends the confirmed draft.
type ConfirmRegistration struct{}

func (ConfirmRegistration) name() string { return "confirm_registration" }

func (ConfirmRegistration) apply(ctx context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	err := w.form.SubmitTo(ctx, w.api)
	if err != nil && !errors.Is(err, registration.ErrWrongPhase) {
		w.logger.ErrorContext(ctx, "Error submitting form", "visitor", w.id, "error", err)
	}
	return err
}

// CancelRegistration closes the confirmation step.
type CancelRegistration struct{}

func (CancelRegistration) name() string { return "cancel_registration" }

func (CancelRegistration) apply(_ context.Context, w *Workspace) error {
	return w.form.Cancel()
}

// OpenLogin shows the login dialog.
type OpenLogin struct{}

func (OpenLogin) name() string { return "open_login" }

func (OpenLogin) apply(_ context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	w.login = loginState{open: true}
	return nil
}

// CloseLogin hides the login dialog.
type CloseLogin struct{}

func (CloseLogin) name() string { return "close_login" }

func (CloseLogin) apply(_ context.Context, w *Workspace) error {
	w.login = loginState{}
	return nil
}

// Login exchanges credentials for a token and switches to the admin view.
type Login struct {
	Username string
	Password string
}

func (Login) name() string { return "login" }

func (c Login) apply(ctx context.Context, w *Workspace) error {
	if err := w.requirePublic(); err != nil {
		return err
	}
	w.login = loginState{open: true, username: c.Username}
	token, err := w.api.Login(ctx, c.Username, c.Password)
	if err != nil {
		w.login.errMsg = apiclient.UserMessage(err, LoginFailedMessage)
		return err
	}
	if err := w.session.Login(ctx, token); err != nil {
		w.login.errMsg = apiclient.ServerErrorMessage
		return err
	}
	w.login = loginState{}
	// The public page is gone once the dashboard shows.
	w.form.Reset()
	return nil
}

// Logout clears the session and returns to the public page.
type Logout struct{}

func (Logout) name() string { return "logout" }

func (Logout) apply(ctx context.Context, w *Workspace) error {
	return w.session.Logout(ctx)
}

// Refresh reloads the student list and branding.
type Refresh struct{}

func (Refresh) name() string { return "refresh" }

func (Refresh) apply(ctx context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.Refresh(ctx)
	return nil
}

// SelectUpload opens the ID-card picker on one row.
type SelectUpload struct {
	StudentID string
}

func (SelectUpload) name() string { return "select_upload" }

func (c SelectUpload) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.SelectUpload(c.StudentID)
	return nil
}

// CancelUpload closes the ID-card picker.
type CancelUpload struct{}

func (CancelUpload) name() string { return "cancel_upload" }

func (CancelUpload) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.CancelUpload()
	return nil
}

// UploadIDCard sends a printed-card scan. A nil File sends nothing.
type UploadIDCard struct {
	StudentID string
	File      *apiclient.File
}

func (UploadIDCard) name() string { return "upload_idcard" }

func (c UploadIDCard) apply(ctx context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	return w.dashboard.UploadIDCard(ctx, c.StudentID, c.File)
}

// RequestDelete asks the admin to confirm a delete.
type RequestDelete struct {
	StudentID string
}

func (RequestDelete) name() string { return "request_delete" }

func (c RequestDelete) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.RequestDelete(c.StudentID)
	return nil
}

// ConfirmDelete deletes the student awaiting confirmation.
type ConfirmDelete struct{}

func (ConfirmDelete) name() string { return "confirm_delete" }

func (ConfirmDelete) apply(ctx context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	return w.dashboard.ConfirmDelete(ctx)
}

// CancelDelete dismisses the delete confirmation.
type CancelDelete struct{}

func (CancelDelete) name() string { return "cancel_delete" }

func (CancelDelete) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.CancelDelete()
	return nil
}

// Acknowledge dismisses the current notice.
type Acknowledge struct{}

func (Acknowledge) name() string { return "acknowledge" }

func (Acknowledge) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.Acknowledge()
	return nil
}

// OpenSettings opens the college settings editor.
type OpenSettings struct{}

func (OpenSettings) name() string { return "open_settings" }

func (OpenSettings) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.OpenSettings()
	return nil
}

// CloseSettings closes the editor.
type CloseSettings struct{}

func (CloseSettings) name() string { return "close_settings" }

func (CloseSettings) apply(_ context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	w.dashboard.Settings().Close()
	return nil
}

// SaveSettings posts a branding update. Logo is optional.
type SaveSettings struct {
	Name    string
	Address string
	Logo    *apiclient.File
}

func (SaveSettings) name() string { return "save_settings" }

func (c SaveSettings) apply(ctx context.Context, w *Workspace) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	return w.dashboard.SaveSettings(ctx, c.Name, c.Address, c.Logo)
}
