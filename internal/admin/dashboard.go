package admin

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"idcard/internal/apiclient"
)

// Acknowledgment texts.
const (
	UploadedMessage     = "ID Card uploaded successfully"
	UploadFailedMessage = "Error uploading ID card"
	DeletedMessage      = "Student deleted successfully"
	DeleteFailedMessage = "Error deleting student"
	DeletePrompt        = "Are you sure you want to delete this student?"
)

var (
	// ErrNoFile is returned when an upload is attempted without a file.
	ErrNoFile = errors.New("no file selected")
	// ErrNothingPending is returned when no delete awaits confirmation.
	ErrNothingPending = errors.New("no delete awaiting confirmation")
)

// API is the slice of the remote API the dashboard drives.
type API interface {
	CollegeReader
	ListStudents(ctx context.Context, token string) ([]apiclient.Student, error)
	UploadIDCard(ctx context.Context, token, studentID string, file apiclient.File) error
	DeleteStudent(ctx context.Context, token, studentID string) error
	UpdateCollegeInfo(ctx context.Context, token string, upd apiclient.CollegeUpdate) error
}

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// NoticeKind tells success acknowledgments from failures.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

// Notice is a blocking acknowledgment the admin must dismiss.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Failed reports whether the notice acknowledges an error.
func (n Notice) Failed() bool { return n.Kind == NoticeError }

// Dashboard is the admin view's state: the student list, per-row upload and
// delete sub-states, acknowledgments and the settings editor.
type Dashboard struct {
	api     API
	tokens  TokenSource
	college *College
	logger  *slog.Logger

	mu       sync.RWMutex
	students []apiclient.Student
	mounted  bool

	uploadTarget  string
	pendingDelete string
	notice        *Notice
	settings      *Settings
}

// NewDashboard wires a dashboard. closeDelay is how long the settings editor
// stays open after a successful save.
func NewDashboard(api API, tokens TokenSource, college *College, logger *slog.Logger, closeDelay time.Duration) *Dashboard {
	return &Dashboard{
		api:      api,
		tokens:   tokens,
		college:  college,
		logger:   logger,
		settings: newSettings(closeDelay, time.Now),
	}
}

// Mount loads the list and branding the first time the dashboard is shown.
func (d *Dashboard) Mount(ctx context.Context) {
	d.mu.RLock()
	mounted := d.mounted
	d.mu.RUnlock()
	if !mounted {
		d.Refresh(ctx)
	}
}

// Refresh fetches the student list and college info concurrently. Each
// fetch updates only its own state; a failure leaves that state as it was.
func (d *Dashboard) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.fetchStudents(ctx)
	}()
	go func() {
		defer wg.Done()
		d.college.Fetch(ctx, d.api, d.logger)
	}()
	wg.Wait()

	d.mu.Lock()
	d.mounted = true
	d.mu.Unlock()
}

func (d *Dashboard) fetchStudents(ctx context.Context) {
	students, err := d.api.ListStudents(ctx, d.tokens.Token())
	if err != nil {
		d.logger.ErrorContext(ctx, "Error fetching students", "error", err)
		return
	}
	d.mu.Lock()
	d.students = students
	d.mu.Unlock()
}

// Students returns the list in backend order.
func (d *Dashboard) Students() []apiclient.Student {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]apiclient.Student(nil), d.students...)
}

// Reset forgets everything loaded; used on logout.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students = nil
	d.mounted = false
	d.uploadTarget = ""
	d.pendingDelete = ""
	d.notice = nil
	d.settings.Close()
}

// UploadTarget is the student whose upload picker is open, if any.
func (d *Dashboard) UploadTarget() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uploadTarget
}

// SelectUpload opens the upload picker for one student.
func (d *Dashboard) SelectUpload(studentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploadTarget = studentID
}

// CancelUpload closes the upload picker.
func (d *Dashboard) CancelUpload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploadTarget = ""
}

// UploadIDCard posts a printed-card scan. Without a file nothing is sent.
func (d *Dashboard) UploadIDCard(ctx context.Context, studentID string, file *apiclient.File) error {
	if file == nil || file.Body == nil {
		return ErrNoFile
	}
	if err := d.api.UploadIDCard(ctx, d.tokens.Token(), studentID, *file); err != nil {
		d.setNotice(NoticeError, apiclient.UserMessage(err, UploadFailedMessage))
		return err
	}
	d.mu.Lock()
	d.uploadTarget = ""
	d.notice = &Notice{Kind: NoticeInfo, Text: UploadedMessage}
	d.mu.Unlock()
	d.fetchStudents(ctx)
	return nil
}

// PendingDelete is the student awaiting delete confirmation, if any.
func (d *Dashboard) PendingDelete() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pendingDelete
}

// RequestDelete asks for confirmation before deleting.
func (d *Dashboard) RequestDelete(studentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingDelete = studentID
}

// CancelDelete dismisses the confirmation; nothing is sent.
func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingDelete = ""
}

// ConfirmDelete deletes the pending student and refetches the list on success.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	id := d.pendingDelete
	d.pendingDelete = ""
	d.mu.Unlock()
	if id == "" {
		return ErrNothingPending
	}

	if err := d.api.DeleteStudent(ctx, d.tokens.Token(), id); err != nil {
		d.setNotice(NoticeError, apiclient.UserMessage(err, DeleteFailedMessage))
		return err
	}
	d.setNotice(NoticeInfo, DeletedMessage)
	d.fetchStudents(ctx)
	return nil
}

// Notice returns the acknowledgment awaiting dismissal, if any.
func (d *Dashboard) Notice() *Notice {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.notice == nil {
		return nil
	}
	n := *d.notice
	return &n
}

// Acknowledge dismisses the current notice.
func (d *Dashboard) Acknowledge() {
	d.setNotice(0, "")
}

func (d *Dashboard) setNotice(kind NoticeKind, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if text == "" {
		d.notice = nil
		return
	}
	d.notice = &Notice{Kind: kind, Text: text}
}

// Settings exposes the college settings editor.
func (d *Dashboard) Settings() *Settings { return d.settings }

// OpenSettings opens the editor prefilled from the cached branding.
func (d *Dashboard) OpenSettings() {
	d.settings.Open(d.college.Info())
}

// SaveSettings posts the branding update and refetches it on success.
func (d *Dashboard) SaveSettings(ctx context.Context, name, address string, logo *apiclient.File) error {
	return d.settings.Save(ctx, d.api, d.tokens.Token(), name, address, logo, func() {
		d.college.Fetch(ctx, d.api, d.logger)
	})
}
