// Package app holds one workspace per visitor and the commands that drive it.
// Handlers never touch domain state directly; they dispatch commands and
// render the page model a workspace returns.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"idcard/internal/admin"
	"idcard/internal/photo"
	"idcard/internal/registration"
	"idcard/internal/roster"
	"idcard/internal/session"
)

var (
	// ErrNotAdmin is returned for admin commands without a session token.
	ErrNotAdmin = errors.New("admin login required")
	// ErrSignedIn is returned for public-form commands while an admin is signed in.
	ErrSignedIn = errors.New("not available while signed in")
)

// API is everything a workspace calls on the remote service.
type API interface {
	admin.API
	registration.Creator
	Login(ctx context.Context, username, password string) (string, error)
	AssetURL(kind, name string) string
}

type loginState struct {
	open     bool
	username string
	errMsg   string
}

// Workspace is one visitor's state: session, registration draft, admin
// dashboard and the photos they reference.
type Workspace struct {
	id     string
	api    API
	logger *slog.Logger

	mu          sync.Mutex
	session     *session.Session
	previews    *photo.Previews
	form        *registration.Form
	college     *admin.College
	dashboard   *admin.Dashboard
	login       loginState
	collegeRead bool
	// acted marks that the next render follows a command's redirect.
	acted bool

	lastSeen atomic.Int64
}

func newWorkspace(id string, api API, sess *session.Session, logger *slog.Logger, closeDelay time.Duration, now time.Time) *Workspace {
	previews := photo.NewPreviews()
	college := &admin.College{}
	w := &Workspace{
		id:        id,
		api:       api,
		logger:    logger,
		session:   sess,
		previews:  previews,
		form:      registration.NewForm(previews),
		college:   college,
		dashboard: admin.NewDashboard(api, sess, college, logger, closeDelay),
	}
	w.touch(now)
	sess.OnLogout(w.dashboard.Reset)
	return w
}

// ID is the visitor id the workspace belongs to.
func (w *Workspace) ID() string { return w.id }

func (w *Workspace) touch(now time.Time) { w.lastSeen.Store(now.UnixNano()) }

func (w *Workspace) idleSince(cutoff time.Time) bool {
	return w.lastSeen.Load() < cutoff.UnixNano()
}

// Dispatch applies cmd with the workspace locked.
func (w *Workspace) Dispatch(ctx context.Context, cmd Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := cmd.apply(ctx, w)
	w.acted = true
	if err != nil {
		w.logger.DebugContext(ctx, "command rejected", "visitor", w.id, "command", cmd.name(), "error", err)
	}
	return err
}

// Preview returns a photo this workspace still references.
func (w *Workspace) Preview(id string) (*photo.Photo, bool) {
	return w.previews.Get(id)
}

// ExportRoster writes the loaded student list as a spreadsheet.
func (w *Workspace) ExportRoster(ctx context.Context, out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.session.IsAdmin() {
		return ErrNotAdmin
	}
	w.dashboard.Mount(ctx)
	return roster.Write(out, w.dashboard.Students())
}

func (w *Workspace) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Reset()
}

func (w *Workspace) requireAdmin() error {
	if !w.session.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (w *Workspace) requirePublic() error {
	if w.session.IsAdmin() {
		return ErrSignedIn
	}
	return nil
}
