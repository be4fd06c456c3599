package admin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"idcard/internal/apiclient"
)

// Settings editor texts.
const (
	SettingsSavedMessage  = "College information updated successfully!"
	SettingsFailedMessage = "Update failed"
)

// ErrSettingsIncomplete is returned when name or address is blank.
var ErrSettingsIncomplete = errors.New("college name and address are required")

// CollegeWriter posts a branding update.
type CollegeWriter interface {
	UpdateCollegeInfo(ctx context.Context, token string, upd apiclient.CollegeUpdate) error
}

// Settings is the college settings editor.
type Settings struct {
	closeDelay time.Duration
	now        func() time.Time

	mu       sync.Mutex
	open     bool
	name     string
	address  string
	logo     string
	message  string
	errMsg   string
	closesAt time.Time
}

func newSettings(closeDelay time.Duration, now func() time.Time) *Settings {
	return &Settings{closeDelay: closeDelay, now: now}
}

// SettingsView is a snapshot for rendering.
type SettingsView struct {
	Open    bool
	Name    string
	Address string
	Logo    string
	Message string
	Error   string
}

// Open shows the editor prefilled from info (which may be nil).
func (s *Settings) Open(info *apiclient.CollegeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.name, s.address, s.logo = "", "", ""
	s.message, s.errMsg = "", ""
	s.closesAt = time.Time{}
	if info != nil {
		s.name, s.address, s.logo = info.Name, info.Address, info.Logo
	}
}

// Close hides the editor.
func (s *Settings) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.closesAt = time.Time{}
}

// View reports the editor state, closing it once the post-save delay elapsed.
func (s *Settings) View() SettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open && !s.closesAt.IsZero() && !s.now().Before(s.closesAt) {
		s.open = false
		s.closesAt = time.Time{}
	}
	return SettingsView{
		Open:    s.open,
		Name:    s.name,
		Address: s.address,
		Logo:    s.logo,
		Message: s.message,
		Error:   s.errMsg,
	}
}

// Save posts the update. On success it shows a message, calls refetch and
// schedules the editor to close; on failure it shows the reason.
func (s *Settings) Save(ctx context.Context, api CollegeWriter, token, name, address string, logo *apiclient.File, refetch func()) error {
	s.mu.Lock()
	s.message, s.errMsg = "", ""
	s.name, s.address = name, address
	s.mu.Unlock()

	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
		s.mu.Lock()
		s.errMsg = "College name and address are required"
		s.mu.Unlock()
		return ErrSettingsIncomplete
	}

	err := api.UpdateCollegeInfo(ctx, token, apiclient.CollegeUpdate{Name: name, Address: address, Logo: logo})
	if err != nil {
		s.mu.Lock()
		s.errMsg = apiclient.UserMessage(err, SettingsFailedMessage)
		s.mu.Unlock()
		return err
	}

	refetch()
	s.mu.Lock()
	s.message = SettingsSavedMessage
	s.closesAt = s.now().Add(s.closeDelay)
	s.mu.Unlock()
	return nil
}
