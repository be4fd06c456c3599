package app

import (
	"context"

	"idcard/internal/admin"
	"idcard/internal/apiclient"
	"idcard/internal/card"
	"idcard/internal/registration"
)

// DefaultTitle heads the public page when no branding is set.
const DefaultTitle = "ID Card System"

// Page is what the root view renders: exactly one of Public or Admin is set.
type Page struct {
	Title  string
	Public *PublicPage
	Admin  *AdminPage
}

// PublicPage is the registration form with its preview and dialogs.
type PublicPage struct {
	Fields      registration.Fields
	BloodGroups []string
	Invalid     map[string]bool
	Confirming  bool
	Message     string
	Error       string
	PhotoName   string
	ShowPreview bool
	Preview     card.View
	Login       LoginView
}

// LoginView is the login dialog.
type LoginView struct {
	Open     bool
	Username string
	Error    string
}

// AdminPage is the dashboard.
// LogoURL heads the page; SettingsLogoURL is the logo the open editor shows
// as current.
type AdminPage struct {
	DisplayName     string
	Students        []StudentRow
	Notice          *admin.Notice
	PendingDelete   string
	DeletePrompt    string
	Settings        admin.SettingsView
	SettingsLogoURL string
	LogoURL         string
}

// StudentRow is one dashboard entry and its card.
type StudentRow struct {
	apiclient.Student
	Card      card.View
	HasIDCard bool
	Uploading bool
}

// Page returns the render model. A plain load refetches what the view
// shows, as a browser reload would; the render right after a command only
// loads what was never loaded, so a mutation's own refetch is not repeated.
// A logged-out visitor always gets the public page.
func (w *Workspace) Page(ctx context.Context) Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	reload := !w.acted
	w.acted = false

	if w.session.IsAdmin() {
		if reload {
			w.dashboard.Refresh(ctx)
		} else {
			w.dashboard.Mount(ctx)
		}
		w.collegeRead = true
		return Page{Title: "Admin Dashboard", Admin: w.adminPage()}
	}

	if reload || !w.collegeRead {
		w.college.Fetch(ctx, w.api, w.logger)
		w.collegeRead = true
	}
	title := DefaultTitle
	if info := w.college.Info(); info != nil && info.Name != "" {
		title = info.Name
	}
	return Page{Title: title, Public: w.publicPage()}
}

// DraftCard lays out fields with the draft photo, for the live preview.
// It reports false when there is nothing to preview yet.
func (w *Workspace) DraftCard(fields registration.Fields) (card.View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if fields.Name == "" && w.form.Photo() == nil {
		return card.View{}, false
	}
	return w.draftCard(fields), true
}

func (w *Workspace) draftCard(fields registration.Fields) card.View {
	return card.Compose(card.Subject{
		Name:       fields.Name,
		Department: fields.Department,
		Validity:   fields.Validity,
		RollNumber: fields.RollNumber,
		BloodGroup: fields.BloodGroup,
		Phone:      fields.Phone,
		Address:    fields.Address,
		PhotoURL:   w.form.Photo().URL(),
	}, w.branding(), "")
}

func (w *Workspace) branding() *card.Branding {
	info := w.college.Info()
	if info == nil {
		return nil
	}
	return &card.Branding{
		Name:    info.Name,
		Address: info.Address,
		LogoURL: w.api.AssetURL(apiclient.AssetLogos, info.Logo),
	}
}

func (w *Workspace) publicPage() *PublicPage {
	f := w.form
	p := &PublicPage{
		Fields:      f.Fields(),
		BloodGroups: registration.BloodGroups,
		Invalid:     make(map[string]bool),
		Confirming:  f.Phase() == registration.Confirming,
		Message:     f.Message(),
		Error:       f.ErrorMessage(),
		ShowPreview: f.ShowPreview(),
		Login: LoginView{
			Open:     w.login.open,
			Username: w.login.username,
			Error:    w.login.errMsg,
		},
	}
	for _, name := range f.InvalidFields() {
		p.Invalid[name] = true
	}
	if ph := f.Photo(); ph != nil {
		p.PhotoName = ph.Filename
	}
	if p.ShowPreview {
		p.Preview = w.draftCard(p.Fields)
	}
	return p
}

func (w *Workspace) adminPage() *AdminPage {
	d := w.dashboard
	brand := w.branding()
	target := d.UploadTarget()

	students := d.Students()
	rows := make([]StudentRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, StudentRow{
			Student: s,
			Card: card.Compose(card.Subject{
				Name:       s.Name,
				Department: s.Department,
				Validity:   s.Validity,
				RollNumber: s.RollNumber,
				BloodGroup: s.BloodGroup,
				Phone:      s.Phone,
				Address:    s.Address,
				PhotoURL:   w.api.AssetURL(apiclient.AssetStudents, s.Image),
			}, brand, w.api.AssetURL(apiclient.AssetIDCards, s.IDCardImage)),
			HasIDCard: s.IDCardImage != "",
			Uploading: target != "" && target == s.ID,
		})
	}

	p := &AdminPage{
		DisplayName:   w.session.DisplayName(),
		Students:      rows,
		Notice:        d.Notice(),
		PendingDelete: d.PendingDelete(),
		Settings:      d.Settings().View(),
	}
	if p.PendingDelete != "" {
		p.DeletePrompt = admin.DeletePrompt
	}
	if brand != nil {
		p.LogoURL = brand.LogoURL
	}
	p.SettingsLogoURL = w.api.AssetURL(apiclient.AssetLogos, p.Settings.Logo)
	return p
}
