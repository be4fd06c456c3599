// Package card lays out a student's details and photo as an ID card.
// Everything is a pure function of its inputs.
package card

import "strings"

// Missing marks an absent text field on the card.
const Missing = "-"

// DefaultCollegeName heads cards when no branding is set.
const DefaultCollegeName = "INSTITUTE OF TECHNOLOGY"

// Subject is anything card-shaped: a saved record or an in-progress draft.
type Subject struct {
	Name       string
	Department string
	Validity   string
	RollNumber string
	BloodGroup string
	Phone      string
	Address    string
	PhotoURL   string
}

// Branding is the college header of the card.
type Branding struct {
	Name    string
	Address string
	LogoURL string
}

// View is the laid-out card.
type View struct {
	CollegeName    string
	CollegeAddress string
	LogoURL        string

	// PhotoURL is empty when the placeholder is shown.
	PhotoURL   string
	PhotoLabel string

	Name       string
	Branch     string
	Validity   string
	RollNumber string
	Contact    string
	Address    string

	// BloodGroup is rendered emphasized.
	BloodGroup string
}

// HasPhoto reports whether a real image is shown.
func (v View) HasPhoto() bool { return v.PhotoURL != "" }

// Compose lays out s under branding. A printed-card scan takes precedence
// over the subject's own photo; with neither a placeholder is shown.
func Compose(s Subject, branding *Branding, printedURL string) View {
	v := View{
		CollegeName: DefaultCollegeName,
		Name:        orMissing(s.Name),
		Branch:      orMissing(s.Department),
		Validity:    orMissing(s.Validity),
		RollNumber:  orMissing(s.RollNumber),
		Contact:     orMissing(s.Phone),
		Address:     orMissing(s.Address),
		BloodGroup:  orMissing(s.BloodGroup),
	}
	if branding != nil {
		if branding.Name != "" {
			v.CollegeName = branding.Name
		}
		v.CollegeAddress = branding.Address
		v.LogoURL = branding.LogoURL
	}

	switch {
	case printedURL != "":
		v.PhotoURL = printedURL
		v.PhotoLabel = "ID card"
	case s.PhotoURL != "":
		v.PhotoURL = s.PhotoURL
		v.PhotoLabel = "Student"
	}
	return v
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return Missing
	}
	return s
}
