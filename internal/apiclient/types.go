package apiclient

import "io"

// Student is a registration record as the remote API returns it.
type Student struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RollNumber  string `json:"rollNumber"`
	Department  string `json:"department"`
	Address     string `json:"address"`
	BloodGroup  string `json:"bloodGroup"`
	Validity    string `json:"validity"`
	Image       string `json:"image,omitempty"`
	IDCardImage string `json:"idCardImage,omitempty"`
}

// CollegeInfo is the branding singleton.
type CollegeInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Logo    string `json:"logo,omitempty"`
}

// File is an upload part.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Registration carries the fields and photo of a create call.
type Registration struct {
	Name       string
	Email      string
	Phone      string
	RollNumber string
	Department string
	Address    string
	BloodGroup string
	Validity   string
	Image      File
}

// CollegeUpdate carries a branding update; Logo is optional.
type CollegeUpdate struct {
	Name    string
	Address string
	Logo    *File
}

// Asset kinds under the uploads tree.
const (
	AssetStudents = "students"
	AssetIDCards  = "idcards"
	AssetLogos    = "logos"
)
