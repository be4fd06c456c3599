package web

import "idcard/internal/app"

type input struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Invalid     bool
}

// inputs lists the text inputs of the registration form in display order.
// Blood group and photo are rendered separately.
func inputs(p *app.PublicPage) []input {
	f := p.Fields
	list := []input{
		{Name: "name", Label: "Full Name", Type: "text", Value: f.Name},
		{Name: "email", Label: "Email", Type: "email", Value: f.Email},
		{Name: "phone", Label: "Phone", Type: "tel", Value: f.Phone},
		{Name: "rollNumber", Label: "Roll Number", Type: "text", Value: f.RollNumber},
		{Name: "department", Label: "Department", Type: "text", Value: f.Department},
		{Name: "address", Label: "Address", Type: "text", Value: f.Address},
		{Name: "validity", Label: "Validity", Type: "text", Placeholder: "2022-2025", Value: f.Validity},
	}
	for i := range list {
		list[i].Invalid = p.Invalid[list[i].Name]
	}
	return list
}
