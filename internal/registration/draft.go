package registration

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BloodGroups lists the accepted blood group values in display order.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ErrInvalidDraft is wrapped by every validation failure.
var ErrInvalidDraft = errors.New("registration incomplete")

// Fields are the text values of a draft.
type Fields struct {
	Name       string `form:"name" validate:"required"`
	Email      string `form:"email" validate:"required"`
	Phone      string `form:"phone" validate:"required"`
	RollNumber string `form:"rollNumber" validate:"required"`
	Department string `form:"department" validate:"required"`
	Address    string `form:"address" validate:"required"`
	BloodGroup string `form:"bloodGroup" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Validity   string `form:"validity" validate:"required"`
}

// Empty reports whether no field holds a value.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// ValidationError names the form fields that blocked a submit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidDraft }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check enforces presence of every field and the photo, and the fixed
// blood group choices. No format checks beyond that.
func check(f Fields, hasPhoto bool) error {
	var missing []string
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
	}
	if !hasPhoto {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
