package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smileynet/otakublog/internal/contact"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// MinFirstNameLen and MinAddressLen are the minimum lengths after trimming.
const (
	MinFirstNameLen = 2
	MinAddressLen   = 10
)

// checked is the validated view of a draft: strings trimmed, enums as plain
// strings. Tags name the rule that failed; messages are looked up in
// messages by field and tag.
type checked struct {
	FirstName    string    `json:"firstName" validate:"required,min=2"`
	LastName     string    `json:"lastName" validate:"required"`
	Email        string    `json:"email" validate:"required,emailaddr"`
	MobileNumber string    `json:"mobileNumber" validate:"required,mobile"`
	Gender       string    `json:"gender" validate:"required,oneof=male female other"`
	Languages    []string  `json:"lang" validate:"min=1,dive,oneof=tamil english japanese"`
	Date         time.Time `json:"date" validate:"datepresent,notfuture"`
	Address      string    `json:"address" validate:"required,min=10"`
	Status       string    `json:"status" validate:"required,oneof=school college working"`
	Course       string    `json:"courses" validate:"required,oneof=engineering arts poly"`
}

// messages maps field name and failed tag to the message shown to the user.
var messages = map[Field]map[string]string{
	FieldFirstName: {
		"required": "First Name is required",
		"min":      "First Name must be at least 2 characters",
	},
	FieldLastName: {
		"required": "Last Name is required",
	},
	FieldEmail: {
		"required":  "Email is required",
		"emailaddr": "Please enter a valid email address",
	},
	FieldMobileNumber: {
		"required": "Mobile number is required",
		"mobile":   "Please enter a valid 10-digit mobile number",
	},
	FieldGender: {
		"required": "Please select a gender",
		"oneof":    "Please select a valid gender",
	},
	FieldLanguages: {
		"min":   "Please select at least one language",
		"oneof": "Please select a valid language",
	},
	FieldDate: {
		"datepresent": "Please select a date",
		"notfuture":   "Date of birth cannot be in the future",
	},
	FieldAddress: {
		"required": "Address is required",
		"min":      "Address must be at least 10 characters",
	},
	FieldStatus: {
		"required": "Please select your status",
		"oneof":    "Please select a valid status",
	},
	FieldCourse: {
		"required": "Please select a course",
		"oneof":    "Please select a valid course",
	},
}

// Validator runs the form rules against a draft.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator builds a Validator. now decides what "the future" means.
func NewValidator(now func() time.Time) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("datepresent", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero()
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !dateAfter(t, now())
	})
	return &Validator{v: v, now: now}
}

// dateAfter compares calendar dates, so any time on today counts as today.
func dateAfter(t, today time.Time) bool {
	ty, tm, td := t.In(today.Location()).Date()
	ny, nm, nd := today.Date()
	if ty != ny {
		return ty > ny
	}
	if tm != nm {
		return tm > nm
	}
	return td > nd
}

// Validate returns a message for every failing field, or an empty map.
func (val *Validator) Validate(r contact.Record) Errors {
	c := checked{
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Email:        strings.TrimSpace(r.Email),
		MobileNumber: strings.TrimSpace(r.MobileNumber),
		Gender:       string(r.Gender),
		Languages:    make([]string, len(r.Languages)),
		Date:         r.DateOfBirth,
		Address:      strings.TrimSpace(r.Address),
		Status:       string(r.Status),
		Course:       string(r.Course),
	}
	for i, l := range r.Languages {
		c.Languages[i] = string(l)
	}

	errs := Errors{}
	err := val.v.Struct(c)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		field := Field(fe.Field())
		if strings.HasPrefix(string(field), string(FieldLanguages)+"[") {
			field = FieldLanguages
		}
		if _, exists := errs[field]; exists {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		errs[field] = msg
	}
	return errs
}
