// Package relay stores contact, partner and job application submissions and
// forwards them to the site administrators by email.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/azenia/website/internal/db"
)

// Option lists offered by the contact and partner forms.
var (
	ContactCategories = []Option{
		{"job-seeker", "Job Seeker"},
		{"employer", "Employer/Client"},
		{"vendor", "Vendor/Partner"},
		{"media", "Media/Press"},
		{"other", "Other"},
	}
	PartnerServices = []Option{
		{"staff-augmentation", "Staff Augmentation"},
		{"direct-hire", "Direct Hire"},
		{"professional-services", "Professional Services"},
		{"other", "Other"},
	}
	PartnerSpecialties = []Option{
		{"technology", "Technology"},
		{"finance", "Finance & Accounting"},
		{"legal", "Legal"},
		{"healthcare", "Healthcare"},
		{"energy", "Energy & Utilities"},
		{"other", "Other"},
	}
	PartnerOffices = []Option{
		{"atlanta", "Atlanta"},
		{"boston", "Boston"},
		{"chicago", "Chicago"},
		{"dallas", "Dallas"},
		{"denver", "Denver"},
		{"houston", "Houston"},
		{"los-angeles", "Los Angeles"},
		{"new-york", "New York"},
		{"san-francisco", "San Francisco"},
		{"seattle", "Seattle"},
	}
)

// Option is a select value with its display label.
type Option struct {
	Value string
	Label string
}

// ValidationError reports a submission rejected at the boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Field is one labelled line of the notification email.
type Field struct {
	Label string
	Value string
	// Block values are rendered as their own paragraph.
	Block bool
}

// Submission is a decoded contact or partner form.
type Submission interface {
	Kind() string
	Subject() string
	Record() db.SubmissionInput
	// Fields returns the variant specific lines of the notification email,
	// skipping empty values.
	Fields() []Field
	person() *Person
}

// Person carries the fields shared by both forms.
type Person struct {
	Type              string `json:"type" validate:"required"`
	FirstName         string `json:"firstName" validate:"required,max=100"`
	LastName          string `json:"lastName" validate:"required,max=100"`
	Email             string `json:"email" validate:"required,email,max=254"`
	AgreeToNewsletter bool   `json:"agreeToNewsletter"`
	AgreeToContact    bool   `json:"agreeToContact"`
}

func (p *Person) person() *Person { return p }

// ContactForm is the general contact form.
type ContactForm struct {
	Person
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,max=40"`
	Category    string `json:"category" validate:"required,oneof=job-seeker employer vendor media other"`
	Message     string `json:"message" validate:"required,max=5000"`
}

func (f *ContactForm) Kind() string    { return db.SubmissionTypeContact }
func (f *ContactForm) Subject() string { return "New Contact Form Submission" }

func (f *ContactForm) Record() db.SubmissionInput {
	return db.SubmissionInput{
		Type:              db.SubmissionTypeContact,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Email:             f.Email,
		PhoneNumber:       optional(f.PhoneNumber),
		Category:          optional(f.Category),
		Message:           optional(f.Message),
		AgreeToNewsletter: f.AgreeToNewsletter,
		AgreeToContact:    f.AgreeToContact,
	}
}

func (f *ContactForm) Fields() []Field {
	return compact([]Field{
		{Label: "Category", Value: f.Category},
		{Label: "Message", Value: f.Message, Block: true},
	})
}

// PartnerForm is the "Partner With Us" staffing inquiry.
type PartnerForm struct {
	Person
	PhoneNumber     string `json:"phoneNumber" validate:"required,max=40"`
	CompanyName     string `json:"companyName" validate:"required,max=200"`
	JobTitle        string `json:"jobTitle" validate:"required,max=200"`
	ServiceRequired string `json:"serviceRequired" validate:"required,oneof=staff-augmentation direct-hire professional-services other"`
	SpecialtyNeeded string `json:"specialtyNeeded" validate:"required,oneof=technology finance legal healthcare energy other"`
	OfficeLocation  string `json:"officeLocation" validate:"required,oneof=atlanta boston chicago dallas denver houston los-angeles new-york san-francisco seattle"`
	Details         string `json:"details" validate:"required,max=5000"`
}

func (f *PartnerForm) Kind() string    { return db.SubmissionTypePartner }
func (f *PartnerForm) Subject() string { return "New Partner With Us Form Submission" }

func (f *PartnerForm) Record() db.SubmissionInput {
	return db.SubmissionInput{
		Type:              db.SubmissionTypePartner,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Email:             f.Email,
		PhoneNumber:       optional(f.PhoneNumber),
		CompanyName:       optional(f.CompanyName),
		JobTitle:          optional(f.JobTitle),
		ServiceRequired:   optional(f.ServiceRequired),
		SpecialtyNeeded:   optional(f.SpecialtyNeeded),
		OfficeLocation:    optional(f.OfficeLocation),
		Details:           optional(f.Details),
		AgreeToNewsletter: f.AgreeToNewsletter,
		AgreeToContact:    f.AgreeToContact,
	}
}

func (f *PartnerForm) Fields() []Field {
	return compact([]Field{
		{Label: "Company", Value: f.CompanyName},
		{Label: "Job Title", Value: f.JobTitle},
		{Label: "Service Required", Value: f.ServiceRequired},
		{Label: "Specialty Needed", Value: f.SpecialtyNeeded},
		{Label: "Office Location", Value: f.OfficeLocation},
		{Label: "Details", Value: f.Details, Block: true},
	})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so errors match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeSubmission reads a JSON submission, selects the variant named by its
// "type" field and rejects fields that variant does not carry.
func DecodeSubmission(r io.Reader) (Submission, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission: %w", err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	sub, err := newSubmission(head.Type)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(sub); err != nil {
		return nil, decodeError(err)
	}
	if err := check(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubmissionFromForm builds a submission of the given kind from an HTML form
// post. Checkbox values are true when present.
func SubmissionFromForm(kind string, form url.Values) (Submission, error) {
	sub, err := newSubmission(kind)
	if err != nil {
		return nil, err
	}

	p := sub.person()
	p.Type = kind
	p.FirstName = form.Get("firstName")
	p.LastName = form.Get("lastName")
	p.Email = form.Get("email")
	p.AgreeToNewsletter = form.Has("agreeToNewsletter")
	p.AgreeToContact = form.Has("agreeToContact")

	switch s := sub.(type) {
	case *ContactForm:
		s.PhoneNumber = form.Get("phoneNumber")
		s.Category = form.Get("category")
		s.Message = form.Get("message")
	case *PartnerForm:
		s.PhoneNumber = form.Get("phoneNumber")
		s.CompanyName = form.Get("companyName")
		s.JobTitle = form.Get("jobTitle")
		s.ServiceRequired = form.Get("serviceRequired")
		s.SpecialtyNeeded = form.Get("specialtyNeeded")
		s.OfficeLocation = form.Get("officeLocation")
		s.Details = form.Get("details")
	}

	if err := check(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func newSubmission(kind string) (Submission, error) {
	switch kind {
	case db.SubmissionTypeContact:
		return &ContactForm{}, nil
	case db.SubmissionTypePartner:
		return &PartnerForm{}, nil
	case "":
		return nil, &ValidationError{Field: "type", Message: "required"}
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown submission type %q", kind)}
	}
}

func check(sub Submission) error {
	trimStrings(sub)
	if err := validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: verrs[0].Field(), Message: verrs[0].Tag()}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Field: typeErr.Field, Message: "must be " + typeErr.Type.String()}
	}
	if msg, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return &ValidationError{Field: strings.Trim(msg, `"`), Message: "not allowed for this submission type"}
	}
	return &ValidationError{Message: "invalid JSON body"}
}

// trimStrings trims surrounding whitespace from every string field.
func trimStrings(sub Submission) {
	p := sub.person()
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)

	switch s := sub.(type) {
	case *ContactForm:
		s.PhoneNumber = strings.TrimSpace(s.PhoneNumber)
		s.Message = strings.TrimSpace(s.Message)
	case *PartnerForm:
		s.PhoneNumber = strings.TrimSpace(s.PhoneNumber)
		s.CompanyName = strings.TrimSpace(s.CompanyName)
		s.JobTitle = strings.TrimSpace(s.JobTitle)
		s.Details = strings.TrimSpace(s.Details)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func compact(fields []Field) []Field {
	out := fields[:0]
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}
