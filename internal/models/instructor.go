package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-feedback-store/internal/regkey"
)

// Instructor roles as stored on the record.
const (
	RoleCoowner  = "Co-owner"
	RoleManager  = "Manager"
	RoleObserver = "Observer"
	RoleTutor    = "Tutor"
	RoleCustom   = "Custom"
)

const instructorKeySeparator = "%"

var ErrInvalidInstructorKey = errors.New("invalid instructor key")

// InstructorKey is the natural key of an instructor-course association.
type InstructorKey struct {
	Email    string
	CourseID string
}

// NewInstructorKey rejects empty components and components containing the separator,
// which keeps Encode injective.
func NewInstructorKey(email, courseID string) (InstructorKey, error) {
	if email == "" || courseID == "" {
		return InstructorKey{}, fmt.Errorf("%w: email and course id are required", ErrInvalidInstructorKey)
	}
	if strings.Contains(email, instructorKeySeparator) || strings.Contains(courseID, instructorKeySeparator) {
		return InstructorKey{}, fmt.Errorf("%w: %q may not appear in email or course id", ErrInvalidInstructorKey, instructorKeySeparator)
	}
	return InstructorKey{Email: email, CourseID: courseID}, nil
}

// Encode renders the key as email%courseId, e.g. adam@gmail.com%cs1101.
func (k InstructorKey) Encode() string {
	return k.Email + instructorKeySeparator + k.CourseID
}

// ParseInstructorKey is the inverse of Encode.
func ParseInstructorKey(id string) (InstructorKey, error) {
	email, courseID, ok := strings.Cut(id, instructorKeySeparator)
	if !ok {
		return InstructorKey{}, fmt.Errorf("%w: missing separator in %q", ErrInvalidInstructorKey, id)
	}
	return NewInstructorKey(email, courseID)
}

// InstructorVisibility records whether an instructor is shown to students.
// Unset covers records written before the flag existed.
type InstructorVisibility int

const (
	VisibilityUnset InstructorVisibility = iota
	VisibilityVisible
	VisibilityHidden
)

// VisibilityOf maps a display flag onto a visibility.
func VisibilityOf(displayed bool) InstructorVisibility {
	if displayed {
		return VisibilityVisible
	}
	return VisibilityHidden
}

// Value stores the visibility as a nullable boolean.
func (v InstructorVisibility) Value() (driver.Value, error) {
	switch v {
	case VisibilityVisible:
		return true, nil
	case VisibilityHidden:
		return false, nil
	default:
		return nil, nil
	}
}

// Scan implements sql.Scanner.
func (v *InstructorVisibility) Scan(src interface{}) error {
	switch val := src.(type) {
	case nil:
		*v = VisibilityUnset
	case bool:
		*v = VisibilityOf(val)
	default:
		return fmt.Errorf("scan instructor visibility: unsupported type %T", src)
	}
	return nil
}

// Instructor associates an account with a course it teaches.
type Instructor struct {
	ID              string               `db:"id" json:"id"`
	GoogleID        *string              `db:"google_id" json:"google_id,omitempty"`
	CourseID        string               `db:"course_id" json:"course_id"`
	IsArchived      bool                 `db:"is_archived" json:"is_archived"`
	Name            string               `db:"name" json:"name"`
	Email           string               `db:"email" json:"email"`
	RegistrationKey string               `db:"registration_key" json:"-"`
	Role            string               `db:"role" json:"role"`
	Visibility      InstructorVisibility `db:"is_displayed_to_students" json:"-"`
	DisplayedName   string               `db:"displayed_name" json:"displayed_name"`
	Privileges      string               `db:"instructor_privileges" json:"instructor_privileges"`
}

// NewInstructorParams carries the caller-supplied fields of a new instructor.
// Privileges is serialized structured data and is stored verbatim.
type NewInstructorParams struct {
	GoogleID              string
	CourseID              string
	IsArchived            bool
	Name                  string
	Email                 string
	Role                  string
	IsDisplayedToStudents bool
	DisplayedName         string
	Privileges            string
}

// NewInstructor builds an instructor, deriving its id from email and course and then its registration key.
func NewInstructor(p NewInstructorParams, keys regkey.Generator) (*Instructor, error) {
	inst := &Instructor{
		CourseID:      p.CourseID,
		IsArchived:    p.IsArchived,
		Name:          p.Name,
		Email:         p.Email,
		Role:          p.Role,
		Visibility:    VisibilityOf(p.IsDisplayedToStudents),
		DisplayedName: p.DisplayedName,
		Privileges:    p.Privileges,
	}
	if p.GoogleID != "" {
		googleID := p.GoogleID
		inst.GoogleID = &googleID
	}

	// id must be set after email and course id, and before the registration key.
	if err := inst.Rekey(); err != nil {
		return nil, err
	}

	regKey, err := keys.Generate(inst.ID)
	if err != nil {
		return nil, fmt.Errorf("generate registration key: %w", err)
	}
	inst.RegistrationKey = regKey
	return inst, nil
}

// Key returns the natural key for the current email and course id.
func (i *Instructor) Key() (InstructorKey, error) {
	return NewInstructorKey(i.Email, i.CourseID)
}

// Rekey recomputes ID from Email and CourseID. Changing either field does not do this automatically.
func (i *Instructor) Rekey() error {
	key, err := i.Key()
	if err != nil {
		return err
	}
	i.ID = key.Encode()
	return nil
}

// IsDisplayedToStudents defaults to true when the flag was never set.
func (i *Instructor) IsDisplayedToStudents() bool {
	return i.Visibility != VisibilityHidden
}

func (i *Instructor) SetDisplayedToStudents(displayed bool) {
	i.Visibility = VisibilityOf(displayed)
}
