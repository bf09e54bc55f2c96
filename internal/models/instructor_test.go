package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/noah-isme/sma-feedback-store/internal/regkey"
)

func fixedKeys(suffix string) regkey.Generator {
	return regkey.GeneratorFunc(func(id string) (string, error) { return id + suffix, nil })
}

func TestNewInstructorDerivesIDThenRegistrationKey(t *testing.T) {
	inst, err := NewInstructor(NewInstructorParams{
		GoogleID:              "adam.google",
		CourseID:              "CS1101",
		Name:                  "Adam",
		Email:                 "adam@gmail.com",
		Role:                  RoleCoowner,
		IsDisplayedToStudents: true,
		DisplayedName:         "Instructor",
		Privileges:            `{"canmodifycourse":true}`,
	}, fixedKeys("-42"))
	require.NoError(t, err)

	assert.Equal(t, "adam@gmail.com%CS1101", inst.ID)
	assert.Equal(t, "adam@gmail.com%CS1101-42", inst.RegistrationKey)
	require.NotNil(t, inst.GoogleID)
	assert.Equal(t, "adam.google", *inst.GoogleID)
	assert.Equal(t, `{"canmodifycourse":true}`, inst.Privileges)
	assert.True(t, inst.IsDisplayedToStudents())
}

func TestNewInstructorWithoutGoogleID(t *testing.T) {
	inst, err := NewInstructor(NewInstructorParams{CourseID: "CS1101", Email: "adam@gmail.com"}, regkey.NewSecureRandom())
	require.NoError(t, err)
	assert.Nil(t, inst.GoogleID)
	assert.True(t, strings.HasPrefix(inst.RegistrationKey, inst.ID))
}

func TestNewInstructorSameEmailAndCourseShareID(t *testing.T) {
	first, err := NewInstructor(NewInstructorParams{CourseID: "CS1101", Email: "adam@gmail.com", Name: "Adam", Role: RoleTutor}, regkey.NewSecureRandom())
	require.NoError(t, err)
	second, err := NewInstructor(NewInstructorParams{CourseID: "CS1101", Email: "adam@gmail.com", Name: "Adam B", Role: RoleManager, IsArchived: true}, regkey.NewSecureRandom())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestNewInstructorRejectsSeparator(t *testing.T) {
	_, err := NewInstructor(NewInstructorParams{CourseID: "CS%1101", Email: "adam@gmail.com"}, fixedKeys(""))
	assert.ErrorIs(t, err, ErrInvalidInstructorKey)

	_, err = NewInstructor(NewInstructorParams{CourseID: "CS1101"}, fixedKeys(""))
	assert.ErrorIs(t, err, ErrInvalidInstructorKey)
}

func TestNewInstructorGeneratorFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	_, err := NewInstructor(NewInstructorParams{CourseID: "CS1101", Email: "adam@gmail.com"},
		regkey.GeneratorFunc(func(string) (string, error) { return "", boom }))
	assert.ErrorIs(t, err, boom)
}

func TestInstructorIDIsNotRecomputedOnMutation(t *testing.T) {
	inst, err := NewInstructor(NewInstructorParams{CourseID: "CS1101", Email: "adam@gmail.com"}, fixedKeys("1"))
	require.NoError(t, err)

	inst.Email = "eve@gmail.com"
	assert.Equal(t, "adam@gmail.com%CS1101", inst.ID)

	require.NoError(t, inst.Rekey())
	assert.Equal(t, "eve@gmail.com%CS1101", inst.ID)
	assert.Equal(t, "adam@gmail.com%CS11011", inst.RegistrationKey)
}

func TestIsDisplayedToStudents(t *testing.T) {
	inst := &Instructor{}
	assert.True(t, inst.IsDisplayedToStudents(), "unset visibility defaults to displayed")

	inst.SetDisplayedToStudents(false)
	assert.False(t, inst.IsDisplayedToStudents())

	inst.SetDisplayedToStudents(true)
	assert.True(t, inst.IsDisplayedToStudents())
}

func TestInstructorVisibilityScanAndValue(t *testing.T) {
	var v InstructorVisibility
	require.NoError(t, v.Scan(nil))
	assert.Equal(t, VisibilityUnset, v)
	require.NoError(t, v.Scan(false))
	assert.Equal(t, VisibilityHidden, v)
	assert.Error(t, v.Scan("yes"))

	val, err := VisibilityUnset.Value()
	require.NoError(t, err)
	assert.Nil(t, val)
	val, err = VisibilityVisible.Value()
	require.NoError(t, err)
	assert.Equal(t, true, val)
}

func TestParseInstructorKey(t *testing.T) {
	key, err := ParseInstructorKey("adam@gmail.com%cs1101")
	require.NoError(t, err)
	assert.Equal(t, InstructorKey{Email: "adam@gmail.com", CourseID: "cs1101"}, key)

	for _, bad := range []string{"", "adam@gmail.com", "%cs1101", "adam@gmail.com%", "a%b%c"} {
		_, err := ParseInstructorKey(bad)
		assert.ErrorIs(t, err, ErrInvalidInstructorKey, bad)
	}
}

func TestInstructorKeyEncodeIsInjective_Property(t *testing.T) {
	component := rapid.StringMatching(`[^%]{1,30}`)

	rapid.Check(t, func(rt *rapid.T) {
		a, err := NewInstructorKey(component.Draw(rt, "emailA"), component.Draw(rt, "courseA"))
		if err != nil {
			rt.Fatalf("valid components rejected: %v", err)
		}
		b, err := NewInstructorKey(component.Draw(rt, "emailB"), component.Draw(rt, "courseB"))
		if err != nil {
			rt.Fatalf("valid components rejected: %v", err)
		}

		decoded, err := ParseInstructorKey(a.Encode())
		if err != nil || decoded != a {
			rt.Fatalf("round trip of %+v gave %+v (%v)", a, decoded, err)
		}
		if a != b && a.Encode() == b.Encode() {
			rt.Fatalf("distinct keys %+v and %+v share encoding %q", a, b, a.Encode())
		}
	})
}
