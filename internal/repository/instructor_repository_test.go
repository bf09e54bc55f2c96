package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-feedback-store/internal/models"
	appErrors "github.com/noah-isme/sma-feedback-store/pkg/errors"
)

var instructorRowColumns = []string{
	"id", "google_id", "course_id", "is_archived", "name", "email", "registration_key", "role",
	"is_displayed_to_students", "displayed_name", "instructor_privileges",
}

func newInstructorRepoMock(t *testing.T) (*InstructorRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	repo := NewInstructorRepository(sqlx.NewDb(db, "sqlmock"), zap.NewNop(), nil)
	return repo, mock, func() { db.Close() }
}

func sampleInstructor(name string) *models.Instructor {
	return &models.Instructor{
		ID:              "adam@gmail.com%CS1101",
		CourseID:        "CS1101",
		Name:            name,
		Email:           "adam@gmail.com",
		RegistrationKey: "adam@gmail.com%CS1101-42",
		Role:            models.RoleCoowner,
		Visibility:      models.VisibilityVisible,
		DisplayedName:   "Instructor",
		Privileges:      `{"canModifyCourse":true}`,
	}
}

func instructorRow(rows *sqlmock.Rows, i *models.Instructor) *sqlmock.Rows {
	visible, _ := i.Visibility.Value()
	var googleID interface{}
	if i.GoogleID != nil {
		googleID = *i.GoogleID
	}
	return rows.AddRow(i.ID, googleID, i.CourseID, i.IsArchived, i.Name, i.Email, i.RegistrationKey, i.Role,
		visible, i.DisplayedName, i.Privileges)
}

func TestInstructorRepositoryPutOverwrites(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	first := sampleInstructor("Adam")
	second := sampleInstructor("Adam Smith")
	second.SetDisplayedToStudents(false)

	upsert := regexp.QuoteMeta("INSERT INTO instructors") + ".*" + regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")
	mock.ExpectExec(upsert).
		WithArgs(first.ID, nil, "CS1101", false, "Adam", "adam@gmail.com", first.RegistrationKey, models.RoleCoowner,
			true, "Instructor", first.Privileges).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsert).
		WithArgs(second.ID, nil, "CS1101", false, "Adam Smith", "adam@gmail.com", second.RegistrationKey, models.RoleCoowner,
			false, "Instructor", second.Privileges).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE id = $1 LIMIT 1")).
		WithArgs("adam@gmail.com%CS1101").
		WillReturnRows(instructorRow(sqlmock.NewRows(instructorRowColumns), second))

	require.NoError(t, repo.Put(context.Background(), first))
	require.NoError(t, repo.Put(context.Background(), second))

	got, err := repo.FindByKey(context.Background(), models.InstructorKey{Email: "adam@gmail.com", CourseID: "CS1101"})
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.False(t, got.IsDisplayedToStudents())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryPutRequiresID(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	assert.ErrorIs(t, repo.Put(context.Background(), nil), appErrors.ErrNullInput)
	assert.ErrorIs(t, repo.Put(context.Background(), &models.Instructor{Email: "adam@gmail.com"}), appErrors.ErrNullInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByKeyNotFound(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE id = $1 LIMIT 1")).
		WithArgs("nobody@gmail.com%CS1101").
		WillReturnRows(sqlmock.NewRows(instructorRowColumns))

	got, err := repo.FindByKey(context.Background(), models.InstructorKey{Email: "nobody@gmail.com", CourseID: "CS1101"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByRegistrationKey(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	stored := sampleInstructor("Adam")
	stored.Visibility = models.VisibilityUnset
	googleID := "adam.google"
	stored.GoogleID = &googleID

	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE registration_key = $1 LIMIT 1")).
		WithArgs(stored.RegistrationKey).
		WillReturnRows(instructorRow(sqlmock.NewRows(instructorRowColumns), stored))

	got, err := repo.FindByRegistrationKey(context.Background(), stored.RegistrationKey)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	assert.True(t, got.IsDisplayedToStudents(), "unset visibility defaults to displayed")
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.FindByRegistrationKey(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrNullInput)
}

func TestInstructorRepositoryListByCourse(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	other := sampleInstructor("Beth")
	other.Email = "beth@gmail.com"
	other.ID = "beth@gmail.com%CS1101"

	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE course_id = $1")).
		WithArgs("CS1101").
		WillReturnRows(instructorRow(instructorRow(sqlmock.NewRows(instructorRowColumns), sampleInstructor("Adam")), other))
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE course_id = $1")).
		WithArgs("CS2103").
		WillReturnRows(sqlmock.NewRows(instructorRowColumns))

	list, err := repo.ListByCourse(context.Background(), "CS1101")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "beth@gmail.com", list[1].Email)

	empty, err := repo.ListByCourse(context.Background(), "CS2103")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryDelete(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM instructors WHERE id = $1")).
		WithArgs("adam@gmail.com%CS1101").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), models.InstructorKey{Email: "adam@gmail.com", CourseID: "CS1101"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryDeleteByCourse(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM instructors WHERE course_id = $1")).
		WithArgs("CS1101").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByCourse(context.Background(), "CS1101"))
	assert.ErrorIs(t, repo.DeleteByCourse(context.Background(), ""), appErrors.ErrNullInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
