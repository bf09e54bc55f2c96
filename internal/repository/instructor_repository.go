package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-feedback-store/internal/models"
	"github.com/noah-isme/sma-feedback-store/pkg/datastore"
	appErrors "github.com/noah-isme/sma-feedback-store/pkg/errors"
)

const instructorColumns = `id, google_id, course_id, is_archived, name, email, registration_key, role,
	is_displayed_to_students, displayed_name, instructor_privileges`

// InstructorRepository persists instructor-course associations keyed by email%courseId.
type InstructorRepository struct {
	db      *sqlx.DB
	logger  *zap.Logger
	metrics QueryObserver
}

// NewInstructorRepository constructs an InstructorRepository. metrics may be nil.
func NewInstructorRepository(db *sqlx.DB, logger *zap.Logger, metrics QueryObserver) *InstructorRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorRepository{db: db, logger: logger, metrics: metrics}
}

// Put writes the instructor under its id, replacing any record already stored there.
func (r *InstructorRepository) Put(ctx context.Context, instructor *models.Instructor) error {
	if instructor == nil || instructor.ID == "" {
		return appErrors.Clone(appErrors.ErrNullInput, "instructor id is required")
	}

	const query = `INSERT INTO instructors (id, google_id, course_id, is_archived, name, email, registration_key, role,
		is_displayed_to_students, displayed_name, instructor_privileges)
		VALUES (:id, :google_id, :course_id, :is_archived, :name, :email, :registration_key, :role,
		:is_displayed_to_students, :displayed_name, :instructor_privileges)
		ON CONFLICT (id) DO UPDATE SET google_id = EXCLUDED.google_id, course_id = EXCLUDED.course_id,
		is_archived = EXCLUDED.is_archived, name = EXCLUDED.name, email = EXCLUDED.email,
		registration_key = EXCLUDED.registration_key, role = EXCLUDED.role,
		is_displayed_to_students = EXCLUDED.is_displayed_to_students, displayed_name = EXCLUDED.displayed_name,
		instructor_privileges = EXCLUDED.instructor_privileges`
	if err := observe(r.metrics, "put instructor", func() error {
		_, err := r.db.NamedExecContext(ctx, query, instructor)
		return err
	}); err != nil {
		return fmt.Errorf("put instructor: %w", err)
	}
	return nil
}

// FindByKey returns the instructor for an email and course, or nil if there is none.
func (r *InstructorRepository) FindByKey(ctx context.Context, key models.InstructorKey) (*models.Instructor, error) {
	return r.first(ctx, "get instructor", datastore.NewFilter().Eq("id", key.Encode()))
}

// FindByRegistrationKey returns the instructor holding regKey, or nil if there is none.
func (r *InstructorRepository) FindByRegistrationKey(ctx context.Context, regKey string) (*models.Instructor, error) {
	if regKey == "" {
		return nil, appErrors.Clone(appErrors.ErrNullInput, "registration key is required")
	}
	return r.first(ctx, "get instructor by registration key", datastore.NewFilter().Eq("registration_key", regKey))
}

// ListByCourse returns every instructor of a course. The result is never nil.
func (r *InstructorRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Instructor, error) {
	where, args := datastore.NewFilter().Eq("course_id", courseID).Where()
	query := "SELECT " + instructorColumns + " FROM instructors" + where

	instructors := []models.Instructor{}
	if err := observe(r.metrics, "list instructors for course", func() error {
		return r.db.SelectContext(ctx, &instructors, query, args...)
	}); err != nil {
		return nil, fmt.Errorf("list instructors for course: %w", err)
	}
	return instructors, nil
}

// Delete removes the instructor for key. Missing records are not errors.
func (r *InstructorRepository) Delete(ctx context.Context, key models.InstructorKey) error {
	const query = `DELETE FROM instructors WHERE id = $1`
	if err := observe(r.metrics, "delete instructor", func() error {
		_, err := r.db.ExecContext(ctx, query, key.Encode())
		return err
	}); err != nil {
		return fmt.Errorf("delete instructor: %w", err)
	}
	return nil
}

// DeleteByCourse removes every instructor of a course.
func (r *InstructorRepository) DeleteByCourse(ctx context.Context, courseID string) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrNullInput, "course id is required")
	}
	const query = `DELETE FROM instructors WHERE course_id = $1`
	var removed int64
	if err := observe(r.metrics, "delete instructors for course", func() error {
		res, err := r.db.ExecContext(ctx, query, courseID)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		return nil
	}); err != nil {
		return fmt.Errorf("delete instructors for course: %w", err)
	}
	r.logger.Debug("deleted instructors for course", zap.String("course_id", courseID), zap.Int64("count", removed))
	return nil
}

func (r *InstructorRepository) first(ctx context.Context, operation string, filter datastore.Filter) (*models.Instructor, error) {
	where, args := filter.Where()
	query := "SELECT " + instructorColumns + " FROM instructors" + where + " LIMIT 1"

	var instructor models.Instructor
	err := observe(r.metrics, operation, func() error {
		return r.db.GetContext(ctx, &instructor, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &instructor, nil
}
