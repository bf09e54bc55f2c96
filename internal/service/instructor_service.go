package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-feedback-store/internal/models"
	"github.com/noah-isme/sma-feedback-store/internal/regkey"
	"github.com/noah-isme/sma-feedback-store/internal/validator"
	appErrors "github.com/noah-isme/sma-feedback-store/pkg/errors"
)

type instructorRepository interface {
	Put(ctx context.Context, instructor *models.Instructor) error
	FindByKey(ctx context.Context, key models.InstructorKey) (*models.Instructor, error)
	FindByRegistrationKey(ctx context.Context, regKey string) (*models.Instructor, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Instructor, error)
	Delete(ctx context.Context, key models.InstructorKey) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

// AddInstructorRequest represents payload for adding an instructor to a course.
type AddInstructorRequest struct {
	GoogleID              string `json:"google_id" validate:"omitempty,max=254"`
	CourseID              string `json:"course_id" validate:"required,max=64,course_id"`
	Name                  string `json:"name" validate:"required,max=100"`
	Email                 string `json:"email" validate:"required,email,max=254"`
	Role                  string `json:"role" validate:"required,oneof=Co-owner Manager Observer Tutor Custom"`
	IsDisplayedToStudents bool   `json:"is_displayed_to_students"`
	DisplayedName         string `json:"displayed_name" validate:"max=100"`
	Privileges            string `json:"instructor_privileges" validate:"omitempty,json"`
}

// InstructorService orchestrates instructor operations.
type InstructorService struct {
	repo      instructorRepository
	keys      regkey.Generator
	validator *validator.Validator
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService. keys defaults to a crypto/rand generator.
func NewInstructorService(repo instructorRepository, keys regkey.Generator, validate *validator.Validator, logger *zap.Logger) *InstructorService {
	if keys == nil {
		keys = regkey.NewSecureRandom()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, keys: keys, validator: validate, logger: logger}
}

// Add creates an instructor with a fresh registration key. An instructor may join a course only once.
func (s *InstructorService) Add(ctx context.Context, req AddInstructorRequest) (*models.Instructor, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.CourseID = strings.TrimSpace(req.CourseID)
	req.Name = strings.TrimSpace(req.Name)
	if violations := s.validator.Struct(req); len(violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidParameters, "", violations)
	}
	if req.DisplayedName == "" {
		req.DisplayedName = "Instructor"
	}

	instructor, err := models.NewInstructor(models.NewInstructorParams{
		GoogleID:              req.GoogleID,
		CourseID:              req.CourseID,
		Name:                  req.Name,
		Email:                 req.Email,
		Role:                  req.Role,
		IsDisplayedToStudents: req.IsDisplayedToStudents,
		DisplayedName:         req.DisplayedName,
		Privileges:            req.Privileges,
	}, s.keys)
	if errors.Is(err, models.ErrInvalidInstructorKey) {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidParameters, "", []string{err.Error()})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}

	key, _ := instructor.Key()
	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrEntityAlreadyExists, "instructor already belongs to course")
	}

	if err := s.repo.Put(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save instructor")
	}
	s.logger.Info("instructor added", zap.String("instructor_id", instructor.ID), zap.String("course_id", instructor.CourseID))
	return instructor, nil
}

// Get returns the instructor of a course by email.
func (s *InstructorService) Get(ctx context.Context, email, courseID string) (*models.Instructor, error) {
	key, err := models.NewInstructorKey(email, courseID)
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidParameters, "", []string{err.Error()})
	}
	instructor, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if instructor == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	return instructor, nil
}

// GetByRegistrationKey resolves the instructor a join link was issued to.
func (s *InstructorService) GetByRegistrationKey(ctx context.Context, regKey string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByRegistrationKey(ctx, strings.TrimSpace(regKey))
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	if instructor == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	return instructor, nil
}

// ListByCourse returns every instructor of a course.
func (s *InstructorService) ListByCourse(ctx context.Context, courseID string) ([]models.Instructor, error) {
	instructors, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

// SetDisplayedToStudents toggles whether students see the instructor.
func (s *InstructorService) SetDisplayedToStudents(ctx context.Context, email, courseID string, displayed bool) (*models.Instructor, error) {
	instructor, err := s.Get(ctx, email, courseID)
	if err != nil {
		return nil, err
	}
	instructor.SetDisplayedToStudents(displayed)
	if err := s.repo.Put(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save instructor")
	}
	return instructor, nil
}

// Remove deletes an instructor from a course. Removing an absent instructor succeeds.
func (s *InstructorService) Remove(ctx context.Context, email, courseID string) error {
	key, err := models.NewInstructorKey(email, courseID)
	if err != nil {
		return appErrors.WithDetails(appErrors.ErrInvalidParameters, "", []string{err.Error()})
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	s.logger.Info("instructor removed", zap.String("instructor_id", key.Encode()))
	return nil
}

// RemoveCourse deletes every instructor of a course.
func (s *InstructorService) RemoveCourse(ctx context.Context, courseID string) error {
	if err := s.repo.DeleteByCourse(ctx, courseID); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}
