package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-feedback-store/internal/models"
	"github.com/noah-isme/sma-feedback-store/internal/validator"
	"github.com/noah-isme/sma-feedback-store/pkg/datastore"
	appErrors "github.com/noah-isme/sma-feedback-store/pkg/errors"
)

// ErrUpdateNonExistentFeedbackQuestion prefixes the message of a failed update on a missing question.
const ErrUpdateNonExistentFeedbackQuestion = "Trying to update non-existent Feedback Question : "

const feedbackQuestionColumns = `id, feedback_session_name, course_id, question_number, question_type, question_text,
	question_description, giver_type, recipient_type, number_of_entities_to_give_feedback_to,
	show_responses_to, show_giver_name_to, show_recipient_name_to, created_at, updated_at`

// QueryObserver receives the timing and outcome of each datastore round-trip.
type QueryObserver interface {
	ObserveDBQuery(operation string, duration time.Duration, err error)
}

// feedbackQuestionEntity is the stored shape of a question; ID is the bare key name.
type feedbackQuestionEntity struct {
	ID                               string                         `db:"id"`
	FeedbackSessionName              string                         `db:"feedback_session_name"`
	CourseID                         string                         `db:"course_id"`
	QuestionNumber                   int                            `db:"question_number"`
	QuestionType                     models.FeedbackQuestionType    `db:"question_type"`
	QuestionText                     string                         `db:"question_text"`
	QuestionDescription              string                         `db:"question_description"`
	GiverType                        models.FeedbackParticipantType `db:"giver_type"`
	RecipientType                    models.FeedbackParticipantType `db:"recipient_type"`
	NumberOfEntitiesToGiveFeedbackTo int                            `db:"number_of_entities_to_give_feedback_to"`
	ShowResponsesTo                  models.ParticipantList         `db:"show_responses_to"`
	ShowGiverNameTo                  models.ParticipantList         `db:"show_giver_name_to"`
	ShowRecipientNameTo              models.ParticipantList         `db:"show_recipient_name_to"`
	CreatedAt                        time.Time                      `db:"created_at"`
	UpdatedAt                        time.Time                      `db:"updated_at"`
}

func (e *feedbackQuestionEntity) toModel() *models.FeedbackQuestion {
	return &models.FeedbackQuestion{
		ID:                               datastore.Key{Kind: models.FeedbackQuestionKind, Name: e.ID}.WebSafeString(),
		FeedbackSessionName:              e.FeedbackSessionName,
		CourseID:                         e.CourseID,
		QuestionNumber:                   e.QuestionNumber,
		QuestionType:                     e.QuestionType,
		QuestionDetails:                  e.QuestionText,
		QuestionDescription:              e.QuestionDescription,
		GiverType:                        e.GiverType,
		RecipientType:                    e.RecipientType,
		NumberOfEntitiesToGiveFeedbackTo: e.NumberOfEntitiesToGiveFeedbackTo,
		ShowResponsesTo:                  append(models.ParticipantList{}, e.ShowResponsesTo...),
		ShowGiverNameTo:                  append(models.ParticipantList{}, e.ShowGiverNameTo...),
		ShowRecipientNameTo:              append(models.ParticipantList{}, e.ShowRecipientNameTo...),
		CreatedAt:                        e.CreatedAt,
		UpdatedAt:                        e.UpdatedAt,
	}
}

// copyMutable copies the fields an update may change onto the stored entity.
func (e *feedbackQuestionEntity) copyMutable(q *models.FeedbackQuestion) {
	e.QuestionNumber = q.QuestionNumber
	e.QuestionText = q.QuestionDetails
	e.QuestionDescription = q.QuestionDescription
	e.GiverType = q.GiverType
	e.RecipientType = q.RecipientType
	e.ShowResponsesTo = q.ShowResponsesTo
	e.ShowGiverNameTo = q.ShowGiverNameTo
	e.ShowRecipientNameTo = q.ShowRecipientNameTo
	e.NumberOfEntitiesToGiveFeedbackTo = q.NumberOfEntitiesToGiveFeedbackTo
}

// FeedbackQuestionRepository handles CRUD operations for feedback questions.
type FeedbackQuestionRepository struct {
	db        *sqlx.DB
	validator *validator.Validator
	logger    *zap.Logger
	metrics   QueryObserver
	now       func() time.Time
}

// NewFeedbackQuestionRepository constructs a FeedbackQuestionRepository. metrics may be nil.
func NewFeedbackQuestionRepository(db *sqlx.DB, validate *validator.Validator, logger *zap.Logger, metrics QueryObserver) *FeedbackQuestionRepository {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackQuestionRepository{
		db:        db,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FindByID returns the question with the given web-safe key, or nil if there is none.
func (r *FeedbackQuestionRepository) FindByID(ctx context.Context, id string) (*models.FeedbackQuestion, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNullInput, "feedback question id is required")
	}
	entity, err := r.getEntity(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	return entity.toModel(), nil
}

// FindByQuestionNumber returns the question at questionNumber in a session, or nil if there is none.
func (r *FeedbackQuestionRepository) FindByQuestionNumber(ctx context.Context, feedbackSessionName, courseID string, questionNumber int) (*models.FeedbackQuestion, error) {
	entity, err := r.first(ctx, "get feedback question by number", models.FeedbackQuestionQuery{
		FeedbackSessionName: &feedbackSessionName,
		CourseID:            &courseID,
		QuestionNumber:      &questionNumber,
	})
	if err != nil || entity == nil {
		return nil, err
	}
	return entity.toModel(), nil
}

// ListBySession returns every question of a session. The result is never nil.
func (r *FeedbackQuestionRepository) ListBySession(ctx context.Context, feedbackSessionName, courseID string) ([]models.FeedbackQuestion, error) {
	return r.list(ctx, "list feedback questions for session", models.FeedbackQuestionQuery{
		FeedbackSessionName: &feedbackSessionName,
		CourseID:            &courseID,
	})
}

// ListByGiverType returns the questions of a session answered by giverType. The result is never nil.
func (r *FeedbackQuestionRepository) ListByGiverType(ctx context.Context, feedbackSessionName, courseID string, giverType models.FeedbackParticipantType) ([]models.FeedbackQuestion, error) {
	return r.list(ctx, "list feedback questions for giver type", models.FeedbackQuestionQuery{
		FeedbackSessionName: &feedbackSessionName,
		CourseID:            &courseID,
		GiverType:           &giverType,
	})
}

// HasExisting reports whether a question already occupies the candidate's session, course and number.
func (r *FeedbackQuestionRepository) HasExisting(ctx context.Context, candidate *models.FeedbackQuestion) (bool, error) {
	if candidate == nil {
		return false, appErrors.Clone(appErrors.ErrNullInput, "feedback question is required")
	}
	ids, err := r.keys(ctx, "check feedback question exists", models.FeedbackQuestionQuery{
		FeedbackSessionName: &candidate.FeedbackSessionName,
		CourseID:            &candidate.CourseID,
		QuestionNumber:      &candidate.QuestionNumber,
	}, 1)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// Create stores a new question and returns it with its assigned key.
func (r *FeedbackQuestionRepository) Create(ctx context.Context, question *models.FeedbackQuestion) (*models.FeedbackQuestion, error) {
	if question == nil {
		return nil, appErrors.Clone(appErrors.ErrNullInput, "feedback question is required")
	}
	candidate := *question
	candidate.SanitizeForSaving()
	if violations := r.validator.Struct(candidate); len(violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidParameters, "", violations)
	}

	exists, err := r.HasExisting(ctx, &candidate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrEntityAlreadyExists, fmt.Sprintf(
			"Trying to create an entity that exists: question %d of %s/%s",
			candidate.QuestionNumber, candidate.FeedbackSessionName, candidate.CourseID))
	}

	now := r.now()
	entity := &feedbackQuestionEntity{
		ID:                  datastore.NewKey(models.FeedbackQuestionKind).Name,
		FeedbackSessionName: candidate.FeedbackSessionName,
		CourseID:            candidate.CourseID,
		QuestionType:        candidate.QuestionType,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	entity.copyMutable(&candidate)

	const query = `INSERT INTO feedback_questions (id, feedback_session_name, course_id, question_number, question_type, question_text,
		question_description, giver_type, recipient_type, number_of_entities_to_give_feedback_to,
		show_responses_to, show_giver_name_to, show_recipient_name_to, created_at, updated_at)
		VALUES (:id, :feedback_session_name, :course_id, :question_number, :question_type, :question_text,
		:question_description, :giver_type, :recipient_type, :number_of_entities_to_give_feedback_to,
		:show_responses_to, :show_giver_name_to, :show_recipient_name_to, :created_at, :updated_at)`
	if err := r.observe("create feedback question", func() error {
		_, err := r.db.NamedExecContext(ctx, query, entity)
		return err
	}); err != nil {
		return nil, fmt.Errorf("create feedback question: %w", err)
	}
	return entity.toModel(), nil
}

// Update applies opts to an existing question. The stored record is untouched unless the result is valid.
func (r *FeedbackQuestionRepository) Update(ctx context.Context, opts models.FeedbackQuestionUpdateOptions) (*models.FeedbackQuestion, error) {
	if opts.FeedbackQuestionID == "" {
		return nil, appErrors.Clone(appErrors.ErrNullInput, "feedback question id is required")
	}

	entity, err := r.getEntity(ctx, opts.FeedbackQuestionID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, appErrors.Clone(appErrors.ErrEntityDoesNotExist, ErrUpdateNonExistentFeedbackQuestion+opts.String())
	}

	updated := entity.toModel()
	opts.ApplyTo(updated)
	updated.SanitizeForSaving()
	if violations := r.validator.Struct(updated); len(violations) > 0 {
		r.logger.Info("feedback question update rejected",
			zap.String("feedback_question_id", opts.FeedbackQuestionID),
			zap.Strings("violations", violations))
		return nil, appErrors.WithDetails(appErrors.ErrInvalidParameters, "", violations)
	}

	entity.copyMutable(updated)
	entity.UpdatedAt = r.now()

	const query = `UPDATE feedback_questions SET question_number = :question_number, question_text = :question_text,
		question_description = :question_description, giver_type = :giver_type, recipient_type = :recipient_type,
		number_of_entities_to_give_feedback_to = :number_of_entities_to_give_feedback_to,
		show_responses_to = :show_responses_to, show_giver_name_to = :show_giver_name_to,
		show_recipient_name_to = :show_recipient_name_to, updated_at = :updated_at WHERE id = :id`
	if err := r.observe("update feedback question", func() error {
		_, err := r.db.NamedExecContext(ctx, query, entity)
		return err
	}); err != nil {
		return nil, fmt.Errorf("update feedback question: %w", err)
	}
	return entity.toModel(), nil
}

// DeleteByID removes a question. Unresolvable ids and missing records are not errors.
func (r *FeedbackQuestionRepository) DeleteByID(ctx context.Context, id string) error {
	key := datastore.KeyOrNil(models.FeedbackQuestionKind, id)
	if key == nil {
		r.logger.Debug("skipping delete of unresolvable feedback question id", zap.String("feedback_question_id", id))
		return nil
	}

	const query = `DELETE FROM feedback_questions WHERE id = $1`
	if err := r.observe("delete feedback question", func() error {
		_, err := r.db.ExecContext(ctx, query, key.Name)
		return err
	}); err != nil {
		return fmt.Errorf("delete feedback question: %w", err)
	}
	return nil
}

// DeleteByQuery removes every question matching the query in one batch. The query must set at least one filter.
func (r *FeedbackQuestionRepository) DeleteByQuery(ctx context.Context, q models.DeletionQuery) error {
	if q.IsEmpty() {
		return appErrors.WithDetails(appErrors.ErrInvalidParameters, "", []string{"deletion query must filter by course id or feedback session name"})
	}

	ids, err := r.keys(ctx, "list feedback question keys for deletion", models.FeedbackQuestionQuery{
		CourseID:            q.CourseID,
		FeedbackSessionName: q.FeedbackSessionName,
	}, 0)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	const query = `DELETE FROM feedback_questions WHERE id = ANY($1)`
	if err := r.observe("delete feedback questions", func() error {
		_, err := r.db.ExecContext(ctx, query, pq.Array(ids))
		return err
	}); err != nil {
		return fmt.Errorf("delete feedback questions: %w", err)
	}
	r.logger.Debug("deleted feedback questions", zap.Int("count", len(ids)))
	return nil
}

func (r *FeedbackQuestionRepository) getEntity(ctx context.Context, id string) (*feedbackQuestionEntity, error) {
	key := datastore.KeyOrNil(models.FeedbackQuestionKind, id)
	if key == nil {
		return nil, nil
	}
	return r.firstWhere(ctx, "get feedback question", datastore.NewFilter().Eq("id", key.Name))
}

func (r *FeedbackQuestionRepository) first(ctx context.Context, operation string, q models.FeedbackQuestionQuery) (*feedbackQuestionEntity, error) {
	return r.firstWhere(ctx, operation, feedbackQuestionFilter(q))
}

func (r *FeedbackQuestionRepository) firstWhere(ctx context.Context, operation string, filter datastore.Filter) (*feedbackQuestionEntity, error) {
	where, args := filter.Where()
	query := "SELECT " + feedbackQuestionColumns + " FROM feedback_questions" + where + " LIMIT 1"

	var entity feedbackQuestionEntity
	err := r.observe(operation, func() error {
		return r.db.GetContext(ctx, &entity, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &entity, nil
}

func (r *FeedbackQuestionRepository) list(ctx context.Context, operation string, q models.FeedbackQuestionQuery) ([]models.FeedbackQuestion, error) {
	where, args := feedbackQuestionFilter(q).Where()
	query := "SELECT " + feedbackQuestionColumns + " FROM feedback_questions" + where

	var entities []feedbackQuestionEntity
	if err := r.observe(operation, func() error {
		return r.db.SelectContext(ctx, &entities, query, args...)
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	questions := make([]models.FeedbackQuestion, 0, len(entities))
	for i := range entities {
		questions = append(questions, *entities[i].toModel())
	}
	return questions, nil
}

// keys is a key-only projection; limit 0 means unbounded.
func (r *FeedbackQuestionRepository) keys(ctx context.Context, operation string, q models.FeedbackQuestionQuery, limit int) ([]string, error) {
	where, args := feedbackQuestionFilter(q).Where()
	query := "SELECT id FROM feedback_questions" + where
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var ids []string
	if err := r.observe(operation, func() error {
		return r.db.SelectContext(ctx, &ids, query, args...)
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return ids, nil
}

func (r *FeedbackQuestionRepository) observe(operation string, fn func() error) error {
	return observe(r.metrics, operation, fn)
}

// feedbackQuestionFilter is the single translation from a question query to a store filter.
func feedbackQuestionFilter(q models.FeedbackQuestionQuery) datastore.Filter {
	f := datastore.NewFilter()
	f = datastore.EqIf(f, "feedback_session_name", q.FeedbackSessionName)
	f = datastore.EqIf(f, "course_id", q.CourseID)
	f = datastore.EqIf(f, "question_number", q.QuestionNumber)
	if q.GiverType != nil {
		f = f.Eq("giver_type", string(*q.GiverType))
	}
	return f
}

func observe(metrics QueryObserver, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	if metrics != nil {
		observed := err
		if errors.Is(err, sql.ErrNoRows) {
			observed = nil
		}
		metrics.ObserveDBQuery(operation, time.Since(start), observed)
	}
	return err
}
