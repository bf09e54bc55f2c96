package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-feedback-store/internal/models"
)

func validQuestion() models.FeedbackQuestion {
	return models.FeedbackQuestion{
		FeedbackSessionName:              "First Session",
		CourseID:                         "CS1101",
		QuestionNumber:                   1,
		QuestionType:                     models.QuestionTypeText,
		QuestionDetails:                  `{"questionText":"What went well?"}`,
		GiverType:                        models.ParticipantStudents,
		RecipientType:                    models.ParticipantSelf,
		NumberOfEntitiesToGiveFeedbackTo: models.MaxPossibleRecipients,
		ShowResponsesTo:                  models.ParticipantList{models.ParticipantInstructors, models.ParticipantReceiver},
		ShowGiverNameTo:                  models.ParticipantList{models.ParticipantInstructors},
		ShowRecipientNameTo:              models.ParticipantList{models.ParticipantInstructors, models.ParticipantReceiver},
	}
}

func joined(msgs []string) string {
	return strings.Join(msgs, "\n")
}

func TestValidQuestionHasNoViolations(t *testing.T) {
	q := validQuestion()
	assert.Nil(t, New().Struct(q))
	assert.Nil(t, New().Struct(&q))
}

func TestFieldViolationsAreListed(t *testing.T) {
	q := validQuestion()
	q.FeedbackSessionName = ""
	q.CourseID = "CS 1101"
	q.QuestionNumber = 0
	q.QuestionDetails = "not json"
	q.GiverType = models.ParticipantNone
	q.NumberOfEntitiesToGiveFeedbackTo = 0

	msgs := New().Struct(q)
	require.Len(t, msgs, 6)
	out := joined(msgs)
	assert.Contains(t, out, "feedback_session_name is a required field")
	assert.Contains(t, out, "course_id may only contain")
	assert.Contains(t, out, "question_number")
	assert.Contains(t, out, "question_details")
	assert.Contains(t, out, "giver_type is not a valid feedback giver")
	assert.Contains(t, out, "number_of_entities_to_give_feedback_to must be at least 1")
}

func TestVisibilityEntriesAreChecked(t *testing.T) {
	q := validQuestion()
	q.ShowResponsesTo = append(q.ShowResponsesTo, models.ParticipantSelf)

	msgs := New().Struct(q)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "is not a valid visibility option")
}

func TestNamesOnlyShownWithResponses(t *testing.T) {
	q := validQuestion()
	q.ShowResponsesTo = models.ParticipantList{models.ParticipantInstructors}
	q.ShowGiverNameTo = models.ParticipantList{models.ParticipantInstructors, models.ParticipantStudents}

	msgs := New().Struct(q)
	out := joined(msgs)
	assert.Contains(t, out, "show_giver_name_to can only include participants who can see the responses")
	assert.Contains(t, out, "show_recipient_name_to can only include participants who can see the responses")
}

func TestRecipientCountAcceptsPositive(t *testing.T) {
	q := validQuestion()
	q.NumberOfEntitiesToGiveFeedbackTo = 3
	assert.Nil(t, New().Struct(q))
}
