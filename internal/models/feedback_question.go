package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// FeedbackQuestionKind is the datastore kind for feedback questions.
const FeedbackQuestionKind = "FeedbackQuestion"

// MaxPossibleRecipients marks a question where each giver answers for every eligible recipient.
const MaxPossibleRecipients = -100

// FeedbackQuestion is one question of a feedback session. ID is the web-safe datastore key.
type FeedbackQuestion struct {
	ID                               string                  `json:"id"`
	FeedbackSessionName              string                  `json:"feedback_session_name" validate:"required,max=38"`
	CourseID                         string                  `json:"course_id" validate:"required,max=64,course_id"`
	QuestionNumber                   int                     `json:"question_number" validate:"min=1"`
	QuestionType                     FeedbackQuestionType    `json:"question_type" validate:"question_type"`
	QuestionDetails                  string                  `json:"question_details" validate:"required,json"`
	QuestionDescription              string                  `json:"question_description"`
	GiverType                        FeedbackParticipantType `json:"giver_type" validate:"giver_type"`
	RecipientType                    FeedbackParticipantType `json:"recipient_type" validate:"recipient_type"`
	NumberOfEntitiesToGiveFeedbackTo int                     `json:"number_of_entities_to_give_feedback_to" validate:"recipient_count"`
	ShowResponsesTo                  ParticipantList         `json:"show_responses_to" validate:"dive,visibility_type"`
	ShowGiverNameTo                  ParticipantList         `json:"show_giver_name_to" validate:"dive,visibility_type"`
	ShowRecipientNameTo              ParticipantList         `json:"show_recipient_name_to" validate:"dive,visibility_type"`
	CreatedAt                        time.Time               `json:"created_at"`
	UpdatedAt                        time.Time               `json:"updated_at"`
}

// FeedbackQuestionQuery selects questions by equality on whichever fields are set.
type FeedbackQuestionQuery struct {
	FeedbackSessionName *string
	CourseID            *string
	QuestionNumber      *int
	GiverType           *FeedbackParticipantType
}

// SanitizeForSaving normalises fields before validation and persistence.
func (q *FeedbackQuestion) SanitizeForSaving() {
	q.FeedbackSessionName = strings.TrimSpace(q.FeedbackSessionName)
	q.CourseID = strings.TrimSpace(q.CourseID)
	q.QuestionDescription = strings.TrimSpace(q.QuestionDescription)
	q.QuestionDetails = strings.TrimSpace(q.QuestionDetails)
	q.ShowResponsesTo = q.ShowResponsesTo.dedupe()
	q.ShowGiverNameTo = q.ShowGiverNameTo.dedupe()
	q.ShowRecipientNameTo = q.ShowRecipientNameTo.dedupe()
	q.removeIrrelevantVisibilityOptions()
}

// Visibility options that cannot apply to the current giver/recipient combination are dropped.
func (q *FeedbackQuestion) removeIrrelevantVisibilityOptions() {
	var irrelevant []FeedbackParticipantType

	switch q.RecipientType {
	case ParticipantNone:
		irrelevant = append(irrelevant, ParticipantReceiver, ParticipantReceiverTeamMembers)
	case ParticipantTeams, ParticipantTeamsInSameSection, ParticipantTeamsExcludingSelf,
		ParticipantInstructors, ParticipantOwnTeam,
		ParticipantOwnTeamMembers, ParticipantOwnTeamMembersIncludingSelf:
		irrelevant = append(irrelevant, ParticipantReceiverTeamMembers)
	}

	switch q.GiverType {
	case ParticipantTeams, ParticipantInstructors:
		irrelevant = append(irrelevant, ParticipantOwnTeamMembers)
	}

	for _, t := range irrelevant {
		q.ShowResponsesTo = q.ShowResponsesTo.without(t)
		q.ShowGiverNameTo = q.ShowGiverNameTo.without(t)
		q.ShowRecipientNameTo = q.ShowRecipientNameTo.without(t)
	}
}

// ParticipantList is a visibility list stored as a text[] column.
type ParticipantList []FeedbackParticipantType

// Contains reports whether t is in the list.
func (l ParticipantList) Contains(t FeedbackParticipantType) bool {
	for _, item := range l {
		if item == t {
			return true
		}
	}
	return false
}

func (l ParticipantList) dedupe() ParticipantList {
	if l == nil {
		return nil
	}
	out := make(ParticipantList, 0, len(l))
	for _, item := range l {
		if !out.Contains(item) {
			out = append(out, item)
		}
	}
	return out
}

func (l ParticipantList) without(t FeedbackParticipantType) ParticipantList {
	if !l.Contains(t) {
		return l
	}
	out := make(ParticipantList, 0, len(l))
	for _, item := range l {
		if item != t {
			out = append(out, item)
		}
	}
	return out
}

// Value implements driver.Valuer.
func (l ParticipantList) Value() (driver.Value, error) {
	raw := make(pq.StringArray, len(l))
	for i, item := range l {
		raw[i] = string(item)
	}
	return raw.Value()
}

// Scan implements sql.Scanner.
func (l *ParticipantList) Scan(src interface{}) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan participant list: %w", err)
	}
	out := make(ParticipantList, len(raw))
	for i, item := range raw {
		out[i] = FeedbackParticipantType(item)
	}
	*l = out
	return nil
}
