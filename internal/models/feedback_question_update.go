package models

import (
	"fmt"
	"strings"
)

// FeedbackQuestionUpdateOptions is a sparse change-set for one question. Nil fields are left unchanged.
type FeedbackQuestionUpdateOptions struct {
	FeedbackQuestionID               string
	QuestionNumber                   *int
	QuestionDetails                  *string
	QuestionDescription              *string
	GiverType                        *FeedbackParticipantType
	RecipientType                    *FeedbackParticipantType
	NumberOfEntitiesToGiveFeedbackTo *int
	ShowResponsesTo                  *ParticipantList
	ShowGiverNameTo                  *ParticipantList
	ShowRecipientNameTo              *ParticipantList
}

// ApplyTo overwrites the fields of q named by the options.
func (o FeedbackQuestionUpdateOptions) ApplyTo(q *FeedbackQuestion) {
	if o.QuestionNumber != nil {
		q.QuestionNumber = *o.QuestionNumber
	}
	if o.QuestionDetails != nil {
		q.QuestionDetails = *o.QuestionDetails
	}
	if o.QuestionDescription != nil {
		q.QuestionDescription = *o.QuestionDescription
	}
	if o.GiverType != nil {
		q.GiverType = *o.GiverType
	}
	if o.RecipientType != nil {
		q.RecipientType = *o.RecipientType
	}
	if o.NumberOfEntitiesToGiveFeedbackTo != nil {
		q.NumberOfEntitiesToGiveFeedbackTo = *o.NumberOfEntitiesToGiveFeedbackTo
	}
	if o.ShowResponsesTo != nil {
		q.ShowResponsesTo = append(ParticipantList{}, (*o.ShowResponsesTo)...)
	}
	if o.ShowGiverNameTo != nil {
		q.ShowGiverNameTo = append(ParticipantList{}, (*o.ShowGiverNameTo)...)
	}
	if o.ShowRecipientNameTo != nil {
		q.ShowRecipientNameTo = append(ParticipantList{}, (*o.ShowRecipientNameTo)...)
	}
}

// String lists the target id and the fields being changed.
func (o FeedbackQuestionUpdateOptions) String() string {
	var changed []string
	add := func(name string, set bool) {
		if set {
			changed = append(changed, name)
		}
	}
	add("questionNumber", o.QuestionNumber != nil)
	add("questionDetails", o.QuestionDetails != nil)
	add("questionDescription", o.QuestionDescription != nil)
	add("giverType", o.GiverType != nil)
	add("recipientType", o.RecipientType != nil)
	add("numberOfEntitiesToGiveFeedbackTo", o.NumberOfEntitiesToGiveFeedbackTo != nil)
	add("showResponsesTo", o.ShowResponsesTo != nil)
	add("showGiverNameTo", o.ShowGiverNameTo != nil)
	add("showRecipientNameTo", o.ShowRecipientNameTo != nil)
	return fmt.Sprintf("FeedbackQuestionUpdateOptions{id=%s, fields=[%s]}", o.FeedbackQuestionID, strings.Join(changed, ", "))
}

// DeletionQuery scopes a bulk delete. Present predicates combine with AND.
type DeletionQuery struct {
	CourseID            *string
	FeedbackSessionName *string
}

// DeleteAllInCourse scopes a delete to one course.
func DeleteAllInCourse(courseID string) DeletionQuery {
	return DeletionQuery{CourseID: &courseID}
}

// DeleteAllInSession scopes a delete to one session of a course.
func DeleteAllInSession(courseID, sessionName string) DeletionQuery {
	return DeletionQuery{CourseID: &courseID, FeedbackSessionName: &sessionName}
}

func (q DeletionQuery) IsCourseIDPresent() bool {
	return q.CourseID != nil
}

func (q DeletionQuery) IsFeedbackSessionNamePresent() bool {
	return q.FeedbackSessionName != nil
}

// IsEmpty reports whether no predicate is set, i.e. the query would match every record.
func (q DeletionQuery) IsEmpty() bool {
	return !q.IsCourseIDPresent() && !q.IsFeedbackSessionNamePresent()
}
