package models

// FeedbackParticipantType names who gives, receives, or may see feedback.
type FeedbackParticipantType string

const (
	ParticipantSelf                        FeedbackParticipantType = "SELF"
	ParticipantStudents                    FeedbackParticipantType = "STUDENTS"
	ParticipantStudentsInSameSection       FeedbackParticipantType = "STUDENTS_IN_SAME_SECTION"
	ParticipantStudentsExcludingSelf       FeedbackParticipantType = "STUDENTS_EXCLUDING_SELF"
	ParticipantInstructors                 FeedbackParticipantType = "INSTRUCTORS"
	ParticipantTeams                       FeedbackParticipantType = "TEAMS"
	ParticipantTeamsInSameSection          FeedbackParticipantType = "TEAMS_IN_SAME_SECTION"
	ParticipantTeamsExcludingSelf          FeedbackParticipantType = "TEAMS_EXCLUDING_SELF"
	ParticipantOwnTeam                     FeedbackParticipantType = "OWN_TEAM"
	ParticipantOwnTeamMembers              FeedbackParticipantType = "OWN_TEAM_MEMBERS"
	ParticipantOwnTeamMembersIncludingSelf FeedbackParticipantType = "OWN_TEAM_MEMBERS_INCLUDING_SELF"
	ParticipantNone                        FeedbackParticipantType = "NONE"
	ParticipantReceiver                    FeedbackParticipantType = "RECEIVER"
	ParticipantReceiverTeamMembers         FeedbackParticipantType = "RECEIVER_TEAM_MEMBERS"
)

var giverTypes = map[FeedbackParticipantType]struct{}{
	ParticipantSelf:        {},
	ParticipantStudents:    {},
	ParticipantInstructors: {},
	ParticipantTeams:       {},
}

var recipientTypes = map[FeedbackParticipantType]struct{}{
	ParticipantSelf:                        {},
	ParticipantStudents:                    {},
	ParticipantStudentsInSameSection:       {},
	ParticipantStudentsExcludingSelf:       {},
	ParticipantInstructors:                 {},
	ParticipantTeams:                       {},
	ParticipantTeamsInSameSection:          {},
	ParticipantTeamsExcludingSelf:          {},
	ParticipantOwnTeam:                     {},
	ParticipantOwnTeamMembers:              {},
	ParticipantOwnTeamMembersIncludingSelf: {},
	ParticipantNone:                        {},
}

var visibilityTypes = map[FeedbackParticipantType]struct{}{
	ParticipantReceiver:            {},
	ParticipantReceiverTeamMembers: {},
	ParticipantOwnTeamMembers:      {},
	ParticipantStudents:            {},
	ParticipantInstructors:         {},
}

// IsValidGiver reports whether t may answer a question.
func (t FeedbackParticipantType) IsValidGiver() bool {
	_, ok := giverTypes[t]
	return ok
}

// IsValidRecipient reports whether t may be the subject of a question.
func (t FeedbackParticipantType) IsValidRecipient() bool {
	_, ok := recipientTypes[t]
	return ok
}

// IsValidVisibility reports whether t may appear in a visibility list.
func (t FeedbackParticipantType) IsValidVisibility() bool {
	_, ok := visibilityTypes[t]
	return ok
}

// FeedbackQuestionType is the kind of question, which fixes the shape of the serialized details.
type FeedbackQuestionType string

const (
	QuestionTypeMCQ                FeedbackQuestionType = "MCQ"
	QuestionTypeMSQ                FeedbackQuestionType = "MSQ"
	QuestionTypeText               FeedbackQuestionType = "TEXT"
	QuestionTypeNumScale           FeedbackQuestionType = "NUMSCALE"
	QuestionTypeConstSumOptions    FeedbackQuestionType = "CONSTSUM_OPTIONS"
	QuestionTypeConstSumRecipients FeedbackQuestionType = "CONSTSUM_RECIPIENTS"
	QuestionTypeContrib            FeedbackQuestionType = "CONTRIB"
	QuestionTypeRubric             FeedbackQuestionType = "RUBRIC"
	QuestionTypeRankOptions        FeedbackQuestionType = "RANK_OPTIONS"
	QuestionTypeRankRecipients     FeedbackQuestionType = "RANK_RECIPIENTS"
)

// IsValid reports whether t is a known question type.
func (t FeedbackQuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeMSQ, QuestionTypeText, QuestionTypeNumScale,
		QuestionTypeConstSumOptions, QuestionTypeConstSumRecipients, QuestionTypeContrib,
		QuestionTypeRubric, QuestionTypeRankOptions, QuestionTypeRankRecipients:
		return true
	}
	return false
}
