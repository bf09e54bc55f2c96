// Package validator turns validation failures into the human-readable violation lists
// attached to invalid-parameters errors.
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/sma-feedback-store/internal/models"
)

var courseIDPattern = regexp.MustCompile(`^[A-Za-z0-9._$-]+$`)

// Validator wraps go-playground/validator with English messages and the feedback rules.
type Validator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

// New builds a Validator with all custom tags and translations registered.
func New() *Validator {
	v := govalidator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	register(v, trans, "course_id", "{0} may only contain letters, digits, '.', '_', '$' and '-'", func(fl govalidator.FieldLevel) bool {
		return courseIDPattern.MatchString(fl.Field().String())
	})
	register(v, trans, "question_type", "{0} is not a supported question type", func(fl govalidator.FieldLevel) bool {
		return models.FeedbackQuestionType(fl.Field().String()).IsValid()
	})
	register(v, trans, "giver_type", "{0} is not a valid feedback giver", func(fl govalidator.FieldLevel) bool {
		return models.FeedbackParticipantType(fl.Field().String()).IsValidGiver()
	})
	register(v, trans, "recipient_type", "{0} is not a valid feedback recipient", func(fl govalidator.FieldLevel) bool {
		return models.FeedbackParticipantType(fl.Field().String()).IsValidRecipient()
	})
	register(v, trans, "visibility_type", "{0} is not a valid visibility option", func(fl govalidator.FieldLevel) bool {
		return models.FeedbackParticipantType(fl.Field().String()).IsValidVisibility()
	})
	register(v, trans, "recipient_count", "{0} must be at least 1", func(fl govalidator.FieldLevel) bool {
		n := fl.Field().Int()
		return n == models.MaxPossibleRecipients || n >= 1
	})
	registerMessage(v, trans, "shown_with_responses", "{0} can only include participants who can see the responses")

	v.RegisterStructValidation(feedbackQuestionRules, models.FeedbackQuestion{})

	return &Validator{validate: v, trans: trans}
}

// Struct validates s and returns one message per violation, or nil when s is valid.
func (v *Validator) Struct(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		messages = append(messages, fe.Translate(v.trans))
	}
	return messages
}

// Names can only be revealed to participants who can already see the response.
func feedbackQuestionRules(sl govalidator.StructLevel) {
	q := sl.Current().Interface().(models.FeedbackQuestion)
	for _, t := range q.ShowGiverNameTo {
		if !q.ShowResponsesTo.Contains(t) {
			sl.ReportError(q.ShowGiverNameTo, "show_giver_name_to", "ShowGiverNameTo", "shown_with_responses", string(t))
			break
		}
	}
	for _, t := range q.ShowRecipientNameTo {
		if !q.ShowResponsesTo.Contains(t) {
			sl.ReportError(q.ShowRecipientNameTo, "show_recipient_name_to", "ShowRecipientNameTo", "shown_with_responses", string(t))
			break
		}
	}
}

func register(v *govalidator.Validate, trans ut.Translator, tag, message string, fn govalidator.Func) {
	_ = v.RegisterValidation(tag, fn)
	registerMessage(v, trans, tag, message)
}

func registerMessage(v *govalidator.Validate, trans ut.Translator, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
