package model

import "time"

// Question is one follow-up questionnaire item with a fixed option scale.
type Question struct {
	ID      string   `json:"id" bson:"id"`
	Prompt  string   `json:"prompt" bson:"prompt"`
	Options []string `json:"options" bson:"options"`
}

// HasOption reports whether the given answer is one of the valid options.
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// SurveyAnswer is one validated answer to a served questionnaire item.
type SurveyAnswer struct {
	ID     string `json:"id" bson:"id"`
	Prompt string `json:"prompt" bson:"prompt"`
	Answer string `json:"answer" bson:"answer"`
}

// Symptoms is the session's answered-questions record.
type Symptoms struct {
	Answers   []SurveyAnswer `json:"answers" bson:"answers"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// SurveyAlignment is the categorical verdict of how well the answers
// corroborate the predicted phenotype.
type SurveyAlignment string

const (
	AlignmentSupports       SurveyAlignment = "supports"
	AlignmentMixed          SurveyAlignment = "mixed"
	AlignmentDoesNotSupport SurveyAlignment = "does_not_support"
	AlignmentInconclusive   SurveyAlignment = "inconclusive"
)

// SurveyAssessment is the scored outcome of one answer submission.
type SurveyAssessment struct {
	StatusContext      Status          `json:"status_context" bson:"status_context"`
	HintContext        PhenotypeHint   `json:"hint_context" bson:"hint_context"`
	AnsweredCount      int             `json:"answered_count" bson:"answered_count"`
	InformativeAnswers int             `json:"informative_answers" bson:"informative_answers"`
	SupportVotes       int             `json:"support_votes" bson:"support_votes"`
	AgainstVotes       int             `json:"against_votes" bson:"against_votes"`
	SupportScore       float64         `json:"support_score" bson:"support_score"`
	Alignment          SurveyAlignment `json:"alignment" bson:"alignment"`
	SevereRedFlag      bool            `json:"severe_red_flag" bson:"severe_red_flag"`
	Summary            string          `json:"summary" bson:"summary"`
}
