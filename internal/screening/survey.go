package screening

import (
	"fmt"
	"strings"

	"github.com/maggielii/heartwaves/internal/model"
)

// answerRule lists which options of a question support or argue against the
// predicted phenotype. Options matching neither count as informative but
// neutral.
type answerRule struct {
	support []string
	against []string
}

// surveyRules maps phenotype hint x question id to its support/against sets.
// Kept as a flat constant lookup rather than conditionals so each hint's
// table can be read (and reviewed clinically) in one place.
var surveyRules = map[model.PhenotypeHint]map[string]answerRule{
	model.HintPOTSLike: {
		"orthostatic":   {support: []string{"yes"}, against: []string{"no"}},
		"tachy_upright": {support: []string{"yes"}, against: []string{"no"}},
		"brain_fog":     {support: []string{"moderate", "severe"}, against: []string{"no"}},
		"heat_trigger":  {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"hydration":     {support: []string{"yes"}, against: []string{"no"}},
	},
	model.HintISTLike: {
		"fast_resting_hr":   {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"palpitations_rest": {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"standing_relation": {support: []string{"mixed", "regardless_posture"}, against: []string{"mostly_posture"}},
		"stimulants":        {support: []string{"no"}, against: []string{"high"}},
		"med_changes":       {support: []string{"no"}, against: []string{"yes"}},
	},
	model.HintOHLike: {
		"dizzy_standing":  {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"vision_dim":      {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"presyncope":      {support: []string{"near_faint", "faint"}, against: []string{"no"}},
		"recovery_lying":  {support: []string{"yes"}, against: []string{"no"}},
		"bp_drop":         {support: []string{"yes"}, against: []string{"no"}},
		"bp_not_measured": {support: []string{"multiple_times"}},
	},
	model.HintVVSLike: {
		"trigger_pattern": {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"warning_signs":   {support: []string{"sometimes", "often"}, against: []string{"no"}},
		"fainting":        {support: []string{"once", "multiple"}, against: []string{"no"}},
		"position_relief": {support: []string{"yes"}, against: []string{"no"}},
		"bp_during_event": {support: []string{"yes"}, against: []string{"no"}},
		"bp_not_measured": {support: []string{"yes"}},
	},
	model.HintUnspecified: {
		"orthostatic": {support: []string{"yes"}, against: []string{"no"}},
		"presyncope":  {support: []string{"near_faint", "faint"}, against: []string{"no"}},
		"tachy":       {support: []string{"yes"}, against: []string{"no"}},
		"illness":     {support: []string{"no"}, against: []string{"yes"}},
		"med_changes": {support: []string{"no"}, against: []string{"yes"}},
	},
}

// severeFlags marks fainting/syncope-type answers that count as a red flag
// regardless of the overall score.
var severeFlags = map[string][]string{
	"presyncope": {"faint"},
	"fainting":   {"once", "multiple"},
}

// Alignment cutoffs on the normalized support score.
const (
	supportsCutoff       = 0.35
	doesNotSupportCutoff = -0.25
	minInformative       = 2
)

// AssessSurvey scores an answered-id -> option map against the phenotype's
// rule table. Answers for ids outside the table are counted in AnsweredCount
// but are not informative.
func AssessSurvey(status model.Status, hint model.PhenotypeHint, answers map[string]string) *model.SurveyAssessment {
	hint = normalizeHint(hint)
	rules, ok := surveyRules[hint]
	if !ok {
		rules = surveyRules[model.HintUnspecified]
	}

	informative := 0
	supportVotes := 0
	againstVotes := 0
	rawScore := 0.0

	for questionID, answer := range answers {
		rule, ok := rules[questionID]
		if !ok {
			continue
		}
		informative++
		if containsString(rule.support, answer) {
			supportVotes++
			rawScore += 1.0
		} else if containsString(rule.against, answer) {
			againstVotes++
			rawScore -= 1.0
		}
	}

	severeRedFlag := hasSevereRedFlag(answers)
	supportScore := 0.0
	if informative > 0 {
		supportScore = rawScore / float64(informative)
	}

	var alignment model.SurveyAlignment
	switch {
	case informative < minInformative:
		alignment = model.AlignmentInconclusive
	case severeRedFlag || supportScore >= supportsCutoff:
		alignment = model.AlignmentSupports
	case supportScore <= doesNotSupportCutoff:
		alignment = model.AlignmentDoesNotSupport
	default:
		alignment = model.AlignmentMixed
	}

	return &model.SurveyAssessment{
		StatusContext:      status,
		HintContext:        hint,
		AnsweredCount:      len(answers),
		InformativeAnswers: informative,
		SupportVotes:       supportVotes,
		AgainstVotes:       againstVotes,
		SupportScore:       roundTo(supportScore, 3),
		Alignment:          alignment,
		SevereRedFlag:      severeRedFlag,
		Summary: fmt.Sprintf("Survey alignment for %s: %s (score %.2f, informative answers %d).",
			formatHint(hint), alignment, supportScore, informative),
	}
}

// ApplySurvey runs the survey-reconciliation state machine on the assessment
// as it stood at submission time. Transitions only fire while status is
// needs_followup; re-applying the same answers is idempotent once the target
// state is reached.
func ApplySurvey(s *model.ScreeningResult, symptoms *model.Symptoms) *model.SurveyAssessment {
	if s == nil {
		return nil
	}

	hint := normalizeHint(s.PhenotypeHint)
	answers := answerMap(symptoms)
	assessment := AssessSurvey(s.Status, hint, answers)

	s.SurveyAssessment = assessment
	s.AppendNote(assessment.Summary)

	if s.Status != model.StatusNeedsFollowup {
		return assessment
	}

	switch assessment.Alignment {
	case model.AlignmentSupports:
		s.PhenotypeConfidence = PromoteConfidence(s.PhenotypeConfidence)
		s.PhenotypeReason = fmt.Sprintf("Survey answers align with %s symptoms and support follow-up.", formatHint(hint))

	case model.AlignmentDoesNotSupport:
		if !assessment.SevereRedFlag && s.PhenotypeConfidence.Rank() <= 2 {
			s.Status = model.StatusNormal
			s.PhenotypeHint = model.HintNormal
			s.PhenotypeConfidence = model.ConfidenceMedium
			s.PhenotypeReason = "Follow-up cluster signal was not supported by symptom answers in this window."
			s.Questionnaire = NormalQuestionnaire()
			s.AppendNote("Survey downgraded status to normal due to low symptom alignment.")
		} else {
			s.PhenotypeConfidence = DemoteConfidence(s.PhenotypeConfidence)
			s.PhenotypeReason = "Follow-up signal remains, but symptom answers did not strongly match the predicted subtype."
		}

	case model.AlignmentMixed:
		if s.PhenotypeConfidence.Rank() >= 2 {
			s.PhenotypeConfidence = DemoteConfidence(s.PhenotypeConfidence)
		}
		s.PhenotypeReason = fmt.Sprintf("Symptom answers were mixed for %s pattern; continue monitoring and re-check.", formatHint(hint))

	default:
		s.PhenotypeReason = "Not enough symptom answers yet to validate the follow-up pattern."
	}

	// Regenerate so subsequent rounds ask hint-appropriate questions.
	if s.Status == model.StatusNeedsFollowup {
		s.Questionnaire = QuestionnaireFor(model.StatusNeedsFollowup, normalizeHint(s.PhenotypeHint), s.BPDataPresent)
	}

	return assessment
}

// PromoteConfidence raises confidence one step, capped at high. An empty
// value promotes to medium.
func PromoteConfidence(c model.Confidence) model.Confidence {
	switch c {
	case model.ConfidenceLow:
		return model.ConfidenceMedium
	case model.ConfidenceMedium:
		return model.ConfidenceHigh
	case "":
		return model.ConfidenceMedium
	default:
		return c
	}
}

// DemoteConfidence lowers confidence one step; low stays low.
func DemoteConfidence(c model.Confidence) model.Confidence {
	switch c {
	case model.ConfidenceHigh:
		return model.ConfidenceMedium
	case model.ConfidenceMedium:
		return model.ConfidenceLow
	default:
		return model.ConfidenceLow
	}
}

func hasSevereRedFlag(answers map[string]string) bool {
	for questionID, severeValues := range severeFlags {
		if value, ok := answers[questionID]; ok && containsString(severeValues, value) {
			return true
		}
	}
	return false
}

func answerMap(symptoms *model.Symptoms) map[string]string {
	mapped := make(map[string]string)
	if symptoms == nil {
		return mapped
	}
	for _, item := range symptoms.Answers {
		id := strings.TrimSpace(item.ID)
		answer := strings.ToLower(strings.TrimSpace(item.Answer))
		if id == "" || answer == "" {
			continue
		}
		mapped[id] = answer
	}
	return mapped
}

func normalizeHint(hint model.PhenotypeHint) model.PhenotypeHint {
	if strings.TrimSpace(string(hint)) == "" {
		return model.HintUnspecified
	}
	return hint
}

func formatHint(hint model.PhenotypeHint) string {
	return strings.ReplaceAll(string(hint), "_", "-")
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
