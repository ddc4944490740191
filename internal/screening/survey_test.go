package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggielii/heartwaves/internal/model"
)

func symptomSet(pairs ...string) *model.Symptoms {
	answers := make([]model.SurveyAnswer, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		answers = append(answers, model.SurveyAnswer{ID: pairs[i], Answer: pairs[i+1]})
	}
	return &model.Symptoms{Answers: answers}
}

func TestAssessSurveyAlignment(t *testing.T) {
	tests := []struct {
		name            string
		hint            model.PhenotypeHint
		answers         map[string]string
		wantAlignment   model.SurveyAlignment
		wantInformative int
	}{
		{
			name:            "one informative answer is inconclusive",
			hint:            model.HintPOTSLike,
			answers:         map[string]string{"orthostatic": "yes"},
			wantAlignment:   model.AlignmentInconclusive,
			wantInformative: 1,
		},
		{
			name:            "unanimous support",
			hint:            model.HintPOTSLike,
			answers:         map[string]string{"orthostatic": "yes", "tachy_upright": "yes", "brain_fog": "severe"},
			wantAlignment:   model.AlignmentSupports,
			wantInformative: 3,
		},
		{
			name:            "unanimous against",
			hint:            model.HintPOTSLike,
			answers:         map[string]string{"orthostatic": "no", "tachy_upright": "no"},
			wantAlignment:   model.AlignmentDoesNotSupport,
			wantInformative: 2,
		},
		{
			name:            "neutral answers are mixed",
			hint:            model.HintPOTSLike,
			answers:         map[string]string{"orthostatic": "unsure", "tachy_upright": "unsure"},
			wantAlignment:   model.AlignmentMixed,
			wantInformative: 2,
		},
		{
			name:            "severe red flag forces support",
			hint:            model.HintOHLike,
			answers:         map[string]string{"presyncope": "faint", "dizzy_standing": "no", "vision_dim": "no"},
			wantAlignment:   model.AlignmentSupports,
			wantInformative: 3,
		},
		{
			name:            "unknown hint falls back to unspecified rules",
			hint:            model.PhenotypeHint("mystery"),
			answers:         map[string]string{"orthostatic": "yes", "tachy": "yes"},
			wantAlignment:   model.AlignmentSupports,
			wantInformative: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssessSurvey(model.StatusNeedsFollowup, tt.hint, tt.answers)
			require.NotNil(t, a)
			assert.Equal(t, tt.wantAlignment, a.Alignment)
			assert.Equal(t, tt.wantInformative, a.InformativeAnswers)
			assert.NotEmpty(t, a.Summary)
		})
	}
}

func TestAssessSurveyScoreBounds(t *testing.T) {
	a := AssessSurvey(model.StatusNeedsFollowup, model.HintPOTSLike, map[string]string{
		"orthostatic":   "yes",
		"tachy_upright": "no",
		"brain_fog":     "mild",
	})
	assert.GreaterOrEqual(t, a.SupportScore, -1.0)
	assert.LessOrEqual(t, a.SupportScore, 1.0)
	assert.Equal(t, 1, a.SupportVotes)
	assert.Equal(t, 1, a.AgainstVotes)
}

func TestApplySurveySupportsPromotes(t *testing.T) {
	s := followupDraft(model.HintPOTSLike, model.ConfidenceLow)
	symptoms := symptomSet("orthostatic", "yes", "tachy_upright", "yes")

	a := ApplySurvey(s, symptoms)
	require.NotNil(t, a)
	assert.Equal(t, model.AlignmentSupports, a.Alignment)
	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
	assert.Equal(t, model.ConfidenceMedium, s.PhenotypeConfidence)

	ApplySurvey(s, symptoms)
	assert.Equal(t, model.ConfidenceHigh, s.PhenotypeConfidence)

	// Capped at high; further rounds are idempotent.
	ApplySurvey(s, symptoms)
	assert.Equal(t, model.ConfidenceHigh, s.PhenotypeConfidence)
	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
}

func TestApplySurveyRevertsToNormal(t *testing.T) {
	s := followupDraft(model.HintPOTSLike, model.ConfidenceMedium)
	symptoms := symptomSet("orthostatic", "no", "tachy_upright", "no", "hydration", "no")

	a := ApplySurvey(s, symptoms)
	require.NotNil(t, a)
	assert.Equal(t, model.AlignmentDoesNotSupport, a.Alignment)
	assert.False(t, a.SevereRedFlag)

	assert.Equal(t, model.StatusNormal, s.Status)
	assert.Equal(t, model.HintNormal, s.PhenotypeHint)
	assert.Equal(t, model.ConfidenceMedium, s.PhenotypeConfidence)
	assert.Equal(t, []string{"fatigue", "dizziness", "palpitations"}, questionIDs(s.Questionnaire))
	assert.Contains(t, s.DataNotes, "Survey downgraded status to normal due to low symptom alignment.")

	// Already normal: re-applying records the assessment but transitions
	// nothing.
	ApplySurvey(s, symptoms)
	assert.Equal(t, model.StatusNormal, s.Status)
	assert.Equal(t, model.ConfidenceMedium, s.PhenotypeConfidence)
}

func TestApplySurveyHighConfidenceOnlyDemotes(t *testing.T) {
	s := followupDraft(model.HintPOTSLike, model.ConfidenceHigh)
	symptoms := symptomSet("orthostatic", "no", "tachy_upright", "no")

	ApplySurvey(s, symptoms)
	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
	assert.Equal(t, model.ConfidenceMedium, s.PhenotypeConfidence)
}

func TestApplySurveySevereFlagBlocksRevert(t *testing.T) {
	// A fainting answer is a severe red flag: even alongside otherwise
	// negative answers the alignment counts as supporting, so the session
	// never reverts to normal.
	s := followupDraft(model.HintVVSLike, model.ConfidenceLow)
	symptoms := symptomSet("fainting", "multiple", "trigger_pattern", "no", "warning_signs", "no")

	a := ApplySurvey(s, symptoms)
	require.NotNil(t, a)
	assert.True(t, a.SevereRedFlag)
	assert.Equal(t, model.AlignmentSupports, a.Alignment)
	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
}

func TestApplySurveyMixedDemotesFromMedium(t *testing.T) {
	s := followupDraft(model.HintPOTSLike, model.ConfidenceMedium)
	symptoms := symptomSet("orthostatic", "unsure", "tachy_upright", "unsure")

	ApplySurvey(s, symptoms)
	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
	assert.Equal(t, model.ConfidenceLow, s.PhenotypeConfidence)

	// Low confidence stays low on repeat.
	ApplySurvey(s, symptoms)
	assert.Equal(t, model.ConfidenceLow, s.PhenotypeConfidence)
}

func TestApplySurveyInconclusive(t *testing.T) {
	s := followupDraft(model.HintPOTSLike, model.ConfidenceMedium)
	ApplySurvey(s, symptomSet("orthostatic", "yes"))

	assert.Equal(t, model.StatusNeedsFollowup, s.Status)
	assert.Equal(t, model.ConfidenceMedium, s.PhenotypeConfidence)
	assert.Equal(t, "Not enough symptom answers yet to validate the follow-up pattern.", s.PhenotypeReason)
}

func TestConfidenceLadder(t *testing.T) {
	assert.Equal(t, model.ConfidenceMedium, PromoteConfidence(model.ConfidenceLow))
	assert.Equal(t, model.ConfidenceHigh, PromoteConfidence(model.ConfidenceMedium))
	assert.Equal(t, model.ConfidenceHigh, PromoteConfidence(model.ConfidenceHigh))
	assert.Equal(t, model.ConfidenceMedium, DemoteConfidence(model.ConfidenceHigh))
	assert.Equal(t, model.ConfidenceLow, DemoteConfidence(model.ConfidenceMedium))
	assert.Equal(t, model.ConfidenceLow, DemoteConfidence(model.ConfidenceLow))
}

func TestAnswerMapNormalizes(t *testing.T) {
	symptoms := &model.Symptoms{Answers: []model.SurveyAnswer{
		{ID: " orthostatic ", Answer: " YES "},
		{ID: "", Answer: "yes"},
		{ID: "tachy_upright", Answer: ""},
	}}
	mapped := answerMap(symptoms)
	assert.Equal(t, map[string]string{"orthostatic": "yes"}, mapped)
}
