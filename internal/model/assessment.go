package model

// Status is the screening outcome. It is never a diagnosis; needs_followup
// only routes the user toward a clinician conversation.
type Status string

const (
	StatusNormal        Status = "normal"
	StatusNeedsFollowup Status = "needs_followup"
)

// PhenotypeHint is a coarse, non-diagnostic pattern label suggesting which
// autonomic pattern the follow-up questions should target.
type PhenotypeHint string

const (
	HintNormal      PhenotypeHint = "normal"
	HintPOTSLike    PhenotypeHint = "pots_like"
	HintISTLike     PhenotypeHint = "ist_like"
	HintOHLike      PhenotypeHint = "oh_like"
	HintVVSLike     PhenotypeHint = "vvs_like"
	HintUnspecified PhenotypeHint = "unspecified_autonomic"
)

// Confidence grades how strongly the current stage backs the hint.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence values: high=3, medium=2, low=1, anything else 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ScreeningResult is the user-visible screening assessment. Exactly one
// exists per session; the reconciliation and survey stages mutate it in
// sequence within a single request cycle.
type ScreeningResult struct {
	Status              Status            `json:"status" bson:"status"`
	PhenotypeHint       PhenotypeHint     `json:"phenotype_hint" bson:"phenotype_hint"`
	PhenotypeConfidence Confidence        `json:"phenotype_confidence" bson:"phenotype_confidence"`
	PhenotypeReason     string            `json:"phenotype_reason" bson:"phenotype_reason"`
	BPDataPresent       bool              `json:"bp_data_present" bson:"bp_data_present"`
	Signals             []Signal          `json:"signals" bson:"signals"`
	Questionnaire       []Question        `json:"questionnaire" bson:"questionnaire"`
	SafetyNotes         []string          `json:"safety_notes" bson:"safety_notes"`
	DataNotes           []string          `json:"data_notes" bson:"data_notes"`
	Stats               StatsSummary      `json:"stats" bson:"stats"`
	ClusteringModel     *ClusteringResult `json:"clustering_model,omitempty" bson:"clustering_model,omitempty"`
	SurveyAssessment    *SurveyAssessment `json:"survey_assessment,omitempty" bson:"survey_assessment,omitempty"`
}

// HasSignal reports whether a signal with the given key was already recorded.
func (s *ScreeningResult) HasSignal(key string) bool {
	for _, sig := range s.Signals {
		if sig.Key == key {
			return true
		}
	}
	return false
}

// AppendNote appends a data note, keeping notes unique in first-seen order.
func (s *ScreeningResult) AppendNote(note string) {
	if note == "" {
		return
	}
	for _, existing := range s.DataNotes {
		if existing == note {
			return
		}
	}
	s.DataNotes = append(s.DataNotes, note)
}
