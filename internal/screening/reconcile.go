package screening

import (
	"fmt"

	"github.com/maggielii/heartwaves/internal/model"
)

// Quick-check calibration thresholds over raw orthostatic vitals.
const (
	calibrationMinCoverage = 0.8
	hrRiseThreshold        = 30.0
	sbpDropThreshold       = -20.0
	restingHRThreshold     = 90.0
)

// CalibrateClusterResult applies the orthostatic quick-check cascade directly
// to the raw features, overriding the cluster call when coverage is high and
// the deltas are available. Short seated/standing vitals are a stronger, more
// specific signal than the 30-day aggregate window, so this override takes
// precedence over the model's own confidence. The override-vs-blend choice is
// under product review; keep the behavior confined to this function.
func CalibrateClusterResult(r *model.ClusteringResult) {
	if r == nil || r.Error != "" {
		return
	}
	if r.FeatureCoverage < calibrationMinCoverage || r.FeaturesUsed == nil {
		return
	}

	deltaHR := r.FeaturesUsed["delta_hr_stand_minus_sit"]
	deltaSBP := r.FeaturesUsed["delta_sbp_stand_minus_sit"]
	restingHR := r.FeaturesUsed["resting_hr_mean"]

	if deltaHR != nil && *deltaHR >= hrRiseThreshold && (deltaSBP == nil || *deltaSBP > sbpDropThreshold) {
		r.Status = model.StatusNeedsFollowup
		r.PhenotypeHint = model.HintPOTSLike
		r.Confidence = model.ConfidenceMedium
		r.Reason = fmt.Sprintf("Orthostatic quick-check shows HR rise %.1f bpm without major SBP drop; POTS-like follow-up pattern.", *deltaHR)
		return
	}

	if deltaSBP != nil && *deltaSBP <= sbpDropThreshold {
		r.Status = model.StatusNeedsFollowup
		r.PhenotypeHint = model.HintOHLike
		r.Confidence = model.ConfidenceMedium
		r.Reason = fmt.Sprintf("Orthostatic quick-check shows SBP drop %.1f mmHg; OH-like follow-up pattern.", *deltaSBP)
		return
	}

	if restingHR != nil && *restingHR >= restingHRThreshold && (deltaHR == nil || *deltaHR < hrRiseThreshold) {
		r.Status = model.StatusNeedsFollowup
		r.PhenotypeHint = model.HintISTLike
		r.Confidence = model.ConfidenceMedium
		r.Reason = "Orthostatic quick-check shows high resting HR with limited stand-related rise; IST-like follow-up pattern."
	}
}

// MergeClusterResult folds the independent cluster assessment into the
// rule-based one under a confidence-ranked precedence: a medium-or-better
// needs_followup call upgrades a normal draft; against an existing
// needs_followup draft it can only raise confidence or fill a vague hint.
// It never silently downgrades a higher-confidence assessment.
func MergeClusterResult(s *model.ScreeningResult, r *model.ClusteringResult) {
	if r == nil {
		return
	}
	CalibrateClusterResult(r)
	s.ClusteringModel = r

	if r.Error != "" {
		s.AppendNote("Clustering model unavailable: " + r.Error)
		return
	}

	s.AppendNote("Clustering model: " + r.Reason)

	switch {
	case r.Status == model.StatusNeedsFollowup && r.Confidence.Rank() >= model.ConfidenceMedium.Rank():
		if s.Status == model.StatusNormal {
			s.Status = model.StatusNeedsFollowup
			s.PhenotypeHint = r.PhenotypeHint
			if s.PhenotypeHint == "" {
				s.PhenotypeHint = model.HintUnspecified
			}
			s.PhenotypeConfidence = r.Confidence
			s.PhenotypeReason = r.Reason
			s.Questionnaire = QuestionnaireFor(model.StatusNeedsFollowup, s.PhenotypeHint, s.BPDataPresent)

			if !s.HasSignal("cluster_model_followup") {
				severity := model.SeverityLow
				if r.Confidence == model.ConfidenceHigh {
					severity = model.SeverityModerate
				}
				s.Signals = append(s.Signals, model.Signal{
					Key:      "cluster_model_followup",
					Severity: severity,
					Detail:   fmt.Sprintf("Clustering model flagged a %s pattern (%s confidence).", s.PhenotypeHint, r.Confidence),
				})
			}
			s.AppendNote("Model upgraded status from normal to needs_followup.")
		} else {
			if r.Confidence.Rank() > s.PhenotypeConfidence.Rank() {
				s.PhenotypeConfidence = r.Confidence
			}
			vague := s.PhenotypeHint == "" || s.PhenotypeHint == model.HintUnspecified || s.PhenotypeHint == model.HintNormal
			if vague && r.PhenotypeHint != "" {
				s.PhenotypeHint = r.PhenotypeHint
				s.Questionnaire = QuestionnaireFor(model.StatusNeedsFollowup, r.PhenotypeHint, s.BPDataPresent)
			}
		}
	case r.Status == model.StatusNeedsFollowup:
		s.AppendNote(fmt.Sprintf("Model suggested possible follow-up, but confidence is %s (coverage %.1f%%).",
			r.Confidence, r.FeatureCoverage*100))
	default:
		s.AppendNote("Model aligned with normal screening pattern.")
	}
}

// NormalizeProfile enforces the status/hint/confidence coherence invariants:
// a normal status always carries (normal, high), and a needs_followup status
// never carries an empty or "normal" hint.
func NormalizeProfile(s *model.ScreeningResult) {
	if s == nil {
		return
	}

	switch s.Status {
	case model.StatusNormal:
		s.PhenotypeHint = model.HintNormal
		s.PhenotypeConfidence = model.ConfidenceHigh
		if s.PhenotypeReason == "" {
			s.PhenotypeReason = "No strong follow-up pattern after current screening."
		}
	case model.StatusNeedsFollowup:
		if s.PhenotypeHint == "" || s.PhenotypeHint == model.HintNormal {
			s.PhenotypeHint = model.HintUnspecified
			if s.PhenotypeConfidence == "" {
				s.PhenotypeConfidence = model.ConfidenceLow
			}
			if s.PhenotypeReason == "" {
				s.PhenotypeReason = "Follow-up pattern detected, but no specific subtype was high-confidence."
			}
		}
	}
}
