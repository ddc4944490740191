package screening

import (
	"errors"
	"fmt"
	"math"

	"github.com/maggielii/heartwaves/internal/model"
)

// ErrEmptySeries means the caller supplied no daily rows at all. That is a
// caller contract violation, not a screening outcome.
var ErrEmptySeries = errors.New("no daily series computed")

const recentWindowDays = 7

// Thresholds for the rule signals. Recent means must clear the baseline
// median by the larger of the absolute floor and 1.5x IQR, strictly.
const (
	elevatedHRFloor    = 5.0
	suppressedHRVFloor = 10.0
	iqrMultiplier      = 1.5
)

var safetyNotes = []string{
	"This tool is not a diagnosis.",
	"If you have chest pain, severe shortness of breath, fainting, or severe symptoms, seek urgent medical care.",
}

// RunBaseline screens a daily metric series against its own baseline and
// produces the draft assessment: signals, phenotype hint, questionnaire and
// per-metric robust stats. Pure over its input.
func RunBaseline(daily []model.DailyMetric) (*model.ScreeningResult, error) {
	if len(daily) == 0 {
		return nil, ErrEmptySeries
	}

	rhr := collect(daily, func(d *model.DailyMetric) *float64 { return d.RestingHRMean })
	hrv := collect(daily, func(d *model.DailyMetric) *float64 { return d.HRVSDNNMean })
	stand := collectValues(daily, func(d *model.DailyMetric) float64 { return d.StandMinutes })
	active := collectValues(daily, func(d *model.DailyMetric) float64 { return d.ActiveMinutes })

	stats := model.StatsSummary{
		RestingHR:     ComputeRobustStats(rhr),
		HRVSDNN:       ComputeRobustStats(hrv),
		StandMinutes:  ComputeRobustStats(stand),
		ActiveMinutes: ComputeRobustStats(active),
	}

	recent := daily
	if len(daily) > recentWindowDays {
		recent = daily[len(daily)-recentWindowDays:]
	}
	recentRHR := collect(recent, func(d *model.DailyMetric) *float64 { return d.RestingHRMean })
	recentHRV := collect(recent, func(d *model.DailyMetric) *float64 { return d.HRVSDNNMean })
	recentStand := collectValues(recent, func(d *model.DailyMetric) float64 { return d.StandMinutes })
	recentActive := collectValues(recent, func(d *model.DailyMetric) float64 { return d.ActiveMinutes })

	var signals []model.Signal
	var notes []string

	if stats.RestingHR != nil && len(recentRHR) >= 3 {
		recentMean, _ := Mean(recentRHR)
		threshold := stats.RestingHR.Median + math.Max(elevatedHRFloor, iqrMultiplier*stats.RestingHR.IQR)
		if recentMean > threshold {
			signals = append(signals, model.Signal{
				Key:      "elevated_resting_hr",
				Severity: model.SeverityModerate,
				Detail: fmt.Sprintf("Recent 7-day mean resting HR (%.1f bpm) is above baseline median (%.1f bpm).",
					recentMean, stats.RestingHR.Median),
			})
		}
	} else {
		notes = append(notes, "Not enough resting HR data to assess trend.")
	}

	if stats.HRVSDNN != nil && len(recentHRV) >= 3 {
		recentMean, _ := Mean(recentHRV)
		threshold := stats.HRVSDNN.Median - math.Max(suppressedHRVFloor, iqrMultiplier*stats.HRVSDNN.IQR)
		if recentMean < threshold {
			signals = append(signals, model.Signal{
				Key:      "suppressed_hrv",
				Severity: model.SeverityModerate,
				Detail: fmt.Sprintf("Recent 7-day mean HRV SDNN (%.1f ms) is below baseline median (%.1f ms).",
					recentMean, stats.HRVSDNN.Median),
			})
		}
	} else {
		notes = append(notes, "Not enough HRV data to assess trend.")
	}

	status := model.StatusNormal
	if len(signals) > 0 {
		status = model.StatusNeedsFollowup
	}
	bpPresent := bpDataPresent(daily)

	phenotype := classifyPhenotype(status, signals, stats.StandMinutes, recentStand, recentActive, bpPresent)
	notes = append(notes, phenotype.notes...)

	result := &model.ScreeningResult{
		Status:              status,
		PhenotypeHint:       phenotype.hint,
		PhenotypeConfidence: phenotype.confidence,
		PhenotypeReason:     phenotype.reason,
		BPDataPresent:       bpPresent,
		Signals:             signals,
		Questionnaire:       QuestionnaireFor(status, phenotype.hint, bpPresent),
		SafetyNotes:         append([]string(nil), safetyNotes...),
		Stats:               stats,
	}
	for _, n := range notes {
		result.AppendNote(n)
	}
	return result, nil
}

type phenotypeCall struct {
	hint       model.PhenotypeHint
	confidence model.Confidence
	reason     string
	notes      []string
}

// classifyPhenotype is a priority cascade: elevated-HR signals dominate, then
// HRV suppression, then the unspecified fallback.
func classifyPhenotype(
	status model.Status,
	signals []model.Signal,
	standStats *model.RobustStats,
	recentStand, recentActive []float64,
	bpPresent bool,
) phenotypeCall {
	if status == model.StatusNormal {
		return phenotypeCall{
			hint:       model.HintNormal,
			confidence: model.ConfidenceHigh,
			reason:     "No strong autonomic risk pattern was detected in this 30-day window.",
		}
	}

	hasTachy := false
	hasHRVSuppression := false
	for _, sig := range signals {
		switch sig.Key {
		case "elevated_resting_hr":
			hasTachy = true
		case "suppressed_hrv":
			hasHRVSuppression = true
		}
	}

	var standShift *float64
	if standRecentMean, ok := Mean(recentStand); ok && standStats != nil {
		shift := standRecentMean - standStats.Median
		standShift = &shift
	}

	if hasTachy {
		if standShift != nil && *standShift <= -5.0 {
			return phenotypeCall{
				hint:       model.HintISTLike,
				confidence: model.ConfidenceHigh,
				reason:     "Elevated resting heart-rate pattern appears less tied to standing load, which is more IST-like than orthostatic.",
			}
		}
		return phenotypeCall{
			hint:       model.HintPOTSLike,
			confidence: model.ConfidenceHigh,
			reason:     "Elevated resting heart-rate trend with orthostatic-focused signals suggests a POTS-like follow-up pattern.",
		}
	}

	if hasHRVSuppression {
		hint := model.HintOHLike
		reason := "Autonomic suppression pattern could overlap orthostatic hypotension-like states, but blood-pressure confirmation is needed."
		if standShift != nil && *standShift >= 5.0 {
			hint = model.HintVVSLike
			reason = "Autonomic suppression pattern overlaps with vasovagal-like states, but confirmation requires blood-pressure context."
		}
		var notes []string
		if !bpPresent {
			notes = append(notes, "Blood pressure data not present; OH/VVS hints are low-confidence until BP trends are available.")
		}
		return phenotypeCall{hint: hint, confidence: model.ConfidenceLow, reason: reason, notes: notes}
	}

	var notes []string
	if !bpPresent {
		notes = append(notes, "Blood pressure data not present; subtype confidence is limited.")
	}
	if activeRecentMean, ok := Mean(recentActive); ok && activeRecentMean >= 45.0 {
		notes = append(notes, "Higher recent activity may contribute to non-specific autonomic signals.")
	}
	return phenotypeCall{
		hint:       model.HintUnspecified,
		confidence: model.ConfidenceLow,
		reason:     "Follow-up pattern detected, but no specific dysautonomia-like subtype was high-confidence.",
		notes:      notes,
	}
}

func bpDataPresent(daily []model.DailyMetric) bool {
	for i := range daily {
		if daily[i].HasBPData() {
			return true
		}
	}
	return false
}

// collect gathers the non-nil finite values of an optional field.
func collect(daily []model.DailyMetric, get func(*model.DailyMetric) *float64) []float64 {
	out := make([]float64, 0, len(daily))
	for i := range daily {
		v := get(&daily[i])
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out = append(out, *v)
	}
	return out
}

func collectValues(daily []model.DailyMetric, get func(*model.DailyMetric) float64) []float64 {
	out := make([]float64, 0, len(daily))
	for i := range daily {
		out = append(out, get(&daily[i]))
	}
	return out
}
