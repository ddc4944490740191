package screening

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/maggielii/heartwaves/internal/model"
)

const clusteringSource = "kmeans_baseline"

// Coverage below this fraction caps or demotes the purity-derived confidence.
const lowCoverageThreshold = 0.35

// LoadArtifact reads and validates a cluster model artifact. It returns
// (nil, nil) when no file exists at the path, which callers treat as
// "clustering unavailable" rather than an error.
func LoadArtifact(path string) (*model.ClusterModelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact model.ClusterModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := validateArtifact(&artifact); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &artifact, nil
}

func validateArtifact(a *model.ClusterModelArtifact) error {
	fs := a.FeatureSpace
	if len(fs.AllFeatures) == 0 {
		return fmt.Errorf("empty feature space")
	}
	if len(fs.AllFeatures) != len(fs.ContinuousFeatures)+len(fs.IndicatorFeatures) {
		return fmt.Errorf("all_features length %d does not cover continuous (%d) + indicator (%d)",
			len(fs.AllFeatures), len(fs.ContinuousFeatures), len(fs.IndicatorFeatures))
	}
	if len(a.Preprocess.Means) != len(fs.AllFeatures) || len(a.Preprocess.Stds) != len(fs.AllFeatures) {
		return fmt.Errorf("preprocess means/stds length does not match feature count %d", len(fs.AllFeatures))
	}
	if len(a.Centroids) == 0 {
		return fmt.Errorf("no centroids")
	}
	for i, c := range a.Centroids {
		if len(c) != len(fs.AllFeatures) {
			return fmt.Errorf("centroid %d has %d dimensions, want %d", i, len(c), len(fs.AllFeatures))
		}
	}

	// The serving-time defaults (hint missing -> normal, status missing ->
	// needs_followup unless hint is normal) can combine into a
	// needs_followup/normal mismatch when the maps disagree. Reject that at
	// load time instead of serving a contradictory assessment.
	for i := range a.Centroids {
		id := strconv.Itoa(i)
		hint := a.ClusterHintMap[id]
		status := a.ClusterStatusMap[id]
		if status == string(model.StatusNeedsFollowup) && (hint == "" || hint == string(model.HintNormal)) {
			return fmt.Errorf("cluster %s maps to needs_followup with hint %q", id, hint)
		}
	}
	return nil
}

// ScoreClustering scores the window against a pretrained k-means artifact,
// independently of the rule-based draft. Returns nil when no artifact exists
// at modelPath; any scoring failure is converted into a result carrying only
// Source and Error, never a request failure.
func ScoreClustering(daily []model.DailyMetric, age *float64, ortho *model.OrthostaticInput, modelPath string) *model.ClusteringResult {
	artifact, err := LoadArtifact(modelPath)
	if err != nil {
		return &model.ClusteringResult{Source: clusteringSource, Error: err.Error()}
	}
	if artifact == nil {
		return nil
	}
	return ScoreWithArtifact(daily, age, ortho, artifact, modelPath)
}

// ScoreWithArtifact runs the scoring math against an already-loaded artifact.
func ScoreWithArtifact(daily []model.DailyMetric, age *float64, ortho *model.OrthostaticInput, artifact *model.ClusterModelArtifact, modelPath string) *model.ClusteringResult {
	fs := artifact.FeatureSpace
	rawValues := buildFeatureValues(daily, age, ortho, fs.ContinuousFeatures)
	vector := buildVector(rawValues, fs, artifact.Preprocess)

	clusterIdx, dist := nearestCentroid(vector, artifact.Centroids)

	clusterID := strconv.Itoa(clusterIdx)
	hint := model.PhenotypeHint(artifact.ClusterHintMap[clusterID])
	status := model.Status(artifact.ClusterStatusMap[clusterID])
	purity := artifact.ClusterPurity[clusterID]
	followupRate := artifact.ClusterFollowupRates[clusterID]
	coverage := featureCoverage(rawValues)

	if hint == "" {
		hint = model.HintNormal
	}
	if status == "" {
		if hint == model.HintNormal {
			status = model.StatusNormal
		} else {
			status = model.StatusNeedsFollowup
		}
	}
	confidence := clusterConfidence(status, purity, coverage)

	return &model.ClusteringResult{
		Source:              clusteringSource,
		ModelPath:           modelPath,
		Status:              status,
		PhenotypeHint:       hint,
		Confidence:          confidence,
		Reason:              clusterReason(status, hint, confidence, purity, followupRate, coverage),
		ClusterID:           clusterIdx,
		DistanceToCentroid:  roundTo(dist, 6),
		ClusterPurity:       roundTo(purity, 4),
		ClusterFollowupRate: roundTo(followupRate, 4),
		FeatureCoverage:     roundTo(coverage, 4),
		FeaturesUsed:        rawValues,
	}
}

// buildFeatureValues assembles the raw (pre-imputation) feature observations.
// Window-level features average the whole series; orthostatic features come
// from the quick-check input, with deltas derived from sit/stand pairs.
func buildFeatureValues(daily []model.DailyMetric, age *float64, ortho *model.OrthostaticInput, continuous []string) map[string]*float64 {
	values := make(map[string]*float64, len(continuous))
	for _, feature := range continuous {
		values[feature] = nil
	}
	wants := func(feature string) bool {
		_, ok := values[feature]
		return ok
	}

	if wants("resting_hr_mean") {
		values["resting_hr_mean"] = meanPtr(collect(daily, func(d *model.DailyMetric) *float64 { return d.RestingHRMean }))
	}
	if wants("hrv_sdnn_mean") {
		values["hrv_sdnn_mean"] = meanPtr(collect(daily, func(d *model.DailyMetric) *float64 { return d.HRVSDNNMean }))
	}
	if wants("age") {
		values["age"] = copyPtr(age)
	}

	if ortho != nil {
		if wants("sit_hr_mean") {
			values["sit_hr_mean"] = copyPtr(ortho.SitHRMean)
		}
		if wants("stand_hr_mean") {
			values["stand_hr_mean"] = copyPtr(ortho.StandHRMean)
		}
		if wants("sit_sbp_mean") {
			values["sit_sbp_mean"] = copyPtr(ortho.SitSBPMean)
		}
		if wants("stand_sbp_mean") {
			values["stand_sbp_mean"] = copyPtr(ortho.StandSBPMean)
		}
		if wants("delta_hr_stand_minus_sit") {
			values["delta_hr_stand_minus_sit"] = copyPtr(ortho.DeltaHRStandMinusSit)
			if values["delta_hr_stand_minus_sit"] == nil && values["sit_hr_mean"] != nil && values["stand_hr_mean"] != nil {
				d := *values["stand_hr_mean"] - *values["sit_hr_mean"]
				values["delta_hr_stand_minus_sit"] = &d
			}
		}
		if wants("delta_sbp_stand_minus_sit") {
			values["delta_sbp_stand_minus_sit"] = copyPtr(ortho.DeltaSBPStandMinusSit)
			if values["delta_sbp_stand_minus_sit"] == nil && values["sit_sbp_mean"] != nil && values["stand_sbp_mean"] != nil {
				d := *values["stand_sbp_mean"] - *values["sit_sbp_mean"]
				values["delta_sbp_stand_minus_sit"] = &d
			}
		}
	}

	return values
}

// buildVector imputes missing continuous values with the training-set median,
// sets the paired missingness indicators, then standardizes each dimension in
// the artifact's fixed feature order. A zero training std standardizes as 1.
func buildVector(rawValues map[string]*float64, fs model.FeatureSpace, pre model.Preprocess) []float64 {
	unscaled := make(map[string]float64, len(fs.AllFeatures))

	for _, feature := range fs.ContinuousFeatures {
		if v := rawValues[feature]; v != nil {
			unscaled[feature] = *v
		} else {
			unscaled[feature] = pre.Medians[feature]
		}
	}
	for _, feature := range fs.IndicatorFeatures {
		base := strings.TrimSuffix(feature, "_missing")
		if rawValues[base] == nil {
			unscaled[feature] = 1.0
		} else {
			unscaled[feature] = 0.0
		}
	}

	vector := make([]float64, len(fs.AllFeatures))
	for i, feature := range fs.AllFeatures {
		std := pre.Stds[i]
		if std == 0 {
			std = 1.0
		}
		vector[i] = (unscaled[feature] - pre.Means[i]) / std
	}
	return vector
}

// featureCoverage is the fraction of continuous features actually observed
// before imputation.
func featureCoverage(values map[string]*float64) float64 {
	if len(values) == 0 {
		return 0
	}
	present := 0
	for _, v := range values {
		if v != nil {
			present++
		}
	}
	return float64(present) / float64(len(values))
}

func nearestCentroid(vector []float64, centroids [][]float64) (int, float64) {
	bestIdx := 0
	bestDist := math.Inf(1)
	for idx, centroid := range centroids {
		if d := squaredDistance(vector, centroid); d < bestDist {
			bestIdx = idx
			bestDist = d
		}
	}
	return bestIdx, bestDist
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// clusterConfidence grades the assignment by cluster purity, then applies the
// low-coverage penalty: under 35% observed features a needs_followup call is
// capped at low, and a normal call loses one step if it was high.
func clusterConfidence(status model.Status, purity, coverage float64) model.Confidence {
	base := model.ConfidenceLow
	if purity >= 0.75 {
		base = model.ConfidenceHigh
	} else if purity >= 0.55 {
		base = model.ConfidenceMedium
	}

	if coverage < lowCoverageThreshold {
		if status == model.StatusNeedsFollowup {
			return model.ConfidenceLow
		}
		if base == model.ConfidenceHigh {
			return model.ConfidenceMedium
		}
	}
	return base
}

func clusterReason(status model.Status, hint model.PhenotypeHint, confidence model.Confidence, purity, followupRate, coverage float64) string {
	if status == model.StatusNeedsFollowup {
		return fmt.Sprintf("Cluster pattern suggests %s (confidence %s; cluster purity %.1f%%; follow-up rate %.1f%%; feature coverage %.1f%%).",
			strings.ReplaceAll(string(hint), "_", "-"), confidence, purity*100, followupRate*100, coverage*100)
	}
	return fmt.Sprintf("Cluster pattern aligns with normal range (confidence %s; cluster purity %.1f%%; feature coverage %.1f%%).",
		confidence, purity*100, coverage*100)
}

func meanPtr(values []float64) *float64 {
	if m, ok := Mean(values); ok {
		return &m
	}
	return nil
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
