package screening

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggielii/heartwaves/internal/model"
)

// testArtifact is a 2-cluster model over two continuous features with
// identity standardization, so vectors equal their raw values.
func testArtifact() *model.ClusterModelArtifact {
	return &model.ClusterModelArtifact{
		Algorithm: "kmeans",
		FeatureSpace: model.FeatureSpace{
			ContinuousFeatures: []string{"resting_hr_mean", "hrv_sdnn_mean"},
			IndicatorFeatures:  []string{"resting_hr_mean_missing", "hrv_sdnn_mean_missing"},
			AllFeatures:        []string{"resting_hr_mean", "hrv_sdnn_mean", "resting_hr_mean_missing", "hrv_sdnn_mean_missing"},
		},
		Preprocess: model.Preprocess{
			Medians: map[string]float64{"resting_hr_mean": 60, "hrv_sdnn_mean": 50},
			Means:   []float64{0, 0, 0, 0},
			Stds:    []float64{1, 1, 1, 1},
		},
		Centroids: [][]float64{
			{60, 50, 0, 0},
			{85, 25, 0, 0},
		},
		ClusterPurity:        map[string]float64{"0": 0.9, "1": 0.8},
		ClusterFollowupRates: map[string]float64{"0": 0.05, "1": 0.85},
		ClusterHintMap:       map[string]string{"0": "normal", "1": "pots_like"},
		ClusterStatusMap:     map[string]string{"0": "normal", "1": "needs_followup"},
	}
}

func writeArtifact(t *testing.T, artifact *model.ClusterModelArtifact) string {
	t.Helper()
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadArtifactMissingFile(t *testing.T) {
	artifact, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.Nil(t, artifact)
}

func TestLoadArtifactMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadArtifact(path)
	assert.Error(t, err)
}

func TestLoadArtifactRejectsContradictoryMaps(t *testing.T) {
	artifact := testArtifact()
	artifact.ClusterStatusMap["0"] = "needs_followup"

	_, err := LoadArtifact(writeArtifact(t, artifact))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs_followup")
}

func TestLoadArtifactRejectsDimensionMismatch(t *testing.T) {
	artifact := testArtifact()
	artifact.Centroids[1] = []float64{85, 25, 0}

	_, err := LoadArtifact(writeArtifact(t, artifact))
	assert.Error(t, err)
}

func TestScoreClusteringNoModel(t *testing.T) {
	result := ScoreClustering(nil, nil, nil, filepath.Join(t.TempDir(), "absent.json"))
	assert.Nil(t, result)
}

func TestScoreClusteringFullCoverage(t *testing.T) {
	daily := []model.DailyMetric{
		{Date: "2026-08-01", RestingHRMean: fptr(80), HRVSDNNMean: fptr(20)},
		{Date: "2026-08-02", RestingHRMean: fptr(80), HRVSDNNMean: fptr(20)},
	}
	path := writeArtifact(t, testArtifact())

	result := ScoreClustering(daily, nil, nil, path)
	require.NotNil(t, result)
	require.Empty(t, result.Error)

	assert.Equal(t, 1, result.ClusterID)
	assert.Equal(t, model.StatusNeedsFollowup, result.Status)
	assert.Equal(t, model.HintPOTSLike, result.PhenotypeHint)
	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	assert.InDelta(t, 1.0, result.FeatureCoverage, 1e-9)
	assert.GreaterOrEqual(t, result.FeatureCoverage, 0.0)
	assert.LessOrEqual(t, result.FeatureCoverage, 1.0)
}

func TestScoreClusteringZeroCoverageImputes(t *testing.T) {
	// Nothing observed: both features impute to the training medians, which
	// sit on the normal centroid, and the indicator dimensions carry the
	// distance. Low coverage demotes the high-purity normal call.
	path := writeArtifact(t, testArtifact())

	result := ScoreClustering(nil, nil, nil, path)
	require.NotNil(t, result)
	require.Empty(t, result.Error)

	assert.Equal(t, 0, result.ClusterID)
	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Equal(t, model.ConfidenceMedium, result.Confidence)
	assert.InDelta(t, 0.0, result.FeatureCoverage, 1e-9)
}

func TestScoreWithArtifactDerivesDeltas(t *testing.T) {
	artifact := testArtifact()
	artifact.FeatureSpace = model.FeatureSpace{
		ContinuousFeatures: []string{"delta_hr_stand_minus_sit"},
		IndicatorFeatures:  []string{"delta_hr_stand_minus_sit_missing"},
		AllFeatures:        []string{"delta_hr_stand_minus_sit", "delta_hr_stand_minus_sit_missing"},
	}
	artifact.Preprocess = model.Preprocess{
		Medians: map[string]float64{"delta_hr_stand_minus_sit": 10},
		Means:   []float64{0, 0},
		Stds:    []float64{1, 1},
	}
	artifact.Centroids = [][]float64{{10, 0}, {35, 0}}

	ortho := &model.OrthostaticInput{SitHRMean: fptr(70), StandHRMean: fptr(105)}
	result := ScoreWithArtifact(nil, nil, ortho, artifact, "t")
	require.Empty(t, result.Error)

	require.NotNil(t, result.FeaturesUsed["delta_hr_stand_minus_sit"])
	assert.InDelta(t, 35.0, *result.FeaturesUsed["delta_hr_stand_minus_sit"], 1e-9)
	assert.Equal(t, 1, result.ClusterID)
}

func TestClusterConfidenceGrading(t *testing.T) {
	tests := []struct {
		name     string
		status   model.Status
		purity   float64
		coverage float64
		want     model.Confidence
	}{
		{name: "high purity", status: model.StatusNeedsFollowup, purity: 0.80, coverage: 1.0, want: model.ConfidenceHigh},
		{name: "purity at high cutoff", status: model.StatusNormal, purity: 0.75, coverage: 1.0, want: model.ConfidenceHigh},
		{name: "medium purity", status: model.StatusNeedsFollowup, purity: 0.60, coverage: 1.0, want: model.ConfidenceMedium},
		{name: "low purity", status: model.StatusNormal, purity: 0.40, coverage: 1.0, want: model.ConfidenceLow},
		{name: "low coverage caps followup", status: model.StatusNeedsFollowup, purity: 0.90, coverage: 0.2, want: model.ConfidenceLow},
		{name: "low coverage demotes high normal", status: model.StatusNormal, purity: 0.90, coverage: 0.2, want: model.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clusterConfidence(tt.status, tt.purity, tt.coverage))
		})
	}
}
