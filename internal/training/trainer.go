package training

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maggielii/heartwaves/internal/model"
)

// DefaultContinuousFeatures is the feature set the labeled training tables
// carry, in artifact order.
var DefaultContinuousFeatures = []string{
	"age",
	"resting_hr_mean",
	"hrv_sdnn_mean",
	"sit_hr_mean",
	"stand_hr_mean",
	"delta_hr_stand_minus_sit",
	"sit_sbp_mean",
	"stand_sbp_mean",
	"delta_sbp_stand_minus_sit",
}

// IndicatorFeatures derives the missingness indicator names. Age is excluded:
// it comes from the profile, not the wearable, and its absence is not a
// sensor-coverage signal.
func IndicatorFeatures(continuous []string) []string {
	indicators := make([]string, 0, len(continuous))
	for _, f := range continuous {
		if f == "age" {
			continue
		}
		indicators = append(indicators, f+"_missing")
	}
	return indicators
}

// Options configure a training run.
type Options struct {
	K                 int
	NInit             int
	MaxIters          int
	Seed              int64
	FollowupThreshold float64
	Features          []string
}

// DefaultOptions are the settings the shipped baseline model was trained with.
func DefaultOptions() Options {
	return Options{
		K:                 5,
		NInit:             30,
		MaxIters:          120,
		Seed:              42,
		FollowupThreshold: 0.55,
		Features:          DefaultContinuousFeatures,
	}
}

// Predictions holds per-row outputs plus the evaluation metrics for one split.
type Predictions struct {
	StatusPreds    []string
	PhenotypePreds []string
	Clusters       []int
	Distances      []float64
	Metrics        SplitMetrics
}

// Output is everything one training run produces.
type Output struct {
	Artifact   *model.ClusterModelArtifact
	Evaluation *EvaluationReport
	Train      *Predictions
	Val        *Predictions
	Test       *Predictions
}

// Train fits k-means on the train split, maps clusters to phenotype labels by
// majority vote, and evaluates all three splits with train-derived
// preprocessing. Same seed, same inputs and same options reproduce
// bit-identical centroids and label maps.
func Train(trainRows, valRows, testRows []Row, opts Options) (*Output, error) {
	if len(opts.Features) == 0 {
		opts.Features = DefaultContinuousFeatures
	}
	if len(trainRows) < opts.K {
		return nil, fmt.Errorf("train rows (%d) are fewer than k=%d", len(trainRows), opts.K)
	}

	continuous := opts.Features
	indicators := IndicatorFeatures(continuous)

	medians := featureMedians(trainRows, continuous)
	trainUnscaled := vectorizeRows(trainRows, continuous, indicators, medians)
	means, stds := columnMoments(trainUnscaled)

	trainVectors := standardizeAll(trainUnscaled, means, stds)
	valVectors := standardizeAll(vectorizeRows(valRows, continuous, indicators, medians), means, stds)
	testVectors := standardizeAll(vectorizeRows(testRows, continuous, indicators, medians), means, stds)

	rng := rand.New(rand.NewSource(opts.Seed))
	kmeans, err := RunKMeans(trainVectors, opts.K, opts.NInit, opts.MaxIters, rng)
	if err != nil {
		return nil, err
	}

	mapping := mapClustersToHints(trainRows, kmeans.Assignments, opts.K, opts.FollowupThreshold)

	trainPred := predict(trainRows, trainVectors, kmeans.Centroids, mapping)
	valPred := predict(valRows, valVectors, kmeans.Centroids, mapping)
	testPred := predict(testRows, testVectors, kmeans.Centroids, mapping)

	now := time.Now().UTC().Format(time.RFC3339)
	artifact := &model.ClusterModelArtifact{
		CreatedAt: now,
		Algorithm: "kmeans",
		Config: model.TrainerSettings{
			K:                 opts.K,
			NInit:             opts.NInit,
			MaxIters:          opts.MaxIters,
			Seed:              opts.Seed,
			FollowupThreshold: opts.FollowupThreshold,
		},
		FeatureSpace: model.FeatureSpace{
			ContinuousFeatures: continuous,
			IndicatorFeatures:  indicators,
			AllFeatures:        append(append([]string(nil), continuous...), indicators...),
		},
		Preprocess: model.Preprocess{
			Medians: medians,
			Means:   means,
			Stds:    stds,
		},
		Centroids:            kmeans.Centroids,
		TrainInertia:         kmeans.Inertia,
		ClusterLabelCounts:   mapping.counts,
		ClusterPurity:        mapping.purity,
		ClusterFollowupRates: mapping.followupRates,
		ClusterHintMap:       mapping.hintMap,
		ClusterStatusMap:     mapping.statusMap,
	}

	evaluation := &EvaluationReport{
		CreatedAt: now,
		Train:     trainPred.Metrics,
		Val:       valPred.Metrics,
		Test:      testPred.Metrics,
		RowCounts: map[string]int{
			"train": len(trainRows),
			"val":   len(valRows),
			"test":  len(testRows),
		},
	}

	return &Output{
		Artifact:   artifact,
		Evaluation: evaluation,
		Train:      trainPred,
		Val:        valPred,
		Test:       testPred,
	}, nil
}

// featureMedians computes per-feature imputation medians from observed values
// only. An entirely missing column imputes as 0.
func featureMedians(rows []Row, continuous []string) map[string]float64 {
	medians := make(map[string]float64, len(continuous))
	for _, feature := range continuous {
		var values []float64
		for _, row := range rows {
			if v := row.Features[feature]; v != nil {
				values = append(values, *v)
			}
		}
		medians[feature] = simpleMedian(values)
	}
	return medians
}

func simpleMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

func vectorizeRows(rows []Row, continuous, indicators []string, medians map[string]float64) [][]float64 {
	vectors := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, 0, len(continuous)+len(indicators))
		for _, feature := range continuous {
			if v := row.Features[feature]; v != nil {
				vec = append(vec, *v)
			} else {
				vec = append(vec, medians[feature])
			}
		}
		for _, indicator := range indicators {
			base := strings.TrimSuffix(indicator, "_missing")
			if row.Features[base] == nil {
				vec = append(vec, 1.0)
			} else {
				vec = append(vec, 0.0)
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// columnMoments computes per-dimension mean and population std, flooring std
// at 1.0 so constant columns don't blow up standardization.
func columnMoments(vectors [][]float64) (means, stds []float64) {
	if len(vectors) == 0 {
		return nil, nil
	}
	dims := len(vectors[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)

	for d := 0; d < dims; d++ {
		sum := 0.0
		for _, vec := range vectors {
			sum += vec[d]
		}
		avg := sum / float64(len(vectors))
		means[d] = avg

		variance := 0.0
		for _, vec := range vectors {
			diff := vec[d] - avg
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(len(vectors)))
		if sd <= eps {
			sd = 1.0
		}
		stds[d] = sd
	}
	return means, stds
}

func standardizeAll(vectors [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, vec := range vectors {
		scaled := make([]float64, len(vec))
		for d, v := range vec {
			scaled[d] = (v - means[d]) / stds[d]
		}
		out[i] = scaled
	}
	return out
}

type clusterMapping struct {
	hintMap       map[string]string
	statusMap     map[string]string
	counts        []map[string]int
	purity        map[string]float64
	followupRates map[string]float64
}

// mapClustersToHints tallies training labels per cluster. A cluster becomes
// needs_followup when its non-normal fraction reaches the threshold; its hint
// is the most frequent non-normal label (alphabetical tie-break), and purity
// is the dominant assigned label's share of the cluster.
func mapClustersToHints(rows []Row, assignments []int, k int, followupThreshold float64) clusterMapping {
	counts := make([]map[string]int, k)
	for c := range counts {
		counts[c] = make(map[string]int)
	}
	for i, row := range rows {
		counts[assignments[i]][row.PhenotypeTarget]++
	}

	mapping := clusterMapping{
		hintMap:       make(map[string]string, k),
		statusMap:     make(map[string]string, k),
		counts:        counts,
		purity:        make(map[string]float64, k),
		followupRates: make(map[string]float64, k),
	}

	for cluster, labelCounts := range counts {
		id := strconv.Itoa(cluster)
		if len(labelCounts) == 0 {
			mapping.hintMap[id] = string(model.HintNormal)
			mapping.statusMap[id] = string(model.StatusNormal)
			mapping.purity[id] = 0
			mapping.followupRates[id] = 0
			continue
		}

		total := 0
		for _, n := range labelCounts {
			total += n
		}
		followupCount := total - labelCounts[string(model.HintNormal)]
		followupRate := float64(followupCount) / float64(total)
		mapping.followupRates[id] = followupRate

		status := string(model.StatusNormal)
		hint := string(model.HintNormal)
		if followupRate >= followupThreshold {
			status = string(model.StatusNeedsFollowup)
			hint = dominantNonNormalLabel(labelCounts)
		}

		mapping.hintMap[id] = hint
		mapping.statusMap[id] = status
		mapping.purity[id] = float64(labelCounts[hint]) / float64(total)
	}
	return mapping
}

func dominantNonNormalLabel(labelCounts map[string]int) string {
	type labelCount struct {
		label string
		count int
	}
	var candidates []labelCount
	for label, count := range labelCounts {
		if label == string(model.HintNormal) {
			continue
		}
		candidates = append(candidates, labelCount{label, count})
	}
	if len(candidates) == 0 {
		return string(model.HintUnspecified)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].label < candidates[j].label
	})
	return candidates[0].label
}

func predict(rows []Row, vectors [][]float64, centroids [][]float64, mapping clusterMapping) *Predictions {
	preds := &Predictions{
		StatusPreds:    make([]string, len(rows)),
		PhenotypePreds: make([]string, len(rows)),
		Clusters:       make([]int, len(rows)),
		Distances:      make([]float64, len(rows)),
	}

	for i, vec := range vectors {
		cluster, dist := closestCentroid(vec, centroids)
		id := strconv.Itoa(cluster)
		hint := mapping.hintMap[id]
		if hint == "" {
			hint = string(model.HintNormal)
		}
		status := mapping.statusMap[id]
		if status == "" {
			if hint == string(model.HintNormal) {
				status = string(model.StatusNormal)
			} else {
				status = string(model.StatusNeedsFollowup)
			}
		}
		preds.PhenotypePreds[i] = hint
		preds.StatusPreds[i] = status
		preds.Clusters[i] = cluster
		preds.Distances[i] = dist
	}

	preds.Metrics = SplitMetrics{
		Binary:    binaryMetrics(rows, preds.StatusPreds),
		Phenotype: phenotypeMetrics(rows, preds.PhenotypePreds),
	}
	return preds
}

// SaveArtifact writes the model artifact as indented JSON.
func SaveArtifact(path string, artifact *model.ClusterModelArtifact) error {
	return writeJSONFile(path, artifact)
}

// SaveEvaluation writes the evaluation report as indented JSON.
func SaveEvaluation(path string, report *EvaluationReport) error {
	return writeJSONFile(path, report)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WritePredictionsCSV records per-row predictions alongside their targets.
func WritePredictionsCSV(path string, rows []Row, preds *Predictions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"source_subject_id", "source_group", "status_target", "phenotype_hint_target",
		"status_pred", "phenotype_pred", "cluster_id", "distance_to_centroid",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		record := []string{
			row.SubjectID,
			row.SourceGroup,
			row.StatusTarget,
			row.PhenotypeTarget,
			preds.StatusPreds[i],
			preds.PhenotypePreds[i],
			strconv.Itoa(preds.Clusters[i]),
			strconv.FormatFloat(round6(preds.Distances[i]), 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
