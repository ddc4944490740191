package model

// FeatureSpace lists the model's input features in artifact order. Indicator
// features mirror the continuous ones (minus age) with a "_missing" suffix.
type FeatureSpace struct {
	ContinuousFeatures []string `json:"continuous_features" bson:"continuous_features"`
	IndicatorFeatures  []string `json:"indicator_features" bson:"indicator_features"`
	AllFeatures        []string `json:"all_features" bson:"all_features"`
}

// Preprocess holds the train-derived imputation and standardization
// parameters. Medians are keyed by continuous feature; means/stds are
// indexed in AllFeatures order.
type Preprocess struct {
	Medians map[string]float64 `json:"medians" bson:"medians"`
	Means   []float64          `json:"means" bson:"means"`
	Stds    []float64          `json:"stds" bson:"stds"`
}

// TrainerSettings records how the artifact was trained.
type TrainerSettings struct {
	K                 int     `json:"k" bson:"k"`
	NInit             int     `json:"n_init" bson:"n_init"`
	MaxIters          int     `json:"max_iters" bson:"max_iters"`
	Seed              int64   `json:"seed" bson:"seed"`
	FollowupThreshold float64 `json:"followup_threshold" bson:"followup_threshold"`
}

// ClusterModelArtifact is the offline-trained k-means model. It is immutable
// once loaded and is the sole contract between the trainer and the scorer;
// the JSON keys must round-trip exactly.
type ClusterModelArtifact struct {
	CreatedAt            string             `json:"created_at,omitempty" bson:"created_at,omitempty"`
	Algorithm            string             `json:"algorithm,omitempty" bson:"algorithm,omitempty"`
	Config               TrainerSettings    `json:"config" bson:"config"`
	FeatureSpace         FeatureSpace       `json:"feature_space" bson:"feature_space"`
	Preprocess           Preprocess         `json:"preprocess" bson:"preprocess"`
	Centroids            [][]float64        `json:"centroids" bson:"centroids"`
	TrainInertia         float64            `json:"train_inertia,omitempty" bson:"train_inertia,omitempty"`
	ClusterLabelCounts   []map[string]int   `json:"cluster_label_counts,omitempty" bson:"cluster_label_counts,omitempty"`
	ClusterPurity        map[string]float64 `json:"cluster_purity" bson:"cluster_purity"`
	ClusterFollowupRates map[string]float64 `json:"cluster_followup_rates" bson:"cluster_followup_rates"`
	ClusterHintMap       map[string]string  `json:"cluster_hint_map" bson:"cluster_hint_map"`
	ClusterStatusMap     map[string]string  `json:"cluster_status_map" bson:"cluster_status_map"`
}

// ClusteringResult is the scorer's independent assessment. A populated Error
// means scoring failed and the rest of the fields are not meaningful; the
// caller folds it into a data note rather than failing the request.
type ClusteringResult struct {
	Source              string              `json:"source" bson:"source"`
	ModelPath           string              `json:"model_path,omitempty" bson:"model_path,omitempty"`
	Status              Status              `json:"status,omitempty" bson:"status,omitempty"`
	PhenotypeHint       PhenotypeHint       `json:"phenotype_hint,omitempty" bson:"phenotype_hint,omitempty"`
	Confidence          Confidence          `json:"confidence,omitempty" bson:"confidence,omitempty"`
	Reason              string              `json:"reason,omitempty" bson:"reason,omitempty"`
	ClusterID           int                 `json:"cluster_id" bson:"cluster_id"`
	DistanceToCentroid  float64             `json:"distance_to_centroid" bson:"distance_to_centroid"`
	ClusterPurity       float64             `json:"cluster_purity" bson:"cluster_purity"`
	ClusterFollowupRate float64             `json:"cluster_followup_rate" bson:"cluster_followup_rate"`
	FeatureCoverage     float64             `json:"feature_coverage" bson:"feature_coverage"`
	FeaturesUsed        map[string]*float64 `json:"features_used,omitempty" bson:"features_used,omitempty"`
	Error               string              `json:"error,omitempty" bson:"error,omitempty"`
}
