package model

// DailyMetric is one day of aggregated wearable metrics from the import
// collaborator. Missing days are simply absent from the series; optional
// fields are nil when the wearable recorded no samples that day, never zero.
type DailyMetric struct {
	Date          string   `json:"date" bson:"date"`
	RestingHRMean *float64 `json:"resting_hr_mean,omitempty" bson:"resting_hr_mean,omitempty"`
	HRVSDNNMean   *float64 `json:"hrv_sdnn_mean,omitempty" bson:"hrv_sdnn_mean,omitempty"`
	StandMinutes  float64  `json:"stand_minutes" bson:"stand_minutes"`
	ActiveMinutes float64  `json:"active_minutes" bson:"active_minutes"`

	// Blood-pressure aliases; importers disagree on naming so all four are
	// recognized when checking BP availability.
	SystolicBPMean  *float64 `json:"systolic_bp_mean,omitempty" bson:"systolic_bp_mean,omitempty"`
	DiastolicBPMean *float64 `json:"diastolic_bp_mean,omitempty" bson:"diastolic_bp_mean,omitempty"`
	BPSystolicMean  *float64 `json:"bp_systolic_mean,omitempty" bson:"bp_systolic_mean,omitempty"`
	BPDiastolicMean *float64 `json:"bp_diastolic_mean,omitempty" bson:"bp_diastolic_mean,omitempty"`
}

// HasBPData reports whether any recognized blood-pressure field is present.
func (d *DailyMetric) HasBPData() bool {
	return d.SystolicBPMean != nil || d.DiastolicBPMean != nil ||
		d.BPSystolicMean != nil || d.BPDiastolicMean != nil
}

// RobustStats is an order-statistic summary of a metric series. It only
// exists for series with at least five finite values.
type RobustStats struct {
	N      int     `json:"n" bson:"n"`
	Median float64 `json:"median" bson:"median"`
	Q1     float64 `json:"q1" bson:"q1"`
	Q3     float64 `json:"q3" bson:"q3"`
	IQR    float64 `json:"iqr" bson:"iqr"`
}

// StatsSummary bundles the per-metric robust stats for one screening run.
// A nil entry means the metric had too little data to summarize.
type StatsSummary struct {
	RestingHR     *RobustStats `json:"resting_hr" bson:"resting_hr"`
	HRVSDNN       *RobustStats `json:"hrv_sdnn" bson:"hrv_sdnn"`
	StandMinutes  *RobustStats `json:"stand_minutes" bson:"stand_minutes"`
	ActiveMinutes *RobustStats `json:"active_minutes" bson:"active_minutes"`
}

// SignalSeverity grades how strong an anomaly signal is.
type SignalSeverity string

const (
	SeverityLow      SignalSeverity = "low"
	SeverityModerate SignalSeverity = "moderate"
	SeverityHigh     SignalSeverity = "high"
)

// Signal is one anomaly detected by rule evaluation or the cluster merge.
type Signal struct {
	Key      string         `json:"key" bson:"key"`
	Severity SignalSeverity `json:"severity" bson:"severity"`
	Detail   string         `json:"detail" bson:"detail"`
}

// OrthostaticInput is a user-supplied seated vs standing quick-check. Deltas
// are derived from the sit/stand pairs when not provided directly.
type OrthostaticInput struct {
	SitHRMean             *float64 `json:"sit_hr_mean,omitempty" bson:"sit_hr_mean,omitempty"`
	StandHRMean           *float64 `json:"stand_hr_mean,omitempty" bson:"stand_hr_mean,omitempty"`
	SitSBPMean            *float64 `json:"sit_sbp_mean,omitempty" bson:"sit_sbp_mean,omitempty"`
	StandSBPMean          *float64 `json:"stand_sbp_mean,omitempty" bson:"stand_sbp_mean,omitempty"`
	DeltaHRStandMinusSit  *float64 `json:"delta_hr_stand_minus_sit,omitempty" bson:"delta_hr_stand_minus_sit,omitempty"`
	DeltaSBPStandMinusSit *float64 `json:"delta_sbp_stand_minus_sit,omitempty" bson:"delta_sbp_stand_minus_sit,omitempty"`
}

// FillDeltas computes the stand-minus-sit deltas from the pair values when
// they were not supplied directly.
func (o *OrthostaticInput) FillDeltas() {
	if o.DeltaHRStandMinusSit == nil && o.SitHRMean != nil && o.StandHRMean != nil {
		d := *o.StandHRMean - *o.SitHRMean
		o.DeltaHRStandMinusSit = &d
	}
	if o.DeltaSBPStandMinusSit == nil && o.SitSBPMean != nil && o.StandSBPMean != nil {
		d := *o.StandSBPMean - *o.SitSBPMean
		o.DeltaSBPStandMinusSit = &d
	}
}

// IsEmpty reports whether no quick-check value was supplied at all.
func (o *OrthostaticInput) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.SitHRMean == nil && o.StandHRMean == nil &&
		o.SitSBPMean == nil && o.StandSBPMean == nil &&
		o.DeltaHRStandMinusSit == nil && o.DeltaSBPStandMinusSit == nil
}
