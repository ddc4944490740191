package model

import "time"

// Session is one screening request/response cycle: the imported series, the
// current assessment and the symptoms record. It is owned exclusively by the
// request that mutates it; stages never run concurrently on the same session.
type Session struct {
	ID          string            `json:"session_id" bson:"_id"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
	Daily       []DailyMetric     `json:"daily" bson:"daily"`
	Age         *float64          `json:"age,omitempty" bson:"age,omitempty"`
	Orthostatic *OrthostaticInput `json:"orthostatic_input,omitempty" bson:"orthostatic_input,omitempty"`
	Screening   *ScreeningResult  `json:"screening" bson:"screening"`
	Symptoms    Symptoms          `json:"symptoms" bson:"symptoms"`
}
