package training

import "github.com/maggielii/heartwaves/internal/model"

// Confusion is the binary status confusion matrix with needs_followup as the
// positive class.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// BinaryMetrics summarizes the status classification. Ratio fields are nil
// when their denominator is zero.
type BinaryMetrics struct {
	Confusion              Confusion `json:"confusion"`
	PrecisionNeedsFollowup *float64  `json:"precision_needs_followup"`
	RecallNeedsFollowup    *float64  `json:"recall_needs_followup"`
	F1NeedsFollowup        *float64  `json:"f1_needs_followup"`
	Accuracy               *float64  `json:"accuracy"`
}

// PhenotypeMetrics summarizes hint classification per class.
type PhenotypeMetrics struct {
	ExactAccuracy    *float64            `json:"exact_accuracy"`
	SupportByClass   map[string]int      `json:"support_by_class"`
	PredictedByClass map[string]int      `json:"predicted_by_class"`
	RecallByClass    map[string]*float64 `json:"recall_by_class"`
}

// SplitMetrics pairs both metric families for one data split.
type SplitMetrics struct {
	Binary    BinaryMetrics    `json:"binary"`
	Phenotype PhenotypeMetrics `json:"phenotype"`
}

// EvaluationReport is the persisted evaluation artifact.
type EvaluationReport struct {
	CreatedAt string         `json:"created_at"`
	Train     SplitMetrics   `json:"train"`
	Val       SplitMetrics   `json:"val"`
	Test      SplitMetrics   `json:"test"`
	RowCounts map[string]int `json:"row_counts"`
}

func binaryMetrics(rows []Row, statusPreds []string) BinaryMetrics {
	var c Confusion
	for i, row := range rows {
		actualPos := row.StatusTarget == string(model.StatusNeedsFollowup)
		predPos := statusPreds[i] == string(model.StatusNeedsFollowup)
		switch {
		case predPos && actualPos:
			c.TP++
		case predPos && !actualPos:
			c.FP++
		case !predPos && !actualPos:
			c.TN++
		default:
			c.FN++
		}
	}

	precision := safeDiv(float64(c.TP), float64(c.TP+c.FP))
	recall := safeDiv(float64(c.TP), float64(c.TP+c.FN))
	var f1 *float64
	if precision != nil && recall != nil && *precision+*recall > 0 {
		v := 2.0 * *precision * *recall / (*precision + *recall)
		f1 = &v
	}

	return BinaryMetrics{
		Confusion:              c,
		PrecisionNeedsFollowup: precision,
		RecallNeedsFollowup:    recall,
		F1NeedsFollowup:        f1,
		Accuracy:               safeDiv(float64(c.TP+c.TN), float64(len(rows))),
	}
}

func phenotypeMetrics(rows []Row, phenotypePreds []string) PhenotypeMetrics {
	correct := 0
	support := make(map[string]int)
	predicted := make(map[string]int)
	correctByClass := make(map[string]int)

	for i, row := range rows {
		actual := row.PhenotypeTarget
		pred := phenotypePreds[i]
		support[actual]++
		predicted[pred]++
		if actual == pred {
			correct++
			correctByClass[actual]++
		}
	}

	recallByClass := make(map[string]*float64, len(support))
	for class, n := range support {
		recallByClass[class] = safeDiv(float64(correctByClass[class]), float64(n))
	}

	return PhenotypeMetrics{
		ExactAccuracy:    safeDiv(float64(correct), float64(len(rows))),
		SupportByClass:   support,
		PredictedByClass: predicted,
		RecallByClass:    recallByClass,
	}
}

func safeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}
