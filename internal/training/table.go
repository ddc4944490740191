package training

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Label columns expected in the training table.
const (
	StatusTargetColumn    = "status_target"
	PhenotypeTargetColumn = "phenotype_hint_target"
	SubjectIDColumn       = "source_subject_id"
	SourceGroupColumn     = "source_group"
)

// Table is a loaded CSV with its header order preserved.
type Table struct {
	Headers []string
	Records [][]string
}

// LoadCSV reads a headered CSV file into a Table.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty CSV: %s", path)
	}
	return &Table{Headers: rows[0], Records: rows[1:]}, nil
}

// WriteCSV writes the table to path, creating parent-less files as-is.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return err
	}
	if err := w.WriteAll(t.Records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (t *Table) columnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the named column of a record, or "" when absent.
func (t *Table) Cell(record []string, name string) string {
	idx := t.columnIndex(name)
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// SplitTable partitions the table into stratified train/val/test subsets.
// Records are grouped by label in first-seen order, each group shuffled with
// the shared seeded PRNG, then cut at round(n*trainRatio) / round(n*valRatio).
func SplitTable(t *Table, labelColumn string, rng *rand.Rand, trainRatio, valRatio float64) (train, val, test *Table, err error) {
	if t.columnIndex(labelColumn) < 0 {
		return nil, nil, nil, fmt.Errorf("missing required label column: %s", labelColumn)
	}

	var labelOrder []string
	byLabel := make(map[string][][]string)
	for _, record := range t.Records {
		label := t.Cell(record, labelColumn)
		if _, seen := byLabel[label]; !seen {
			labelOrder = append(labelOrder, label)
		}
		byLabel[label] = append(byLabel[label], record)
	}

	var trainRecs, valRecs, testRecs [][]string
	for _, label := range labelOrder {
		group := append([][]string(nil), byLabel[label]...)
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		n := len(group)
		nTrain := int(math.Round(float64(n) * trainRatio))
		if nTrain > n {
			nTrain = n
		}
		if nTrain < 0 {
			nTrain = 0
		}
		nVal := int(math.Round(float64(n) * valRatio))
		if nTrain+nVal > n {
			nVal = n - nTrain
			if nVal < 0 {
				nVal = 0
			}
		}

		trainRecs = append(trainRecs, group[:nTrain]...)
		valRecs = append(valRecs, group[nTrain:nTrain+nVal]...)
		testRecs = append(testRecs, group[nTrain+nVal:]...)
	}

	train = &Table{Headers: t.Headers, Records: trainRecs}
	val = &Table{Headers: t.Headers, Records: valRecs}
	test = &Table{Headers: t.Headers, Records: testRecs}
	return train, val, test, nil
}

// Row is one labeled training example with its parsed feature observations.
// A nil feature value means the column was empty or non-numeric.
type Row struct {
	SubjectID       string
	SourceGroup     string
	StatusTarget    string
	PhenotypeTarget string
	Features        map[string]*float64
}

// RowsFromTable parses the requested feature columns of every record.
func RowsFromTable(t *Table, features []string) []Row {
	rows := make([]Row, 0, len(t.Records))
	for _, record := range t.Records {
		row := Row{
			SubjectID:       t.Cell(record, SubjectIDColumn),
			SourceGroup:     t.Cell(record, SourceGroupColumn),
			StatusTarget:    t.Cell(record, StatusTargetColumn),
			PhenotypeTarget: t.Cell(record, PhenotypeTargetColumn),
			Features:        make(map[string]*float64, len(features)),
		}
		for _, feature := range features {
			row.Features[feature] = parseFloat(t.Cell(record, feature))
		}
		rows = append(rows, row)
	}
	return rows
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
