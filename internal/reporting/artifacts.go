package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/estimator"
)

// DefaultDelimiter separates columns of the data files.
const DefaultDelimiter = '\t'

// Float3 is a float written with three decimals.
type Float3 float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (f Float3) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 3, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (f *Float3) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = Float3(v)
	return nil
}

// ROCRow is one threshold sample of a trial.
type ROCRow struct {
	Trial             int    `csv:"trial"`
	Threshold         Float3 `csv:"threshold"`
	TruePositiveRate  Float3 `csv:"true_positive_rate"`
	FalsePositiveRate Float3 `csv:"false_positive_rate"`
}

// ROCRows flattens the ROC curves of every trial.
func ROCRows(res *estimator.Result) []*ROCRow {
	var rows []*ROCRow
	for _, t := range res.Trials {
		for _, p := range t.ROC {
			rows = append(rows, &ROCRow{
				Trial:             t.Index,
				Threshold:         Float3(p.Threshold),
				TruePositiveRate:  Float3(p.TruePositiveRate),
				FalsePositiveRate: Float3(p.FalsePositiveRate),
			})
		}
	}
	return rows
}

// WriteROCData writes the ROC data file: a header line, then one row per
// (trial, threshold).
func WriteROCData(w io.Writer, res *estimator.Result, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	rows := ROCRows(res)
	if len(rows) == 0 {
		return fmt.Errorf("%w: no ROC samples to write", domain.ErrQueryInput)
	}
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("write roc data: %w", err)
	}
	return nil
}

// ReadROCData parses a file written by WriteROCData.
func ReadROCData(r io.Reader, delimiter rune) ([]*ROCRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	var rows []*ROCRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("read roc data: %w", err)
	}
	return rows, nil
}

// StatsHeader returns the statistics file columns for res: the trial index,
// the record fields, the params JSON, then one column per scalar param.
func StatsHeader(res *estimator.Result) []string {
	header := append([]string{"trial"}, domain.EvaluationKeys...)
	header = append(header, "params")
	return append(header, paramColumns(res)...)
}

// WriteStats writes one row per trial with its record and params.
// The scalar param columns depend on the grid, so rows are written with
// encoding/csv rather than a fixed struct.
func WriteStats(w io.Writer, res *estimator.Result, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	columns := paramColumns(res)
	if err := cw.Write(StatsHeader(res)); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	for _, t := range res.Trials {
		params, err := json.Marshal(t.Params.Printable())
		if err != nil {
			return fmt.Errorf("encode params of trial %d: %w", t.Index, err)
		}
		row := []string{strconv.Itoa(t.Index)}
		for _, v := range t.Record.Values() {
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		row = append(row, string(params))
		flat := t.Params.Flatten()
		for _, c := range columns {
			if v, ok := flat[c]; ok {
				row = append(row, fmt.Sprint(v))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write stats row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// paramColumns returns the sorted union of flattened scalar param keys.
func paramColumns(res *estimator.Result) []string {
	seen := make(map[string]struct{})
	for _, t := range res.Trials {
		for k := range t.Params.Flatten() {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}
