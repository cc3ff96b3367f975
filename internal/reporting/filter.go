package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/starsfilter"
)

// Filter outcome of a star.
const (
	StatusPassed   = "passed"
	StatusRejected = "rejected"
	StatusDropped  = "dropped"
)

// FilterRow is one star of a filter result file.
type FilterRow struct {
	Name       string `csv:"name"`
	Origin     string `csv:"origin"`
	Identifier string `csv:"identifier"`
	RA         string `csv:"ra"`
	Dec        string `csv:"dec"`
	Score      string `csv:"score"` // empty for dropped stars
	Status     string `csv:"status"`
}

// FilterRows lists evaluated stars in input order followed by dropped stars.
// passed holds one flag per evaluated star.
func FilterRows(ev *starsfilter.Evaluation, passed []bool) []*FilterRow {
	rows := make([]*FilterRow, 0, len(ev.Stars)+len(ev.Dropped))
	for i, s := range ev.Stars {
		status := StatusRejected
		if i < len(passed) && passed[i] {
			status = StatusPassed
		}
		row := filterRow(s, status)
		row.Score = strconv.FormatFloat(ev.Scores[i], 'f', starsfilter.ScorePrecision, 64)
		rows = append(rows, row)
	}
	for _, s := range ev.Dropped {
		rows = append(rows, filterRow(s, StatusDropped))
	}
	return rows
}

func filterRow(s *domain.Star, status string) *FilterRow {
	row := &FilterRow{Name: s.Name(), Status: status}
	if origins := s.Origins(); len(origins) > 0 {
		row.Origin = origins[0]
		row.Identifier = s.Ident[origins[0]].Identifier
	}
	if s.Coo != nil {
		row.RA = strconv.FormatFloat(s.Coo.RA, 'f', 6, 64)
		row.Dec = strconv.FormatFloat(s.Coo.Dec, 'f', 6, 64)
	}
	return row
}

// WriteFilterResult writes rows with a header line.
func WriteFilterResult(w io.Writer, rows []*FilterRow, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("write filter result: %w", err)
	}
	return nil
}
