package catalogue

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lightcurve-lab/internal/domain"
)

// ParseLightCurve reads whitespace-separated (time, mag[, err]) rows.
// Blank lines and lines starting with '#' are skipped.
func ParseLightCurve(r io.Reader, meta map[string]string) (*domain.LightCurve, error) {
	var rows [][]float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", domain.ErrQueryInput, line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read light curve: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: light curve has no observations", domain.ErrQueryInput)
	}
	return domain.LightCurveFromRows(rows, meta)
}

// ReadLightCurveFile parses the light curve stored at path.
func ReadLightCurveFile(path string, meta map[string]string) (*domain.LightCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lc, err := ParseLightCurve(f, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return lc, nil
}

// WriteLightCurve writes lc in the three-column text format.
func WriteLightCurve(w io.Writer, lc *domain.LightCurve) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s %s err\n", lc.Meta["xlabel"], lc.Meta["ylabel"])
	for i := range lc.Time {
		fmt.Fprintf(bw, "%s %s %s\n",
			strconv.FormatFloat(lc.Time[i], 'g', -1, 64),
			strconv.FormatFloat(lc.Mag[i], 'g', -1, 64),
			strconv.FormatFloat(lc.Err[i], 'g', -1, 64))
	}
	return bw.Flush()
}

// WriteLightCurveFile writes lc to path, creating parent directories.
func WriteLightCurveFile(path string, lc *domain.LightCurve) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLightCurve(f, lc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
