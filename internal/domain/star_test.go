package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		ra, dec float64
		unit    Unit
		wantRA  float64
		wantDec float64
		wantErr error
	}{
		{"degrees", 10.5, -20.25, UnitDegrees, 10.5, -20.25, nil},
		{"wraps ra", 370, 0, UnitDegrees, 10, 0, nil},
		{"negative ra", -10, 0, UnitDegrees, 350, 0, nil},
		{"tiny negative ra", -1e-15, 0, UnitDegrees, 0, 0, nil},
		{"full turn", 360, 0, UnitDegrees, 0, 0, nil},
		{"hours", 2, 45, UnitHours, 30, 45, nil},
		{"radians", 3.141592653589793, 0.7853981633974483, UnitRadians, 180, 45, nil},
		{"dec out of range", 0, 91, UnitDegrees, 0, 0, ErrQueryInput},
		{"infinite ra", math.Inf(1), 0, UnitDegrees, 0, 0, ErrQueryInput},
		{"infinite dec", 0, math.Inf(-1), UnitDegrees, 0, 0, ErrQueryInput},
		{"unknown unit", 0, 0, Unit("parsec"), 0, 0, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoordinates(tt.ra, tt.dec, tt.unit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantRA, c.RA, 1e-9)
			assert.InDelta(t, tt.wantDec, c.Dec, 1e-9)
			assert.True(t, c.RA >= 0 && c.RA < 360, "ra %v", c.RA)
		})
	}
}

func TestFromHMSDMS(t *testing.T) {
	c, err := FromHMSDMS(5, 30, 0, true, 69, 30, 0)
	require.NoError(t, err)
	assert.InDelta(t, 82.5, c.RA, 1e-9)
	assert.InDelta(t, -69.5, c.Dec, 1e-9)
}

func TestCoordinates_Separation(t *testing.T) {
	a := Coordinates{RA: 10, Dec: 0}
	b := Coordinates{RA: 11, Dec: 0}
	assert.InDelta(t, 1.0, a.Separation(b), 1e-9)

	pole := Coordinates{RA: 0, Dec: 90}
	other := Coordinates{RA: 180, Dec: 89}
	assert.InDelta(t, 1.0, pole.Separation(other), 1e-9)
}

func TestStar_Equal(t *testing.T) {
	a := NewStar("ogle", "LMC_SC1_1", "lmc:1:1")
	b := NewStar("ogle", "other name", "lmc:1:1")
	assert.True(t, a.Equal(b), "same origin and identifier")

	c := NewStar("macho", "M1", "1.2.3")
	assert.False(t, a.Equal(c), "no coordinates, different ids")

	a.Coo = &Coordinates{RA: 80, Dec: -69}
	c.Coo = &Coordinates{RA: 80.0001, Dec: -69.0001}
	assert.True(t, a.Equal(c), "within eps")

	c.Coo = &Coordinates{RA: 80.01, Dec: -69}
	assert.False(t, a.Equal(c), "outside eps")
	assert.False(t, a.Equal(nil))
}

func TestStar_Name(t *testing.T) {
	s := &Star{}
	assert.Equal(t, "Unknown", s.Name())

	s = NewStar("macho", "", "1.3441.16")
	assert.Equal(t, "macho_1.3441.16", s.Name())

	s.Ident["asas"] = Ident{Name: "ASAS J0001"}
	assert.Equal(t, "ASAS J0001", s.Name(), "first origin in sorted order")

	s.SetName("custom")
	assert.Equal(t, "custom", s.Name())
}

func TestStar_MoreFloat(t *testing.T) {
	s := NewStar("file", "a", "")
	s.More["v_mag"] = 16.2
	s.More["b_mag"] = "17.5"
	s.More["sptype"] = "G2V"

	v, ok := s.MoreFloat("v_mag")
	assert.True(t, ok)
	assert.Equal(t, 16.2, v)

	b, ok := s.MoreFloat("b_mag")
	assert.True(t, ok)
	assert.Equal(t, 17.5, b)

	_, ok = s.MoreFloat("sptype")
	assert.False(t, ok)
	_, ok = s.MoreFloat("missing")
	assert.False(t, ok)
}

func TestStar_PutLightCurve(t *testing.T) {
	s := NewStar("file", "a", "")
	assert.Nil(t, s.LightCurve())

	s.PutLightCurve(nil)
	assert.Nil(t, s.LightCurve())

	lc, err := NewLightCurve([]float64{1, 2}, []float64{3, 4}, nil, nil)
	require.NoError(t, err)
	s.PutLightCurve(lc)
	assert.Same(t, lc, s.LightCurve())
}

func TestLearningError(t *testing.T) {
	cause := errors.New("singular matrix")
	err := NewLearningError("LDADec", [][]float64{{1, 2}, {3, 4}}, []int{1, 0}, cause)

	assert.ErrorIs(t, err, ErrLearning)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[1 2] [3 4]")
	assert.Contains(t, err.Error(), "labels = [1 0]")

	var le *LearningError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "LDADec", le.Decider)
}

func TestParams_MergeAndFlatten(t *testing.T) {
	static := Params{
		"AbbeValueDescr": {"bins": 10},
		"LDADec":         {"threshold": 0.5},
	}
	trial := Params{
		"AbbeValueDescr": {"bins": 20},
		"CurvesShapeDescr": {
			"alphabet_size": 8,
			"comp_stars":    []*Star{NewStar("file", "x", "")},
		},
	}

	merged := trial.Merge(static)
	assert.Equal(t, 20, merged["AbbeValueDescr"]["bins"], "trial wins over static")
	assert.Equal(t, 0.5, merged["LDADec"]["threshold"])
	assert.Equal(t, 10, static["AbbeValueDescr"]["bins"], "static left untouched")

	flat := merged.Flatten()
	assert.Equal(t, 20, flat["AbbeValueDescr:bins"])
	assert.NotContains(t, flat, "CurvesShapeDescr:comp_stars")
	assert.Equal(t,
		[]string{"AbbeValueDescr:bins", "CurvesShapeDescr:alphabet_size", "LDADec:threshold"},
		merged.FlatKeys())
}
