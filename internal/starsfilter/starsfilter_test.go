package starsfilter

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightcurve-lab/internal/decider"
	"lightcurve-lab/internal/descriptor"
	"lightcurve-lab/internal/domain"
)

// tableDecider returns a fixed score per first coordinate.
type tableDecider struct {
	name      string
	threshold float64
	table     map[float64]float64
	learnErr  error
	learned   int
}

func (d *tableDecider) Name() string       { return d.name }
func (d *tableDecider) Threshold() float64 { return d.threshold }

func (d *tableDecider) Learn(searched, others [][]float64) error {
	d.learned++
	return d.learnErr
}

func (d *tableDecider) Evaluate(coords [][]float64) ([]float64, error) {
	out := make([]float64, len(coords))
	for i, c := range coords {
		out[i] = d.table[c[0]]
	}
	return out, nil
}

func propertyStar(name string, values map[string]float64) *domain.Star {
	s := domain.NewStar("test", name, "")
	for k, v := range values {
		s.More[k] = v
	}
	return s
}

func property(t *testing.T, names ...string) descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.NewProperty(names, nil)
	require.NoError(t, err)
	return d
}

func scenarioFilter(t *testing.T) (*StarsFilter, []*domain.Star) {
	t.Helper()
	a := &tableDecider{name: "a", threshold: 0.5, table: map[float64]float64{0: 0.8, 1: 0.2}}
	b := &tableDecider{name: "b", threshold: 0.5, table: map[float64]float64{0: 0.6, 1: 0.4}}

	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{a, b}, Options{})
	require.NoError(t, err)

	stars := []*domain.Star{
		propertyStar("p0", map[string]float64{"x": 0}),
		propertyStar("p1", map[string]float64{"x": 1}),
	}
	require.NoError(t, f.Learn(stars[:1], stars[1:]))
	return f, stars
}

func TestEvaluateStars_Aggregation(t *testing.T) {
	f, stars := scenarioFilter(t)

	tests := []struct {
		method string
		want   []float64
	}{
		{MethodMean, []float64{0.7, 0.3}},
		{MethodHighest, []float64{0.8, 0.4}},
		{MethodLowest, []float64{0.6, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			ev, err := f.EvaluateStars(stars, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Scores)
			assert.Equal(t, stars, ev.Stars)
			assert.Empty(t, ev.Dropped)
		})
	}

	_, err := f.EvaluateStars(stars, "median")
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestFilterStars_PassMethods(t *testing.T) {
	f, stars := scenarioFilter(t)

	for _, method := range []string{PassAll, PassMean, PassOne} {
		passed, dropped, err := f.FilterStars(stars, method)
		require.NoError(t, err, method)
		assert.Equal(t, []*domain.Star{stars[0]}, passed, method)
		assert.Empty(t, dropped)
	}

	_, _, err := f.FilterStars(stars, "most")
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestFilterStars_Nested(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	table1 := map[float64]float64{}
	table2 := map[float64]float64{}
	var stars []*domain.Star
	for i := 0; i < 200; i++ {
		x := float64(i)
		table1[x] = rng.Float64()
		table2[x] = rng.Float64()
		stars = append(stars, propertyStar(fmt.Sprint(i), map[string]float64{"x": x}))
	}
	d1 := &tableDecider{name: "d1", threshold: 0.4, table: table1}
	d2 := &tableDecider{name: "d2", threshold: 0.6, table: table2}

	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{d1, d2}, Options{})
	require.NoError(t, err)
	require.NoError(t, f.Learn(stars[:10], stars[10:20]))

	all, _, err := f.FilterStars(stars, PassAll)
	require.NoError(t, err)
	mean, _, err := f.FilterStars(stars, PassMean)
	require.NoError(t, err)
	one, _, err := f.FilterStars(stars, PassOne)
	require.NoError(t, err)

	assert.Subset(t, mean, all)
	assert.Subset(t, one, mean)
	assert.LessOrEqual(t, len(all), len(mean))
	assert.LessOrEqual(t, len(mean), len(one))
}

func TestEvaluation_PassingMatchesFilterStars(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	table1 := map[float64]float64{}
	table2 := map[float64]float64{}
	var stars []*domain.Star
	for i := 0; i < 50; i++ {
		x := float64(i)
		table1[x] = rng.Float64()
		table2[x] = rng.Float64()
		stars = append(stars, propertyStar(fmt.Sprint(i), map[string]float64{"x": x}))
	}
	d1 := &tableDecider{name: "d1", threshold: 0.3, table: table1}
	d2 := &tableDecider{name: "d2", threshold: 0.7, table: table2}
	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{d1, d2}, Options{})
	require.NoError(t, err)
	require.NoError(t, f.Learn(stars[:5], stars[5:10]))

	ev, err := f.EvaluateStars(stars, MethodMean)
	require.NoError(t, err)
	for _, method := range []string{PassAll, PassMean, PassOne} {
		flags, err := ev.Passing(method, f.MeanThreshold())
		require.NoError(t, err, method)
		var fromFlags []*domain.Star
		for i, ok := range flags {
			if ok {
				fromFlags = append(fromFlags, ev.Stars[i])
			}
		}
		passed, _, err := f.FilterStars(stars, method)
		require.NoError(t, err, method)
		assert.Equal(t, passed, fromFlags, method)
	}

	_, err = ev.Passing("most", 0.5)
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestStarsFilter_NotLearned(t *testing.T) {
	d := &tableDecider{name: "d", threshold: 0.5}
	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{d}, Options{})
	require.NoError(t, err)

	_, err = f.EvaluateStars(nil, MethodMean)
	assert.ErrorIs(t, err, ErrNotLearned)
	_, _, err = f.FilterStars(nil, PassAll)
	assert.ErrorIs(t, err, ErrNotLearned)
	_, err = f.Statistic(nil, nil)
	assert.ErrorIs(t, err, ErrNotLearned)
}

func TestStarsFilter_DropsMissingFeatures(t *testing.T) {
	f, stars := scenarioFilter(t)
	bare := domain.NewStar("test", "bare", "")

	ev, err := f.EvaluateStars([]*domain.Star{stars[0], bare, stars[1]}, MethodMean)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Star{stars[0], stars[1]}, ev.Stars)
	assert.Equal(t, []float64{0.7, 0.3}, ev.Scores)
	assert.Equal(t, []*domain.Star{bare}, ev.Dropped)

	_, dropped, err := f.FilterStars([]*domain.Star{bare}, PassOne)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Star{bare}, dropped)
}

func TestLearn_EmptySample(t *testing.T) {
	d := &tableDecider{name: "d", threshold: 0.5}
	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{d}, Options{})
	require.NoError(t, err)

	good := propertyStar("g", map[string]float64{"x": 1})
	bare := domain.NewStar("test", "bare", "")

	err = f.Learn([]*domain.Star{bare}, []*domain.Star{good})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
	assert.False(t, f.Learned())
	assert.Zero(t, d.learned)
}

func TestLearn_DeciderFailure(t *testing.T) {
	cause := errors.New("fit failed")
	ok := &tableDecider{name: "ok", threshold: 0.5}
	bad := &tableDecider{name: "bad", threshold: 0.5, learnErr: cause}

	f, err := New([]descriptor.Descriptor{property(t, "x")}, []decider.Decider{ok, bad}, Options{})
	require.NoError(t, err)

	s := propertyStar("s", map[string]float64{"x": 1})
	o := propertyStar("o", map[string]float64{"x": 0})
	err = f.Learn([]*domain.Star{s}, []*domain.Star{o})
	assert.ErrorIs(t, err, cause)
	assert.False(t, f.Learned())
}

func TestLearn_Retrain(t *testing.T) {
	f, stars := scenarioFilter(t)
	sc, oc := f.TrainingCoords()
	assert.Equal(t, [][]float64{{0}}, sc)
	assert.Equal(t, [][]float64{{1}}, oc)

	require.NoError(t, f.Learn(stars, stars[1:]))
	sc, _ = f.TrainingCoords()
	assert.Len(t, sc, 2)
}

func TestStatistic_RealDecider(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	gen := func(n int, center float64, prefix string) []*domain.Star {
		out := make([]*domain.Star, n)
		for i := range out {
			out[i] = propertyStar(fmt.Sprintf("%s%d", prefix, i), map[string]float64{
				"a": center + rng.NormFloat64(),
				"b": center + rng.NormFloat64(),
				"c": rng.NormFloat64(),
			})
		}
		return out
	}
	lda, err := decider.NewLDA(0.5)
	require.NoError(t, err)
	nb, err := decider.NewGaussianNB(0.5, 1e-9)
	require.NoError(t, err)

	f, err := New([]descriptor.Descriptor{property(t, "a", "b"), property(t, "c")},
		[]decider.Decider{lda, nb}, Options{ReducedDim: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, f.Labels())

	require.NoError(t, f.Learn(gen(80, 6, "s"), gen(80, 0, "o")))
	sc, _ := f.TrainingCoords()
	assert.Len(t, sc[0], 2, "training features are reduced")

	testS, testO := gen(50, 6, "ts"), gen(50, 0, "to")
	rec, err := f.Statistic(testS, testO)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.TruePositiveRate, 0.9)
	assert.GreaterOrEqual(t, rec.TrueNegativeRate, 0.9)

	s, err := f.EvaluateStars(testS, MethodMean)
	require.NoError(t, err)
	o, err := f.EvaluateStars(testO, MethodMean)
	require.NoError(t, err)
	assert.Greater(t, mean(s.Scores), mean(o.Scores))

	roc, err := f.ROC(testS, testO, 0.1)
	require.NoError(t, err)
	assert.Len(t, roc, 11)
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, []decider.Decider{&tableDecider{}}, Options{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
	_, err = New([]descriptor.Descriptor{property(t, "x")}, nil, Options{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}
