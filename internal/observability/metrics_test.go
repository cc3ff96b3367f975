package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.TrialsTotal.WithLabelValues("ok"))
	RecordTrial("ok", 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.TrialsTotal.WithLabelValues("ok")))

	dropped := testutil.ToFloat64(DefaultMetrics.StarsDropped.WithLabelValues("learn"))
	RecordStarsDropped("learn", 0)
	RecordStarsDropped("learn", 3)
	assert.Equal(t, dropped+3, testutil.ToFloat64(DefaultMetrics.StarsDropped.WithLabelValues("learn")))

	SetBestScore(0.875)
	assert.Equal(t, 0.875, testutil.ToFloat64(DefaultMetrics.BestScore))

	errs := testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "insert"))
	RecordDBQuery("postgres", "insert", 0.01, errors.New("boom"))
	RecordDBQuery("postgres", "insert", 0.01, nil)
	assert.Equal(t, errs+1, testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "insert")))
}
