package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/tours", "200"))

	RecordHTTPRequest("GET", "/api/tours", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/tours", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(HTTPActiveRequests))
}

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(PanoramasUploaded)
	RecordUpload(3 << 20)
	assert.Equal(t, before+1, testutil.ToFloat64(PanoramasUploaded))
}

func TestRecordAuth(t *testing.T) {
	okBefore := testutil.ToFloat64(AuthEvents.WithLabelValues("login", "success"))
	failBefore := testutil.ToFloat64(AuthEvents.WithLabelValues("login", "failure"))

	RecordAuth("login", nil)
	RecordAuth("login", errors.New("bad password"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(AuthEvents.WithLabelValues("login", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(AuthEvents.WithLabelValues("login", "failure")))
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	require.NoError(t, err)
	for _, p := range problems {
		if len(p.Metric) > 6 && p.Metric[:6] == "vtour_" {
			t.Errorf("lint problem on %s: %s", p.Metric, p.Text)
		}
	}
}
