package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

func TestRecord(t *testing.T) {
	m := New(nil)
	ctx := context.Background()

	m.Record(ctx, importer.Event{Kind: importer.EventLoad, State: importer.StateReadyToSubmit, Duration: 20 * time.Millisecond})
	m.Record(ctx, importer.Event{Kind: importer.EventLoad, State: importer.StateRowValidationFailed})
	m.Record(ctx, importer.Event{
		Kind:    importer.EventSubmit,
		Outcome: importer.OutcomePartial,
		Created: 3,
		Failed:  2,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(string(importer.StateReadyToSubmit))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues(string(importer.StateRowValidationFailed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(string(importer.OutcomePartial))))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rows.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows.WithLabelValues("failed")))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.Record(context.Background(), importer.Event{Kind: importer.EventLoad, State: importer.StateIdle})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookimport_import_loads_total")
}
