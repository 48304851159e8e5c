package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output has a sample of name whose labels
// match the partial pattern and whose value is value. The exporter injects OTel scope
// labels, hence the regex.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_RecordsIngestionOutcomes(t *testing.T) {
	provider, err := NewProvider("surveyhook_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "surveyhook_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "survey", "response_ingest", OutcomeSuccess)
	bm.RecordOperation(ctx, "survey", "response_ingest", OutcomeSuccess)
	bm.RecordOperation(ctx, "survey", "response_ingest", "fetch_failed")
	bm.RecordOperation(ctx, "survey", "survey_key_import", OutcomeError)

	bm.RecordDuration(ctx, "survey", "response_ingest", 150*time.Millisecond, OutcomeSuccess)
	bm.RecordDuration(ctx, "survey", "response_ingest", 6*time.Second, OutcomeSuccess)
	bm.RecordDuration(ctx, "survey", "response_ingest", 30*time.Second, "fetch_failed")

	output := scrape(t, provider)

	assertMetricLine(t, output,
		`surveyhook_test_operations_total`,
		`domain="survey".*operation="response_ingest".*status="success"`,
		`2`,
	)
	assertMetricLine(t, output,
		`surveyhook_test_operations_total`,
		`domain="survey".*operation="response_ingest".*status="fetch_failed"`,
		`1`,
	)
	assertMetricLine(t, output,
		`surveyhook_test_operations_total`,
		`operation="survey_key_import".*status="error"`,
		`1`,
	)
	assertMetricLine(t, output,
		`surveyhook_test_operation_duration_seconds_count`,
		`operation="response_ingest".*status="success"`,
		`2`,
	)
	// A 30s retry sequence lands below the 40s bucket, not only in +Inf.
	assertMetricLine(t, output,
		`surveyhook_test_operation_duration_seconds_bucket`,
		`(?:le="40".*status="fetch_failed"|status="fetch_failed".*le="40")`,
		`1`,
	)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)
	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "survey", "response_ingest", OutcomeSuccess)
		noOpMetrics.RecordDuration(context.Background(), "survey", "response_ingest", time.Second, OutcomeError)
	})
}
