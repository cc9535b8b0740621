package exporter

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtx-hosting/playercount/pkg/series"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporter_Observations(t *testing.T) {
	p := NewPrometheusExporter()

	p.ObserveIngest("ok")
	p.ObserveIngest("ok")
	p.ObserveIngest("invalid")
	p.ObserveSnapshot(series.Snapshot{PlayerCount: 17, Timestamp: 1_700_000_000})
	p.ObservePeak(21)

	require.Equal(t, 2.0, testutil.ToFloat64(p.ingests.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.ingests.WithLabelValues("invalid")))
	require.Equal(t, 17.0, testutil.ToFloat64(p.currentPlayers))
	require.Equal(t, 21.0, testutil.ToFloat64(p.peakPlayers))
	require.Equal(t, 1_700_000_000.0, testutil.ToFloat64(p.lastReport))
}

func TestPrometheusExporter_Handler(t *testing.T) {
	p := NewPrometheusExporter()
	p.ObserveSnapshot(series.Snapshot{PlayerCount: 3})

	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "playercount_current_players 3")
}
