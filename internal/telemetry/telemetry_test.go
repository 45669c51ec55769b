package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{ServiceName: "banketl"})
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Otlp: OtlpConfig{HttpEndpoint: "http://localhost:4318/v1/traces"}}.Enabled())
	assert.True(t, Config{Otlp: OtlpConfig{GrpcEndpoint: "http://localhost:4317"}}.Enabled())
}

func TestSetup_ExportsOverHTTP(t *testing.T) {
	var requests atomic.Int32
	var gotHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotHeader.Store(r.Header.Get("X-Api-Key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	ctx := context.Background()
	tel, err := Setup(ctx, Config{
		ServiceName: "banketl",
		Otlp: OtlpConfig{
			HttpEndpoint: srv.URL + "/v1/traces",
			Headers:      map[string]string{"X-Api-Key": "secret"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	_, span := otel.Tracer("banketl.test").Start(ctx, "load")
	span.End()

	require.NoError(t, tel.Shutdown(ctx))
	assert.Positive(t, requests.Load(), "spans are flushed on shutdown")
	assert.Equal(t, "secret", gotHeader.Load())
}
