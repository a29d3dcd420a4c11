package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/metrics"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type fakeMaster struct {
	healthy bool
}

func (f *fakeMaster) Receive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{Id: domain.ACTOR_ID_MASTER, Healthy: f.healthy})
	case domain.GetDataSnapshotRequest:
		if !f.healthy {
			ctx.Respond(domain.GetDataSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotReady},
			})
			return
		}
		ctx.Respond(domain.GetDataSnapshotResponse{
			Data:              econet300.Params{"tempCO": 55.3, "mode": 3.0},
			LastUpdateSuccess: true,
		})
	}
}

func testServer(t *testing.T, healthy bool) (http.Handler, func()) {
	as := actor.NewActorSystem()
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return &fakeMaster{healthy: healthy} }))

	reg := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	s := &Server{rootContext: as.Root, masterActor: pid, gatherer: reg, metrics: m}
	return s.RegisterRoutes(), as.Shutdown
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {

	assert := assert.New(t)

	h, shutdown := testServer(t, true)
	defer shutdown()
	rec := get(h, "/healthcheck")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("health_check: OK", rec.Body.String())

	h2, shutdown2 := testServer(t, false)
	defer shutdown2()
	rec = get(h2, "/healthcheck")
	assert.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestDataAndMetrics(t *testing.T) {

	assert := assert.New(t)

	h, shutdown := testServer(t, true)
	defer shutdown()

	rec := get(h, "/data")
	assert.Equal(http.StatusOK, rec.Code)
	var body dataResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(body.LastUpdateSuccess)
	assert.Equal(55.3, body.Data["tempCO"])

	rec = get(h, "/metrics")
	assert.Equal(http.StatusOK, rec.Code)
	assert.True(strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/data",status="200"} 1`))
}

func TestDataNotReady(t *testing.T) {

	h, shutdown := testServer(t, false)
	defer shutdown()

	rec := get(h, "/data")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
