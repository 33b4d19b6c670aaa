package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type observation struct {
	method, path string
	status       int
}

type recordingObserver struct{ got []observation }

func (o *recordingObserver) ObserveHTTP(method, path string, status int, _ time.Duration) {
	o.got = append(o.got, observation{method, path, status})
}

func TestObserve_RecordsRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Observe(zap.NewNop(), obs))
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	require.Len(t, obs.got, 1)
	assert.Equal(t, observation{"GET", "/users/{id}", http.StatusTeapot}, obs.got[0])
}

func TestObserve_ImplicitOK(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Observe(zap.NewNop(), obs))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("hi")) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, obs.got, 1)
	assert.Equal(t, http.StatusOK, obs.got[0].status)
}

func TestObserve_NilObserver(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Observe(zap.NewNop(), nil))
	r.Get("/", okHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
