package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/palisade-db/palisade/internal/idgen"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/metrics"
)

// statusRecorder captures the status code a wrapped handler writes, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Observe wraps next with per-request correlation and metrics: every
// request is tagged with a generated correlation id, logged at start and
// completion, and counted/timed in m by route and status.
func Observe(next http.Handler, ids *idgen.Generator, log *logging.Logger, m *metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := ids.Generate()
		reqLog := log.WithField("request_id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqLog.Debugf("%s %s", r.Method, r.URL.Path)

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		reqLog.Debugf("%s %s -> %d in %s", r.Method, r.URL.Path, rec.status, elapsed)

		if m == nil {
			return
		}
		route := r.URL.Path
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	})
}
