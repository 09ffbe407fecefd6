package monitoring

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	UsersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total register-or-login calls that returned a user",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts successfully created",
	})

	MediaUploadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_upload_failures_total",
		Help: "Total media files that could not be attached to a new post",
	})

	LikesToggled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "likes_toggled_total",
		Help: "Total like toggles",
	}, []string{"action"})

	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "Total comments successfully created",
	})

	SharesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shares_created_total",
		Help: "Total posts shared",
	})

	FollowsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follows_created_total",
		Help: "Total follow requests",
	})

	PlansCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "learning_plans_created_total",
		Help: "Total learning plans created",
	})

	TasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_tasks_completed_total",
		Help: "Total task completion requests that succeeded",
	})

	ProgressUpdatesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progress_updates_created_total",
		Help: "Total progress updates posted",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(UsersRegistered)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(MediaUploadFailures)
	prometheus.MustRegister(LikesToggled)
	prometheus.MustRegister(CommentsCreated)
	prometheus.MustRegister(SharesCreated)
	prometheus.MustRegister(FollowsCreated)
	prometheus.MustRegister(PlansCreated)
	prometheus.MustRegister(TasksCompleted)
	prometheus.MustRegister(ProgressUpdatesCreated)
}

// Middleware to track request timing and status code
type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecordingWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack forwards to the wrapped writer; websocket upgrades need it
func (rw *statusRecordingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// InstrumentHandler records request durations labelled by the matched chi
// route pattern, so path parameters do not explode the label space.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		RequestDuration.
			WithLabelValues(r.Method, routePattern(r), strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
