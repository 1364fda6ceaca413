package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "questions_total",
	Help: "Questions answered, labelled by outcome and whether context was used",
}, []string{"outcome", "context"})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Document chunks written to the vector store",
})

var documentsDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_discovered_total",
	Help: "PDF URLs returned by the search provider, labelled by ticker",
}, []string{"ticker"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 120},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CountQuestion(outcome string, withContext bool) {
	context := "without_context"
	if withContext {
		context = "with_context"
	}
	questionsTotal.WithLabelValues(outcome, context).Inc()
}

func CountChunksIngested(n int) {
	chunksIngested.Add(float64(n))
}

func CountDiscoveredDocuments(ticker string, n int) {
	documentsDiscovered.WithLabelValues(ticker).Add(float64(n))
}
