package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var extractCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_extract_requests",
	Help: "Number of text extraction requests, by HTTP status code",
}, []string{"status"})

var extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "automod_extract_duration_sec",
	Help:    "Duration of text extraction requests",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
})

var extractCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_extract_cache_hits",
	Help: "Number of text extractions served from cache",
})
