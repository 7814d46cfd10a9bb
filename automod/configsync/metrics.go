package configsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var configLoadCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_config_loads",
	Help: "Number of rule document loads, by result",
}, []string{"result"})

var snapshotPublishCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_snapshot_publishes",
	Help: "Number of rule snapshots published",
})
