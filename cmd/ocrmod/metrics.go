package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var communitiesJoined = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ocrmod_communities_joined",
	Help: "Number of communities with rules loaded at startup",
})
