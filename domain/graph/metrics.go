package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entityResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_entity_resolutions_total",
		Help: "Total entity resolutions by outcome",
	}, []string{"outcome"})

	resolutionConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graph_resolution_conflict_retries_total",
		Help: "Total create/create races resolved via re-read",
	})

	relationshipsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graph_relationships_created_total",
		Help: "Total relationships created",
	})

	traversalQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_traversal_queries_total",
		Help: "Total traversal queries by kind",
	}, []string{"kind"})

	ingestBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graph_ingest_batches_total",
		Help: "Total ingestion batches processed",
	})
)
