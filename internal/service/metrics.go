package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// reorderTotal counts reorder batches by operation and result
	reorderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindtab_goal_reorder_total",
		Help: "Goal reorder operations by operation and result",
	}, []string{"operation", "result"})

	// reorderRows tracks how many rows one reorder batch writes
	reorderRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mindtab_goal_reorder_rows",
		Help:    "Rows written per reorder batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// syncItemsTotal counts items accepted from the browser extension
	syncItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindtab_sync_items_total",
		Help: "Items accepted from browser extension sync by kind",
	}, []string{"kind"})

	// syncErrorsTotal counts rejected sync requests by error code
	syncErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindtab_sync_errors_total",
		Help: "Rejected browser extension sync requests by error code",
	}, []string{"code"})

	// habitTracksTotal counts tracker toggles by direction
	habitTracksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindtab_habit_tracks_total",
		Help: "Habit tracker toggles by action",
	}, []string{"action"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
