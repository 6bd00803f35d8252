package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(purgedTotal, remindersTotal) }

var purgedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "notifications_purged_total",
		Help: "Total number of sent notifications deleted by the retention sweeper.",
	},
)

var remindersTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "match_reminders_created_total",
		Help: "Total number of match-reminder notifications materialized.",
	},
)

func AddPurged(n int)    { purgedTotal.Add(float64(n)) }
func AddReminders(n int) { remindersTotal.Add(float64(n)) }
