package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderationNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsroom_moderation_notifications_total",
	Help: "Comment moderation emails by delivery result",
}, []string{"result"})

var moderationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "newsroom_moderation_fallback_total",
	Help: "Comment notifications sent to the fallback address because no moderator exists",
})

var digestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsroom_daily_digest_runs_total",
	Help: "Daily statistics digest runs by outcome",
}, []string{"result"})
