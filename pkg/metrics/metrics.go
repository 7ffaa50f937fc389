// Package metrics exposes prometheus counters for engagement operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engagement counts engine operations and swallowed notification failures.
type Engagement struct {
	likes         *prometheus.CounterVec
	follows       *prometheus.CounterVec
	comments      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	notifFailures prometheus.Counter
	registry      *prometheus.Registry
}

// NewEngagement creates and registers the engagement metric set on its own
// registry.
func NewEngagement() *Engagement {
	m := &Engagement{
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_likes_total",
			Help: "Like toggles by content kind and resulting state.",
		}, []string{"kind", "state"}),
		follows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_follows_total",
			Help: "Follow toggles by resulting state.",
		}, []string{"state"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_comments_total",
			Help: "Comments added by content kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_notifications_total",
			Help: "Notifications written by type.",
		}, []string{"type"}),
		notifFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagement_notification_failures_total",
			Help: "Best-effort notification writes that failed and were swallowed.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.likes, m.follows, m.comments, m.notifications, m.notifFailures)
	return m
}

func (m *Engagement) LikeToggled(kind string, liked bool) {
	m.likes.WithLabelValues(kind, stateLabel(liked)).Inc()
}

func (m *Engagement) FollowToggled(following bool) {
	m.follows.WithLabelValues(stateLabel(following)).Inc()
}

func (m *Engagement) CommentAdded(kind string) {
	m.comments.WithLabelValues(kind).Inc()
}

func (m *Engagement) NotificationSent(notifType string) {
	m.notifications.WithLabelValues(notifType).Inc()
}

func (m *Engagement) NotificationFailed() {
	m.notifFailures.Inc()
}

// Handler serves the metric set in prometheus exposition format.
func (m *Engagement) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func stateLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
