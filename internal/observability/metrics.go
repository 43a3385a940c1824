package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fan-out delivery counters. A delivery is one attempt to push a new-post
// event to a single connected follower.
var (
	FanoutDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawgram_fanout_deliveries_total",
		Help: "Total number of post fan-out deliveries attempted",
	})

	FanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawgram_fanout_failures_total",
		Help: "Total number of post fan-out deliveries that failed",
	})

	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawgram_websocket_backpressure_drops_total",
		Help: "Messages dropped because a websocket client could not accept them",
	}, []string{"hub", "reason"})

	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawgram_feed_pages_served_total",
		Help: "Feed pages served, labelled by feed kind",
	}, []string{"kind"})

	ModerationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawgram_moderation_rejections_total",
		Help: "Uploads rejected by the image moderation service",
	})
)
