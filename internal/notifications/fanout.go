package notifications

import (
	"context"
	"encoding/json"
	"time"

	"pawgram/internal/feed"
	"pawgram/internal/middleware"
	"pawgram/internal/models"
	"pawgram/internal/observability"
	"pawgram/internal/repository"
)

const fanoutTimeout = 30 * time.Second

// NewPostEvent is the wire document pushed to followers when someone they
// follow publishes a post.
type NewPostEvent struct {
	Type    string        `json:"type"`
	Payload feed.PostView `json:"payload"`
}

// Fanout pushes freshly created posts to the author's currently connected
// followers. Delivery is fire-and-forget: each follower is handled in
// isolation, failures are counted and logged, and nothing propagates back
// to the request that created the post.
type Fanout struct {
	hub      *Hub
	notifier *Notifier
	follows  repository.FollowRepository
}

// NewFanout wires a Fanout over the hub, the notifier and the social graph.
func NewFanout(hub *Hub, notifier *Notifier, follows repository.FollowRepository) *Fanout {
	return &Fanout{hub: hub, notifier: notifier, follows: follows}
}

// NotifyNewPost delivers view to every connected follower of authorID.
// Call it from a goroutine after the create response has been committed;
// it never returns an error to the caller.
func (f *Fanout) NotifyNewPost(authorID uint, view feed.PostView) {
	ctx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
	defer cancel()

	followers, err := f.follows.GetFollowers(ctx, authorID)
	if err != nil {
		// An author without a followers record has nobody to notify.
		middleware.Logger.WarnContext(ctx, "fanout skipped, followers unavailable",
			"author_id", authorID, "error", err)
		return
	}

	payload, err := json.Marshal(NewPostEvent{Type: "new_post", Payload: view})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "fanout payload marshal failed",
			"author_id", authorID, "error", err)
		return
	}

	for _, entry := range followers.Entries {
		// Channels are keyed by user identity; pet followers are reached
		// through their guardian's account and carry no channel of their own.
		if entry.Kind != models.ActorKindHuman {
			continue
		}
		f.deliver(ctx, entry.TargetID, payload)
	}
}

// deliver pushes the payload to one follower, isolating any failure.
func (f *Fanout) deliver(ctx context.Context, userID uint, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.FanoutFailures.Inc()
			middleware.Logger.ErrorContext(ctx, "fanout delivery panicked",
				"user_id", userID, "panic", r)
		}
	}()

	if !f.hub.IsConnected(userID) {
		return
	}

	observability.FanoutDeliveries.Inc()
	if f.notifier.Enabled() {
		err := f.notifier.PublishUser(ctx, userID, string(payload))
		if err == nil {
			return
		}
		observability.FanoutFailures.Inc()
		middleware.Logger.WarnContext(ctx, "fanout publish failed, sending locally",
			"user_id", userID, "error", err)
	}
	f.hub.Send(userID, payload)
}
