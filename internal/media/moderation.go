package media

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"pawgram/internal/config"
	"pawgram/internal/models"
	"pawgram/internal/observability"
)

// ratingThreshold is the highest acceptable rating index. Anything above it
// is adult or explicit content.
const ratingThreshold = 2

// ModerationResult is the verdict returned by the moderation API.
type ModerationResult struct {
	RatingIndex int    `json:"rating_index"`
	RatingLabel string `json:"rating_label"`
}

// Moderator screens uploaded images against the external moderation service
// before anything is persisted. A service failure aborts creation; silently
// skipping the check is not an option.
type Moderator struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

// NewModerator builds a Moderator from config. When no endpoint is
// configured (development profiles) moderation is a pass-through.
func NewModerator(cfg *config.Config) *Moderator {
	return &Moderator{
		client:   resty.New().SetTimeout(10 * time.Second),
		endpoint: cfg.ModerationEndpoint,
		apiKey:   cfg.ModerationAPIKey,
	}
}

// Close releases the underlying HTTP client.
func (m *Moderator) Close() error {
	return m.client.Close()
}

// Screen submits the stored image URL for review. Content rated above the
// threshold yields a Forbidden error; transport or API failures yield an
// internal error so the upload is rejected rather than published unchecked.
func (m *Moderator) Screen(ctx context.Context, imageURL string) error {
	if m.endpoint == "" {
		return nil
	}

	res, err := m.client.R().
		WithContext(ctx).
		SetQueryParams(map[string]string{
			"key": m.apiKey,
			"url": imageURL,
		}).
		SetResult(&ModerationResult{}).
		Get(m.endpoint)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("moderation request: %w", err))
	}
	if res.IsError() {
		return models.NewInternalError(fmt.Errorf("moderation service returned %s", res.Status()))
	}

	result := res.Result().(*ModerationResult)
	if result.RatingIndex > ratingThreshold {
		observability.ModerationRejections.Inc()
		return models.NewForbiddenError("This image violates our content guidelines")
	}
	return nil
}
