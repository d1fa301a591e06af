// Package cache holds the Redis-backed read caches. Only presentation
// slots are cached here; the sample visibility predicate is always
// re-derived from the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"packvault/db"
	"packvault/logger"
	"packvault/model"
)

const (
	activeBannerKey = "showcase:banner"
	activePopupKey  = "showcase:popup"
	showcaseTTL     = 10 * time.Minute
)

// Showcase is the public payload: the currently active banner and
// popup, either of which may be absent.
type Showcase struct {
	Banner *model.Banner `json:"banner,omitempty"`
	Popup  *model.Popup  `json:"popup,omitempty"`
}

func getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if db.RedisClient == nil {
		return false, fmt.Errorf("Redis client not initialized")
	}

	raw, err := db.RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, key string, value interface{}) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return db.RedisClient.Set(ctx, key, raw, showcaseTTL).Err()
}

// GetActiveBanner reads the cached active banner. The second return
// reports a cache hit; a hit with a nil banner means "no active
// banner" was cached.
func GetActiveBanner(ctx context.Context) (*model.Banner, bool) {
	var cached struct {
		Banner *model.Banner `json:"banner"`
	}
	hit, err := getJSON(ctx, activeBannerKey, &cached)
	if err != nil {
		logger.Warn("banner cache read failed", logger.ErrorField(err))
		return nil, false
	}
	return cached.Banner, hit
}

// SetActiveBanner caches the active banner (nil caches the absence).
func SetActiveBanner(ctx context.Context, banner *model.Banner) {
	payload := struct {
		Banner *model.Banner `json:"banner"`
	}{Banner: banner}
	if err := setJSON(ctx, activeBannerKey, payload); err != nil {
		logger.Warn("banner cache write failed", logger.ErrorField(err))
	}
}

// GetActivePopup reads the cached active popup.
func GetActivePopup(ctx context.Context) (*model.Popup, bool) {
	var cached struct {
		Popup *model.Popup `json:"popup"`
	}
	hit, err := getJSON(ctx, activePopupKey, &cached)
	if err != nil {
		logger.Warn("popup cache read failed", logger.ErrorField(err))
		return nil, false
	}
	return cached.Popup, hit
}

// SetActivePopup caches the active popup (nil caches the absence).
func SetActivePopup(ctx context.Context, popup *model.Popup) {
	payload := struct {
		Popup *model.Popup `json:"popup"`
	}{Popup: popup}
	if err := setJSON(ctx, activePopupKey, payload); err != nil {
		logger.Warn("popup cache write failed", logger.ErrorField(err))
	}
}

// InvalidateShowcase drops both slot caches. Called after every
// banner/popup mutation so stale slots never outlive a change.
func InvalidateShowcase(ctx context.Context) {
	if db.RedisClient == nil {
		return
	}
	if err := db.RedisClient.Del(ctx, activeBannerKey, activePopupKey).Err(); err != nil {
		logger.Warn("showcase cache invalidation failed", logger.ErrorField(err))
	}
}
