package service

import (
	"context"

	"outbound_messaging_backend/platform/config"
)

type contextKey string

const workerActivityKey contextKey = "worker_activity"

// WithWorkerActivity records the agent's current TaskRouter activity on the
// context. The HTTP layer sets this from the access token.
func WithWorkerActivity(ctx context.Context, activitySID string) context.Context {
	if activitySID == "" {
		return ctx
	}
	return context.WithValue(ctx, workerActivityKey, activitySID)
}

// WorkerActivity returns the activity recorded by WithWorkerActivity.
func WorkerActivity(ctx context.Context) string {
	activity, _ := ctx.Value(workerActivityKey).(string)
	return activity
}

// ActivityAvailability builds the availability gate from configuration: an
// agent whose activity is the configured offline activity cannot send. With
// no offline activity configured everyone is available.
func ActivityAvailability(cfg config.ComposeConfig) AvailabilityFunc {
	offline := cfg.GetOfflineActivitySID()
	return func(ctx context.Context) bool {
		if offline == "" {
			return true
		}
		return WorkerActivity(ctx) != offline
	}
}
