package tracker

import "context"

// Notifier announces feedback activity to a chat channel. Unlike a
// Provider it creates no linkable work item, so it sits outside the
// registry and the link state.
type Notifier interface {
	// NotifyFeedbackCreated posts a new-feedback announcement using the
	// given integration config. The config's token holds the webhook URL.
	NotifyFeedbackCreated(ctx context.Context, cfg *IntegrationConfig, item WorkItem) error
}
