package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"
)

// AnnouncementTopic is where relayed group announcements land. Chat
// front-ends subscribe to it and render the text into the group.
const AnnouncementTopic = "gifting.announcements"

// AnnouncementRelay drains the announcement outbox to the event bus.
type AnnouncementRelay struct {
	Outbox    ports.AnnouncementOutbox
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending announcements and marks each
// row sent only after broker publish succeeds. It stops on the first failure
// so the retry loop can reprocess remaining rows safely.
func (r AnnouncementRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingAnnouncements(ctx, limit)
	if err != nil {
		logger.Error("announcement outbox list failed",
			"event", "gifting_announcement_list_failed",
			"module", "gifting/envelope-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("announcement relay found no pending rows",
			"event", "gifting_announcement_relay_noop",
			"module", "gifting/envelope-service",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var envelope events.Envelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("announcement decode failed",
				"event", "gifting_announcement_decode_failed",
				"module", "gifting/envelope-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, AnnouncementTopic, envelope); err != nil {
			logger.Error("announcement publish failed",
				"event", "gifting_announcement_publish_failed",
				"module", "gifting/envelope-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkAnnouncementSent(ctx, row.OutboxID, now); err != nil {
			logger.Error("announcement mark sent failed",
				"event", "gifting_announcement_mark_sent_failed",
				"module", "gifting/envelope-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("announcement relay cycle completed",
		"event", "gifting_announcement_relay_completed",
		"module", "gifting/envelope-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
