package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"
)

const (
	EventTypePoolSeeded    = "gifting.pool.seeded"
	EventTypeShareClaimed  = "gifting.share.claimed"
	EventTypePoolSettled   = "gifting.pool.settled"
	EventTypeFestiveSeeded = "gifting.festive.seeded"
)

// PoolTimeoutKey and FestiveTimeoutKey name the scheduler slots for a
// group's pool lifetime and festive round expiry.
func PoolTimeoutKey(groupID string) string {
	return "pool:" + groupID
}

func FestiveTimeoutKey(groupID string) string {
	return "festive:" + groupID
}

// Announcer renders results into the announcement outbox. Announcement
// failures are logged and swallowed; pool state never depends on delivery.
type Announcer struct {
	Outbox ports.AnnouncementOutbox
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (a Announcer) Announce(ctx context.Context, eventType string, announcement ports.Announcement, at time.Time) {
	logger := ResolveLogger(a.Logger)
	if a.Outbox == nil {
		return
	}

	eventID, err := a.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("announcement id generation failed",
			"event", "gifting_announce_id_failed",
			"module", "gifting/envelope-service",
			"layer", "application",
			"group_id", announcement.GroupID,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(announcement)
	if err != nil {
		logger.Error("announcement encode failed",
			"event", "gifting_announce_encode_failed",
			"module", "gifting/envelope-service",
			"layer", "application",
			"group_id", announcement.GroupID,
			"error", err.Error(),
		)
		return
	}

	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "envelope-service",
		OccurredAt:    at.UTC(),
		PartitionKey:  announcement.GroupID,
		SchemaVersion: 1,
		Data:          data,
	}
	if err := a.Outbox.AppendAnnouncement(ctx, envelope); err != nil {
		logger.Error("announcement append failed",
			"event", "gifting_announce_append_failed",
			"module", "gifting/envelope-service",
			"layer", "application",
			"group_id", announcement.GroupID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

// RenderSettlementText is the plain-text rendering of a settlement rank,
// capped at rankCount lines.
func RenderSettlementText(result entities.SettlementResult, rankCount int) string {
	if rankCount <= 0 {
		rankCount = 10
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s settled: %d claimed, %d returned\n",
		result.Name, result.TotalClaimed, result.Returned)

	ordered := append([]entities.ClaimEntry(nil), result.Claimants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Amount > ordered[j].Amount
	})
	if len(ordered) > rankCount {
		ordered = ordered[:rankCount]
	}
	for i, entry := range ordered {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, entry.UserID, entry.Amount)
	}
	return strings.TrimRight(b.String(), "\n")
}
