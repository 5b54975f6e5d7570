package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"redpacket/contexts/gifting/envelope-service/adapters/memory"
	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Envelope
	topics    []string
	failAfter int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAfter > 0 && len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, envelope)
	p.topics = append(p.topics, topic)
	return nil
}

type seqIDGen struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return string(rune('a' + g.next - 1)), nil
}

func appendAnnouncements(t *testing.T, store *memory.Store, count int) {
	t.Helper()
	announcer := application.Announcer{Outbox: store, IDGen: &seqIDGen{}}
	at := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		announcer.Announce(context.Background(), application.EventTypePoolSeeded, ports.Announcement{
			GroupID: "group-1",
			Text:    "seeded",
		}, at.Add(time.Duration(i)*time.Second))
	}
}

func TestAnnouncementRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	appendAnnouncements(t, store, 2)
	publisher := &recordingPublisher{}
	relay := AnnouncementRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published envelopes, got %d", len(publisher.published))
	}
	for _, topic := range publisher.topics {
		if topic != AnnouncementTopic {
			t.Fatalf("unexpected topic %q", topic)
		}
	}

	// Everything marked sent: the next cycle is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected no re-publish, got %d", len(publisher.published))
	}
}

func TestAnnouncementRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	appendAnnouncements(t, store, 3)
	publisher := &recordingPublisher{failAfter: 1}
	relay := AnnouncementRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure to surface")
	}

	pending, err := store.ListPendingAnnouncements(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 rows left for retry, got %d", len(pending))
	}
}

func TestFestiveRoundExpirerSweeps(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	if err := store.StartRound(context.Background(), "round-old", now.Add(-30*time.Hour)); err != nil {
		t.Fatalf("start round failed: %v", err)
	}
	if err := store.StartRound(context.Background(), "round-new", now.Add(-time.Hour)); err != nil {
		t.Fatalf("start round failed: %v", err)
	}

	expirer := FestiveRoundExpirer{
		Festive:  store,
		Clock:    fixedClock{at: now},
		RoundTTL: 24 * time.Hour,
	}
	if err := expirer.RunOnce(context.Background()); err != nil {
		t.Fatalf("expirer run failed: %v", err)
	}

	if _, err := store.TryClaimRound(context.Background(), "round-new", "user-1"); err != nil {
		t.Fatalf("fresh round must survive: %v", err)
	}
	if granted, err := store.TryClaimRound(context.Background(), "round-old", "user-1"); err == nil || granted {
		t.Fatalf("stale round must be gone, granted=%v err=%v", granted, err)
	}
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}
