package events

import (
	"encoding/json"
	"time"
)

// Envelope is the shared event shape used across redpacket processes.
// Announcement payloads ride in Data; keep the field set backward
// compatible.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAt    time.Time       `json:"occurred_at"`
	PartitionKey  string          `json:"partition_key"`
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}
