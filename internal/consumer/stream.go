package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// SnapshotConsumer drains line snapshots from a Redis Stream into batches
// for the open/close builder. The core pipeline stays batch-only; this
// consumer materializes inputs before any invocation.
type SnapshotConsumer struct {
	client     *redis.Client
	consumerID string
	groupName  string
}

// NewSnapshotConsumer creates a new snapshot consumer
func NewSnapshotConsumer(client *redis.Client, consumerID, groupName string) *SnapshotConsumer {
	return &SnapshotConsumer{
		client:     client,
		consumerID: consumerID,
		groupName:  groupName,
	}
}

// EnsureGroup creates the consumer group if it doesn't exist
func (c *SnapshotConsumer) EnsureGroup(ctx context.Context, streamKey string) error {
	err := c.client.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Drain reads up to max pending snapshots from the stream, acknowledging
// each parsed message. It returns as soon as the stream is momentarily
// empty; callers loop on their own schedule.
func (c *SnapshotConsumer) Drain(ctx context.Context, streamKey string, max int) ([]models.LineSnapshot, error) {
	var snaps []models.LineSnapshot

	for len(snaps) < max {
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerID,
			Streams:  []string{streamKey, ">"},
			Count:    100,
			Block:    500 * time.Millisecond,
		}).Result()

		if err == redis.Nil {
			break // stream drained
		}
		if err != nil {
			if ctx.Err() != nil {
				return snaps, nil
			}
			return snaps, fmt.Errorf("error reading from stream: %w", err)
		}

		read := 0
		for _, stream := range streams {
			for _, message := range stream.Messages {
				read++

				snap, err := parseSnapshot(message)
				if err != nil {
					fmt.Printf("[Consumer] dropping message %s: %v\n", message.ID, err)
					c.ack(ctx, streamKey, message.ID)
					continue
				}

				snaps = append(snaps, snap)
				c.ack(ctx, streamKey, message.ID)
			}
		}

		if read == 0 {
			break
		}
	}

	return snaps, nil
}

func (c *SnapshotConsumer) ack(ctx context.Context, streamKey, messageID string) {
	if err := c.client.XAck(ctx, streamKey, c.groupName, messageID).Err(); err != nil {
		fmt.Printf("[Consumer] ack %s failed: %v\n", messageID, err)
	}
}

// MergeSnapshots appends fresh snapshots onto existing, dropping any the
// accumulated slice already holds. Streams redeliver and the warehouse
// overlaps the stream, so every append goes through here.
func MergeSnapshots(existing, fresh []models.LineSnapshot) []models.LineSnapshot {
	seen := make(map[string]struct{}, len(existing))
	for i := range existing {
		seen[snapshotIdentity(&existing[i])] = struct{}{}
	}

	out := existing
	for i := range fresh {
		id := snapshotIdentity(&fresh[i])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, fresh[i])
	}
	return out
}

func snapshotIdentity(s *models.LineSnapshot) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		s.GameKey, s.Book, s.Market, s.Side, s.CapturedAt.UnixNano(), s.Seq)
}

// parseSnapshot decodes the "data" field published by the line capturer
func parseSnapshot(xmsg redis.XMessage) (models.LineSnapshot, error) {
	raw, ok := xmsg.Values["data"].(string)
	if !ok {
		return models.LineSnapshot{}, fmt.Errorf("missing 'data' field in message")
	}

	var snap models.LineSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.LineSnapshot{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return snap, nil
}
