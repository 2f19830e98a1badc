package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/scan-token-service/internal/domain"
)

const historyKeyPrefix = "scans:device:"

// ScanHistory keeps the most recent scans of each device.
type ScanHistory interface {
	Push(ctx context.Context, event *domain.ScanEvent) error
	Recent(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error)
}

type redisScanHistory struct {
	client *redis.Client
	limit  int
}

// NewRedisScanHistory stores up to limit events per device in a Redis list.
func NewRedisScanHistory(client *redis.Client, limit int) ScanHistory {
	if limit <= 0 {
		limit = 50
	}
	return &redisScanHistory{client: client, limit: limit}
}

func historyKey(deviceID string) string {
	return historyKeyPrefix + deviceID
}

func (h *redisScanHistory) Push(ctx context.Context, event *domain.ScanEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode scan event: %w", err)
	}
	key := historyKey(event.DeviceID)
	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, int64(h.limit-1))
		return nil
	})
	return err
}

func (h *redisScanHistory) Recent(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error) {
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}
	raw, err := h.client.LRange(ctx, historyKey(deviceID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]domain.ScanEvent, 0, len(raw))
	for _, item := range raw {
		var event domain.ScanEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("decode scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
