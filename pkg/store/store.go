// Package store keeps reconcile snapshots and applied-plan markers in Redis.
//
// Keys follow a TABLE|key layout:
//
//	RECONCILE_SNAPSHOT|<device>|<feature>      hash, field "data" holds the latest snapshot
//	RECONCILE_HISTORY|<device>|<feature>       list of snapshots, newest first
//	RECONCILE_APPLIED|<device>|<fingerprint>   marker set once per plan, expires
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/amalmborg97/cisco.ios/pkg/commands"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

const (
	tableSnapshot = "RECONCILE_SNAPSHOT"
	tableHistory  = "RECONCILE_HISTORY"
	tableApplied  = "RECONCILE_APPLIED"

	// DefaultHistoryLimit bounds the per-feature history list.
	DefaultHistoryLimit = 50
)

// Snapshot records one reconcile run of a device feature.
type Snapshot struct {
	Device      string    `json:"device"`
	Feature     string    `json:"feature"`
	Mode        string    `json:"mode"`
	Commands    []string  `json:"commands,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Changed     bool      `json:"changed"`
	Before      string    `json:"before,omitempty"`
	After       string    `json:"after,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewSnapshot builds the snapshot of a reconcile result. Before and After are
// rendered as running-config text.
func NewSnapshot(device string, res *reconcile.Result) (*Snapshot, error) {
	s := &Snapshot{
		Device:      device,
		Feature:     res.Feature,
		Mode:        string(res.Mode),
		Commands:    res.Lines(),
		Fingerprint: res.Fingerprint,
		Changed:     res.Changed,
		Timestamp:   time.Now().UTC(),
	}
	var err error
	if res.Before != nil {
		if s.Before, err = commands.Running(res.Before); err != nil {
			return nil, err
		}
	}
	if res.After != nil {
		if s.After, err = commands.Running(res.After); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Store persists snapshots.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Latest(ctx context.Context, device, feature string) (*Snapshot, error)
	History(ctx context.Context, device, feature string, limit int) ([]*Snapshot, error)
	MarkApplied(ctx context.Context, device, fingerprint string, ttl time.Duration) (bool, error)
	Close() error
}

// RedisStore is a Store backed by a Redis database.
type RedisStore struct {
	client *redis.Client

	// HistoryLimit is the number of snapshots kept per device feature.
	HistoryLimit int
}

// NewRedisStore creates a store on the Redis database db at addr.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		HistoryLimit: DefaultHistoryLimit,
	}
}

// Ping tests the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(table string, parts ...string) string {
	return table + "|" + strings.Join(parts, "|")
}

// Save writes s as the latest snapshot of its device feature and prepends it
// to the history list, trimmed to HistoryLimit.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Device == "" || snap.Feature == "" {
		return util.NewSchemaError("snapshot", "device and feature are required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	limit := s.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	histKey := key(tableHistory, snap.Device, snap.Feature)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key(tableSnapshot, snap.Device, snap.Feature), "data", data)
	pipe.LPush(ctx, histKey, data)
	pipe.LTrim(ctx, histKey, 0, int64(limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving snapshot %s/%s: %w", snap.Device, snap.Feature, err)
	}

	util.WithDevice(snap.Device).WithField("feature", snap.Feature).
		Debugf("saved snapshot %s", snap.Fingerprint)
	return nil
}

// Latest returns the most recent snapshot of a device feature.
func (s *RedisStore) Latest(ctx context.Context, device, feature string) (*Snapshot, error) {
	data, err := s.client.HGet(ctx, key(tableSnapshot, device, feature), "data").Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: snapshot %s/%s", util.ErrNotFound, device, feature)
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// History returns up to limit snapshots, newest first. A limit of zero or
// less returns the whole list.
func (s *RedisStore) History(ctx context.Context, device, feature string, limit int) ([]*Snapshot, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	items, err := s.client.LRange(ctx, key(tableHistory, device, feature), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	snaps := make([]*Snapshot, 0, len(items))
	for _, item := range items {
		snap, err := decode(item)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// MarkApplied records that the plan with fingerprint was applied to device.
// It reports false when the marker already existed, so a plan is applied at
// most once per ttl.
func (s *RedisStore) MarkApplied(ctx context.Context, device, fingerprint string, ttl time.Duration) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}
	ok, err := s.client.SetNX(ctx, key(tableApplied, device, fingerprint),
		time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marking plan applied: %w", err)
	}
	return ok, nil
}

func decode(data string) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}
