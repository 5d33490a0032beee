// Package redis mirrors editor changes into Redis: every committed write is
// pushed onto a capped list and published on a channel, and whole documents
// can be snapshotted under a key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/codec"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/store"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing was saved.
var ErrNoSnapshot = errors.New("no document snapshot")

// Outbox publishes editor events to Redis.
type Outbox struct {
	client  *backend.Client
	locker  *Locker
	logger  *slog.Logger
	prefix  string
	channel string
	maxLen  int64
	timeout time.Duration
}

type Option func(*Outbox)

// WithPrefix sets the key prefix. Defaults to "blox:".
func WithPrefix(prefix string) Option {
	return func(o *Outbox) {
		o.prefix = prefix
	}
}

// WithChannel sets the pub/sub channel. Defaults to "blox:events".
func WithChannel(channel string) Option {
	return func(o *Outbox) {
		o.channel = channel
	}
}

// WithMaxLen caps the outbox list. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(o *Outbox) {
		o.maxLen = n
	}
}

// WithLogger configures a logger for the Outbox.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Outbox) {
		o.logger = logger
	}
}

// WithTimeout bounds each publish made by Listener.
func WithTimeout(d time.Duration) Option {
	return func(o *Outbox) {
		o.timeout = d
	}
}

// New creates a new Redis outbox with options.
func New(address, password string, db int, opts ...Option) *Outbox {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis outbox from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Outbox {
	o := &Outbox{
		client:  client,
		logger:  logging.NewNop(),
		prefix:  "blox:",
		channel: "blox:events",
		maxLen:  1000,
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.locker = NewLocker(client, o.prefix)
	return o
}

func (o *Outbox) outboxKey() string {
	return o.prefix + "outbox"
}

func (o *Outbox) snapshotKey() string {
	return o.prefix + "document"
}

func (o *Outbox) versionKey() string {
	return o.prefix + "document:version"
}

// Ping checks connectivity.
func (o *Outbox) Ping(ctx context.Context) error {
	return o.client.Ping(ctx).Err()
}

// Publish appends ev to the outbox list and announces it on the channel.
func (o *Outbox) Publish(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := o.client.TxPipeline()
	pipe.LPush(ctx, o.outboxKey(), data)
	if o.maxLen > 0 {
		pipe.LTrim(ctx, o.outboxKey(), 0, o.maxLen-1)
	}
	pipe.Publish(ctx, o.channel, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Listener returns a store listener that publishes every event. Failures
// are logged; the editor never blocks on Redis for longer than the timeout.
func (o *Outbox) Listener() store.Listener {
	return func(ev domain.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()
		if err := o.Publish(ctx, ev); err != nil {
			o.logger.Warn("outbox publish failed", "type", ev.Type, "error", err)
		}
	}
}

// Recent returns up to n events, newest first.
func (o *Outbox) Recent(ctx context.Context, n int64) ([]domain.Event, error) {
	if n <= 0 {
		return nil, nil
	}
	vals, err := o.client.LRange(ctx, o.outboxKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox: %w", err)
	}

	events := make([]domain.Event, 0, len(vals))
	for _, v := range vals {
		var ev domain.Event
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// SaveSnapshot stores doc and bumps the snapshot version, holding the
// snapshot lock so concurrent writers do not interleave.
func (o *Outbox) SaveSnapshot(ctx context.Context, doc domain.Document) (int64, error) {
	data, err := codec.Marshal(doc, codec.JSON)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}

	unlock, err := o.locker.Lock(ctx, "document", 5*time.Second)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			o.logger.Warn("snapshot unlock failed", "error", err)
		}
	}()

	pipe := o.client.TxPipeline()
	pipe.Set(ctx, o.snapshotKey(), data, 0)
	version := pipe.Incr(ctx, o.versionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return version.Val(), nil
}

// LoadSnapshot returns the last saved document and its version.
func (o *Outbox) LoadSnapshot(ctx context.Context) (domain.Document, int64, error) {
	val, err := o.client.Get(ctx, o.snapshotKey()).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, 0, ErrNoSnapshot
		}
		return nil, 0, fmt.Errorf("failed to get from redis: %w", err)
	}
	version, err := o.client.Get(ctx, o.versionKey()).Int64()
	if err != nil && !errors.Is(err, backend.Nil) {
		return nil, 0, fmt.Errorf("failed to read snapshot version: %w", err)
	}

	doc, err := codec.Unmarshal([]byte(val), codec.JSON)
	if err != nil {
		return nil, 0, err
	}
	return doc, version, nil
}

// Close closes the redis client.
func (o *Outbox) Close() error {
	return o.client.Close()
}
