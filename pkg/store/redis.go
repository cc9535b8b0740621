package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rxtx-hosting/playercount/pkg/series"
)

const DefaultKeyPrefix = "monke"

type RedisOptions struct {
	URL     string
	Token   string
	Prefix  string
	Timeout time.Duration
}

// Redis keeps the series in a sorted set scored by ingest timestamp and the
// snapshot under a single key.
type Redis struct {
	client     *redis.Client
	seriesKey  string
	currentKey string
}

func NewRedis(opts RedisOptions) (*Redis, error) {
	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opts.Token != "" {
		opt.Password = opts.Token
	}
	if opts.Timeout > 0 {
		opt.DialTimeout = opts.Timeout
		opt.ReadTimeout = opts.Timeout
		opt.WriteTimeout = opts.Timeout
	}

	return NewRedisWithClient(redis.NewClient(opt), opts.Prefix), nil
}

func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{
		client:     client,
		seriesKey:  prefix + ":series",
		currentKey: prefix + ":current",
	}
}

func (r *Redis) Record(ctx context.Context, snap series.Snapshot) error {
	member, err := series.EncodeSample(snap.Sample())
	if err != nil {
		return err
	}
	current, err := series.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	cutoff := series.Cutoff(snap.Time())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddNX(ctx, r.seriesKey, redis.Z{Score: float64(snap.Timestamp), Member: string(member)})
		pipe.ZRemRangeByScore(ctx, r.seriesKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.Set(ctx, r.currentKey, current, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record sample: %w", err)
	}
	return nil
}

func (r *Redis) Series(ctx context.Context, since int64) ([]series.Sample, error) {
	raw, err := r.client.ZRangeByScore(ctx, r.seriesKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(since, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}

	samples := make([]series.Sample, 0, len(raw))
	for _, member := range raw {
		sample, err := series.DecodeSample([]byte(member))
		if err != nil {
			slog.Warn("Skipping series member", "key", r.seriesKey, "member", member, "error", err)
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (r *Redis) Current(ctx context.Context) (series.Snapshot, bool, error) {
	raw, err := r.client.Get(ctx, r.currentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return series.Snapshot{}, false, nil
	}
	if err != nil {
		return series.Snapshot{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := series.DecodeSnapshot(raw)
	if err != nil {
		slog.Warn("Ignoring stored snapshot", "key", r.currentKey, "error", err)
		return series.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
