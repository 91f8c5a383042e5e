package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/config"
	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 5

// createScript allocates the next id and writes the record and its index entry in one step.
var createScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[1])
local key = ARGV[1] .. id
redis.call('HSET', key, 'month', ARGV[2], 'year', ARGV[3], 'created_at', ARGV[4], 'status', ARGV[5])
redis.call('RPUSH', KEYS[2], id)
return id
`)

// NewRedisClient opens a client and checks it with PING.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil, err
	}

	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

// RedisRequestStore keeps each request in a hash under <prefix>:req:<id>,
// with creation order in the list <prefix>:ids.
type RedisRequestStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRequestStore(rdb *redis.Client, prefix string) *RedisRequestStore {
	return &RedisRequestStore{
		rdb:    rdb,
		prefix: strings.Trim(prefix, ":"),
		now:    time.Now,
	}
}

func (s *RedisRequestStore) seqKey() string { return s.prefix + ":seq" }
func (s *RedisRequestStore) idsKey() string { return s.prefix + ":ids" }
func (s *RedisRequestStore) reqPrefix() string { return s.prefix + ":req:" }

func (s *RedisRequestStore) reqKey(id int64) string {
	return s.reqPrefix() + strconv.FormatInt(id, 10)
}

func (s *RedisRequestStore) Create(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error) {
	createdAt := s.now().UTC()

	id, err := createScript.Run(ctx, s.rdb,
		[]string{s.seqKey(), s.idsKey()},
		s.reqPrefix(), month, year, createdAt.Format(time.RFC3339Nano), string(domain.StatusPending),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to create consultation request: %w", err)
	}

	return domain.NewConsultationRequest(id, month, year, createdAt), nil
}

func (s *RedisRequestStore) Get(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	fields, err := s.rdb.HGetAll(ctx, s.reqKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation request %d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrRequestNotFound
	}
	return decodeRequest(id, fields)
}

// List returns requests in creation order.
func (s *RedisRequestStore) List(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	rawIDs, err := s.rdb.LRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation ids: %w", err)
	}

	ids := make([]int64, 0, len(rawIDs))
	cmds := make([]*redis.MapStringStringCmd, 0, len(rawIDs))

	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, raw := range rawIDs {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt id %q in index: %w", raw, err)
			}
			ids = append(ids, id)
			cmds = append(cmds, pipe.HGetAll(ctx, s.reqKey(id)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load consultation requests: %w", err)
	}

	requests := make([]*domain.ConsultationRequest, 0, len(cmds))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		req, err := decodeRequest(ids[i], fields)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// UpdateStatus applies the transition under WATCH so concurrent writers on the
// same id cannot both move it out of pending. Unknown ids are a no-op.
func (s *RedisRequestStore) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	if !status.IsValid() {
		return domain.NewInvalidStatusError(status)
	}

	key := s.reqKey(id)

	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}

		req, err := decodeRequest(id, fields)
		if err != nil {
			return err
		}
		if err := req.TransitionTo(status); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "status", string(req.Status))
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			var domainErr *domain.DomainError
			if errors.As(err, &domainErr) {
				return err
			}
			return fmt.Errorf("failed to update consultation request %d: %w", id, err)
		}
		return nil
	}

	return fmt.Errorf("failed to update consultation request %d: too much contention", id)
}

func decodeRequest(id int64, fields map[string]string) (*domain.ConsultationRequest, error) {
	year, err := strconv.Atoi(fields["year"])
	if err != nil {
		return nil, fmt.Errorf("corrupt year for request %d: %w", id, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for request %d: %w", id, err)
	}

	return &domain.ConsultationRequest{
		ID:        id,
		Month:     fields["month"],
		Year:      year,
		Timestamp: createdAt,
		Status:    domain.RequestStatus(fields["status"]),
	}, nil
}
