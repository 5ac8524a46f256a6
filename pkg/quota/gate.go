package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota gating.
var (
	quotaChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_quota_checks_total",
		Help: "Total quota checks by result",
	}, []string{"result"}) // "allowed", "denied", "error"

	quotaDeductionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_quota_deductions_total",
		Help: "Total quota deductions by result",
	}, []string{"result"}) // "ok", "exceeded", "error"

	quotaLowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bizsearch_quota_low_total",
		Help: "Total deductions that left a user below the low-remaining threshold",
	})
)

// Gate is the usage meter the search orchestrator consults.
type Gate interface {
	// CheckQuota reports whether userID may run another search.
	CheckQuota(ctx context.Context, userID string) (Status, error)

	// DeductQuota consumes amount searches. It fails with
	// *QuotaExceededError if the allowance would be overrun.
	DeductQuota(ctx context.Context, userID string, amount int) error
}

// deductScript atomically checks the allowance and increments usage.
// KEYS[1] used counter, KEYS[2] total override.
// ARGV[1] amount, ARGV[2] default total.
// Returns {applied (0|1), used, total}.
var deductScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local total = tonumber(redis.call('GET', KEYS[2]) or ARGV[2])
local amount = tonumber(ARGV[1])
if used + amount > total then
  return {0, used, total}
end
used = redis.call('INCRBY', KEYS[1], amount)
return {1, used, total}
`)

// RedisGate keeps per-user counters in Redis.
type RedisGate struct {
	redis        *redis.Client
	defaultTotal int
	logger       zerolog.Logger
}

var _ Gate = (*RedisGate)(nil)

// NewRedisGate creates a gate granting defaultTotal searches to users
// without a total override.
func NewRedisGate(redisClient *redis.Client, defaultTotal int, logger zerolog.Logger) *RedisGate {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if defaultTotal < 0 {
		defaultTotal = 0
	}
	return &RedisGate{
		redis:        redisClient,
		defaultTotal: defaultTotal,
		logger:       logger,
	}
}

// CheckQuota implements Gate.
func (g *RedisGate) CheckQuota(ctx context.Context, userID string) (Status, error) {
	if err := validateUser(userID); err != nil {
		return Status{}, err
	}

	pipe := g.redis.Pipeline()
	usedCmd := pipe.Get(ctx, UsedKey(userID))
	totalCmd := pipe.Get(ctx, TotalKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		quotaChecksTotal.WithLabelValues("error").Inc()
		return Status{}, fmt.Errorf("read quota state: %w", err)
	}

	used, err := intOrDefault(usedCmd, 0)
	if err != nil {
		quotaChecksTotal.WithLabelValues("error").Inc()
		return Status{}, fmt.Errorf("parse used counter: %w", err)
	}
	total, err := intOrDefault(totalCmd, g.defaultTotal)
	if err != nil {
		quotaChecksTotal.WithLabelValues("error").Inc()
		return Status{}, fmt.Errorf("parse total: %w", err)
	}

	status := newStatus(used, total)
	if status.Allowed {
		quotaChecksTotal.WithLabelValues("allowed").Inc()
	} else {
		quotaChecksTotal.WithLabelValues("denied").Inc()
		g.logger.Info().
			Str("user_id", userID).
			Int("total", total).
			Msg("Quota exhausted - search denied")
	}
	return status, nil
}

// DeductQuota implements Gate.
func (g *RedisGate) DeductQuota(ctx context.Context, userID string, amount int) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	keys := []string{UsedKey(userID), TotalKey(userID)}
	res, err := deductScript.Run(ctx, g.redis, keys, amount, g.defaultTotal).Int64Slice()
	if err != nil {
		quotaDeductionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("deduct quota: %w", err)
	}
	if len(res) != 3 {
		quotaDeductionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("deduct quota: unexpected script reply %v", res)
	}

	status := newStatus(int(res[1]), int(res[2]))
	if res[0] == 0 {
		quotaDeductionsTotal.WithLabelValues("exceeded").Inc()
		return &QuotaExceededError{UserID: userID, Remaining: status.Remaining, Total: status.Total}
	}
	quotaDeductionsTotal.WithLabelValues("ok").Inc()

	logEvent := g.logger.Debug()
	if status.IsLow() {
		quotaLowTotal.Inc()
		logEvent = g.logger.Warn()
	}
	logEvent.
		Str("user_id", userID).
		Int("remaining", status.Remaining).
		Int("total", status.Total).
		Msg("Quota deducted")

	return nil
}

// SetTotal overrides a user's allowance.
func (g *RedisGate) SetTotal(ctx context.Context, userID string, total int) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := g.redis.Set(ctx, TotalKey(userID), total, 0).Err(); err != nil {
		return fmt.Errorf("set quota total: %w", err)
	}
	return nil
}

// Reset clears a user's usage counter.
func (g *RedisGate) Reset(ctx context.Context, userID string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := g.redis.Del(ctx, UsedKey(userID)).Err(); err != nil {
		return fmt.Errorf("reset quota: %w", err)
	}
	return nil
}

func validateUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

func intOrDefault(cmd *redis.StringCmd, def int) (int, error) {
	v, err := cmd.Int()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	return v, err
}
