package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/catalogrec/core"
)

// BreakerConfig 是熔断器配置。
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // 连续失败多少次后打开
	Timeout          time.Duration // 打开状态持续多久后进入半开
	MaxRequests      uint32        // 半开状态允许通过的请求数
}

// DefaultBreakerConfig 返回默认熔断配置。
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "catalog",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerSource 用熔断器包装远端数据源（如 Redis），失败过多时快速失败，
// 返回的错误同时满足 errors.Is(err, ErrUnavailable) 与 errors.Is(err, gobreaker.ErrOpenState)。
// 调用方 context 取消或超时不计入失败；后端自身的网络超时仍计入。
type BreakerSource struct {
	next Source
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerSource(next Source, cfg BreakerConfig, logger zerolog.Logger) *BreakerSource {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog source breaker state changed")
		},
	}
	return &BreakerSource{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State 返回熔断器当前状态，用于健康检查。
func (s *BreakerSource) State() string {
	return s.cb.State().String()
}

func (s *BreakerSource) Items(ctx context.Context) ([]core.CatalogItem, error) {
	v, err := s.execute(func() (any, error) { return s.next.Items(ctx) })
	if err != nil {
		return nil, err
	}
	items, _ := v.([]core.CatalogItem)
	return items, nil
}

func (s *BreakerSource) Interactions(ctx context.Context, userID string) ([]core.InteractionRecord, error) {
	v, err := s.execute(func() (any, error) { return s.next.Interactions(ctx, userID) })
	if err != nil {
		return nil, err
	}
	records, _ := v.([]core.InteractionRecord)
	return records, nil
}

func (s *BreakerSource) Version(ctx context.Context) (uint64, error) {
	v, err := s.execute(func() (any, error) { return s.next.Version(ctx) })
	if err != nil {
		return 0, err
	}
	version, _ := v.(uint64)
	return version, nil
}

func (s *BreakerSource) execute(fn func() (any, error)) (any, error) {
	v, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, err
}

var _ Source = (*BreakerSource)(nil)
