// Package recommend 实现基于内容的推荐引擎。
//
// 每个请求按如下状态机推进：
//
//	目录为空 -> PathEmpty，返回空结果
//	没有可用偏好（无 like/bookmark、引用全部失效、词表为空）-> PathFallback，热门兜底
//	否则 -> PathRanked：内容召回 -> 排除已交互 -> 去重 -> 附加阶段 -> TopN
package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rushteam/catalogrec/catalog"
	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/filter"
	"github.com/rushteam/catalogrec/metrics"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/recall"
	"github.com/rushteam/catalogrec/rerank"
	"github.com/rushteam/catalogrec/vector"
)

// Path 是一次推荐最终走过的路径。
type Path string

const (
	PathEmpty    Path = "empty"
	PathRanked   Path = "ranked"
	PathFallback Path = "fallback"
)

// FallbackReason 说明为什么走了热门兜底。
type FallbackReason string

const (
	ReasonNone            FallbackReason = ""
	ReasonNoPreference    FallbackReason = "no_preference"
	ReasonStalePreference FallbackReason = "stale_preference"
	ReasonEmptyVocabulary FallbackReason = "empty_vocabulary"
)

// Options 是引擎配置。
type Options struct {
	// TopK 排序结果上限，取值 1..20
	TopK int

	// FallbackSize 热门兜底条数，取值 1..10
	FallbackSize int

	// MaxFeatures TF-IDF 词表上限
	MaxFeatures int

	// Timeout 单次请求超时，<= 0 表示不额外设置
	Timeout time.Duration

	// MaxConcurrent 同时进行拟合/打分的请求数，<= 0 时取 CPU 核数
	MaxConcurrent int

	// Stages 插入在去重与 TopN 之间的附加阶段（通常由 YAML 配置构建）
	Stages []pipeline.Node

	// DisableCache 为 true 时每次请求都重新拟合向量空间
	DisableCache bool
}

// OptionsFromConfig 用 RecommendConfig 的默认值填充 Options。
func OptionsFromConfig(cfg core.RecommendConfig) Options {
	return Options{
		TopK:         cfg.DefaultTopK(),
		FallbackSize: cfg.DefaultFallbackSize(),
		MaxFeatures:  cfg.DefaultMaxFeatures(),
		Timeout:      cfg.DefaultTimeout(),
	}
}

func DefaultOptions() Options {
	return OptionsFromConfig(&core.DefaultRecommendConfig{})
}

// Response 是一次推荐的结果。
type Response struct {
	RequestID      string         `json:"request_id"`
	UserID         string         `json:"user_id"`
	Path           Path           `json:"path"`
	FallbackReason FallbackReason `json:"fallback_reason,omitempty"`
	Items          []*core.Item   `json:"items"`

	// ModelVersion 是本次使用的目录版本，0 表示未版本化
	ModelVersion uint64 `json:"model_version"`
	LatencyMS    int64  `json:"latency_ms"`
}

// IDs 返回结果中的物品 ID，保持顺序。
func (r *Response) IDs() []string {
	if r == nil {
		return nil
	}
	return core.ItemIDs(r.Items)
}

// Engine 是推荐引擎，可被多个 goroutine 并发使用。
type Engine struct {
	source catalog.Source
	opts   Options
	cache  *SpaceCache
	sem    *semaphore.Weighted
	logger zerolog.Logger
}

func NewEngine(source catalog.Source, opts Options, logger zerolog.Logger) *Engine {
	// 排序结果最多 20 条、兜底最多 10 条，越界时取上限
	def := DefaultOptions()
	if opts.TopK <= 0 || opts.TopK > def.TopK {
		opts.TopK = def.TopK
	}
	if opts.FallbackSize <= 0 || opts.FallbackSize > def.FallbackSize {
		opts.FallbackSize = def.FallbackSize
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = def.MaxFeatures
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = runtime.NumCPU()
	}

	tfidf := vector.NewTFIDF()
	tfidf.MaxFeatures = opts.MaxFeatures
	return &Engine{
		source: source,
		opts:   opts,
		cache:  NewSpaceCache(tfidf),
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// Cache 返回引擎使用的向量空间缓存。
func (e *Engine) Cache() *SpaceCache { return e.cache }

// Recommend 从数据源读取目录快照与用户交互，为用户生成推荐。
// userID 必须非空（由上游鉴权保证）。
func (e *Engine) Recommend(ctx context.Context, userID string) (*Response, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	version := uint64(0)
	if !e.opts.DisableCache {
		v, err := e.source.Version(ctx)
		if err != nil {
			return nil, e.fail(ctx, "load", fmt.Errorf("recommend: load version: %w", err))
		}
		version = v
	}

	var (
		items        []core.CatalogItem
		interactions []core.InteractionRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = e.source.Items(gctx)
		if err != nil {
			return fmt.Errorf("recommend: load items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		interactions, err = e.source.Interactions(gctx, userID)
		if err != nil {
			return fmt.Errorf("recommend: load interactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, e.fail(ctx, "load", err)
	}

	// 读目录期间版本变化时，items 不属于 version 对应的快照，不走缓存
	if version != 0 {
		after, err := e.source.Version(ctx)
		if err != nil {
			return nil, e.fail(ctx, "load", fmt.Errorf("recommend: load version: %w", err))
		}
		if after != version {
			e.logger.Debug().
				Uint64("version", version).
				Uint64("version_after", after).
				Msg("catalog changed while loading, fitting privately")
			version = 0
		}
	}

	return e.run(ctx, start, userID, version, items, interactions)
}

// RecommendSnapshot 在调用方提供的快照上执行同一状态机，不读数据源、不使用缓存。
// 相同输入总是得到相同的有序输出。
func (e *Engine) RecommendSnapshot(
	ctx context.Context,
	userID string,
	items []core.CatalogItem,
	interactions []core.InteractionRecord,
) (*Response, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.run(ctx, start, userID, 0, items, interactions)
}

func (e *Engine) run(
	ctx context.Context,
	start time.Time,
	userID string,
	version uint64,
	items []core.CatalogItem,
	interactions []core.InteractionRecord,
) (*Response, error) {
	rctx := &core.RecommendContext{
		UserID:       userID,
		RequestID:    uuid.NewString(),
		Interactions: interactions,
	}
	resp := &Response{
		RequestID:    rctx.RequestID,
		UserID:       userID,
		ModelVersion: version,
	}
	log := e.logger.With().Str("request_id", rctx.RequestID).Str("user_id", userID).Logger()

	if len(items) == 0 {
		log.Debug().Err(core.ErrEmptyCorpus).Msg("catalog is empty")
		return e.finish(resp, PathEmpty, ReasonNone, []*core.Item{}, start), nil
	}

	preferred := rctx.PreferredItemIDs()
	if !recall.HasPreferredItem(preferred, items) {
		reason := ReasonNoPreference
		if len(preferred) > 0 {
			reason = ReasonStalePreference
		}
		return e.fallback(ctx, log, resp, reason, items, start)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, e.fail(ctx, "pipeline", fmt.Errorf("recommend: acquire compute slot: %w", err))
	}
	defer e.sem.Release(1)

	space, cacheResult, err := e.space(ctx, version, items)
	if errors.Is(err, vector.ErrEmptyVocabulary) {
		return e.fallback(ctx, log, resp, ReasonEmptyVocabulary, items, start)
	}
	if err != nil {
		return nil, e.fail(ctx, "fit", fmt.Errorf("recommend: fit vector space: %w", err))
	}

	p := &pipeline.Pipeline{Nodes: e.rankedNodes(space, items)}
	out, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, e.fail(ctx, "pipeline", fmt.Errorf("recommend: ranked pipeline: %w", err))
	}

	log.Debug().
		Str("cache", string(cacheResult)).
		Int("vocabulary", space.Dim()).
		Int("preferred", len(preferred)).
		Int("results", len(out)).
		Msg("ranked recommendation")
	return e.finish(resp, PathRanked, ReasonNone, out, start), nil
}

func (e *Engine) space(ctx context.Context, version uint64, items []core.CatalogItem) (*vector.Space, CacheResult, error) {
	space, result, err := e.cache.Get(ctx, version, items)
	if err == nil {
		metrics.RecordSpaceCache(string(result))
	}
	return space, result, err
}

func (e *Engine) rankedNodes(space *vector.Space, items []core.CatalogItem) []pipeline.Node {
	nodes := []pipeline.Node{
		&recall.ContentRecall{Space: space, Items: items},
		&filter.FilterNode{Filters: []filter.Filter{filter.NewInteractedFilter()}},
		&filter.DedupNode{},
	}
	nodes = append(nodes, e.opts.Stages...)
	return append(nodes, &rerank.TopNNode{N: e.opts.TopK})
}

func (e *Engine) fallback(
	ctx context.Context,
	log zerolog.Logger,
	resp *Response,
	reason FallbackReason,
	items []core.CatalogItem,
	start time.Time,
) (*Response, error) {
	hot := &recall.Hot{Items: items, N: e.opts.FallbackSize}
	out, err := hot.Recall(ctx, nil)
	if err != nil {
		return nil, e.fail(ctx, "pipeline", fmt.Errorf("recommend: fallback: %w", err))
	}
	log.Debug().Str("reason", string(reason)).Int("results", len(out)).Msg("popularity fallback")
	return e.finish(resp, PathFallback, reason, out, start), nil
}

func (e *Engine) finish(resp *Response, path Path, reason FallbackReason, items []*core.Item, start time.Time) *Response {
	elapsed := time.Since(start)
	resp.Path = path
	resp.FallbackReason = reason
	resp.Items = items
	resp.LatencyMS = elapsed.Milliseconds()
	metrics.RecordRequest(string(path), elapsed)
	return resp
}

func (e *Engine) fail(ctx context.Context, stage string, err error) error {
	if ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
		stage = "timeout"
	}
	metrics.RecordError(stage)
	metrics.RecordRequest("error", 0)
	e.logger.Error().Err(err).Str("stage", stage).Msg("recommendation failed")
	return err
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.Timeout)
}
