package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/rushteam/catalogrec/catalog"
	"github.com/rushteam/catalogrec/logging"
	"github.com/rushteam/catalogrec/store"
)

// EnvPrefix 是环境变量前缀，例如 CATALOGREC_RECOMMEND_TOP_K=30。
const EnvPrefix = "CATALOGREC_"

// Settings 是服务设置。加载顺序：默认值 -> YAML 文件 -> 环境变量，后者覆盖前者。
type Settings struct {
	Recommend RecommendSettings `koanf:"recommend"`
	Store     StoreSettings     `koanf:"store"`
	Log       logging.Config    `koanf:"log"`

	// Pipeline 附加排序阶段的 YAML 文件路径，可为空
	Pipeline string `koanf:"pipeline"`
}

type RecommendSettings struct {
	TopK          int           `koanf:"top_k" validate:"min=1,max=20"`
	FallbackSize  int           `koanf:"fallback_size" validate:"min=1,max=10"`
	MaxFeatures   int           `koanf:"max_features" validate:"min=1"`
	Timeout       time.Duration `koanf:"timeout" validate:"min=0"`
	MaxConcurrent int           `koanf:"max_concurrent" validate:"min=0"`
	DisableCache  bool          `koanf:"disable_cache"`
}

type StoreSettings struct {
	Backend string `koanf:"backend" validate:"oneof=memory redis sqlite"`
	Prefix  string `koanf:"prefix"`

	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`

	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Backend sqlite"`

	// BreakerThreshold 连续失败多少次后熔断远端数据源，0 表示不启用
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

func DefaultSettings() Settings {
	return Settings{
		Recommend: RecommendSettings{
			TopK:         20,
			FallbackSize: 10,
			MaxFeatures:  5000,
			Timeout:      2 * time.Second,
		},
		Store: StoreSettings{
			Backend:          "memory",
			Prefix:           "catalogrec",
			RedisAddr:        "127.0.0.1:6379",
			SQLitePath:       "catalogrec.db",
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// LoadSettings 加载并校验设置。path 为空时只使用默认值与环境变量。
func LoadSettings(path string) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return Settings{}, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Settings{}, fmt.Errorf("config: load env: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// envTransform: CATALOGREC_RECOMMEND_TOP_K -> recommend.top_k，CATALOGREC_PIPELINE -> pipeline
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	switch section {
	case "recommend", "store", "log":
		return section + "." + rest
	}
	return key
}

// Validate 校验设置取值。
func (s Settings) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("config: invalid settings: %w", err)
	}
	return nil
}

// Logger 按日志设置构建 Logger。
func (s Settings) Logger() zerolog.Logger {
	cfg := s.Log
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return logging.New(cfg)
}

// OpenSource 按存储设置打开目录数据源。返回的 io.Closer 用于释放底层连接。
// redis 后端会被熔断器包装。
func (s Settings) OpenSource(ctx context.Context, logger zerolog.Logger) (catalog.Source, io.Closer, error) {
	st := s.Store
	switch st.Backend {
	case "memory":
		kv := store.NewMemoryStore()
		return catalog.NewStoreSource(kv, st.Prefix), kv, nil
	case "redis":
		kv, err := store.NewRedisStore(ctx, st.RedisAddr, st.RedisPassword, st.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		var src catalog.Source = catalog.NewStoreSource(kv, st.Prefix)
		if st.BreakerThreshold > 0 {
			cfg := catalog.DefaultBreakerConfig()
			cfg.Name = "catalog.redis"
			cfg.FailureThreshold = st.BreakerThreshold
			if st.BreakerTimeout > 0 {
				cfg.Timeout = st.BreakerTimeout
			}
			src = catalog.NewBreakerSource(src, cfg, logger)
		}
		return src, kv, nil
	case "sqlite":
		src, err := catalog.OpenSQLSource(ctx, st.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		return nil, nil, fmt.Errorf("config: unsupported store backend %q", st.Backend)
	}
}
