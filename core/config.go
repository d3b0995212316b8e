package core

import "time"

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopK 返回排序结果的最大条数
	DefaultTopK() int

	// DefaultFallbackSize 返回冷启动热门兜底的条数
	DefaultFallbackSize() int

	// DefaultMaxFeatures 返回 TF-IDF 词表上限
	DefaultMaxFeatures() int

	// DefaultTimeout 返回单次请求的超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopK() int {
	return 20
}

func (c *DefaultRecommendConfig) DefaultFallbackSize() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultMaxFeatures() int {
	return 5000
}

func (c *DefaultRecommendConfig) DefaultTimeout() time.Duration {
	return 2 * time.Second
}
