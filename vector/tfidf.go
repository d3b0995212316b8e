// Package vector 提供内容推荐使用的文本向量化与相似度计算。
//
// TFIDF 在整个目录语料上拟合词表与 IDF，产出与输入顺序对齐的物品向量；
// Space 拟合完成后只读，可被并发请求共享。
package vector

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/catalogrec/core"
)

// DefaultMaxFeatures 是默认词表上限。
const DefaultMaxFeatures = 5000

var (
	// ErrEmptyCorpus 表示语料为空，无法拟合。
	ErrEmptyCorpus = core.ErrEmptyCorpus

	// ErrEmptyVocabulary 表示去除停用词后没有任何词可用。
	ErrEmptyVocabulary = core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector: empty vocabulary")
)

// TFIDF 是词频-逆文档频率向量化器的配置。
type TFIDF struct {
	// MaxFeatures 词表上限；语料词数超过上限时按语料总词频保留前 MaxFeatures 个
	// <= 0 时使用 DefaultMaxFeatures
	MaxFeatures int

	// StopWords 停用词表；nil 表示不过滤
	StopWords map[string]struct{}
}

// NewTFIDF 创建使用英文停用词与默认词表上限的向量化器。
func NewTFIDF() *TFIDF {
	return &TFIDF{
		MaxFeatures: DefaultMaxFeatures,
		StopWords:   EnglishStopWords,
	}
}

// Space 是拟合好的向量空间。
type Space struct {
	// Vocabulary 词 -> 维度下标（按词的字典序分配）
	Vocabulary map[string]int

	// IDF 与维度对齐的逆文档频率
	IDF []float64

	// Vectors 与输入文档顺序对齐的 L2 归一化向量
	Vectors [][]float64

	stopWords map[string]struct{}
}

// Dim 返回向量维度。
func (s *Space) Dim() int {
	return len(s.IDF)
}

// Transform 将任意文本映射到该空间（词表外的词被忽略）。
func (s *Space) Transform(text string) []float64 {
	counts := make(map[string]int)
	for _, t := range Analyze(text, s.stopWords) {
		counts[t]++
	}
	return s.weigh(counts)
}

func (s *Space) weigh(counts map[string]int) []float64 {
	vec := make([]float64, len(s.IDF))
	for term, n := range counts {
		idx, ok := s.Vocabulary[term]
		if !ok {
			continue
		}
		vec[idx] = float64(n) * s.IDF[idx]
	}
	normalize(vec)
	return vec
}

// Fit 在 docs 上拟合向量空间。
// docs 为空时返回 ErrEmptyCorpus；ctx 取消时返回 ctx.Err()。
func (v *TFIDF) Fit(ctx context.Context, docs []string) (*Space, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	maxFeatures := v.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	// 1. 分词，统计每篇文档词频、语料总词频、文档频率
	docCounts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range docs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		counts := make(map[string]int)
		for _, t := range Analyze(doc, v.StopWords) {
			counts[t]++
		}
		for t, n := range counts {
			corpusFreq[t] += n
			docFreq[t]++
		}
		docCounts[i] = counts
	}
	if len(corpusFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	// 2. 选词：超过上限时按总词频降序、词字典序保留
	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			fi, fj := corpusFreq[terms[i]], corpusFreq[terms[j]]
			if fi != fj {
				return fi > fj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	// 3. 平滑 IDF：ln((1+n)/(1+df)) + 1
	n := float64(len(docs))
	space := &Space{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		Vectors:    make([][]float64, len(docs)),
		stopWords:  v.StopWords,
	}
	for i, t := range terms {
		space.Vocabulary[t] = i
		space.IDF[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	// 4. 文档向量
	for i, counts := range docCounts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		space.Vectors[i] = space.weigh(counts)
	}
	return space, nil
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
