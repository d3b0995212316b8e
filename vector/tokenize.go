package vector

import (
	"regexp"
	"strings"
)

// tokenPattern 匹配长度 >= 2 的词（字母、数字、下划线），与经典 TF-IDF 分词规则一致。
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize 将文本转为小写并切分为词。
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Analyze 分词并去除停用词。
func Analyze(text string, stopWords map[string]struct{}) []string {
	tokens := Tokenize(text)
	if len(stopWords) == 0 {
		return tokens
	}
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := stopWords[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}
