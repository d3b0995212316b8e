// Package dsl 是基于 CEL (Common Expression Language) 的 Label 表达式解释器。
//
// 表达式可访问三个变量：
//   - item：id / score / features / meta / labels
//   - label：item 的 Label 值，label.recall_source 即 item.labels.recall_source.value
//   - rctx：user_id / scene / params
//
// 示例：
//   - `label.recall_source == "hot"`
//   - `item.features.rating < 2.0 && item.score < 0.3`
//   - `has(label.recall_metric)`，访问不存在的 key 会报错，先用 has() 判断
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/catalogrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的表达式，可被多个 goroutine 并发执行。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个物品求值，表达式必须返回 bool。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: %q must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式，适合一次性判断；热路径请复用 Compile 的结果。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	labelValues := make(map[string]any)
	itemInput := map[string]any{
		"id":       "",
		"score":    0.0,
		"features": map[string]float64{},
		"meta":     map[string]any{},
		"labels":   labels,
	}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]any{"value": v.Value, "source": v.Source}
			labelValues[k] = v.Value
		}
		itemInput["id"] = item.ID
		itemInput["score"] = item.Score
		if item.Features != nil {
			itemInput["features"] = item.Features
		}
		if item.Meta != nil {
			itemInput["meta"] = item.Meta
		}
	}

	rctxInput := map[string]any{
		"user_id": "",
		"scene":   "",
		"params":  map[string]any{},
	}
	if rctx != nil {
		rctxInput["user_id"] = rctx.UserID
		rctxInput["scene"] = rctx.Scene
		if rctx.Params != nil {
			rctxInput["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  itemInput,
		"label": labelValues,
		"rctx":  rctxInput,
	}
}
