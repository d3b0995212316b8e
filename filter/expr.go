package filter

import (
	"context"
	"strings"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述过滤条件，表达式为 true 的物品被过滤。
//
//	item.features.rating < 2.0
//	label.recall_source == "hot" && item.score < 0.1
//	item.meta.category == rctx.params.hidden_category
type ExprFilter struct {
	prg *dsl.Program
}

// ErrEmptyExpr 表示过滤表达式为空。
var ErrEmptyExpr = core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput, "filter: expr is required")

// NewExprFilter 编译表达式，空表达式与语法错误在构建期返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpr
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.prg.Eval(item, rctx)
}
