package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/catalogrec/core"
)

type appendNode struct {
	id  string
	err error
}

func (n *appendNode) Name() string { return "test.append." + n.id }
func (n *appendNode) Kind() Kind   { return KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&appendNode{id: "a"}, &appendNode{id: "b"}}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := core.ItemIDs(out); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Run() = %v, want [a b]", got)
	}
}

func TestPipeline_RunErrors(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{id: "a"}, &appendNode{id: "x", err: boom}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped boom", err)
	}
	if err.Error() != "test.append.x: boom" {
		t.Errorf("error message = %q", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Pipeline{Nodes: []Node{&appendNode{id: "a"}}}).Run(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() with canceled ctx error = %v", err)
	}
}

func TestConfig_BuildNodes(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: append
      config: {id: first}
    - type: append
      config: {id: second}
`))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "demo" || len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("config = %+v", cfg)
	}

	f := NewNodeFactory()
	f.Register("append", func(c map[string]any) (Node, error) {
		id, _ := c["id"].(string)
		return &appendNode{id: id}, nil
	})
	nodes, err := cfg.BuildNodes(f)
	if err != nil {
		t.Fatalf("BuildNodes() error = %v", err)
	}
	out, _ := (&Pipeline{Nodes: nodes}).Run(context.Background(), nil, nil)
	if got := core.ItemIDs(out); len(got) != 2 || got[0] != "first" {
		t.Errorf("Run() = %v", got)
	}

	if _, err := NewNodeFactory().Build("missing", nil); err == nil {
		t.Error("Build(missing) should fail")
	}
	if _, err := ParseYAML([]byte("pipeline: [")); err == nil {
		t.Error("ParseYAML() should fail on invalid yaml")
	}
}
