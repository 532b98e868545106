package template

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// ErrCancelled is returned when ctx is already done at Render entry: the
// engine never suspends mid-render, it only observes cancellation at
// the boundary.
var ErrCancelled = errors.New("render cancelled")

// Engine is a short-lived, per-render value holding only the partials
// registered for that one render. Built-in helpers live in the
// package-level, immutable helpers/blockHelpers tables so they are safe
// to share read-only across concurrently rendering Engines.
type Engine struct {
	partials map[string][]node
}

// NewEngine constructs an Engine with no partials registered.
func NewEngine() *Engine {
	return &Engine{partials: map[string][]node{}}
}

// RegisterPartial compiles body and registers it under name so
// `{{> name}}` resolves to it for the lifetime of this Engine.
func (e *Engine) RegisterPartial(name, body string) error {
	nodes, err := parse(body)
	if err != nil {
		return fmt.Errorf("partial %q: %w", name, err)
	}
	e.partials[name] = nodes
	return nil
}

// Render compiles and evaluates src against data. If ctx is already
// cancelled, it fails immediately with ErrCancelled before compiling;
// otherwise the render is CPU-bound and runs to completion without
// checking ctx again.
func (e *Engine) Render(ctx context.Context, src string, data *Map) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}
	nodes, err := parse(src)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	ev := &evaluator{engine: e, data: data}
	if err := ev.renderNodes(&buf, nodes); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type evaluator struct {
	engine *Engine
	data   *Map
}

func (ev *evaluator) renderNodes(buf *strings.Builder, nodes []node) error {
	for _, n := range nodes {
		if err := ev.renderNode(buf, n); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) renderNode(buf *strings.Builder, n node) error {
	switch t := n.(type) {
	case textNode:
		buf.WriteString(t.text)
		return nil

	case exprNode:
		return ev.renderExpr(buf, t)

	case partialNode:
		body, ok := ev.engine.partials[t.name]
		if !ok {
			// Unresolved partial: render nothing, consistent with the
			// unresolved-binding policy for missing path lookups.
			return nil
		}
		return ev.renderNodes(buf, body)

	case blockNode:
		return ev.renderBlock(buf, t)

	default:
		return fmt.Errorf("%w: unknown node type %T", ErrParse, n)
	}
}

func (ev *evaluator) renderExpr(buf *strings.Builder, e exprNode) error {
	args := ev.evalArgs(e.args)

	if h, ok := helpers[e.name]; ok {
		out, raw, err := h(args)
		if err != nil {
			return fmt.Errorf("helper %q: %w", e.name, err)
		}
		if raw {
			buf.WriteString(out)
		} else {
			buf.WriteString(html.EscapeString(out))
		}
		return nil
	}

	// No matching helper: treat the expression name as a dotted path.
	v := ev.resolvePath(e.name)
	buf.WriteString(html.EscapeString(v.Str()))
	return nil
}

func (ev *evaluator) renderBlock(buf *strings.Builder, b blockNode) error {
	bh, ok := blockHelpers[b.name]
	if !ok {
		return fmt.Errorf("%w: unknown block helper %q", ErrParse, b.name)
	}
	args := ev.evalArgs(b.args)
	renderBody := func() (string, error) {
		var out strings.Builder
		if err := ev.renderNodes(&out, b.body); err != nil {
			return "", err
		}
		return out.String(), nil
	}
	renderElse := func() (string, error) {
		var out strings.Builder
		if err := ev.renderNodes(&out, b.elseBody); err != nil {
			return "", err
		}
		return out.String(), nil
	}
	out, err := bh(args, renderBody, renderElse)
	if err != nil {
		return fmt.Errorf("block helper %q: %w", b.name, err)
	}
	buf.WriteString(out)
	return nil
}

func (ev *evaluator) evalArgs(args []argExpr) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		if a.literal {
			out[i] = a.literalVal
			continue
		}
		out[i] = ev.resolvePath(a.path)
	}
	return out
}

// resolvePath walks a dotted path against the render context. Any
// missing segment resolves to Null rather than failing the render.
func (ev *evaluator) resolvePath(path string) Value {
	segments := strings.Split(path, ".")
	root, ok := ev.data.Get(segments[0])
	if !ok {
		return Null()
	}
	cur := root
	for _, seg := range segments[1:] {
		switch cur.Kind {
		case KindMap:
			v, ok := cur.Map.Get(seg)
			if !ok {
				return Null()
			}
			cur = v
		case KindList:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.List) {
				return Null()
			}
			cur = cur.List[idx]
		default:
			return Null()
		}
	}
	return cur
}
