package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is the sentinel wrapped by every template compile-time error.
var ErrParse = errors.New("template parse error")

// node is the AST produced by parse. Every concrete type below implements
// it as a marker.
type node interface{}

type textNode struct{ text string }

// exprNode is a bare `{{...}}` mustache: either a helper call (name plus
// zero or more args) or, when name matches no registered helper, a
// dotted-path variable lookup.
type exprNode struct {
	name string
	args []argExpr
}

type blockNode struct {
	name     string
	args     []argExpr
	body     []node
	elseBody []node
}

type partialNode struct{ name string }

// argExpr is either a literal value or a dotted path to resolve against
// the render context.
type argExpr struct {
	literal    bool
	literalVal Value
	path       string
}

func pathArg(p string) argExpr { return argExpr{path: p} }
func litArg(v Value) argExpr   { return argExpr{literal: true, literalVal: v} }

// frame tracks an open block (or the implicit top-level block) while
// parsing: the nodes accumulated so far, split between the main body and,
// once an {{else}} marker is seen, the else body.
type frame struct {
	name     string
	args     []argExpr
	body     []node
	elseBody []node
	inElse   bool
}

func (f *frame) append(n node) {
	if f.inElse {
		f.elseBody = append(f.elseBody, n)
	} else {
		f.body = append(f.body, n)
	}
}

func (f *frame) appendText(text string) {
	if text == "" {
		return
	}
	f.append(textNode{text: text})
}

// parse compiles template source into a flat list of top-level nodes.
func parse(src string) ([]node, error) {
	root := &frame{}
	stack := []*frame{root}

	pos := 0
	for pos < len(src) {
		idx := strings.Index(src[pos:], "{{")
		if idx == -1 {
			stack[len(stack)-1].appendText(src[pos:])
			break
		}
		if idx > 0 {
			stack[len(stack)-1].appendText(src[pos : pos+idx])
		}
		pos += idx + 2
		end := strings.Index(src[pos:], "}}")
		if end == -1 {
			return nil, fmt.Errorf("%w: unterminated expression", ErrParse)
		}
		exprText := strings.TrimSpace(src[pos : pos+end])
		pos += end + 2

		switch {
		case strings.HasPrefix(exprText, "#"):
			name, args, err := parseCall(exprText[1:])
			if err != nil {
				return nil, err
			}
			stack = append(stack, &frame{name: name, args: args})

		case exprText == "else":
			if len(stack) < 2 {
				return nil, fmt.Errorf("%w: {{else}} outside a block", ErrParse)
			}
			stack[len(stack)-1].inElse = true

		case strings.HasPrefix(exprText, "/"):
			closeName := strings.TrimSpace(exprText[1:])
			if len(stack) < 2 {
				return nil, fmt.Errorf("%w: unmatched {{/%s}}", ErrParse, closeName)
			}
			top := stack[len(stack)-1]
			if top.name != closeName {
				return nil, fmt.Errorf("%w: {{/%s}} does not match open block {{#%s}}", ErrParse, closeName, top.name)
			}
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.append(blockNode{name: top.name, args: top.args, body: top.body, elseBody: top.elseBody})

		case strings.HasPrefix(exprText, ">"):
			name := strings.TrimSpace(exprText[1:])
			stack[len(stack)-1].append(partialNode{name: name})

		default:
			name, args, err := parseCall(exprText)
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1].append(exprNode{name: name, args: args})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: unterminated block {{#%s}}", ErrParse, stack[len(stack)-1].name)
	}
	return root.body, nil
}

// parseCall tokenizes "name arg1 arg2 ..." respecting double-quoted
// string literals, and classifies each argument token as a literal or a
// dotted path.
func parseCall(s string) (string, []argExpr, error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return "", nil, fmt.Errorf("%w: empty expression", ErrParse)
	}
	name := toks[0]
	args := make([]argExpr, 0, len(toks)-1)
	for _, t := range toks[1:] {
		args = append(args, classifyArg(t))
	}
	return name, args, nil
}

func classifyArg(tok string) argExpr {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return litArg(String(tok[1 : len(tok)-1]))
	}
	switch tok {
	case "true":
		return litArg(Bool(true))
	case "false":
		return litArg(Bool(false))
	case "null":
		return litArg(Null())
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return litArg(Int(i))
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return litArg(Float(f))
	}
	return pathArg(tok)
}

// tokenize splits an expression body on whitespace, treating a
// double-quoted run as a single token (quotes retained for classifyArg).
func tokenize(s string) []string {
	var toks []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			if j < len(s) {
				j++ // include closing quote
			}
			toks = append(toks, s[i:j])
			i = j
			continue
		}
		j := i
		for j < len(s) && s[j] != ' ' {
			j++
		}
		toks = append(toks, s[i:j])
		i = j
	}
	return toks
}
