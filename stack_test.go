package pjson

import "testing"

func TestContextStackPushPeekPop(t *testing.T) {
	stack := NewContextStack[int](0)

	if depth := stack.Depth(); depth != 0 {
		t.Fatalf("expected depth 0, got %d", depth)
	}
	if p := stack.Peek(nil, false); p != nil {
		t.Fatalf("expected nil peek on empty stack, got %v", p)
	}

	if status := stack.Push(nil); status != StatusSuccess {
		t.Fatalf("expected StatusSuccess, got %d", status)
	}
	*stack.Peek(nil, false) = 1

	if status := stack.Push(nil); status != StatusSuccess {
		t.Fatalf("expected StatusSuccess, got %d", status)
	}
	*stack.Peek(nil, false) = 2

	if depth := stack.Depth(); depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}
	if top := *stack.Peek(nil, false); top != 2 {
		t.Fatalf("expected top 2, got %d", top)
	}
	if below := *stack.Peek(nil, true); below != 1 {
		t.Fatalf("expected entry below top to be 1, got %d", below)
	}

	stack.Pop(nil)
	if depth := stack.Depth(); depth != 1 {
		t.Fatalf("expected depth 1 after pop, got %d", depth)
	}
	if top := *stack.Peek(nil, false); top != 1 {
		t.Fatalf("expected top 1 after pop, got %d", top)
	}
	if p := stack.Peek(nil, true); p != nil {
		t.Fatalf("expected nil peek below the only remaining entry, got %v", p)
	}
}

// embeddingContext is a per-level context type distinct from ParserContext
// (it carries an extra field), the same shape internal/statsparser's own
// context type has. It exercises ContextStack.PeekContext, since plain Peek
// on a ContextStack[embeddingContext] returns *embeddingContext, which is
// not assignable to a PeekContext (func(*Parser, bool) *ParserContext).
type embeddingContext struct {
	ParserContext
	tag int
}

func TestContextStackPeekContext(t *testing.T) {
	stack := NewContextStack[embeddingContext](0)
	base := func(c *embeddingContext) *ParserContext { return &c.ParserContext }

	var p Parser
	p.Init(false, stack.Push, stack.PeekContext(base), stack.Pop)

	top := stack.Peek(&p, false)
	if top == nil {
		t.Fatalf("expected a toplevel context after Init, got nil")
	}
	top.tag = 7

	var tok Tokenizer
	tok.Init(&p)

	if status := feedAll(&tok, []byte(`[1, [2], 3]`)); status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %d", status)
	}
	if depth := stack.Depth(); depth != 1 {
		t.Fatalf("expected the stack to have unwound back to depth 1, got %d", depth)
	}
	if top := stack.Peek(&p, false); top == nil || top.tag != 7 {
		t.Fatalf("expected the toplevel context's own field to survive parsing, got %+v", top)
	}
}

func TestContextStackMaxDepth(t *testing.T) {
	stack := NewContextStack[int](2)

	if status := stack.Push(nil); status != StatusSuccess {
		t.Fatalf("push 1: expected StatusSuccess, got %d", status)
	}
	if status := stack.Push(nil); status != StatusSuccess {
		t.Fatalf("push 2: expected StatusSuccess, got %d", status)
	}
	if status := stack.Push(nil); status != StatusMaxDepthExceeded {
		t.Fatalf("push 3: expected StatusMaxDepthExceeded, got %d", status)
	}
	if depth := stack.Depth(); depth != 2 {
		t.Fatalf("expected the rejected push to leave depth unchanged at 2, got %d", depth)
	}
}
