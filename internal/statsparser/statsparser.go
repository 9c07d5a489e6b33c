// Package statsparser is a worked example of wiring pjson.Parser up to a
// caller-owned context stack: it walks an arbitrary JSON document and
// tallies shape statistics about it (nesting depth, per-type token counts,
// largest array/object seen, number of object keys).
//
// It is a direct port of the original library's shared/stats_parser.h
// sample, adapted from that header's fixed-layout, function-pointer-cast
// callback style to ordinary Go methods and a generic ContextStack.
package statsparser

import "github.com/adams85/pjson"

// datatypeCount mirrors the original's datatype_counts[PJSON_TOKEN_EOS -
// PJSON_TOKEN_NULL]: one counter per token type from TokenNull through
// TokenComma, indexed by Type-TokenNull.
const datatypeCount = int(pjson.TokenEndOfStream - pjson.TokenNull)

// context is the per-nesting-level state the original's stats_parser_context
// carried in its `counter` field: the number of elements or properties seen
// so far in the array or object this context belongs to. The top-level
// context's counter is never used.
type context struct {
	pjson.ParserContext
	counter int
}

// Stats accumulates shape statistics as a document is fed through it. The
// zero value is not ready to use; call New.
type Stats struct {
	parser pjson.Parser
	stack  *pjson.ContextStack[context]

	// ToplevelType is the token type of the document's outermost value. For
	// an array or object it is overwritten by the closing token, so a
	// finished parse reports TokenCloseBracket or TokenCloseBrace.
	ToplevelType pjson.TokenType

	// MaxDepth is the deepest array/object nesting level reached (the
	// top-level value itself, if it is an array or object, counts as
	// depth 1).
	MaxDepth int

	// MaxArrayItemCount and MaxObjectPropertyCount are the largest element
	// count seen in any single array, resp. property count in any single
	// object, anywhere in the document.
	MaxArrayItemCount      int
	MaxObjectPropertyCount int

	// DatatypeCounts tallies how many tokens of each type were seen, indexed
	// by OccurrenceIndex(type).
	DatatypeCounts [datatypeCount]int

	// KeyCount is the total number of object property names encountered.
	KeyCount int
}

// baseContext extracts the embedded pjson.ParserContext a context carries,
// for wiring this package's pjson.ContextStack[context] into Parser.Init:
// context is not pjson.ParserContext itself (it adds its own counter field),
// so ContextStack's plain Peek (which returns *context) cannot be handed to
// Parser.Init directly; ContextStack.PeekContext needs this to bridge the two.
func baseContext(c *context) *pjson.ParserContext { return &c.ParserContext }

// New creates a Stats ready to parse one top-level JSON value. isLazy
// selects the Parser's lazy/greedy top-level mode, same as pjson.Parser.Init.
func New(isLazy bool) *Stats {
	s := &Stats{stack: pjson.NewContextStack[context](0)}
	s.parser.Init(isLazy, s.stack.Push, s.stack.PeekContext(baseContext), s.stack.Pop)
	s.rewireToplevel()
	return s
}

// Reset discards accumulated statistics and primes the parser (and its
// context stack) to parse a fresh top-level value.
func (s *Stats) Reset(isLazy bool) {
	*s = Stats{stack: pjson.NewContextStack[context](0)}
	s.parser.Init(isLazy, s.stack.Push, s.stack.PeekContext(baseContext), s.stack.Pop)
	s.rewireToplevel()
}

// rewireToplevel installs the toplevel on-value hook that pjson.Parser.Init
// / Reset cannot know about on its own, same as the original's
// stats_parser_init/_reset doing so right after pjson_parser_init/_reset.
func (s *Stats) rewireToplevel() {
	s.stack.Peek(&s.parser, false).OnValue = s.onValueAtToplevel
}

// Eat implements pjson.Sink so a Stats can be attached directly to a
// pjson.Tokenizer (or fed tokens by hand).
func (s *Stats) Eat(token *pjson.Token) pjson.Status {
	return s.parser.Eat(token)
}

func (s *Stats) onValueAtToplevel(p *pjson.Parser, ctx *pjson.ParserContext, token *pjson.Token) pjson.Status {
	// Called once for a primitive, twice (open and close) for an array or
	// object; the type recorded here is whichever of those calls happens
	// to run last to write it, which for a complex toplevel value is its
	// closing token. That matches what the original records.
	s.ToplevelType = token.Type
	return s.onValueCore(token)
}

func (s *Stats) onValueInArrayOrObject(p *pjson.Parser, ctx *pjson.ParserContext, token *pjson.Token) pjson.Status {
	// The enclosing array or object counts each item once: for a primitive it
	// is the stack top, while for an open/close notification the child
	// context sits on top of it and the close does not count again.
	switch token.Type {
	case pjson.TokenOpenBracket, pjson.TokenOpenBrace:
		s.stack.Peek(&s.parser, true).counter++
	case pjson.TokenCloseBracket, pjson.TokenCloseBrace:
	default:
		s.currentContext().counter++
	}
	return s.onValueCore(token)
}

func (s *Stats) onObjectPropertyName(p *pjson.Parser, ctx *pjson.ParserContext, token *pjson.Token) pjson.Status {
	s.KeyCount++
	return pjson.StatusSuccess
}

// currentContext returns the innermost context struct, the same way the
// original reaches into its context stack directly rather than trusting
// the ctx/context parameter handed to a callback (which, for an array or
// object's open/close notification, still points at the *enclosing*
// context — see onValueCore).
func (s *Stats) currentContext() *context {
	return s.stack.Peek(&s.parser, false)
}

func (s *Stats) onValueCore(token *pjson.Token) pjson.Status {
	switch token.Type {
	case pjson.TokenNull, pjson.TokenFalse, pjson.TokenTrue, pjson.TokenNumber, pjson.TokenString:
		s.recordDatatype(token.Type)

	case pjson.TokenOpenBracket, pjson.TokenOpenBrace:
		// The new context is already on the stack (Parser pushes before
		// calling OnValue on the enclosing one), so reach for it directly
		// rather than trusting the ctx argument, which still refers to the
		// context that is about to be left behind.
		child := s.currentContext()
		child.counter = 0
		child.OnValue = s.onValueInArrayOrObject
		child.OnObjectPropertyName = s.onObjectPropertyName

		if depth := s.stack.Depth() - 1; s.MaxDepth < depth {
			s.MaxDepth = depth
		}

	case pjson.TokenCloseBracket:
		if child := s.currentContext(); s.MaxArrayItemCount < child.counter {
			s.MaxArrayItemCount = child.counter
		}
		s.recordDatatype(token.Type)

	case pjson.TokenCloseBrace:
		// The original compares against max_array_item_count here instead
		// of max_object_property_count, so an object never updates its own
		// counter unless it happens to exceed the largest array seen so
		// far. Fixed here: objects and arrays are tracked independently.
		if child := s.currentContext(); s.MaxObjectPropertyCount < child.counter {
			s.MaxObjectPropertyCount = child.counter
		}
		s.recordDatatype(token.Type)
	}

	return pjson.StatusSuccess
}

// OccurrenceIndex maps a TokenType onto its slot in DatatypeCounts. pjson's
// TokenType ordering guarantees TokenNull..TokenComma are contiguous, so this
// is simple offset arithmetic rather than a lookup table.
func OccurrenceIndex(t pjson.TokenType) int {
	return int(t - pjson.TokenNull)
}

func (s *Stats) recordDatatype(t pjson.TokenType) {
	s.DatatypeCounts[OccurrenceIndex(t)]++
}
