package pjson

// ParserContext tracks the grammar state for one nesting level (top level,
// one array, or one object). The zero value is ready to use; nextEat is
// private bookkeeping the Parser maintains across push/pop.
type ParserContext struct {
	nextEat parserEat

	// OnValue, if set, is called once for a primitive value and twice for an
	// array or object value (once when it opens, once when it closes — the
	// two calls are told apart by token.Type). A non-StatusSuccess return
	// aborts parsing with that Status (or StatusNoncompliantSink if positive
	// and not StatusSuccess).
	OnValue func(p *Parser, ctx *ParserContext, token *Token) Status

	// OnObjectPropertyName, if set, is called when a string token is
	// recognized as an object property name (before its value is parsed).
	OnObjectPropertyName func(p *Parser, ctx *ParserContext, token *Token) Status
}

// PushContext is called by the Parser when entering a new array or object,
// to make room for a new ParserContext. It must return StatusSuccess, or
// StatusMaxDepthExceeded (or any other error Status) to refuse the nesting.
type PushContext func(p *Parser) Status

// PeekContext returns the current ParserContext, or (if previous is true)
// the one enclosing it — used when popping out of a scope to resume the
// grammar state that was active before it was entered.
type PeekContext func(p *Parser, previous bool) *ParserContext

// PopContext discards the current (innermost) ParserContext, restoring the
// one beneath it.
type PopContext func(p *Parser)

type parserEat func(p *Parser, token *Token) Status

// Parser is a Sink that recognizes the JSON grammar — values, arrays,
// objects, members — on top of a Tokenizer's token stream. It owns no
// storage of its own: the context stack (one ParserContext per nesting
// level) is entirely the caller's, reached only through Push/Peek/Pop.
type Parser struct {
	eat parserEat

	push PushContext
	peek PeekContext
	pop  PopContext
}

// Init installs the context-stack callbacks and primes the parser to parse
// one top-level value. isLazy selects streaming mode: true returns
// StatusCompleted as soon as one top-level value finishes (so a caller can
// Reset and parse the next of several concatenated values); false requires
// the top-level value to be the entire input (trailing whitespace and EOS
// only).
func (p *Parser) Init(isLazy bool, push PushContext, peek PeekContext, pop PopContext) {
	*p = Parser{push: push, peek: peek, pop: pop}
	p.Reset(isLazy)
}

// Reset re-primes the parser to parse the next top-level value, reusing
// whatever context-stack storage the caller already allocated.
func (p *Parser) Reset(isLazy bool) {
	p.push(p)
	ctx := p.peek(p, false)
	*ctx = ParserContext{}

	if isLazy {
		p.eat = eatTopLevelValueLazy
	} else {
		p.eat = eatTopLevelValueGreedy
	}
}

// Eat implements Sink so a Parser can be attached directly to a Tokenizer.
func (p *Parser) Eat(token *Token) Status {
	return p.eat(p, token)
}

func noncompliantIfPositive(status Status) Status {
	if status > 0 {
		return StatusNoncompliantSink
	}
	return status
}

// eatValue is the shared core for "the next token must be a value": a
// primitive finishes immediately (after notifying OnValue), while an array
// or object open bracket pushes a new context and switches the parser into
// that scope's grammar.
func eatValue(p *Parser, token *Token,
	primitiveNext parserEat,
	complexNext parserEat,
	primitiveStatus Status,
	eosStatus Status,
) Status {
	switch token.Type {
	case TokenNull, TokenFalse, TokenTrue, TokenNumber, TokenString:
		ctx := p.peek(p, false)
		if ctx.OnValue != nil {
			if status := ctx.OnValue(p, ctx, token); status != StatusSuccess {
				return noncompliantIfPositive(status)
			}
		}
		p.eat = primitiveNext
		return primitiveStatus

	case TokenOpenBracket:
		return beginComplexValue(p, token, eatArrayElementOrEnd, complexNext)

	case TokenOpenBrace:
		return beginComplexValue(p, token, eatObjectPropertyNameOrEnd, complexNext)

	case TokenEndOfStream:
		return eosStatus

	default:
		return StatusSyntaxError
	}
}

func beginComplexValue(p *Parser, token *Token, nextEat parserEat, complexNext parserEat) Status {
	if status := p.push(p); status != StatusSuccess {
		return noncompliantIfPositive(status)
	}

	newCtx := p.peek(p, false)
	*newCtx = ParserContext{}

	ctx := p.peek(p, true)
	ctx.nextEat = complexNext

	if ctx.OnValue != nil {
		if status := ctx.OnValue(p, ctx, token); status != StatusSuccess {
			return noncompliantIfPositive(status)
		}
	}

	p.eat = nextEat
	return StatusDataNeeded
}

// endComplexValue fires when an array or object's closing token is
// recognized: it notifies OnValue one last time (for the close), pops the
// context, and resumes whatever grammar state was waiting for this value to
// finish — or, if nothing was waiting (nextEat is nil, meaning this was the
// lazy top-level value), reports StatusCompleted.
func endComplexValue(p *Parser, token *Token) Status {
	ctx := p.peek(p, true)

	if ctx.OnValue != nil {
		if status := ctx.OnValue(p, ctx, token); status != StatusSuccess {
			return noncompliantIfPositive(status)
		}
	}

	next := ctx.nextEat
	ctx.nextEat = nil
	p.pop(p)

	if next != nil {
		p.eat = next
		return StatusDataNeeded
	}

	p.eat = eatEOS
	return StatusCompleted
}

func eatTopLevelValueGreedy(p *Parser, token *Token) Status {
	return eatValue(p, token, eatEOS, eatEOS, StatusDataNeeded, StatusNoTokensFound)
}

func eatTopLevelValueLazy(p *Parser, token *Token) Status {
	// complexNext is nil: it marks the top-level scope so endComplexValue
	// knows to return StatusCompleted instead of resuming an enclosing scope.
	return eatValue(p, token, eatEOS, nil, StatusCompleted, StatusNoTokensFound)
}

func eatArrayElementOrEnd(p *Parser, token *Token) Status {
	if token.Type != TokenCloseBracket {
		return eatArrayElement(p, token)
	}
	return endComplexValue(p, token)
}

func eatArrayElement(p *Parser, token *Token) Status {
	return eatValue(p, token, eatArrayElementSeparatorOrEnd, eatArrayElementSeparatorOrEnd, StatusDataNeeded, StatusSyntaxError)
}

func eatArrayElementSeparatorOrEnd(p *Parser, token *Token) Status {
	switch token.Type {
	case TokenComma:
		p.eat = eatArrayElement
		return StatusDataNeeded
	case TokenCloseBracket:
		return endComplexValue(p, token)
	default:
		return StatusSyntaxError
	}
}

func eatObjectPropertyNameOrEnd(p *Parser, token *Token) Status {
	if token.Type != TokenCloseBrace {
		return eatObjectPropertyName(p, token)
	}
	return endComplexValue(p, token)
}

func eatObjectPropertyName(p *Parser, token *Token) Status {
	if token.Type != TokenString {
		return StatusSyntaxError
	}

	ctx := p.peek(p, false)
	if ctx.OnObjectPropertyName != nil {
		if status := ctx.OnObjectPropertyName(p, ctx, token); status != StatusSuccess {
			return noncompliantIfPositive(status)
		}
	}

	p.eat = eatObjectPropertyNameAndValueSeparator
	return StatusDataNeeded
}

func eatObjectPropertyNameAndValueSeparator(p *Parser, token *Token) Status {
	if token.Type != TokenColon {
		return StatusSyntaxError
	}
	p.eat = eatObjectPropertyValue
	return StatusDataNeeded
}

func eatObjectPropertyValue(p *Parser, token *Token) Status {
	return eatValue(p, token, eatObjectPropertySeparatorOrEnd, eatObjectPropertySeparatorOrEnd, StatusDataNeeded, StatusSyntaxError)
}

func eatObjectPropertySeparatorOrEnd(p *Parser, token *Token) Status {
	switch token.Type {
	case TokenComma:
		p.eat = eatObjectPropertyName
		return StatusDataNeeded
	case TokenCloseBrace:
		return endComplexValue(p, token)
	default:
		return StatusSyntaxError
	}
}

func eatEOS(p *Parser, token *Token) Status {
	if token.Type == TokenEndOfStream {
		return StatusCompleted
	}
	return StatusSyntaxError
}
