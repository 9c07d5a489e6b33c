package pjson

// tokenizerState is the tagged state of a Tokenizer's byte-level FSM. It
// replaces the C original's function-pointer dispatch (a state value doubled
// as an index into a jump table) with an explicit enum and a single switch.
type tokenizerState int8

const (
	stateBetweenTokens tokenizerState = iota
	stateInKeyword

	stateInString
	stateInStringExpectEscape
	stateInStringExpectU16Digit1
	stateInStringExpectU16Digit2
	stateInStringExpectU16Digit3
	stateInStringExpectU16Digit4
	stateInStringMaybeLowSurrogate
	stateInStringExpectEscapeMaybeLowSurrogate
	stateInStringExpectUTF8Byte2Of2
	stateInStringExpectUTF8Byte2Of3
	stateInStringExpectUTF8Byte3Of3
	stateInStringExpectUTF8Byte2Of4
	stateInStringExpectUTF8Byte3Of4
	stateInStringExpectUTF8Byte4Of4

	stateInNumberExpectInt
	stateInNumberInt
	stateInNumberExpectFrac
	stateInNumberFrac
	stateInNumberExpectExp
	stateInNumberExpectExpDigits
	stateInNumberExpDigits
	stateInNumberMaybeDecimalOrExp

	stateEOS
	stateError
)

var keywordLookup = [...]string{"null", "false", "true"}

// Tokenizer turns a sequence of byte chunks into a stream of Tokens handed
// to a Sink. It survives suspension at any byte boundary: a token that does
// not finish within one Feed call is copied into an internal spill buffer
// and resumed transparently on the next call.
type Tokenizer struct {
	sink Sink

	index           uint64
	tokenStartIndex uint64
	tokenType       TokenType
	state           tokenizerState
	errStatus       Status

	// tokenStartPos is the offset in the data slice of the current Feed call
	// where the in-progress token begins. It is meaningful only while state
	// != stateBetweenTokens and tokenSpilled is false.
	tokenStartPos int
	tokenSpilled  bool

	utf8Seq       [4]byte
	surrogatePair [2]uint16

	unescapedLength int

	spill           []byte
	spillBufferSize int
}

// TokenizerOption configures optional behavior passed to Tokenizer.Init.
type TokenizerOption func(*Tokenizer)

// WithSpillBufferSize overrides the initial capacity of the tokenizer's
// internal spill buffer (DefaultSpillBufferSize otherwise). A caller feeding
// data in very small chunks against documents with long strings or numbers
// can set this higher to cut down on reallocation in growSpill.
func WithSpillBufferSize(n int) TokenizerOption {
	return func(t *Tokenizer) { t.spillBufferSize = n }
}

// Init (re)initializes t for a fresh stream. A nil sink behaves like
// discardSink: validates lexical structure and reports StatusNoTokensFound
// for empty input.
func (t *Tokenizer) Init(sink Sink, opts ...TokenizerOption) {
	spill := t.spill
	*t = Tokenizer{sink: sink, spillBufferSize: DefaultSpillBufferSize}
	for _, opt := range opts {
		opt(t)
	}
	if t.sink == nil {
		t.sink = &discardSink{}
	}

	if cap(spill) >= t.spillBufferSize {
		t.spill = spill[:0]
	} else {
		t.spill = make([]byte, 0, t.spillBufferSize)
	}
}

// stepResult is what a single byte's worth of state-machine work produced.
// consumed reports whether the byte at the position just processed should
// advance the tokenizer's index; it only matters when status ==
// StatusCompleted, since DataNeeded bytes always advance and errors return
// immediately regardless.
type stepResult struct {
	status   Status
	consumed bool
}

func dataNeeded() stepResult { return stepResult{status: StatusDataNeeded, consumed: true} }

func failure(status Status) stepResult { return stepResult{status: status} }

// Feed consumes data, driving the tokenizer's state machine byte by byte and
// handing finished tokens to the Sink. It returns the number of leading
// bytes of data it examined and the resulting Status.
//
// When the returned Status is StatusCompleted, n may be less than len(data):
// the Sink signaled it is done (a lazy top-level value finished, or a greedy
// parse accepted EOS) before the chunk was exhausted, and data[n:] was never
// examined. In lazy mode this is the start of the next concatenated value.
//
// Once Feed (or Close) latches a negative Status, every subsequent call
// returns that same Status without examining data, until Init is called
// again.
func (t *Tokenizer) Feed(data []byte) (int, Status) {
	if t.state == stateError {
		return 0, t.errStatus
	}
	if t.state == stateEOS {
		return 0, StatusCompleted
	}

	pos := 0
	for pos < len(data) {
		ch := data[pos]
		result := t.consume(data, pos, ch)

		if result.consumed {
			pos++
			t.index++
		}

		switch {
		case result.status == StatusDataNeeded:
			continue
		case result.status == StatusCompleted:
			t.markCompleted(pos)
			return pos, StatusCompleted
		default:
			return pos, t.latchError(result.status)
		}
	}

	t.suspend(data)
	return len(data), StatusDataNeeded
}

// Index reports the number of bytes the tokenizer has examined so far
// across every Feed call since Init.
func (t *Tokenizer) Index() uint64 { return t.index }

// ErrorPosition reports the byte offset a latched error was reported at:
// the start of the malformed token for a token-shaped SyntaxError, the
// first byte of a bad sequence for a UTF8Error, and the current index for
// a stray-byte SyntaxError — matching reportError's per-case argument,
// which this simply reads back. Meaningless unless Feed or Close last
// returned a negative Status.
func (t *Tokenizer) ErrorPosition() uint64 { return t.tokenStartIndex }

// Close signals end of stream. It is only valid to call once no further data
// will be fed; a token still open for a reason other than awaiting a
// terminator (an unterminated string, a truncated escape, a bare "-") is a
// syntax or UTF-8 error.
func (t *Tokenizer) Close() Status {
	switch t.state {
	case stateError:
		return t.errStatus
	case stateEOS:
		return StatusCompleted

	case stateBetweenTokens:
		return t.emitEOS()

	case stateInKeyword:
		keyword := keywordLookup[t.tokenType-TokenNull]
		seen := t.index - t.tokenStartIndex
		if seen != uint64(len(keyword)) {
			return t.latchError(t.reportError(StatusSyntaxError, TokenError, t.tokenStartIndex))
		}

		t.unescapedLength = int(seen)
		status := t.finishToken(nil, 0)
		if status != StatusDataNeeded && status != StatusCompleted {
			return t.latchError(t.noncompliant(status))
		}
		return t.emitEOS()

	case stateInString,
		stateInStringExpectEscape,
		stateInStringExpectU16Digit1,
		stateInStringExpectU16Digit2,
		stateInStringExpectU16Digit3,
		stateInStringExpectU16Digit4,
		stateInStringMaybeLowSurrogate,
		stateInStringExpectEscapeMaybeLowSurrogate,
		stateInNumberExpectInt,
		stateInNumberExpectFrac,
		stateInNumberExpectExp,
		stateInNumberExpectExpDigits:
		return t.latchError(t.reportError(StatusSyntaxError, TokenError, t.tokenStartIndex))

	case stateInStringExpectUTF8Byte2Of2, stateInStringExpectUTF8Byte2Of3, stateInStringExpectUTF8Byte2Of4:
		t.index--
		return t.latchError(t.reportError(StatusUTF8Error, TokenError, t.index))

	case stateInStringExpectUTF8Byte3Of3, stateInStringExpectUTF8Byte3Of4:
		t.index -= 2
		return t.latchError(t.reportError(StatusUTF8Error, TokenError, t.index))

	case stateInStringExpectUTF8Byte4Of4:
		t.index -= 3
		return t.latchError(t.reportError(StatusUTF8Error, TokenError, t.index))

	case stateInNumberInt, stateInNumberFrac, stateInNumberExpDigits, stateInNumberMaybeDecimalOrExp:
		t.unescapedLength = int(t.index - t.tokenStartIndex)
		status := t.finishToken(nil, 0)
		if status != StatusDataNeeded && status != StatusCompleted {
			return t.latchError(t.noncompliant(status))
		}
		return t.emitEOS()

	default:
		panic("pjson: unreachable tokenizer state in Close")
	}
}

func (t *Tokenizer) emitEOS() Status {
	t.tokenType = TokenEndOfStream
	token := Token{Type: TokenEndOfStream, StartIndex: t.index}
	status := t.sink.Eat(&token)
	if status != StatusCompleted && status != StatusDataNeeded {
		return t.latchError(t.noncompliant(status))
	}

	t.tokenStartIndex = t.index
	t.state = stateEOS
	return StatusCompleted
}

func (t *Tokenizer) noncompliant(status Status) Status {
	if status > 0 {
		return StatusNoncompliantSink
	}
	return status
}

func (t *Tokenizer) latchError(status Status) Status {
	t.errStatus = status
	t.state = stateError
	return status
}

func (t *Tokenizer) reportError(status Status, typ TokenType, startIndex uint64) Status {
	t.tokenType = typ
	t.tokenStartIndex = startIndex
	return status
}

// markCompleted records the bookkeeping the tokenizer exposes after a
// Completed result: the token cursor resets to "no token in progress" at the
// current index, mirroring the C tokenizer's token_start/token_start_index
// reset in its Completed: label.
func (t *Tokenizer) markCompleted(pos int) {
	t.tokenType = TokenNone
	t.tokenStartIndex = t.index
	t.state = stateBetweenTokens
}

// suspend is called when a Feed call's data is exhausted while a token is
// still in progress: it spills whatever of the token lives in data into the
// internal buffer so the caller's slice can be reused or discarded.
func (t *Tokenizer) suspend(data []byte) {
	if t.state == stateBetweenTokens {
		t.tokenType = TokenNone
		t.tokenStartIndex = t.index
		return
	}

	if t.tokenSpilled {
		t.appendSpill(data)
		return
	}

	t.appendSpill(data[t.tokenStartPos:])
	t.tokenSpilled = true
}

// startToken begins a new token at data[pos], remembering its origin so it
// can later be finished either directly out of data (the common case, zero
// extra copies) or out of the spill buffer (if Feed calls ended mid-token).
func (t *Tokenizer) startToken(typ TokenType, pos int) {
	t.tokenType = typ
	t.tokenStartIndex = t.index
	t.tokenStartPos = pos
	t.tokenSpilled = false
	t.resetSpill()
}

// finishToken assembles the token's bytes (from data[tokenStartPos:end], or
// from the spill buffer if the token straddled a Feed boundary), hands it to
// the Sink, and reports the Sink's Status.
func (t *Tokenizer) finishToken(data []byte, end int) Status {
	var tokenBytes []byte
	if t.tokenSpilled {
		if end > 0 {
			t.appendSpill(data[:end])
		}
		tokenBytes = t.spill
	} else {
		tokenBytes = data[t.tokenStartPos:end]
	}

	token := Token{
		Type:            t.tokenType,
		StartIndex:      t.tokenStartIndex,
		Bytes:           tokenBytes,
		UnescapedLength: t.unescapedLength,
	}

	status := t.sink.Eat(&token)
	t.resetSpill()
	return status
}

func (t *Tokenizer) emitPunctuator(typ TokenType, data []byte, pos int) Status {
	token := Token{Type: typ, StartIndex: t.index, Bytes: data[pos : pos+1], UnescapedLength: 1}
	return t.sink.Eat(&token)
}

// consume processes one byte of input at data[pos] and reports what should
// happen next. It is the single entry point every Feed iteration calls.
func (t *Tokenizer) consume(data []byte, pos int, ch byte) stepResult {
	switch t.state {
	case stateBetweenTokens:
		return t.consumeBetweenTokens(data, pos, ch)
	case stateInKeyword:
		return t.consumeKeyword(data, pos, ch)

	case stateInString:
		return t.consumeStringChar(data, pos, ch)
	case stateInStringExpectEscape:
		return t.consumeStringEscape(ch)
	case stateInStringExpectU16Digit1, stateInStringExpectU16Digit2, stateInStringExpectU16Digit3:
		return t.consumeU16Digit(ch)
	case stateInStringExpectU16Digit4:
		return t.consumeU16Digit4(ch)
	case stateInStringMaybeLowSurrogate:
		return t.consumeMaybeLowSurrogate(data, pos, ch)
	case stateInStringExpectEscapeMaybeLowSurrogate:
		return t.consumeEscapeMaybeLowSurrogate(ch)
	case stateInStringExpectUTF8Byte2Of2:
		return t.consumeUTF8Byte2Of2(ch)
	case stateInStringExpectUTF8Byte2Of3:
		return t.consumeUTF8Intermediate(ch, stateInStringExpectUTF8Byte3Of3)
	case stateInStringExpectUTF8Byte3Of3:
		return t.consumeUTF8Byte3Of3(ch)
	case stateInStringExpectUTF8Byte2Of4:
		return t.consumeUTF8Intermediate(ch, stateInStringExpectUTF8Byte3Of4)
	case stateInStringExpectUTF8Byte3Of4:
		return t.consumeUTF8Intermediate(ch, stateInStringExpectUTF8Byte4Of4)
	case stateInStringExpectUTF8Byte4Of4:
		return t.consumeUTF8Byte4Of4(ch)

	case stateInNumberExpectInt:
		if ch == '0' {
			t.state = stateInNumberMaybeDecimalOrExp
			return dataNeeded()
		}
		if isDigit(ch) {
			t.state = stateInNumberInt
			return dataNeeded()
		}
		return t.invalidToken()

	case stateInNumberInt:
		if isDigit(ch) {
			return dataNeeded()
		}
		return t.maybeDecimalSeparatorOrExponent(data, pos, ch)

	case stateInNumberExpectFrac:
		if isDigit(ch) {
			t.state = stateInNumberFrac
			return dataNeeded()
		}
		return t.invalidToken()

	case stateInNumberFrac:
		if isDigit(ch) {
			return dataNeeded()
		}
		if ch == 'e' || ch == 'E' {
			t.state = stateInNumberExpectExp
			return dataNeeded()
		}
		return t.finishNumberOnTerminator(data, pos, ch)

	case stateInNumberExpectExp:
		if ch == '+' || ch == '-' {
			t.state = stateInNumberExpectExpDigits
			return dataNeeded()
		}
		if isDigit(ch) {
			t.state = stateInNumberExpDigits
			return dataNeeded()
		}
		return t.invalidToken()

	case stateInNumberExpectExpDigits:
		if isDigit(ch) {
			t.state = stateInNumberExpDigits
			return dataNeeded()
		}
		return t.invalidToken()

	case stateInNumberExpDigits:
		if isDigit(ch) {
			return dataNeeded()
		}
		return t.finishNumberOnTerminator(data, pos, ch)

	case stateInNumberMaybeDecimalOrExp:
		return t.maybeDecimalSeparatorOrExponent(data, pos, ch)

	default:
		panic("pjson: unreachable tokenizer state in consume")
	}
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func (t *Tokenizer) invalidToken() stepResult {
	return failure(t.reportError(StatusSyntaxError, TokenError, t.tokenStartIndex))
}

func (t *Tokenizer) consumeBetweenTokens(data []byte, pos int, ch byte) stepResult {
	switch ch {
	case '\x20', '\t', '\r', '\n':
		return dataNeeded()

	case '"':
		t.startToken(TokenString, pos)
		t.unescapedLength = 0
		t.state = stateInString
		return dataNeeded()

	case ':':
		return t.emitPunctuatorResult(TokenColon, data, pos)
	case ',':
		return t.emitPunctuatorResult(TokenComma, data, pos)
	case '[':
		return t.emitPunctuatorResult(TokenOpenBracket, data, pos)
	case ']':
		return t.emitPunctuatorResult(TokenCloseBracket, data, pos)
	case '{':
		return t.emitPunctuatorResult(TokenOpenBrace, data, pos)
	case '}':
		return t.emitPunctuatorResult(TokenCloseBrace, data, pos)

	case '-':
		t.startToken(TokenNumber, pos)
		t.state = stateInNumberExpectInt
		return dataNeeded()

	case '0':
		t.startToken(TokenNumber, pos)
		t.state = stateInNumberMaybeDecimalOrExp
		return dataNeeded()

	case 'f':
		t.startToken(TokenFalse, pos)
		t.state = stateInKeyword
		return dataNeeded()
	case 't':
		t.startToken(TokenTrue, pos)
		t.state = stateInKeyword
		return dataNeeded()
	case 'n':
		t.startToken(TokenNull, pos)
		t.state = stateInKeyword
		return dataNeeded()
	}

	if isDigit(ch) {
		t.startToken(TokenNumber, pos)
		t.state = stateInNumberInt
		return dataNeeded()
	}

	return failure(t.reportError(StatusSyntaxError, TokenError, t.index))
}

func (t *Tokenizer) emitPunctuatorResult(typ TokenType, data []byte, pos int) stepResult {
	status := t.emitPunctuator(typ, data, pos)
	if status != StatusDataNeeded {
		if status == StatusCompleted {
			return stepResult{status: StatusCompleted, consumed: true}
		}
		// The punctuator itself is the token the Sink rejected, so report the
		// error at its start rather than wherever the last lexical token began.
		t.tokenStartIndex = t.index
		return failure(t.noncompliant(status))
	}
	t.state = stateBetweenTokens
	return dataNeeded()
}

func (t *Tokenizer) consumeKeyword(data []byte, pos int, ch byte) stepResult {
	keyword := keywordLookup[t.tokenType-TokenNull]
	offset := t.index - t.tokenStartIndex

	var want byte
	if int(offset) < len(keyword) {
		want = keyword[offset]
	}

	if int(offset) < len(keyword) && ch == want {
		return dataNeeded()
	}

	if int(offset) != len(keyword) {
		return t.invalidToken()
	}

	switch ch {
	case '\x20', '\t', '\r', '\n':
		return t.finishKeywordOrNumber(data, pos, TokenNone, false)
	case ':':
		return t.finishKeywordOrNumber(data, pos, TokenColon, true)
	case ',':
		return t.finishKeywordOrNumber(data, pos, TokenComma, true)
	case '[':
		return t.finishKeywordOrNumber(data, pos, TokenOpenBracket, true)
	case ']':
		return t.finishKeywordOrNumber(data, pos, TokenCloseBracket, true)
	case '{':
		return t.finishKeywordOrNumber(data, pos, TokenOpenBrace, true)
	case '}':
		return t.finishKeywordOrNumber(data, pos, TokenCloseBrace, true)
	}

	return t.invalidToken()
}

func (t *Tokenizer) maybeDecimalSeparatorOrExponent(data []byte, pos int, ch byte) stepResult {
	switch ch {
	case '.':
		t.state = stateInNumberExpectFrac
		return dataNeeded()
	case 'e', 'E':
		t.state = stateInNumberExpectExp
		return dataNeeded()
	}

	return t.finishNumberOnTerminator(data, pos, ch)
}

func (t *Tokenizer) finishNumberOnTerminator(data []byte, pos int, ch byte) stepResult {
	switch ch {
	case '\x20', '\t', '\r', '\n':
		return t.finishKeywordOrNumber(data, pos, TokenNone, false)
	case ':':
		return t.finishKeywordOrNumber(data, pos, TokenColon, true)
	case ',':
		return t.finishKeywordOrNumber(data, pos, TokenComma, true)
	case '[':
		return t.finishKeywordOrNumber(data, pos, TokenOpenBracket, true)
	case ']':
		return t.finishKeywordOrNumber(data, pos, TokenCloseBracket, true)
	case '{':
		return t.finishKeywordOrNumber(data, pos, TokenOpenBrace, true)
	case '}':
		return t.finishKeywordOrNumber(data, pos, TokenCloseBrace, true)
	}

	return t.invalidToken()
}

// finishKeywordOrNumber finishes the in-progress keyword/number token ending
// at data[pos] (exclusive). If isPunctuator is false, ch was whitespace: the
// byte is never part of any token and is not absorbed on completion. If
// isPunctuator is true, punctuatorType names the punctuator at data[pos],
// which is emitted as its own token immediately after, in the same call.
func (t *Tokenizer) finishKeywordOrNumber(data []byte, pos int, punctuatorType TokenType, isPunctuator bool) stepResult {
	t.unescapedLength = int(t.index - t.tokenStartIndex)
	status := t.finishToken(data, pos)
	if status != StatusDataNeeded {
		if status == StatusCompleted {
			// The terminator byte (whitespace or punctuator) was never part of
			// the token just finished, so it is not consumed here; it remains
			// available as the start of the next value.
			return stepResult{status: StatusCompleted, consumed: false}
		}
		return failure(t.noncompliant(status))
	}

	if !isPunctuator {
		t.state = stateBetweenTokens
		return dataNeeded()
	}

	t.tokenType = punctuatorType
	return t.emitPunctuatorResult(punctuatorType, data, pos)
}
