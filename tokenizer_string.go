package pjson

import "unicode/utf16"

const utf8InvalidCodepointReplacement = 0xFFFD

// consumeStringChar is the main in-string dispatch: it reads an ordinary
// byte of a string token, a closing quote, the start of an escape, or the
// lead byte of a multi-byte UTF-8 sequence.
func (t *Tokenizer) consumeStringChar(data []byte, pos int, ch byte) stepResult {
	if ch&0x80 == 0 {
		switch {
		case ch == '"':
			status := t.finishToken(data, pos+1)
			if status != StatusDataNeeded {
				if status == StatusCompleted {
					return stepResult{status: StatusCompleted, consumed: true}
				}
				return failure(t.noncompliant(status))
			}
			t.state = stateBetweenTokens
			return dataNeeded()

		case ch == '\\':
			t.state = stateInStringExpectEscape
			return dataNeeded()

		case ch >= 0x20:
			t.unescapedLength++
			return dataNeeded()

		default:
			return t.invalidToken()
		}
	}

	switch {
	case ch&0xE0 == 0xC0:
		t.state = stateInStringExpectUTF8Byte2Of2
	case ch&0xF0 == 0xE0:
		t.state = stateInStringExpectUTF8Byte2Of3
	case ch&0xF8 == 0xF0:
		t.state = stateInStringExpectUTF8Byte2Of4
	default:
		return failure(t.reportError(StatusUTF8Error, TokenError, t.index))
	}

	t.utf8Seq[0] = ch
	return dataNeeded()
}

func (t *Tokenizer) consumeStringEscape(ch byte) stepResult {
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		t.unescapedLength++
		t.state = stateInString
		return dataNeeded()
	case 'u':
		t.state = stateInStringExpectU16Digit1
		return dataNeeded()
	}

	return t.invalidToken()
}

func hexDigitValue(ch byte) uint16 {
	switch {
	case ch <= '9':
		return uint16(ch - '0')
	case ch <= 'F':
		return uint16(ch - ('A' - 10))
	default:
		return uint16(ch - ('a' - 10))
	}
}

func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('A' <= ch && ch <= 'F') || ('a' <= ch && ch <= 'f')
}

func (t *Tokenizer) consumeU16Digit(ch byte) stepResult {
	if !isHexDigit(ch) {
		return t.invalidToken()
	}

	t.surrogatePair[0] = t.surrogatePair[0]<<4 | hexDigitValue(ch)
	t.state++ // digit 1->2->3, mirroring the C state layout
	return dataNeeded()
}

func isHighSurrogate(v uint16) bool { return 0xD800 <= v && v <= 0xDBFF }
func isLowSurrogate(v uint16) bool  { return 0xDC00 <= v && v <= 0xDFFF }

func utf8ByteSize(cp rune) int {
	switch {
	case cp < 0x80:
		return 1
	case cp < 0x800:
		return 2
	case cp < 0x10000:
		return 3
	default:
		return 4
	}
}

func (t *Tokenizer) consumeU16Digit4(ch byte) stepResult {
	if !isHexDigit(ch) {
		return t.invalidToken()
	}

	tmp := t.surrogatePair[0]<<4 | hexDigitValue(ch)

	switch {
	case isHighSurrogate(tmp):
		if t.surrogatePair[1] != 0 {
			// Two consecutive high surrogates: invalid encoding, but JSON syntax
			// allows it; the first one is replaced with U+FFFD.
			t.unescapedLength += utf8ByteSize(utf8InvalidCodepointReplacement)
		}
		t.surrogatePair[0] = 0
		t.surrogatePair[1] = tmp
		t.state = stateInStringMaybeLowSurrogate
		return dataNeeded()

	case t.surrogatePair[1] != 0:
		if isLowSurrogate(tmp) {
			r := utf16.DecodeRune(rune(t.surrogatePair[1]), rune(tmp))
			t.unescapedLength += utf8ByteSize(r)
		} else {
			t.unescapedLength += utf8ByteSize(utf8InvalidCodepointReplacement)
			t.unescapedLength += utf8ByteSize(rune(tmp))
		}

	default:
		if isLowSurrogate(tmp) {
			t.unescapedLength += utf8ByteSize(utf8InvalidCodepointReplacement)
		} else {
			t.unescapedLength += utf8ByteSize(rune(tmp))
		}
	}

	t.surrogatePair[0], t.surrogatePair[1] = 0, 0
	t.state = stateInString
	return dataNeeded()
}

func (t *Tokenizer) consumeMaybeLowSurrogate(data []byte, pos int, ch byte) stepResult {
	if ch == '\\' {
		t.state = stateInStringExpectEscapeMaybeLowSurrogate
		return dataNeeded()
	}

	t.unescapedLength += utf8ByteSize(utf8InvalidCodepointReplacement)
	t.surrogatePair[0], t.surrogatePair[1] = 0, 0
	t.state = stateInString
	return t.consumeStringChar(data, pos, ch)
}

func (t *Tokenizer) consumeEscapeMaybeLowSurrogate(ch byte) stepResult {
	if ch == 'u' {
		t.state = stateInStringExpectU16Digit1
		return dataNeeded()
	}

	t.unescapedLength += utf8ByteSize(utf8InvalidCodepointReplacement)
	t.surrogatePair[0], t.surrogatePair[1] = 0, 0
	t.state = stateInStringExpectEscape
	return t.consumeStringEscape(ch)
}

// UTF-8 continuation-byte validation, ported byte-for-byte from the
// reference decoder in json.org's JSON_checker/utf8_decode.c via the
// original C tokenizer: each continuation byte must have the 0b10xxxxxx
// pattern, and the assembled code point must fall in the range that byte
// count is allowed to encode (overlong encodings and surrogate code points
// reached through \uXXXX-free UTF-8 are both rejected).

func utf8ContPayload(ch byte) int16 {
	if ch&0xC0 == 0x80 {
		return int16(ch & 0x3F)
	}
	return -1
}

func (t *Tokenizer) consumeUTF8Byte2Of2(ch byte) stepResult {
	payload := utf8ContPayload(ch)
	if payload >= 0 {
		r := (rune(t.utf8Seq[0]&0x1F) << 6) | rune(payload)
		if r >= 0x80 {
			t.unescapedLength += 2
			t.state = stateInString
			return dataNeeded()
		}
	}

	return failure(t.reportError(StatusUTF8Error, TokenError, t.index-1))
}

// consumeUTF8Intermediate stores an interior continuation byte of a 3- or
// 4-byte sequence and advances to the next expected byte's state.
func (t *Tokenizer) consumeUTF8Intermediate(ch byte, next tokenizerState) stepResult {
	switch t.state {
	case stateInStringExpectUTF8Byte2Of3, stateInStringExpectUTF8Byte2Of4:
		t.utf8Seq[1] = ch
	case stateInStringExpectUTF8Byte3Of4:
		t.utf8Seq[2] = ch
	}
	t.state = next
	return dataNeeded()
}

func (t *Tokenizer) consumeUTF8Byte3Of3(ch byte) stepResult {
	ch1 := utf8ContPayload(t.utf8Seq[1])
	ch2 := utf8ContPayload(ch)

	if ch1 >= 0 && ch2 >= 0 {
		r := (rune(t.utf8Seq[0]&0x0F) << 12) | (rune(ch1) << 6) | rune(ch2)
		if r >= 0x800 && (r < 0xD800 || r > 0xDFFF) {
			t.unescapedLength += 3
			t.state = stateInString
			return dataNeeded()
		}
	}

	return failure(t.reportError(StatusUTF8Error, TokenError, t.index-2))
}

func (t *Tokenizer) consumeUTF8Byte4Of4(ch byte) stepResult {
	ch1 := utf8ContPayload(t.utf8Seq[1])
	ch2 := utf8ContPayload(t.utf8Seq[2])
	ch3 := utf8ContPayload(ch)

	if ch1 >= 0 && ch2 >= 0 && ch3 >= 0 {
		r := (rune(t.utf8Seq[0]&0x07) << 18) | (rune(ch1) << 12) | (rune(ch2) << 6) | rune(ch3)
		if r >= 0x10000 && r <= 0x10FFFF {
			t.unescapedLength += 4
			t.state = stateInString
			return dataNeeded()
		}
	}

	return failure(t.reportError(StatusUTF8Error, TokenError, t.index-3))
}
