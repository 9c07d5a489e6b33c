package pjson

import (
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// DecimalPoint is the byte ParseFloat32 and ParseFloat64 treat as the
// decimal separator in a number token before handing it to strconv. The
// default, '.', is what every valid JSON number token already uses, so this
// only matters for a caller that has reason to expect pre-localized input;
// unlike the C original, Go's strconv is never sensitive to process locale,
// so leaving this at its default never risks the original's locale leakage.
var DecimalPoint byte = '.'

// ParseString decodes a complete string token (including its surrounding
// quotes, as produced by a Tokenizer) into its UTF-8 value. replaceLoneSurrogates
// selects what happens to a \uXXXX escape whose code point is a UTF-16
// surrogate with no valid partner: true replaces it with U+FFFD, false
// rejects the token.
func ParseString(tokenBytes []byte, replaceLoneSurrogates bool) (string, bool) {
	if len(tokenBytes) < 2 || tokenBytes[0] != '"' || tokenBytes[len(tokenBytes)-1] != '"' {
		return "", false
	}
	body := tokenBytes[1 : len(tokenBytes)-1]

	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			out = append(out, ch)
			continue
		}

		i++
		if i >= len(body) {
			return "", false
		}

		switch body[i] {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case '/':
			out = append(out, '/')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')

		case 'u':
			if i+4 >= len(body) {
				return "", false
			}
			cp, ok := parseHex4(body[i+1 : i+5])
			if !ok {
				return "", false
			}
			i += 4

			if isHighSurrogate(cp) {
				if i+6 < len(body) && body[i+1] == '\\' && body[i+2] == 'u' {
					cp2, ok2 := parseHex4(body[i+3 : i+7])
					if !ok2 {
						return "", false
					}
					if isLowSurrogate(cp2) {
						i += 6
						r := utf16.DecodeRune(rune(cp), rune(cp2))
						out = appendRune(out, r)
						continue
					}
					if !replaceLoneSurrogates {
						return "", false
					}
				} else if !replaceLoneSurrogates {
					return "", false
				}
			} else if isLowSurrogate(cp) && !replaceLoneSurrogates {
				return "", false
			}

			out = appendRune(out, rune(cp))

		default:
			return "", false
		}
	}

	return string(out), true
}

func appendRune(out []byte, r rune) []byte {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r) // surrogates and out-of-range runes become U+FFFD
	return append(out, buf[:n]...)
}

func parseHex4(b []byte) (uint16, bool) {
	var v uint16
	for _, ch := range b {
		if !isHexDigit(ch) {
			return 0, false
		}
		v = v<<4 | hexDigitValue(ch)
	}
	return v, true
}

func parseUint32Core(b []byte) (uint32, bool) {
	var value uint32
	for _, ch := range b {
		if !isDigit(ch) {
			return 0, false
		}
		d := uint32(ch - '0')
		switch {
		case value <= math.MaxUint32/10-1:
			value = value*10 + d
		case value <= math.MaxUint32/10:
			prev := value
			value = value*10 + d
			if value < prev {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return value, true
}

func parseUint64Core(b []byte) (uint64, bool) {
	var value uint64
	for _, ch := range b {
		if !isDigit(ch) {
			return 0, false
		}
		d := uint64(ch - '0')
		switch {
		case value <= math.MaxUint64/10-1:
			value = value*10 + d
		case value <= math.MaxUint64/10:
			prev := value
			value = value*10 + d
			if value < prev {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return value, true
}

// ParseUint32 parses a NUMBER token with no sign and no fractional or
// exponent part as an unsigned 32-bit integer.
func ParseUint32(tokenBytes []byte) (uint32, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}
	return parseUint32Core(tokenBytes)
}

// ParseInt32 parses a NUMBER token with no fractional or exponent part as a
// signed 32-bit integer.
func ParseInt32(tokenBytes []byte) (int32, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}

	negative := tokenBytes[0] == '-'
	start := 0
	if negative {
		start = 1
	}

	tmp, ok := parseUint32Core(tokenBytes[start:])
	if !ok {
		return 0, false
	}

	switch {
	case tmp <= math.MaxInt32:
		if negative {
			return -int32(tmp), true
		}
		return int32(tmp), true
	case negative && tmp == uint32(math.MaxInt32)+1:
		return math.MinInt32, true
	default:
		return 0, false
	}
}

// ParseUint64 parses a NUMBER token with no sign and no fractional or
// exponent part as an unsigned 64-bit integer.
func ParseUint64(tokenBytes []byte) (uint64, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}
	return parseUint64Core(tokenBytes)
}

// ParseInt64 parses a NUMBER token with no fractional or exponent part as a
// signed 64-bit integer.
func ParseInt64(tokenBytes []byte) (int64, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}

	negative := tokenBytes[0] == '-'
	start := 0
	if negative {
		start = 1
	}

	tmp, ok := parseUint64Core(tokenBytes[start:])
	if !ok {
		return 0, false
	}

	switch {
	case tmp <= math.MaxInt64:
		if negative {
			return -int64(tmp), true
		}
		return int64(tmp), true
	case negative && tmp == uint64(math.MaxInt64)+1:
		return math.MinInt64, true
	default:
		return 0, false
	}
}

func normalizeDecimalPoint(tokenBytes []byte) string {
	if DecimalPoint == '.' {
		return string(tokenBytes)
	}

	buf := make([]byte, len(tokenBytes))
	copy(buf, tokenBytes)
	for i, ch := range buf {
		if ch == DecimalPoint {
			buf[i] = '.'
			break
		}
	}
	return string(buf)
}

// ParseFloat32 parses a NUMBER token as a float32.
func ParseFloat32(tokenBytes []byte) (float32, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(normalizeDecimalPoint(tokenBytes), 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}

// ParseFloat64 parses a NUMBER token as a float64.
func ParseFloat64(tokenBytes []byte) (float64, bool) {
	if len(tokenBytes) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(normalizeDecimalPoint(tokenBytes), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
