package statsparser

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/adams85/pjson"
)

// buildDocument generates an array of n objects, each shaped identically:
// 12 scalar properties plus a "nested" object one level deeper, which in
// turn holds one empty "deep" object one level deeper still. That puts the
// outermost array at depth 1, each object at depth 2, "nested" at depth 3
// and "deep" at depth 4. Each object contributes 13 property names at its
// own level (12 scalars + "nested") plus 1 more from "nested" itself (its
// "deep" key) for 14 total, chosen so the totals are exact by construction
// rather than needing to be measured afterward.
func buildDocument(n int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b,
			`{"id":%d,"score":%d,"name":"n%d","email":"e%d@x","active":true,`+
				`"verified":false,"bio":"b%d","note":null,"rank":%d,"tag":"t%d",`+
				`"flag":true,"extra":"x%d","nested":{"deep":{}}}`,
			i, i, i, i, i, i, i, i)
	}
	b.WriteByte(']')
	return b.String()
}

// feedRandomChunks replays data through tok using pseudo-random chunk sizes
// in [minSize, maxSize], the same shape test_pjson_feed_fuzzy.c's
// parse_file_using_random_size_chunks uses (there drawn from a real file in
// 4..127-byte reads); the seed keeps this reproducible without fixture data.
func feedRandomChunks(tok *pjson.Tokenizer, data []byte, minSize, maxSize int, seed int64) pjson.Status {
	rng := rand.New(rand.NewSource(seed))
	pos := 0
	for pos < len(data) {
		size := minSize + rng.Intn(maxSize-minSize+1)
		end := pos + size
		if end > len(data) {
			end = len(data)
		}
		n, status := tok.Feed(data[pos:end])
		pos += n
		if status != pjson.StatusDataNeeded {
			return status
		}
	}
	return tok.Close()
}

// TestStatsParserDeepArrayOfObjects matches spec's "array of 1550 objects
// nested 4 deep, fed in random chunks of 4..127 bytes" scenario: the
// document is generated rather than read from a fixture, with its shape
// chosen so the expected max_depth/max_array_item_count/key_count follow
// directly from n and the per-object property count.
func TestStatsParserDeepArrayOfObjects(t *testing.T) {
	const n = 1550
	const keysPerObject = 14 // 12 scalars + "nested" + "deep"

	doc := buildDocument(n)

	stats := New(false)
	var tok pjson.Tokenizer
	tok.Init(stats)

	status := feedRandomChunks(&tok, []byte(doc), 4, 127, 20260730)
	if status != pjson.StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %d", status)
	}

	if stats.ToplevelType != pjson.TokenCloseBracket {
		t.Fatalf("expected top-level type CloseBracket, got %v", stats.ToplevelType)
	}
	if stats.MaxDepth != 4 {
		t.Fatalf("expected max depth 4, got %d", stats.MaxDepth)
	}
	if stats.MaxArrayItemCount != n {
		t.Fatalf("expected max array item count %d, got %d", n, stats.MaxArrayItemCount)
	}
	if want := 13; stats.MaxObjectPropertyCount != want {
		t.Fatalf("expected max object property count %d, got %d", want, stats.MaxObjectPropertyCount)
	}
	if want := n * keysPerObject; stats.KeyCount != want {
		t.Fatalf("expected key count %d, got %d", want, stats.KeyCount)
	}

	wantNumbers := n * 3 // id, score, rank
	wantStrings := n * 5 // name, email, bio, tag, extra
	wantTrue := n * 2    // active, flag
	wantFalse := n       // verified
	wantNull := n        // note
	wantObjects := n * 3 // the object itself, "nested", "deep"
	wantArrays := 1      // just the outer array

	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenNumber)]; got != wantNumbers {
		t.Errorf("expected %d numbers, got %d", wantNumbers, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenString)]; got != wantStrings {
		t.Errorf("expected %d strings, got %d", wantStrings, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenTrue)]; got != wantTrue {
		t.Errorf("expected %d true, got %d", wantTrue, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenFalse)]; got != wantFalse {
		t.Errorf("expected %d false, got %d", wantFalse, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenNull)]; got != wantNull {
		t.Errorf("expected %d null, got %d", wantNull, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenCloseBrace)]; got != wantObjects {
		t.Errorf("expected %d objects, got %d", wantObjects, got)
	}
	if got := stats.DatatypeCounts[OccurrenceIndex(pjson.TokenCloseBracket)]; got != wantArrays {
		t.Errorf("expected %d arrays, got %d", wantArrays, got)
	}
}

func TestStatsParserScalarToplevel(t *testing.T) {
	stats := New(false)
	var tok pjson.Tokenizer
	tok.Init(stats)

	if _, status := tok.Feed([]byte(`42`)); status != pjson.StatusDataNeeded {
		t.Fatalf("expected StatusDataNeeded, got %d", status)
	}
	if status := tok.Close(); status != pjson.StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %d", status)
	}

	if stats.ToplevelType != pjson.TokenNumber {
		t.Fatalf("expected top-level type Number, got %v", stats.ToplevelType)
	}
	if stats.MaxDepth != 0 {
		t.Fatalf("expected max depth 0 for a scalar top-level value, got %d", stats.MaxDepth)
	}
	if stats.KeyCount != 0 {
		t.Fatalf("expected key count 0, got %d", stats.KeyCount)
	}
}

func TestStatsParserResetBetweenValues(t *testing.T) {
	stats := New(true)
	var tok pjson.Tokenizer
	tok.Init(stats)

	input := []byte(`[1, 2, 3]{"a": 1}`)
	n, status := tok.Feed(input)
	if status != pjson.StatusCompleted {
		t.Fatalf("parse 1: expected StatusCompleted, got %d", status)
	}
	if stats.ToplevelType != pjson.TokenCloseBracket || stats.MaxArrayItemCount != 3 {
		t.Fatalf("parse 1: expected an array of 3 items, got type=%v count=%d", stats.ToplevelType, stats.MaxArrayItemCount)
	}

	stats.Reset(true)
	if _, status := tok.Feed(input[n:]); status != pjson.StatusCompleted {
		t.Fatalf("parse 2: expected StatusCompleted, got %d", status)
	}
	if status := tok.Close(); status != pjson.StatusCompleted {
		t.Fatalf("parse 2: expected StatusCompleted, got %d", status)
	}
	if stats.ToplevelType != pjson.TokenCloseBrace || stats.KeyCount != 1 {
		t.Fatalf("parse 2: expected an object with 1 key, got type=%v keys=%d", stats.ToplevelType, stats.KeyCount)
	}
}
