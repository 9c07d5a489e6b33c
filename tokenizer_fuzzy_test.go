package pjson

import (
	"math/rand"
	"testing"
)

// feedInChunks replays input through a fresh Tokenizer broken into chunks
// whose sizes come from next(), returning the same recordedToken slice and
// final Status TestTokenizerTokenStream uses for whole-input feeds.
func feedInChunks(t *testing.T, input []byte, next func() int) ([]recordedToken, Status) {
	t.Helper()

	sink := &recordingSink{}
	var tok Tokenizer
	tok.Init(sink)

	pos := 0
	for pos < len(input) {
		size := next()
		if size <= 0 {
			size = 1
		}
		end := pos + size
		if end > len(input) {
			end = len(input)
		}

		n, status := tok.Feed(input[pos:end])
		pos += n
		if status != StatusDataNeeded {
			return sink.tokens, status
		}
	}
	return sink.tokens, tok.Close()
}

// TestTokenizerChunkingInvariant feeds the same document as one chunk, as
// 1-byte chunks, and as several pseudo-random partitions, and checks that
// the token stream and final status never depend on how the bytes arrived.
// This mirrors test_pjson_feed_fuzzy.c's random-chunk-size feeding, minus
// its large fixture files; chunk sizes here are generated, not read off disk.
func TestTokenizerChunkingInvariant(t *testing.T) {
	input := []byte(`{"users": [{"id": 1, "name": "Ada", "tags": ["admin", "staff"]}, ` +
		`{"id": 2, "name": "Grace Hopper", "tags": []}], "count": 2, "ok": true, "extra": null}`)

	whole, wantStatus := feedInChunks(t, input, func() int { return len(input) })
	if wantStatus != StatusCompleted {
		t.Fatalf("whole-input feed: expected StatusCompleted, got %d", wantStatus)
	}

	oneByte, status := feedInChunks(t, input, func() int { return 1 })
	assertSameTokenStream(t, "1-byte chunks", whole, oneByte, wantStatus, status)

	rng := rand.New(rand.NewSource(20260730))
	for trial := 0; trial < 20; trial++ {
		got, status := feedInChunks(t, input, func() int { return rng.Intn(7) + 1 })
		assertSameTokenStream(t, "random chunks", whole, got, wantStatus, status)
	}
}

func assertSameTokenStream(t *testing.T, label string, want, got []recordedToken, wantStatus, status Status) {
	t.Helper()

	if status != wantStatus {
		t.Fatalf("%s: expected status %d, got %d", label, wantStatus, status)
	}
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d tokens, got %d", label, len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: token %d: expected %+v, got %+v", label, i, want[i], got[i])
		}
	}
}
