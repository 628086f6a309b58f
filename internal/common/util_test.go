package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	sentinels := []error{
		ErrorNotFound,
		ErrorInternal,
		ErrorDataMissing,
		ErrorInvalidPayload,
		ErrorIntegrityMismatch,
		ErrorUnsupportedContent,
		ErrorRateLimited,
	}
	for _, s := range sentinels {
		wrapped := fmt.Errorf("layer: %w", s)
		if !errors.Is(wrapped, s) {
			t.Fatalf("errors.Is failed for %v", s)
		}
		for _, other := range sentinels {
			if other != s && errors.Is(wrapped, other) {
				t.Fatalf("%v unexpectedly matches %v", s, other)
			}
		}
	}
}
