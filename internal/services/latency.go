package services

import (
	"hash/fnv"
	"strconv"
	"time"
)

// replyLatency computes the synthetic reply delay for a trigger message.
//
// The delay is a stable FNV-1a hash of the trigger message ID folded into
// [min, max], so repeated enqueues for the same trigger always land on the
// same due time. That determinism is what turns the dedup upsert into a true
// idempotent operation rather than mere duplicate suppression. FNV-1a over
// the decimal ID keeps the value stable across process restarts.
func replyLatency(triggerMessageID uint, min, max time.Duration) time.Duration {
	if max < min {
		min, max = max, min
	}
	span := max - min
	if span <= 0 {
		return min
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(triggerMessageID), 10)))
	offset := time.Duration(h.Sum64() % uint64(span+1))
	return min + offset
}
