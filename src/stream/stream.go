// Package stream coalesces a child process's arbitrarily granular output
// into bounded-frequency updates. Batching affects only timing and
// granularity, never content: concatenating every flushed chunk in order
// reproduces the byte stream exactly.
package stream

import "time"

// DefaultFlushInterval is the batching window when none is configured.
const DefaultFlushInterval = 200 * time.Millisecond

// FlushFunc receives the accumulated text of one window. final is true
// exactly once, on producer disconnect, and that call is always the last;
// the timer path never reports final.
type FlushFunc func(content string, final bool)

// Batch drains chunks until the channel closes. Within each interval-long
// window it concatenates every chunk that arrives; at window expiry a
// non-empty buffer is flushed (empty windows emit nothing). When the
// channel closes, even mid-window, the buffer so far is flushed with
// final=true and Batch returns.
func Batch(chunks <-chan string, interval time.Duration, flush FlushFunc) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	var buf []byte
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
	window:
		for {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					flush(string(buf), true)
					return
				}
				buf = append(buf, chunk...)
			case <-timer.C:
				break window
			}
		}
		if len(buf) > 0 {
			flush(string(buf), false)
			buf = buf[:0]
		}
		timer.Reset(interval)
	}
}
