/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package metrics

import (
	"fmt"
	"time"
)

// Decimal rate units, largest first.
const (
	giga = 1_000_000_000
	mega = 1_000_000
	kilo = 1_000
)

// CalculateDelta returns current - prev.
// Counters are expected to be monotonic, but a reset yields a negative
// delta which is passed through unmodified.
func CalculateDelta(prev, current int64) int64 {
	return current - prev
}

// CalculateRate converts a per-interval delta into a per-second rate.
// Formula: delta / interval(s)
func CalculateRate(delta int64, interval time.Duration) float64 {
	seconds := interval.Seconds()
	if seconds <= 0 {
		return 0.0
	}
	return float64(delta) / seconds
}

// FormatRate renders a delta as a human readable rate with two decimals.
// The largest unit the rate strictly exceeds is chosen; a rate of exactly
// 1000 B/s stays in B/s.
func FormatRate(delta int64, interval time.Duration) string {
	rate := CalculateRate(delta, interval)

	switch {
	case rate > giga:
		return fmt.Sprintf("%.2f GB/s", rate/giga)
	case rate > mega:
		return fmt.Sprintf("%.2f MB/s", rate/mega)
	case rate > kilo:
		return fmt.Sprintf("%.2f kB/s", rate/kilo)
	default:
		return fmt.Sprintf("%.2f B/s", rate)
	}
}
