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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDelta(t *testing.T) {
	tests := []struct {
		name     string
		prev     int64
		current  int64
		expected int64
	}{
		{name: "Increase", prev: 1000, current: 3000, expected: 2000},
		{name: "No change", prev: 42, current: 42, expected: 0},
		{name: "Counter reset (negative delta passed through)", prev: 5000, current: 100, expected: -4900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateDelta(tt.prev, tt.current))
		})
	}
}

func TestCalculateRate(t *testing.T) {
	tests := []struct {
		name     string
		delta    int64
		interval time.Duration
		expected float64
	}{
		{name: "Ten second interval", delta: 500, interval: 10 * time.Second, expected: 50.0},
		{name: "Sub-second interval", delta: 500, interval: 500 * time.Millisecond, expected: 1000.0},
		{name: "Zero interval", delta: 500, interval: 0, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRate(tt.delta, tt.interval)
			if math.Abs(got-tt.expected) > 0.00001 {
				t.Errorf("CalculateRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	interval := 10 * time.Second
	tests := []struct {
		name     string
		delta    int64
		expected string
	}{
		{name: "Bytes", delta: 500, expected: "50.00 B/s"},
		{name: "Kilobytes", delta: 15_000, expected: "1.50 kB/s"},
		{name: "Megabytes", delta: 25_000_000, expected: "2.50 MB/s"},
		{name: "Gigabytes", delta: 12_000_000_000, expected: "1.20 GB/s"},
		{name: "Exactly 1000 stays in bytes", delta: 10_000, expected: "1000.00 B/s"},
		{name: "Exactly 1e6 stays in kilobytes", delta: 10_000_000, expected: "1000.00 kB/s"},
		{name: "Zero", delta: 0, expected: "0.00 B/s"},
		{name: "Negative", delta: -500, expected: "-50.00 B/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRate(tt.delta, interval))
		})
	}
}

func TestValidateMetric(t *testing.T) {
	for _, name := range CounterNames {
		assert.NoError(t, ValidateMetric(name), name)
	}

	err := ValidateMetric("read_byte")
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.Contains(t, err.Error(), "read_byte")
}
