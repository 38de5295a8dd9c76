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
	"sort"
	"time"
)

// Rank returns at most topN processes of the current cycle that have a delta,
// sorted by Delta[metric] descending. Equal values keep discovery order.
func Rank(s *Store, metric string, topN int) ([]*TrackedProcess, error) {
	if err := ValidateMetric(metric); err != nil {
		return nil, err
	}

	candidates := s.rankable()
	if len(candidates) == 0 || topN <= 0 {
		return []*TrackedProcess{}, nil
	}

	for _, p := range candidates {
		if _, ok := p.Delta[metric]; !ok {
			return nil, fmt.Errorf("%w: pid %d has no %q delta", ErrMissingMetric, p.PID, metric)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Delta[metric] > candidates[j].Delta[metric]
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

// BuildReport turns ranked processes into a Report, attaching each label
// from labels. Processes without a label (gone since the listing) are left
// out and returned as skipped.
func BuildReport(ranked []*TrackedProcess, labels map[int32]string, at time.Time,
	metric string, topN int, interval time.Duration,
) (report *Report, skipped []int32) {
	report = &Report{
		Timestamp: at,
		Metric:    metric,
		TopN:      topN,
		Interval:  interval,
		Entries:   make([]Entry, 0, len(ranked)),
	}

	for _, p := range ranked {
		label, ok := labels[p.PID]
		if !ok {
			skipped = append(skipped, p.PID)
			continue
		}
		report.Entries = append(report.Entries, Entry{
			PID:   p.PID,
			Delta: p.Delta.Clone(),
			Label: label,
		})
	}

	return report, skipped
}
