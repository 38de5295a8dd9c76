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

package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/erwanjouan/proc-io/internal/collector"
	"github.com/erwanjouan/proc-io/pkg/metrics"
)

// ProcessInfo represents the cumulative I/O counters of one live process.
type ProcessInfo struct {
	PID      int32
	Label    string
	Counters metrics.Counters
}

// ListProcesses returns every live process whose counters are readable,
// sorted by the cumulative value of metric (descending, then by pid).
// unreadable is the number of live processes that were skipped.
func ListProcesses(ctx context.Context, lister collector.ProcessLister, source collector.CounterSource,
	metric string,
) (infos []ProcessInfo, unreadable int, err error) {
	if err := metrics.ValidateMetric(metric); err != nil {
		return nil, 0, err
	}

	labels, err := lister.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list processes: %w", err)
	}

	infos = make([]ProcessInfo, 0, len(labels))
	for pid, label := range labels {
		counters, err := source.Read(pid)
		if err != nil {
			unreadable++
			continue
		}
		infos = append(infos, ProcessInfo{PID: pid, Label: label, Counters: counters})
	}

	sort.Slice(infos, func(i, j int) bool {
		a, b := infos[i].Counters[metric], infos[j].Counters[metric]
		if a != b {
			return a > b
		}
		return infos[i].PID < infos[j].PID
	})

	return infos, unreadable, nil
}

// FormatProcessesTable formats cumulative process counters as a table.
func FormatProcessesTable(infos []ProcessInfo, metric string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nProcess I/O Counters (since process start, by %s):\n", metric))
	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-8s %-12s %-12s %-12s %-12s %s\n", "PID", "RCHAR", "WCHAR", "READ", "WRITE", "COMMAND"))
	sb.WriteString(strings.Repeat("-", 100))
	sb.WriteString("\n")

	for _, p := range infos {
		sb.WriteString(fmt.Sprintf("%-8d %-12s %-12s %-12s %-12s %s\n",
			p.PID,
			formatBytes(p.Counters[metrics.RChar]),
			formatBytes(p.Counters[metrics.WChar]),
			formatBytes(p.Counters[metrics.ReadBytes]),
			formatBytes(p.Counters[metrics.WriteBytes]),
			truncate(p.Label, 45),
		))
	}

	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")

	return sb.String()
}

// formatBytes converts bytes to human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
