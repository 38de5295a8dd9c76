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
	"sort"
	"time"
)

// Store holds one TrackedProcess per observed process id.
// It is not safe for concurrent use; callers serialize all mutations.
type Store struct {
	entries map[int32]*TrackedProcess
	nextSeq uint64
	cycle   uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[int32]*TrackedProcess),
	}
}

// BeginCycle marks the start of a sampling cycle. Entries that are not
// observed before the next BeginCycle are left out of ranking.
func (s *Store) BeginCycle() {
	s.cycle++
}

// Observe records a fresh counter sample for pid.
// The first sample of a pid only establishes a baseline; every later sample
// shifts Current into Previous and recomputes Delta for the keys present in both.
func (s *Store) Observe(pid int32, at time.Time, counters Counters) {
	p, exists := s.entries[pid]
	if !exists {
		s.entries[pid] = &TrackedProcess{
			PID:            pid,
			LastSampleTime: at,
			Current:        counters.Clone(),
			seq:            s.nextSeq,
			cycle:          s.cycle,
		}
		s.nextSeq++
		return
	}

	p.Previous = p.Current
	p.Current = counters.Clone()
	p.LastSampleTime = at
	p.cycle = s.cycle

	delta := make(Counters, len(p.Current))
	for name, cur := range p.Current {
		prev, ok := p.Previous[name]
		if !ok {
			continue
		}
		delta[name] = CalculateDelta(prev, cur)
	}
	p.Delta = delta
}

// Reap drops every entry whose pid is not in live and returns the removed pids in ascending order.
func (s *Store) Reap(live map[int32]struct{}) []int32 {
	var removed []int32
	for pid := range s.entries {
		if _, ok := live[pid]; ok {
			continue
		}
		delete(s.entries, pid)
		removed = append(removed, pid)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

// Get returns the entry for pid.
func (s *Store) Get(pid int32) (*TrackedProcess, bool) {
	p, ok := s.entries[pid]
	return p, ok
}

// Len returns the number of tracked processes.
func (s *Store) Len() int {
	return len(s.entries)
}

// PIDs returns the tracked pids in ascending order.
func (s *Store) PIDs() []int32 {
	pids := make([]int32, 0, len(s.entries))
	for pid := range s.entries {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// rankable returns the entries with a delta observed in the current cycle, in discovery order.
func (s *Store) rankable() []*TrackedProcess {
	out := make([]*TrackedProcess, 0, len(s.entries))
	for _, p := range s.entries {
		if p.HasDelta() && p.cycle == s.cycle {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
