package extract

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	model      string
	durationMs int64
	failure    Kind
}

// StatsSnapshot is a point-in-time aggregate of backend calls for one model.
type StatsSnapshot struct {
	Count    int          `json:"count"`
	Failures map[Kind]int `json:"failures"`
	MinMs    int64        `json:"min_ms"`
	MaxMs    int64        `json:"max_ms"`
	AvgMs    float64      `json:"avg_ms"`
	P50Ms    float64      `json:"p50_ms"`
	P95Ms    float64      `json:"p95_ms"`
	P99Ms    float64      `json:"p99_ms"`
}

// LLMStats tracks recent backend call latencies per model within a rolling window.
type LLMStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one call. failure is empty for successful calls.
func (s *LLMStats) Record(model string, durationMs int64, failure Kind) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		model:      model,
		durationMs: durationMs,
		failure:    failure,
	})
}

// Snapshot aggregates the window per model.
func (s *LLMStats) Snapshot() map[string]StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	byModel := make(map[string][]sample)
	for _, sm := range s.samples {
		byModel[sm.model] = append(byModel[sm.model], sm)
	}

	out := make(map[string]StatsSnapshot, len(byModel))
	for model, samples := range byModel {
		out[model] = aggregate(samples)
	}
	return out
}

func aggregate(samples []sample) StatsSnapshot {
	snap := StatsSnapshot{Failures: map[Kind]int{}}
	if len(samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(samples))
	var sum int64
	for _, sm := range samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failure != "" {
			snap.Failures[sm.failure]++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
