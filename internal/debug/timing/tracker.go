package timing

import (
	"context"
	"sort"
	"sync"
	"time"
)

type timingKey struct{}

// EventPublisher receives a notification for every finished operation.
type EventPublisher interface {
	Publish(event Event)
}

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Stage is the accumulated time of one operation.
type Stage struct {
	Operation string
	Count     int
	Total     time.Duration
}

type Tracker struct {
	timings  map[string][]time.Duration
	order    []string
	mu       sync.RWMutex
	eventBus EventPublisher
	enabled  bool
}

func NewTracker(eventBus EventPublisher) *Tracker {
	return &Tracker{
		timings:  make(map[string][]time.Duration),
		eventBus: eventBus,
		enabled:  true,
	}
}

// StartTiming returns a child of ctx that remembers when operation began.
func (tt *Tracker) StartTiming(ctx context.Context, operation string) context.Context {
	if !tt.isEnabled() {
		return ctx
	}

	return context.WithValue(ctx, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: time.Now(),
	})
}

// EndTiming records the operation started on ctx and returns its duration.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	if !tt.isEnabled() {
		return 0
	}

	timingInfo, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	end := time.Now()
	duration := end.Sub(timingInfo.StartTime)

	tt.mu.Lock()
	if _, seen := tt.timings[timingInfo.Operation]; !seen {
		tt.order = append(tt.order, timingInfo.Operation)
	}
	tt.timings[timingInfo.Operation] = append(tt.timings[timingInfo.Operation], duration)
	tt.mu.Unlock()

	if tt.eventBus != nil {
		tt.eventBus.Publish(Event{
			Type:      "timing_completed",
			Timestamp: end,
			Data: map[string]interface{}{
				"operation":   timingInfo.Operation,
				"duration_ms": float64(duration.Microseconds()) / 1000,
			},
		})
	}

	return duration
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

// Stages returns every recorded operation in first-seen order.
func (tt *Tracker) Stages() []Stage {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	stages := make([]Stage, 0, len(tt.order))
	for _, op := range tt.order {
		s := Stage{Operation: op, Count: len(tt.timings[op])}
		for _, d := range tt.timings[op] {
			s.Total += d
		}
		stages = append(stages, s)
	}
	return stages
}

// Slowest returns the n operations with the largest total time.
func (tt *Tracker) Slowest(n int) []Stage {
	stages := tt.Stages()
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Total > stages[j].Total
	})
	if n < len(stages) {
		stages = stages[:n]
	}
	return stages
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
		tt.order = nil
		return
	}

	delete(tt.timings, operation)
	for i, op := range tt.order {
		if op == operation {
			tt.order = append(tt.order[:i], tt.order[i+1:]...)
			break
		}
	}
}
