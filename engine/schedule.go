package engine

import (
	"fmt"
	"sync"
)

// Stage names one ordered step of a Schedule
type Stage string

// Presentation stages, run in this order by App.Update
const (
	StageFirst      Stage = "first"
	StagePreUpdate  Stage = "pre_update"
	StageUpdate     Stage = "update"
	StagePostUpdate Stage = "post_update"
	StageLast       Stage = "last"
	StageRender     Stage = "render"
)

// System is an interface that all systems must implement
type System interface {
	Update(w *World)
	Priority() int // Lower values run first within a stage
}

type funcSystem struct {
	fn       func(*World)
	priority int
}

func (f funcSystem) Update(w *World) { f.fn(w) }
func (f funcSystem) Priority() int   { return f.priority }

// Func adapts a function into a System with priority 0
func Func(fn func(*World)) System {
	return funcSystem{fn: fn}
}

// FuncPriority adapts a function into a System with an explicit priority
func FuncPriority(priority int, fn func(*World)) System {
	return funcSystem{fn: fn, priority: priority}
}

// Schedule is an ordered list of stages, each holding priority-sorted systems
type Schedule struct {
	mu      sync.RWMutex
	order   []Stage
	systems map[Stage][]System
}

// NewSchedule creates a schedule with the given stage order
func NewSchedule(stages ...Stage) *Schedule {
	s := &Schedule{
		systems: make(map[Stage][]System),
	}
	for _, st := range stages {
		s.AddStage(st)
	}
	return s
}

// AddStage appends a stage at the end of the order, no-op if it exists
func (s *Schedule) AddStage(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.systems[stage]; ok {
		return
	}
	s.order = append(s.order, stage)
	s.systems[stage] = nil
}

// Stages returns the stage order
func (s *Schedule) Stages() []Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Stage, len(s.order))
	copy(result, s.order)
	return result
}

// AddSystem adds a system to a stage and sorts the stage by priority
// Panics on an unknown stage, schedules are static configuration
func (s *Schedule) AddSystem(stage Stage, system System) {
	s.mu.Lock()
	defer s.mu.Unlock()

	systems, ok := s.systems[stage]
	if !ok {
		panic(fmt.Sprintf("schedule has no stage %q", stage))
	}
	systems = append(systems, system)

	// Sort by priority (bubble sort, small N, stable for equal priorities)
	for i := 0; i < len(systems)-1; i++ {
		for j := 0; j < len(systems)-i-1; j++ {
			if systems[j].Priority() > systems[j+1].Priority() {
				systems[j], systems[j+1] = systems[j+1], systems[j]
			}
		}
	}
	s.systems[stage] = systems
}

// RunStage runs the systems of one stage sequentially
func (s *Schedule) RunStage(stage Stage, w *World) {
	s.mu.RLock()
	systems := make([]System, len(s.systems[stage]))
	copy(systems, s.systems[stage])
	s.mu.RUnlock()

	for _, system := range systems {
		system.Update(w)
	}
}

// Run runs every stage in order
func (s *Schedule) Run(w *World) {
	for _, stage := range s.Stages() {
		s.RunStage(stage, w)
	}
}
