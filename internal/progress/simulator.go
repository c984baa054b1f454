// Package progress implements the perceived-progress simulator shown while
// a render is in flight. The real operation has an unknown duration, so the
// simulator paces a visual metaphor across five named stages. It never
// decides on its own that the operation finished; the caller signals
// completion, after which the remaining stages are drained quickly.
package progress

import (
	"sync"
	"time"
)

// Stage is one named step of the simulation.
//
//   - BaseMinTime: time to reach 80% progress under normal pacing.
//   - MaxTime: deadline after which the stage force-advances regardless of
//     progress.
type Stage struct {
	Name        string
	BaseMinTime time.Duration
	MaxTime     time.Duration
}

// DefaultStages is the stage sequence used for render submissions.
var DefaultStages = []Stage{
	{Name: "Analyzing room structure", BaseMinTime: 3 * time.Second, MaxTime: 8 * time.Second},
	{Name: "Generating layout geometry", BaseMinTime: 4 * time.Second, MaxTime: 10 * time.Second},
	{Name: "Applying style and materials", BaseMinTime: 5 * time.Second, MaxTime: 12 * time.Second},
	{Name: "Rendering final output", BaseMinTime: 6 * time.Second, MaxTime: 15 * time.Second},
	{Name: "Finalizing result", BaseMinTime: 4 * time.Second, MaxTime: 10 * time.Second},
}

// Pacing constants.
const (
	tickInterval = 100 * time.Millisecond

	// completePacing is the per-stage ramp once the real call concluded.
	completePacing = 500 * time.Millisecond
	// completeAdvanceAfter force-advances a stage this long after entry
	// when the real call already concluded.
	completeAdvanceAfter = 800 * time.Millisecond
	// speedUpAfter is the total elapsed time after which pacing
	// accelerates (the call is taking unusually long).
	speedUpAfter = 30 * time.Second

	normalCap  = 0.8 // progress cap under normal pacing
	speedUpCap = 0.9 // progress cap under accelerated pacing
)

// Snapshot is the externally visible simulator state.
type Snapshot struct {
	Stage     int     `json:"stage"`
	StageName string  `json:"stage_name"`
	Progress  float64 `json:"progress"` // 0..100
	Running   bool    `json:"running"`
	Complete  bool    `json:"complete"`
}

// PublishFunc receives (stage index, progress percent) on every evaluation.
type PublishFunc func(stage int, progress float64)

// Simulator advances through the configured stages on a recurring timer.
// It is safe for concurrent use; the ticking goroutine and callers
// synchronize on an internal mutex.
type Simulator struct {
	stages  []Stage
	publish PublishFunc

	mu           sync.Mutex
	running      bool
	apiComplete  bool
	stageIdx     int
	progress     float64 // fraction 0..1 of the current stage
	stageStart   time.Time
	loadingStart time.Time
	stop         chan struct{}

	// now is the clock; overridable in tests.
	now func() time.Time
}

// New constructs a simulator over the given stages (DefaultStages when
// nil). publish may be nil.
func New(stages []Stage, publish PublishFunc) *Simulator {
	if len(stages) == 0 {
		stages = DefaultStages
	}
	return &Simulator{stages: stages, publish: publish, now: time.Now}
}

// Start (re)starts the simulation from stage zero. Any previous run is
// cancelled first.
func (s *Simulator) Start() {
	s.Stop()

	s.mu.Lock()
	now := s.now()
	s.running = true
	s.apiComplete = false
	s.stageIdx = 0
	s.progress = 0
	s.stageStart = now
	s.loadingStart = now
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go s.loop(stop)
}

// SetComplete tells the simulator the real operation concluded (success or
// failure). Remaining stages drain at the fast pacing. Safe to call more
// than once; only the first call has an effect.
func (s *Simulator) SetComplete() {
	s.mu.Lock()
	s.apiComplete = true
	s.mu.Unlock()
}

// Stop cancels the pending timer and resets display state to stage zero
// with zero progress. Safe to call at any time, including when not running.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.running = false
	s.stageIdx = 0
	s.progress = 0
	s.apiComplete = false
	s.mu.Unlock()
}

// Snapshot returns the current display state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Stage:     s.stageIdx,
		StageName: s.stages[s.stageIdx].Name,
		Progress:  s.progress * 100,
		Running:   s.running,
		Complete:  s.apiComplete,
	}
}

// loop ticks until the final stage reports full progress or the run is
// cancelled.
func (s *Simulator) loop(stop chan struct{}) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if done := s.step(); done {
				s.mu.Lock()
				s.running = false
				s.mu.Unlock()
				return
			}
		}
	}
}

// step performs one evaluation of the pacing heuristic and reports whether
// the simulation has finished (last stage at full progress).
func (s *Simulator) step() bool {
	s.mu.Lock()

	now := s.now()
	elapsed := now.Sub(s.stageStart)
	totalElapsed := now.Sub(s.loadingStart)
	st := s.stages[s.stageIdx]

	var p float64
	switch {
	case s.apiComplete:
		// Finish remaining stages quickly.
		p = minf(float64(elapsed)/float64(completePacing), 1)
	case totalElapsed > speedUpAfter:
		// The call is taking long; speed up but hold short of done.
		p = minf(float64(elapsed)/(float64(st.BaseMinTime)*0.5), speedUpCap)
	default:
		// Normal pacing, capped until the stage truly advances.
		p = minf(float64(elapsed)/float64(st.BaseMinTime), normalCap)
	}
	s.progress = p

	// Publish the pre-advance view: the stage the user is watching.
	publish := s.publish
	stage, pct := s.stageIdx, p*100

	advance := p >= 1 ||
		(s.apiComplete && elapsed > completeAdvanceAfter) ||
		(!s.apiComplete && elapsed > st.MaxTime)

	last := s.stageIdx == len(s.stages)-1
	if advance && !last {
		s.stageIdx++
		s.stageStart = now
		s.progress = 0
	}

	done := last && p >= 1
	s.mu.Unlock()

	if publish != nil {
		publish(stage, pct)
	}
	return done
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
