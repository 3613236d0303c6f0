package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Duration       time.Duration
	Episodes       int
	Expansions     int
	TerminalLeaves int
	Clamped        int // Evaluations outside [0, 1]
	MaxDepth       int
	RAVE           bool
}

type MoveMetric struct {
	Turn   int
	Side   string
	Action string
	SearchMetric
}

type GameMetric struct {
	Winner     string
	Seed       uint64
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalTurns int
}

type Collector interface {
	Start(rave bool)
	AddEpisode()
	AddExpansion()
	AddTerminalLeaf()
	AddClamped()
	ObserveDepth(depth int)
	Complete() SearchMetric
}

type collector struct {
	rave           bool
	startTime      time.Time
	episodes       atomic.Int32
	expansions     atomic.Int32
	terminalLeaves atomic.Int32
	clamped        atomic.Int32
	maxDepth       atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(rave bool) {
	m.startTime = time.Now()
	m.rave = rave
	m.episodes.Store(0)
	m.expansions.Store(0)
	m.terminalLeaves.Store(0)
	m.clamped.Store(0)
	m.maxDepth.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddTerminalLeaf() {
	m.terminalLeaves.Add(1)
}

func (m *collector) AddClamped() {
	m.clamped.Add(1)
}

func (m *collector) ObserveDepth(depth int) {
	for {
		current := m.maxDepth.Load()
		if int32(depth) <= current || m.maxDepth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Duration:       time.Since(m.startTime),
		Episodes:       int(m.episodes.Load()),
		Expansions:     int(m.expansions.Load()),
		TerminalLeaves: int(m.terminalLeaves.Load()),
		Clamped:        int(m.clamped.Load()),
		MaxDepth:       int(m.maxDepth.Load()),
		RAVE:           m.rave,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(rave bool)        {}
func (m *dummyCollector) AddEpisode()            {}
func (m *dummyCollector) AddExpansion()          {}
func (m *dummyCollector) AddTerminalLeaf()       {}
func (m *dummyCollector) AddClamped()            {}
func (m *dummyCollector) ObserveDepth(depth int) {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
