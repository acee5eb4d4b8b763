package guitar

import "sync/atomic"

// EventKind enumerates the control-thread requests the audio thread drains
// and applies at the start of each block (§5 "Event bridge").
type EventKind int

const (
	// EventPlay excites the string chosen by Instrument.Play's open-string
	// selection policy for FreqHz.
	EventPlay EventKind = iota
	// EventPlayString excites StringIndex directly.
	EventPlayString
	// EventStrum excites every string in ChordFreqs in order.
	EventStrum
	// EventSetSustain broadcasts a new sustain-knob setting to every string.
	EventSetSustain
	// EventSetStiffness broadcasts a new dispersion coefficient to every string.
	EventSetStiffness
	// EventSetResonance toggles the body resonator.
	EventSetResonance
	// EventSetStrategy swaps every string's synthesis engine.
	EventSetStrategy
)

// Event is a single control-thread request queued for the audio thread.
type Event struct {
	Kind           EventKind
	StringIndex    int
	FreqHz         float32
	Velocity       float32
	SustainSeconds float32
	SustainKnob    float32
	Stiffness      float32
	Enabled        bool
	Strategy       StrategyKind
	ChordFreqs     []float32
	Direction      StrumDirection
}

// eventQueueCapacity must be a power of two so index wraparound is a cheap
// bitmask instead of a modulo.
const eventQueueCapacity = 256

// EventQueue is a single-producer/single-consumer lock-free ring buffer:
// exactly one control-thread goroutine calls Push, and exactly one audio
// thread calls Drain, matching the prototype's real-time/control-thread
// split (§5). Push never blocks; a full queue silently drops the event and
// reports false so the caller can surface that as a Status.
type EventQueue struct {
	buf  [eventQueueCapacity]Event
	head uint64 // next slot to write, producer-owned
	tail uint64 // next slot to read, consumer-owned
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push enqueues an event from the control thread. Returns false if the
// queue is full.
func (q *EventQueue) Push(e Event) bool {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head-tail >= eventQueueCapacity {
		return false
	}
	q.buf[head%eventQueueCapacity] = e
	atomic.StoreUint64(&q.head, head+1)
	return true
}

// Drain pops every pending event in FIFO order from the audio thread. The
// returned slice reuses scratch's backing array and is only valid until the
// next Drain call with that buffer.
func (q *EventQueue) Drain(scratch []Event) []Event {
	scratch = scratch[:0]
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	for tail < head {
		scratch = append(scratch, q.buf[tail%eventQueueCapacity])
		tail++
	}
	atomic.StoreUint64(&q.tail, tail)
	return scratch
}

// Pending reports how many events are waiting to be drained.
func (q *EventQueue) Pending() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	return int(head - tail)
}

// statusBox is the payload stored behind the atomic.Value in StatusChannel;
// wrapping it in a struct lets atomic.Value hold a consistent concrete type
// across every Store call.
type statusBox struct {
	status Status
}

// StatusChannel is a single-slot, non-blocking warning channel: the audio
// thread publishes the most recent anomaly (never blocking, never
// allocating beyond the one boxed struct per Publish), and the control
// thread polls it whenever convenient (§7 "Error handling design").
type StatusChannel struct {
	slot atomic.Value
}

// NewStatusChannel returns a channel with no pending status.
func NewStatusChannel() *StatusChannel {
	c := &StatusChannel{}
	c.slot.Store(statusBox{status: Status{Kind: StatusNone}})
	return c
}

// Publish overwrites the single slot with the latest status. Called from the
// audio thread; never blocks.
func (c *StatusChannel) Publish(s Status) {
	c.slot.Store(statusBox{status: s})
}

// TryRead returns the most recently published status and whether it is
// non-trivial (Kind != StatusNone). Called from the control thread.
func (c *StatusChannel) TryRead() (Status, bool) {
	box, _ := c.slot.Load().(statusBox)
	return box.status, box.status.Kind != StatusNone
}

// Manager binds an EventQueue and a StatusChannel to an Instrument,
// providing the full control-thread-safe surface: control goroutines call
// the Request* methods to enqueue events, and the audio thread calls
// ApplyPendingEvents once per block before ProcessBlock.
type Manager struct {
	inst    *Instrument
	events  *EventQueue
	status  *StatusChannel
	scratch []Event
}

// NewManager wraps inst with an event queue and status channel.
func NewManager(inst *Instrument) *Manager {
	return &Manager{
		inst:    inst,
		events:  NewEventQueue(),
		status:  NewStatusChannel(),
		scratch: make([]Event, 0, eventQueueCapacity),
	}
}

// RequestPlay enqueues an open-string play request. Safe to call from any
// control-thread goroutine.
func (m *Manager) RequestPlay(freqHz, velocity, sustainSeconds float32) bool {
	return m.events.Push(Event{Kind: EventPlay, FreqHz: freqHz, Velocity: velocity, SustainSeconds: sustainSeconds})
}

// RequestPlayString enqueues a specific-string play request.
func (m *Manager) RequestPlayString(stringIndex int, freqHz, velocity, sustainSeconds float32) bool {
	return m.events.Push(Event{Kind: EventPlayString, StringIndex: stringIndex, FreqHz: freqHz, Velocity: velocity, SustainSeconds: sustainSeconds})
}

// RequestStrum enqueues a strum across chordFreqs, struck in the given direction.
func (m *Manager) RequestStrum(chordFreqs []float32, velocity, sustainSeconds float32, direction StrumDirection) bool {
	return m.events.Push(Event{Kind: EventStrum, ChordFreqs: append([]float32(nil), chordFreqs...), Velocity: velocity, SustainSeconds: sustainSeconds, Direction: direction})
}

// RequestSetSustain enqueues a sustain-knob broadcast (§5 SetSustain): s is
// the normalized 0..1 knob value, remapped internally to a T60 seconds
// value before being applied to every voice.
func (m *Manager) RequestSetSustain(s float32) bool {
	return m.events.Push(Event{Kind: EventSetSustain, SustainKnob: s})
}

// RequestSetStiffness enqueues a dispersion-coefficient broadcast.
func (m *Manager) RequestSetStiffness(a float32) bool {
	return m.events.Push(Event{Kind: EventSetStiffness, Stiffness: a})
}

// RequestSetResonance enqueues a body-resonance toggle.
func (m *Manager) RequestSetResonance(enabled bool) bool {
	return m.events.Push(Event{Kind: EventSetResonance, Enabled: enabled})
}

// RequestSetStrategy enqueues a synthesis-engine swap.
func (m *Manager) RequestSetStrategy(strategy StrategyKind) bool {
	return m.events.Push(Event{Kind: EventSetStrategy, Strategy: strategy})
}

// ApplyPendingEvents drains and applies every queued event. Must be called
// from the audio thread immediately before rendering each block.
func (m *Manager) ApplyPendingEvents(rngState *uint32) {
	m.scratch = m.events.Drain(m.scratch)
	for _, e := range m.scratch {
		switch e.Kind {
		case EventPlay:
			m.inst.Play(e.FreqHz, e.Velocity, e.SustainSeconds)
		case EventPlayString:
			if err := m.inst.PlayString(e.StringIndex, e.FreqHz, e.Velocity, e.SustainSeconds); err != nil {
				if _, isConfigErr := err.(*ConfigError); !isConfigErr {
					m.status.Publish(Status{Kind: StatusInvalidStringIndex, Message: err.Error()})
				}
			}
		case EventStrum:
			m.inst.StrumChord(e.ChordFreqs, e.Velocity, e.SustainSeconds, e.Direction, rngState)
		case EventSetSustain:
			m.inst.SetSustain(e.SustainKnob)
		case EventSetStiffness:
			cfg := m.inst.cfg
			cfg.Stiffness = e.Stiffness
			m.inst.SetInstrumentConfig(cfg)
		case EventSetResonance:
			m.inst.SetResonanceEnabled(e.Enabled)
		case EventSetStrategy:
			m.inst.SetStrategy(e.Strategy)
		}

		if warn := m.inst.TakeConfigWarning(); warn != nil {
			m.status.Publish(Status{Kind: StatusFrequencyClamped, Message: warn.Error()})
		}
	}
}

// ReportUnderrun lets the host audio callback forward an underrun signal
// (§7 "Audio underrun"): the core never retries, it only republishes the
// anomaly on the status channel for the control thread to observe. Safe to
// call from the audio callback itself since Publish never blocks.
func (m *Manager) ReportUnderrun(message string) {
	m.status.Publish(Status{Kind: StatusUnderrun, Message: message})
}

// Status returns the most recently published anomaly, if any.
func (m *Manager) Status() (Status, bool) {
	return m.status.TryRead()
}

// Instrument returns the underlying instrument, for direct read access
// (e.g. EffectiveFrequency) from the audio thread.
func (m *Manager) Instrument() *Instrument {
	return m.inst
}
