package guitar

import (
	"sync"
	"testing"
)

func TestEventQueuePushDrainPreservesOrder(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < 5; i++ {
		if !q.Push(Event{Kind: EventPlay, StringIndex: i}) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if q.Pending() != 5 {
		t.Fatalf("expected 5 pending, got %d", q.Pending())
	}

	var scratch []Event
	drained := q.Drain(scratch)
	if len(drained) != 5 {
		t.Fatalf("expected 5 drained, got %d", len(drained))
	}
	for i, e := range drained {
		if e.StringIndex != i {
			t.Errorf("event %d: expected StringIndex %d, got %d", i, i, e.StringIndex)
		}
	}
	if q.Pending() != 0 {
		t.Fatalf("expected queue empty after drain, got %d pending", q.Pending())
	}
}

func TestEventQueueRejectsPushWhenFull(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < eventQueueCapacity; i++ {
		if !q.Push(Event{Kind: EventPlay}) {
			t.Fatalf("push %d should have succeeded while under capacity", i)
		}
	}
	if q.Push(Event{Kind: EventPlay}) {
		t.Fatal("expected push to fail once queue is full")
	}
}

func TestEventQueueConcurrentProducerConsumer(t *testing.T) {
	q := NewEventQueue()
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pushed := 0
		for pushed < total {
			if q.Push(Event{Kind: EventPlay, StringIndex: pushed}) {
				pushed++
			}
		}
	}()

	received := 0
	var scratch []Event
	for received < total {
		scratch = q.Drain(scratch)
		received += len(scratch)
	}
	wg.Wait()

	if received != total {
		t.Fatalf("expected to receive %d events, got %d", total, received)
	}
}

func TestStatusChannelDefaultsToNone(t *testing.T) {
	c := NewStatusChannel()
	if _, ok := c.TryRead(); ok {
		t.Fatal("expected no pending status on a fresh channel")
	}
}

func TestStatusChannelPublishOverwritesSlot(t *testing.T) {
	c := NewStatusChannel()
	c.Publish(Status{Kind: StatusFrequencyClamped, Message: "clamped"})
	s, ok := c.TryRead()
	if !ok || s.Kind != StatusFrequencyClamped || s.Message != "clamped" {
		t.Fatalf("unexpected status: %+v ok=%v", s, ok)
	}

	c.Publish(Status{Kind: StatusUnderrun, Message: "underrun"})
	s, ok = c.TryRead()
	if !ok || s.Kind != StatusUnderrun {
		t.Fatalf("expected latest publish to win, got %+v", s)
	}
}

func TestManagerAppliesQueuedPlayEvent(t *testing.T) {
	inst, _ := NewInstrument(44100, StrategyWaveguide, NewDefaultInstrumentConfig())
	m := NewManager(inst)

	if !m.RequestPlay(196.0, 0.9, 3.0) {
		t.Fatal("expected RequestPlay to succeed")
	}
	rng := uint32(1)
	m.ApplyPendingEvents(&rng)

	left, right := inst.ProcessBlock(1024)
	if rmsOf(left) == 0 || rmsOf(right) == 0 {
		t.Fatal("expected sound after applying a queued play event")
	}
}

func TestManagerInvalidPlayStringPublishesStatus(t *testing.T) {
	inst, _ := NewInstrument(44100, StrategyWaveguide, NewDefaultInstrumentConfig())
	m := NewManager(inst)

	m.RequestPlayString(999, 220.0, 1.0, 3.0)
	rng := uint32(1)
	m.ApplyPendingEvents(&rng)

	if _, ok := m.Status(); !ok {
		t.Fatal("expected a published status after an out-of-range string request")
	}
}

func TestManagerReportUnderrunPublishesStatus(t *testing.T) {
	inst, _ := NewInstrument(44100, StrategyWaveguide, NewDefaultInstrumentConfig())
	m := NewManager(inst)

	m.ReportUnderrun("host callback missed its deadline")
	s, ok := m.Status()
	if !ok || s.Kind != StatusUnderrun {
		t.Fatalf("expected StatusUnderrun after ReportUnderrun, got %+v ok=%v", s, ok)
	}
}

func TestManagerSetSustainEventRecomputesDamping(t *testing.T) {
	inst, _ := NewInstrument(44100, StrategyKarplus, NewDefaultInstrumentConfig())
	m := NewManager(inst)

	m.RequestPlay(196.0, 1.0, 2.0)
	rng := uint32(1)
	m.ApplyPendingEvents(&rng)

	before := inst.strings[inst.lastStringIndex].(*KarplusVoice).decay

	m.RequestSetSustain(0.9)
	m.ApplyPendingEvents(&rng)

	after := inst.strings[inst.lastStringIndex].(*KarplusVoice).decay
	if after == before {
		t.Fatalf("expected SetSustain to change the decay gain, got %v both times", before)
	}
}

func TestManagerSetStrategyEventSwapsVoices(t *testing.T) {
	inst, _ := NewInstrument(44100, StrategyWaveguide, NewDefaultInstrumentConfig())
	m := NewManager(inst)

	m.RequestSetStrategy(StrategyKarplus)
	rng := uint32(1)
	m.ApplyPendingEvents(&rng)

	for _, s := range inst.strings {
		if _, ok := s.(*KarplusVoice); !ok {
			t.Fatal("expected strategy swap to apply from queued event")
		}
	}
}
