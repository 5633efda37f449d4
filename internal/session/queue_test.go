package session

import (
	"testing"

	"quizler/internal/protocol"
	"quizler/internal/types"
)

func drain(q *EventQueue) []protocol.ServerEvent {
	var out []protocol.ServerEvent
	for {
		event, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, event)
	}
}

func TestQueueFIFO(t *testing.T) {
	q := NewEventQueue()

	first := protocol.NewTimer(1)
	second := protocol.NewTimer(2)
	third := protocol.NewTimer(3)

	q.Send(first)
	q.SendShared(second)
	q.Send(third)

	events := drain(q)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, want := range []*protocol.TimerEvent{first, second, third} {
		if events[i] != protocol.ServerEvent(want) {
			t.Errorf("Event %d out of order", i)
		}
	}
}

func TestQueueNotifiesReady(t *testing.T) {
	q := NewEventQueue()
	q.Send(protocol.NewGameState(types.StateLobby))

	select {
	case <-q.Ready():
	default:
		t.Fatal("Expected readiness signal after send")
	}

	if _, ok := q.Pop(); !ok {
		t.Fatal("Expected queued event")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Expected empty queue")
	}
}

func TestQueueUnboundedNeverBlocks(t *testing.T) {
	q := NewEventQueue()

	// Far more events than any channel buffer would hold.
	for i := 0; i < 10000; i++ {
		q.Send(protocol.NewTimer(uint32(i)))
	}

	if got := len(drain(q)); got != 10000 {
		t.Errorf("Expected 10000 events, got %d", got)
	}
}

func TestQueueCloseDiscards(t *testing.T) {
	q := NewEventQueue()
	q.Send(protocol.NewTimer(1))
	q.Close()

	if _, ok := q.Pop(); ok {
		t.Error("Expected queued events to be discarded on close")
	}

	// Sends after close are silent no-ops.
	q.Send(protocol.NewTimer(2))
	if _, ok := q.Pop(); ok {
		t.Error("Expected sends after close to be dropped")
	}
}
