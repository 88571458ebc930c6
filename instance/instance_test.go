package instance

import (
	"testing"
	"time"

	"github.com/go-midimonster/midimonster/midi"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewBackend(8)
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	t.Cleanup(func() { b.Shutdown() })
	return b
}

func TestMidiInstanceStartShutdown(t *testing.T) {
	b := newTestBackend(t)
	inst := NewMidiInstance("test", b)
	inst.ReadName = "loop-in"
	inst.WriteName = "loop-out"
	b.AddInstance(inst)

	in := NewLoopbackDevice()
	out := NewLoopbackDevice()
	if err := inst.Start(in, out); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := inst.Shutdown(); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

func TestMidiInstanceNoteOnPushesQueueAndNotifies(t *testing.T) {
	b := newTestBackend(t)
	inst := NewMidiInstance("test", b)
	b.AddInstance(inst)

	in := NewLoopbackDevice()
	out := NewLoopbackDevice()
	if err := inst.Start(in, out); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer inst.Shutdown()

	in.Inject(midi.ShortMessage{Type: midi.Note, Channel: 2, Control: 60, Value: 100}, false)

	select {
	case <-b.Pipe.Ready():
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for wakeup notification")
	}

	if got := b.Queue.Len(); got != 1 {
		t.Fatalf("Queue.Len() = %d, want 1", got)
	}

	wantID, _ := midi.Pack(midi.Note, 2, 60)
	n := b.Queue.Drain(recorderRouter{
		fn: func(i string, c midi.ChannelID, v float64) {
			if i != "test" || c != wantID || v != 100.0/127.0 {
				t.Errorf("delivered (%s,%v,%v), want (test,%v,%v)", i, c, v, wantID, 100.0/127.0)
			}
		},
	})
	if n != 1 {
		t.Errorf("Drain returned %d, want 1", n)
	}
}

func TestMidiInstanceBacklogSkipsNotify(t *testing.T) {
	b := newTestBackend(t)
	inst := NewMidiInstance("test", b)
	b.AddInstance(inst)

	in := NewLoopbackDevice()
	out := NewLoopbackDevice()
	if err := inst.Start(in, out); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer inst.Shutdown()

	in.Inject(midi.ShortMessage{Type: midi.CC, Channel: 0, Control: 7, Value: 64}, true)

	select {
	case <-b.Pipe.Ready():
		t.Fatalf("did not expect a wakeup notification for a backlogged callback")
	case <-time.After(100 * time.Millisecond):
	}

	if got := b.Queue.Len(); got != 1 {
		t.Errorf("Queue.Len() = %d, want 1 (the event should still be queued)", got)
	}
}

func TestMidiInstanceSetAndReceiveEpnRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	inst := NewMidiInstance("b", b)
	b.AddInstance(inst)

	in, out := NewLoopbackDevice(), NewLoopbackDevice()
	if err := inst.Start(in, out); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer inst.Shutdown()

	id, _ := midi.Pack(midi.NRPN, 1, 500)
	msgs, err := midi.EncodeEpn(midi.NRPN, 1, 500, 0.25, true)
	if err != nil {
		t.Fatalf("EncodeEpn failed: %v", err)
	}
	for _, msg := range msgs {
		in.Inject(msg, true)
	}

	normalized := 0.25
	wantV14 := uint16(normalized * 16383)
	wantValue := float64(wantV14) / 16383

	n := b.Queue.Drain(recorderRouter{
		fn: func(i string, c midi.ChannelID, v float64) {
			if i != "b" || c != id || v != wantValue {
				t.Errorf("delivered (%s,%v,%v), want (b,%v,%v)", i, c, v, id, wantValue)
			}
		},
	})
	if n != 1 {
		t.Fatalf("Drain returned %d, want 1", n)
	}
}

type recorderRouter struct {
	fn func(instance string, channel midi.ChannelID, value float64)
}

func (r recorderRouter) Deliver(instance string, channel midi.ChannelID, value float64) {
	r.fn(instance, channel, value)
}
