package midi

import (
	"bytes"
	"testing"
)

func TestDecodeNoteOn(t *testing.T) {
	buf := []byte{0x91, 64, 100}
	msg, ok, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !ok {
		t.Fatalf("Decode should have routed a note-on message")
	}
	if msg.Type != Note || msg.Channel != 1 || msg.Control != 64 || msg.Value != 100 {
		t.Errorf("decoded %+v, want Type=Note Channel=1 Control=64 Value=100", msg)
	}
}

func TestDecodeCC(t *testing.T) {
	buf := []byte{0xB3, 7, 127}
	msg, ok, err := Decode(buf)
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if msg.Type != CC || msg.Channel != 3 || msg.Control != 7 || msg.Value != 127 {
		t.Errorf("decoded %+v, want Type=CC Channel=3 Control=7 Value=127", msg)
	}
}

func TestDecodePitchBend(t *testing.T) {
	// lo=0x00, hi=0x40 -> 0x40 << 7 = 8192, the center value.
	buf := []byte{0xE2, 0x00, 0x40}
	msg, ok, err := Decode(buf)
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if msg.Type != PitchBend || msg.Channel != 2 || msg.Value != 8192 {
		t.Errorf("decoded %+v, want Type=PitchBend Channel=2 Value=8192", msg)
	}
}

func TestDecodeAftertouch(t *testing.T) {
	buf := []byte{0xD5, 50}
	msg, ok, err := Decode(buf)
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if msg.Type != Aftertouch || msg.Channel != 5 || msg.Value != 50 {
		t.Errorf("decoded %+v, want Type=Aftertouch Channel=5 Value=50", msg)
	}
}

func TestDecodeUnroutedStatusIsNotError(t *testing.T) {
	// Program change (0xC), not routed by this module.
	buf := []byte{0xC0, 5}
	_, ok, err := Decode(buf)
	if err != nil {
		t.Errorf("unrouted status byte should not be an error, got %v", err)
	}
	if ok {
		t.Errorf("unrouted status byte should report ok=false")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	buf := []byte{0x90, 64}
	_, _, err := Decode(buf)
	if err == nil {
		t.Errorf("Decode should have rejected a truncated note-on message")
	}
}

func TestDecodeRejectsNonStatusByte(t *testing.T) {
	buf := []byte{0x40, 64, 100}
	_, _, err := Decode(buf)
	if err == nil {
		t.Errorf("Decode should have rejected a buffer not starting with a status byte")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []ShortMessage{
		{Type: Note, Channel: 0, Control: 60, Value: 90},
		{Type: CC, Channel: 10, Control: 1, Value: 64},
		{Type: Pressure, Channel: 4, Control: 30, Value: 20},
		{Type: Aftertouch, Channel: 8, Value: 127},
		{Type: PitchBend, Channel: 15, Value: 16383},
	}

	for _, want := range cases {
		buf, err := Encode(want)
		if err != nil {
			t.Errorf("Encode(%+v) returned error: %v", want, err)
			continue
		}
		got, ok, err := Decode(buf)
		if err != nil || !ok {
			t.Errorf("Decode(Encode(%+v)) failed: ok=%v err=%v", want, ok, err)
			continue
		}
		if got != want {
			t.Errorf("round trip mismatch: want %+v, got %+v (wire %s)", want, got, formatHex(buf))
		}
	}
}

func formatHex(buf []byte) string {
	var b bytes.Buffer
	for _, c := range buf {
		b.WriteString("0x")
		b.WriteByte(hexDigit(c >> 4))
		b.WriteByte(hexDigit(c & 0xf))
		b.WriteByte(' ')
	}
	return b.String()
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}
