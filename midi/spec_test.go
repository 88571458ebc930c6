package midi

import "testing"

func TestParseChannelSpecAccepts(t *testing.T) {
	cases := []struct {
		spec    string
		ty      Type
		channel uint8
		control uint16
	}{
		{"ch0.cc64", CC, 0, 64},
		{"channel15.note127", Note, 15, 127},
		{"ch3.pressure10", Pressure, 3, 10},
		{"ch9.pitch", PitchBend, 9, 0},
		{"ch2.aftertouch", Aftertouch, 2, 0},
		{"ch0.rpn0", RPN, 0, 0},
		{"ch1.nrpn16383", NRPN, 1, 16383},
		{"CH5.CC1", CC, 5, 1},
	}

	for _, c := range cases {
		id, err := ParseChannelSpec(c.spec)
		if err != nil {
			t.Errorf("ParseChannelSpec(%q) returned error: %v", c.spec, err)
			continue
		}
		ty, channel, control := Unpack(id)
		if ty != c.ty || channel != c.channel || control != c.control {
			t.Errorf("ParseChannelSpec(%q) = (%s,%d,%d), want (%s,%d,%d)",
				c.spec, ty, channel, control, c.ty, c.channel, c.control)
		}
	}
}

func TestParseChannelSpecRejects(t *testing.T) {
	cases := []string{
		"",
		"ch.cc1",
		"ch16.cc1",
		"ch0cc1",
		"ch0.",
		"ch0.unknown5",
		"ch0.pitch5",
		"ch0.cc",
		"ch0.cc1extra",
		"foo0.cc1",
	}

	for _, spec := range cases {
		if _, err := ParseChannelSpec(spec); err == nil {
			t.Errorf("ParseChannelSpec(%q) should have failed", spec)
		}
	}
}
