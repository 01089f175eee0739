package event

import "testing"

func TestIsMotion(t *testing.T) {
	tests := []struct {
		e    Interface
		want bool
	}{
		{PointerMove{X: 1, Y: 2}, true},
		{AxisMotion{DY: -1}, true},
		{&PointerMove{}, true},
		{KeyDown{Key: KeyA}, false},
		{KeyUp{Key: KeyEscape}, false},
		{Close{}, false},
		{Wake{}, false},
		{FrameBufferSize{Width: 10, Height: 10}, false},
		{Other{Native: 42}, false},
	}
	for _, tt := range tests {
		if got := IsMotion(tt.e); got != tt.want {
			t.Errorf("IsMotion(%#v) = %v, want %v", tt.e, got, tt.want)
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		k    Key
		want string
	}{
		{KeyA, "A"},
		{KeyR, "R"},
		{KeyZ, "Z"},
		{Key0, "0"},
		{Key9, "9"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeyEscape, "Escape"},
		{KeyArrowLeft, "Left"},
		{KeySpace, "Space"},
		{keyCount + 3, "Key(72)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestParseKey(t *testing.T) {
	for k := KeyUnknown + 1; k < keyCount; k++ {
		got, ok := ParseKey(k.String())
		if !ok || got != k {
			t.Errorf("ParseKey(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseKey("NoSuchKey"); ok {
		t.Error(`ParseKey("NoSuchKey") succeeded`)
	}
}
