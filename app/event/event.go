// Package event defines the platform-neutral events delivered by a window to
// the frame loop.
//
package event

import "fmt"

// Interface is implemented by all event types in this package. The set is
// closed; platform specific events are wrapped in Other.
//
type Interface interface {
	event()
}

// Close is sent when the user requests the window to close.
type Close struct{}

// KeyDown is sent when a key is pressed or auto-repeats.
type KeyDown struct {
	Key    Key
	Mods   Mods
	Repeat bool
}

// KeyUp is sent when a key is released.
type KeyUp struct {
	Key  Key
	Mods Mods
}

// PointerMove reports the cursor position in device-independent pixels,
// relative to the top-left corner of the drawable area.
type PointerMove struct {
	X, Y float32
}

// AxisMotion reports scroll wheel or trackpad motion.
type AxisMotion struct {
	DX, DY float32
}

// FrameBufferSize is sent after the framebuffer has been resized. Width and
// Height are in device pixels.
type FrameBufferSize struct {
	Width, Height int
}

// Wake is sent when a renderer asks for a repaint.
type Wake struct{}

// Other wraps events the loop does not interpret.
type Other struct {
	Native interface{}
}

func (Close) event()           {}
func (KeyDown) event()         {}
func (KeyUp) event()           {}
func (PointerMove) event()     {}
func (AxisMotion) event()      {}
func (FrameBufferSize) event() {}
func (Wake) event()            {}
func (Other) event()           {}

// IsMotion reports whether e is a high frequency pointer or axis motion event.
//
func IsMotion(e Interface) bool {
	switch e.(type) {
	case PointerMove, AxisMotion, *PointerMove, *AxisMotion:
		return true
	}
	return false
}

// Mods is a bit set of keyboard modifiers.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Key is a platform-neutral key code.
//
type Key uint16

const (
	KeyUnknown Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyBackspace
	KeyDelete
	KeyInsert
	KeyEnter
	KeyTab
	KeyEscape
	KeySpace

	KeyMinus
	KeyEqual
	KeyComma
	KeyPeriod
	KeySlash

	keyCount
)

var keyNames = [...]string{
	KeyUnknown: "Unknown",
	KeyArrowUp: "Up", KeyArrowDown: "Down", KeyArrowLeft: "Left", KeyArrowRight: "Right",
	KeyHome: "Home", KeyEnd: "End", KeyPageUp: "PageUp", KeyPageDown: "PageDown",
	KeyBackspace: "Backspace", KeyDelete: "Delete", KeyInsert: "Insert",
	KeyEnter: "Enter", KeyTab: "Tab", KeyEscape: "Escape", KeySpace: "Space",
	KeyMinus: "-", KeyEqual: "=", KeyComma: ",", KeyPeriod: ".", KeySlash: "/",
	keyCount: "",
}

func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + k - KeyA))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + k - Key0))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	case k < keyCount:
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// ParseKey returns the key whose String method returns name. It is the
// inverse of Key.String and is used to read key names from configuration
// files.
//
func ParseKey(name string) (Key, bool) {
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return KeyUnknown, false
}
