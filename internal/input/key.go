// Package input decodes raw terminal bytes into logical key events and
// routes them to global chords, the focused widget, or a capturing modal.
package input

import "fmt"

// KeyType 枚举逻辑按键类别。
type KeyType int

const (
	KeyRune KeyType = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyDelete
	// KeyPaste carries a full bracketed-paste payload as one event.
	KeyPaste
)

// Key is one decoded input event.
type Key struct {
	Type  KeyType
	Rune  rune
	Ctrl  bool
	Alt   bool
	Paste string
}

// String renders a chord name like "ctrl+c", "alt+enter", "up" or "a".
// The router's chord table is keyed by these names.
func (k Key) String() string {
	name := ""
	switch k.Type {
	case KeyRune:
		name = string(k.Rune)
	case KeyEnter:
		name = "enter"
	case KeyTab:
		name = "tab"
	case KeyBackspace:
		name = "backspace"
	case KeyEsc:
		name = "esc"
	case KeyUp:
		name = "up"
	case KeyDown:
		name = "down"
	case KeyLeft:
		name = "left"
	case KeyRight:
		name = "right"
	case KeyHome:
		name = "home"
	case KeyEnd:
		name = "end"
	case KeyPgUp:
		name = "pgup"
	case KeyPgDown:
		name = "pgdown"
	case KeyDelete:
		name = "delete"
	case KeyPaste:
		name = "paste"
	default:
		name = fmt.Sprintf("key(%d)", int(k.Type))
	}
	if k.Ctrl {
		name = "ctrl+" + name
	}
	if k.Alt {
		name = "alt+" + name
	}
	return name
}
