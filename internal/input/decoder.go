package input

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	pasteStart = "[200~"
	pasteEnd   = "\x1b[201~"
)

// Decoder turns the raw byte stream of a terminal in raw mode into Key
// events. It owns no routing policy.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks for the next logical key event.
func (d *Decoder) Next() (Key, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch {
	case b == 0x1b:
		return d.decodeEscape()
	case b == '\r':
		return Key{Type: KeyEnter}, nil
	case b == '\n':
		return Key{Type: KeyRune, Rune: 'j', Ctrl: true}, nil
	case b == '\t':
		return Key{Type: KeyTab}, nil
	case b == 0x7f || b == 0x08:
		return Key{Type: KeyBackspace}, nil
	case b < 0x20:
		// Control chord: 0x01..0x1a map onto ctrl+a..ctrl+z.
		return Key{Type: KeyRune, Rune: rune('a' + b - 1), Ctrl: true}, nil
	default:
		return d.decodeRune(b)
	}
}

func (d *Decoder) decodeRune(first byte) (Key, error) {
	buf := []byte{first}
	for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
		b, err := d.r.ReadByte()
		if err != nil {
			return Key{}, err
		}
		buf = append(buf, b)
	}
	r, _ := utf8.DecodeRune(buf)
	return Key{Type: KeyRune, Rune: r}, nil
}

func (d *Decoder) decodeEscape() (Key, error) {
	// A lone ESC has no follow-up byte buffered.
	if d.r.Buffered() == 0 {
		return Key{Type: KeyEsc}, nil
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return Key{Type: KeyEsc}, nil
	}
	if b != '[' && b != 'O' {
		// ESC-prefixed rune: alt chord.
		k, err := d.decodeByte(b)
		if err != nil {
			return Key{}, err
		}
		k.Alt = true
		return k, nil
	}
	return d.decodeCSI(b)
}

func (d *Decoder) decodeByte(b byte) (Key, error) {
	switch {
	case b == '\r':
		return Key{Type: KeyEnter}, nil
	case b == 0x7f || b == 0x08:
		return Key{Type: KeyBackspace}, nil
	case b < 0x20:
		return Key{Type: KeyRune, Rune: rune('a' + b - 1), Ctrl: true}, nil
	default:
		return d.decodeRune(b)
	}
}

func (d *Decoder) decodeCSI(intro byte) (Key, error) {
	var seq strings.Builder
	seq.WriteByte(intro)
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Key{Type: KeyEsc}, nil
		}
		seq.WriteByte(b)
		// CSI sequences terminate on a byte in 0x40..0x7e.
		if b >= 0x40 && b <= 0x7e {
			break
		}
		if seq.Len() > 16 {
			break
		}
	}
	switch s := seq.String(); s {
	case "[A", "OA":
		return Key{Type: KeyUp}, nil
	case "[B", "OB":
		return Key{Type: KeyDown}, nil
	case "[C", "OC":
		return Key{Type: KeyRight}, nil
	case "[D", "OD":
		return Key{Type: KeyLeft}, nil
	case "[H", "OH", "[1~", "[7~":
		return Key{Type: KeyHome}, nil
	case "[F", "OF", "[4~", "[8~":
		return Key{Type: KeyEnd}, nil
	case "[5~":
		return Key{Type: KeyPgUp}, nil
	case "[6~":
		return Key{Type: KeyPgDown}, nil
	case "[3~":
		return Key{Type: KeyDelete}, nil
	case pasteStart:
		return d.readPaste()
	default:
		// Unknown sequence: swallow it rather than leaking bytes as text.
		return Key{Type: KeyEsc}, nil
	}
}

// readPaste consumes everything between the bracketed paste markers and
// delivers it as a single event, so pasted newlines never submit input.
func (d *Decoder) readPaste() (Key, error) {
	var body strings.Builder
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			break
		}
		body.WriteByte(b)
		if strings.HasSuffix(body.String(), pasteEnd) {
			payload := strings.TrimSuffix(body.String(), pasteEnd)
			return Key{Type: KeyPaste, Paste: payload}, nil
		}
		if body.Len() > 1<<20 {
			break
		}
	}
	return Key{Type: KeyPaste, Paste: body.String()}, nil
}
