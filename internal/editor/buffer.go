// Package editor implements the multi-line input editor: text buffer,
// prompt history, autocomplete popup, and external-editor handoff.
package editor

import (
	"strings"
	"unicode"
)

// Buffer 是按 rune 寻址的编辑缓冲区。
type Buffer struct {
	runes  []rune
	cursor int
}

func (b *Buffer) Text() string { return string(b.runes) }

func (b *Buffer) Empty() bool { return len(b.runes) == 0 }

func (b *Buffer) Cursor() int { return b.cursor }

func (b *Buffer) SetText(text string) {
	b.runes = []rune(text)
	b.cursor = len(b.runes)
}

func (b *Buffer) Clear() {
	b.runes = nil
	b.cursor = 0
}

// Insert 在光标处插入文本。
func (b *Buffer) Insert(text string) {
	if text == "" {
		return
	}
	ins := []rune(text)
	b.runes = append(b.runes[:b.cursor], append(append([]rune{}, ins...), b.runes[b.cursor:]...)...)
	b.cursor += len(ins)
}

func (b *Buffer) InsertRune(r rune) {
	b.Insert(string(r))
}

func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
}

func (b *Buffer) Delete() {
	if b.cursor >= len(b.runes) {
		return
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
}

func (b *Buffer) Left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *Buffer) Right() {
	if b.cursor < len(b.runes) {
		b.cursor++
	}
}

// Home/End move within the current logical line, not the whole buffer.
func (b *Buffer) Home() {
	for b.cursor > 0 && b.runes[b.cursor-1] != '\n' {
		b.cursor--
	}
}

func (b *Buffer) End() {
	for b.cursor < len(b.runes) && b.runes[b.cursor] != '\n' {
		b.cursor++
	}
}

// DeleteWordBack removes the word before the cursor.
func (b *Buffer) DeleteWordBack() {
	start := b.cursor
	for b.cursor > 0 && unicode.IsSpace(b.runes[b.cursor-1]) {
		b.cursor--
	}
	for b.cursor > 0 && !unicode.IsSpace(b.runes[b.cursor-1]) {
		b.cursor--
	}
	b.runes = append(b.runes[:b.cursor], b.runes[start:]...)
}

// KillToStart 删除光标到行首的内容。
func (b *Buffer) KillToStart() {
	start := b.cursor
	b.Home()
	b.runes = append(b.runes[:b.cursor], b.runes[start:]...)
}

// KillToEnd 删除光标到行尾的内容。
func (b *Buffer) KillToEnd() {
	end := b.cursor
	for end < len(b.runes) && b.runes[end] != '\n' {
		end++
	}
	b.runes = append(b.runes[:b.cursor], b.runes[end:]...)
}

// CurrentWord returns the token the cursor sits in or directly after,
// for autocomplete.
func (b *Buffer) CurrentWord() string {
	start := b.cursor
	for start > 0 && !unicode.IsSpace(b.runes[start-1]) {
		start--
	}
	return string(b.runes[start:b.cursor])
}

// ReplaceCurrentWord swaps the token before the cursor for text.
func (b *Buffer) ReplaceCurrentWord(text string) {
	start := b.cursor
	for start > 0 && !unicode.IsSpace(b.runes[start-1]) {
		start--
	}
	b.runes = append(b.runes[:start], append([]rune(text), b.runes[b.cursor:]...)...)
	b.cursor = start + len([]rune(text))
}

// Lines 返回逻辑行与光标所在 (行, 列)。
func (b *Buffer) Lines() (lines []string, row, col int) {
	lines = strings.Split(string(b.runes), "\n")
	for i := 0; i < b.cursor; i++ {
		if b.runes[i] == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return lines, row, col
}
