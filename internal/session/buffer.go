package session

// lineBuffer is a single line of editable text with a rune cursor
type lineBuffer struct {
	runes  []rune
	cursor int
}

func (b *lineBuffer) String() string { return string(b.runes) }

// Cursor returns the cursor position in runes
func (b *lineBuffer) Cursor() int { return b.cursor }

func (b *lineBuffer) set(s string) {
	b.runes = []rune(s)
	b.cursor = len(b.runes)
}

func (b *lineBuffer) reset() {
	b.runes = nil
	b.cursor = 0
}

func (b *lineBuffer) insert(r rune) {
	b.runes = append(b.runes, 0)
	copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
	b.runes[b.cursor] = r
	b.cursor++
}

func (b *lineBuffer) backspace() {
	if b.cursor == 0 {
		return
	}
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
}

func (b *lineBuffer) deleteForward() {
	if b.cursor >= len(b.runes) {
		return
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
}

func (b *lineBuffer) left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *lineBuffer) right() {
	if b.cursor < len(b.runes) {
		b.cursor++
	}
}

func (b *lineBuffer) home() { b.cursor = 0 }

func (b *lineBuffer) end() { b.cursor = len(b.runes) }
