package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontWide   = 0x10
	FontTall   = 0x01
)

const (
	NarrowPaperChars = 32
	WidePaperChars   = 48
)

// CharsForPaper maps a paper width in millimetres to characters per line.
// 58 mm rolls and narrower print 32 columns, anything wider prints 48.
func CharsForPaper(widthMM int) int {
	if widthMM > 0 && widthMM <= 58 {
		return NarrowPaperChars
	}
	return WidePaperChars
}

// Column describes one cell of a table row. Weights are relative; the last
// column absorbs rounding.
type Column struct {
	Text       string
	Weight     int
	AlignRight bool
}

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document printing charWidth characters per line.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = NarrowPaperChars
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

func (d *Document) Width() int {
	return d.width
}

// Init sends ESC @.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes s followed by a line feed. Empty strings are skipped.
func (d *Document) Text(s string) *Document {
	if s == "" {
		return d
	}
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule of char.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints key flush left and value flush right on one line.
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(value)
	d.buf.WriteByte(LF)
	return d
}

// Row lays cols out across the line width by weight, truncating cells that
// do not fit.
func (d *Document) Row(cols ...Column) *Document {
	d.buf.WriteString(d.formatRow(cols))
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) formatRow(cols []Column) string {
	total := 0
	for _, c := range cols {
		total += c.Weight
	}
	if total == 0 {
		return ""
	}

	var sb strings.Builder
	used := 0
	for i, c := range cols {
		w := d.width * c.Weight / total
		if i == len(cols)-1 {
			w = d.width - used
		}
		used += w
		sb.WriteString(fit(c.Text, w, c.AlignRight))
	}
	return sb.String()
}

// fit pads or truncates s to exactly w runes. Right-aligned cells keep one
// leading space so adjacent numbers never touch.
func fit(s string, w int, right bool) string {
	if w <= 0 {
		return ""
	}
	room := w
	if right {
		room = w - 1
	}
	r := []rune(s)
	if len(r) > room {
		r = r[:room]
	}
	pad := strings.Repeat(" ", w-len(r))
	if right {
		return pad + string(r)
	}
	return string(r) + pad
}

func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}
