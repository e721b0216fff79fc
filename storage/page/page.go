package page

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/ryogrid/SamehadaBlockIO/common"
	"github.com/ryogrid/SamehadaBlockIO/errors"
)

const ErrNoValue = errors.Error("not enough bytes in page from cursor")
const ErrInvalidEncoding = errors.Error("string in page is not valid UTF-8")

/**
 * Page is the in-memory staging buffer of one block. It has a single cursor shared by
 * the write and read primitives, and every primitive advances the cursor by the number
 * of bytes it consumed.
 *
 * Writing at a cursor inside the logical content overwrites in place, writing at the
 * logical end appends. So one page can be filled freshly or patched without separate APIs.
 */
type Page struct {
	buf      []byte
	capacity int
	pos      int
}

// New returns an empty page which reserves capacity bytes
func New(capacity int) *Page {
	common.SH_Assert(capacity >= 0, "negative page capacity")
	return &Page{make([]byte, 0, capacity), capacity, 0}
}

// NewFromBytes wraps data as the page content. Cursor is at 0.
func NewFromBytes(data []byte) *Page {
	return &Page{data, len(data), 0}
}

// MaxStrLength returns bytes needed to store a string of strLen runes in the worst case
func MaxStrLength(strLen int) int {
	return common.SizeOfInt + strLen*utf8.UTFMax
}

// WriteByte always returns nil. The error is only there to satisfy io.ByteWriter.
func (p *Page) WriteByte(b byte) error {
	if p.pos < len(p.buf) {
		p.buf[p.pos] = b
	} else {
		p.buf = append(p.buf, b)
	}
	p.pos++
	return nil
}

func (p *Page) WriteBytes(bs []byte) {
	// overwrite the overlapping part, append the rest
	n := copy(p.buf[p.pos:], bs)
	p.buf = append(p.buf, bs[n:]...)
	p.pos += len(bs)
}

// WriteInt writes v as 4 bytes big-endian
func (p *Page) WriteInt(v int32) {
	var b [common.SizeOfInt]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	p.WriteBytes(b[:])
}

// WriteStr writes the UTF-8 byte length of s as int then the bytes of s
func (p *Page) WriteStr(s string) {
	p.WriteInt(int32(len(s)))
	p.WriteBytes([]byte(s))
}

// Flip moves the cursor back to the head. Contents are kept.
func (p *Page) Flip() {
	p.pos = 0
}

func (p *Page) remaining() int {
	return len(p.buf) - p.pos
}

func (p *Page) ReadByte() (byte, error) {
	if p.remaining() < 1 {
		return 0, ErrNoValue
	}
	b := p.buf[p.pos]
	p.pos++
	return b, nil
}

func (p *Page) ReadInt() (int32, error) {
	if p.remaining() < common.SizeOfInt {
		return 0, ErrNoValue
	}
	v := int32(binary.BigEndian.Uint32(p.buf[p.pos : p.pos+common.SizeOfInt]))
	p.pos += common.SizeOfInt
	return v, nil
}

// ReadStr reads a string written by WriteStr.
// When the bytes are not UTF-8 the cursor is left past them.
func (p *Page) ReadStr() (string, error) {
	start := p.pos
	n, err := p.ReadInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > p.remaining() {
		p.pos = start
		return "", ErrNoValue
	}
	raw := p.buf[p.pos : p.pos+int(n)]
	p.pos += int(n)
	if !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	return string(raw), nil
}

// SetContents replaces the logical content with data and puts the cursor at its end.
// Call Flip before reading fields.
func (p *Page) SetContents(data []byte) {
	p.buf = append(p.buf[:0], data...)
	p.pos = len(p.buf)
}

// Contents returns the logical content. The slice is shared with the page.
func (p *Page) Contents() []byte {
	return p.buf
}

func (p *Page) Len() int {
	return len(p.buf)
}

func (p *Page) Pos() int {
	return p.pos
}

func (p *Page) Capacity() int {
	return p.capacity
}
