package sui

import (
	"bytes"
	"encoding/binary"
)

// bcsWriter appends Binary Canonical Serialization encodings to a buffer.
type bcsWriter struct {
	buf bytes.Buffer
}

func (w *bcsWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *bcsWriter) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *bcsWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *bcsWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *bcsWriter) bool(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

// uleb128 writes a sequence length or enum variant index.
func (w *bcsWriter) uleb128(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf.WriteByte(b | 0x80)
			continue
		}
		w.buf.WriteByte(b)
		return
	}
}

// fixed writes bytes without a length prefix.
func (w *bcsWriter) fixed(b []byte) {
	w.buf.Write(b)
}

// bytes writes a length-prefixed byte vector.
func (w *bcsWriter) bytes(b []byte) {
	w.uleb128(uint64(len(b)))
	w.buf.Write(b)
}

func (w *bcsWriter) str(s string) {
	w.bytes([]byte(s))
}

func (w *bcsWriter) address(a [AddressLength]byte) {
	w.fixed(a[:])
}
