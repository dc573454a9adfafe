package compact

import "github.com/JeffersonLab/go-evio/dtype"

// Write*Data append a leaf payload directly after the most recently opened
// header, padding width-1/2 element arrays up to a 4-byte boundary. These
// calls must happen with exactly one matching OpenXxx still unclosed; the
// subsequent CloseStructure computes the length field from the bytes
// written here.

func (b *Builder) WriteInt8Data(v []int8) error {
	raw := make([]byte, len(v))
	for i, x := range v {
		raw[i] = byte(x)
	}
	return b.writePadded(raw, 1)
}

func (b *Builder) WriteUint8Data(v []uint8) error {
	return b.writePadded(v, 1)
}

func (b *Builder) WriteInt16Data(v []int16) error {
	for _, x := range v {
		if err := b.buf.PutUint16(uint16(x)); err != nil {
			return err
		}
	}
	return b.padTo4(len(v) * 2)
}

func (b *Builder) WriteUint16Data(v []uint16) error {
	for _, x := range v {
		if err := b.buf.PutUint16(x); err != nil {
			return err
		}
	}
	return b.padTo4(len(v) * 2)
}

func (b *Builder) WriteInt32Data(v []int32) error {
	for _, x := range v {
		if err := b.buf.PutUint32(uint32(x)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) WriteUint32Data(v []uint32) error {
	for _, x := range v {
		if err := b.buf.PutUint32(x); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) WriteInt64Data(v []int64) error {
	for _, x := range v {
		if err := b.buf.PutUint64(uint64(x)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) WriteUint64Data(v []uint64) error {
	for _, x := range v {
		if err := b.buf.PutUint64(x); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) WriteFloat32Data(v []float32) error {
	for _, x := range v {
		if err := b.buf.PutFloat32(x); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) WriteFloat64Data(v []float64) error {
	for _, x := range v {
		if err := b.buf.PutFloat64(x); err != nil {
			return err
		}
	}
	return nil
}

// WriteStringData encodes strs as NUL-separated UTF-8 with a doubled final
// "\x04" sentinel, then pads to a 4-byte boundary with "\x04" fill bytes.
func (b *Builder) WriteStringData(strs []string) error {
	var raw []byte
	for _, s := range strs {
		raw = append(raw, []byte(s)...)
		raw = append(raw, 0)
	}
	raw = append(raw, 0x04, 0x04)
	if err := b.buf.PutBytes(raw); err != nil {
		return err
	}
	for len(raw)%4 != 0 {
		if err := b.buf.PutByte(0x04); err != nil {
			return err
		}
		raw = append(raw, 0x04)
	}
	return nil
}

func (b *Builder) writePadded(raw []byte, width int) error {
	if err := b.buf.PutBytes(raw); err != nil {
		return err
	}
	return b.padTo4(len(raw))
}

func (b *Builder) padTo4(n int) error {
	pad := (4 - n%4) % 4
	for i := 0; i < pad; i++ {
		if err := b.buf.PutByte(0); err != nil {
			return err
		}
	}
	// Record pad in the innermost open header: bank word1 bits 15-14,
	// segment bits 23-22 (tagsegments have no padding field).
	if len(b.stack) == 0 || b.stack[len(b.stack)-1].kind == dtype.KindTagsegment {
		return nil
	}
	f := b.stack[len(b.stack)-1]
	off, shift := f.headerStart, 22
	if f.kind == dtype.KindBank {
		off, shift = f.headerStart+4, 14
	}
	w, err := b.buf.GetUint32At(off)
	if err != nil {
		return err
	}
	return b.buf.PutUint32At(off, w&^(3<<shift)|uint32(pad)<<shift)
}
