package buffer

// Relative get/put operations advance Position() by the width read or
// written; absolute operations take an explicit offset and never move the
// cursor. Both families return a bounds error rather than panicking, so a
// truncated record or block can be reported as xerr.ErrTruncated instead of
// crashing the reader.

// GetByte reads one byte at the current position.
func (b *ByteBuffer) GetByte() (byte, error) {
	v, err := b.GetByteAt(b.pos)
	if err != nil {
		return 0, err
	}
	b.pos++
	return v, nil
}

// GetByteAt reads one byte at offset without moving the cursor.
func (b *ByteBuffer) GetByteAt(offset int) (byte, error) {
	if err := b.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

// PutByte writes one byte at the current position.
func (b *ByteBuffer) PutByte(v byte) error {
	if err := b.PutByteAt(b.pos, v); err != nil {
		return err
	}
	b.pos++
	return nil
}

// PutByteAt writes one byte at offset without moving the cursor.
func (b *ByteBuffer) PutByteAt(offset int, v byte) error {
	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkBounds(offset, 1); err != nil {
		return err
	}
	b.data[offset] = v
	return nil
}

// GetUint16 reads a 16-bit unsigned integer at the current position.
func (b *ByteBuffer) GetUint16() (uint16, error) {
	v, err := b.GetUint16At(b.pos)
	if err != nil {
		return 0, err
	}
	b.pos += 2
	return v, nil
}

// GetUint16At reads a 16-bit unsigned integer at offset.
func (b *ByteBuffer) GetUint16At(offset int) (uint16, error) {
	if err := b.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	return b.order.Uint16(b.data[offset : offset+2]), nil
}

// PutUint16 writes a 16-bit unsigned integer at the current position.
func (b *ByteBuffer) PutUint16(v uint16) error {
	if err := b.PutUint16At(b.pos, v); err != nil {
		return err
	}
	b.pos += 2
	return nil
}

// PutUint16At writes a 16-bit unsigned integer at offset.
func (b *ByteBuffer) PutUint16At(offset int, v uint16) error {
	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkBounds(offset, 2); err != nil {
		return err
	}
	b.order.PutUint16(b.data[offset:offset+2], v)
	return nil
}

// GetUint32 reads a 32-bit unsigned integer at the current position.
func (b *ByteBuffer) GetUint32() (uint32, error) {
	v, err := b.GetUint32At(b.pos)
	if err != nil {
		return 0, err
	}
	b.pos += 4
	return v, nil
}

// GetUint32At reads a 32-bit unsigned integer at offset.
func (b *ByteBuffer) GetUint32At(offset int) (uint32, error) {
	if err := b.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return b.order.Uint32(b.data[offset : offset+4]), nil
}

// PutUint32 writes a 32-bit unsigned integer at the current position.
func (b *ByteBuffer) PutUint32(v uint32) error {
	if err := b.PutUint32At(b.pos, v); err != nil {
		return err
	}
	b.pos += 4
	return nil
}

// PutUint32At writes a 32-bit unsigned integer at offset.
func (b *ByteBuffer) PutUint32At(offset int, v uint32) error {
	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkBounds(offset, 4); err != nil {
		return err
	}
	b.order.PutUint32(b.data[offset:offset+4], v)
	return nil
}

// GetUint64 reads a 64-bit unsigned integer at the current position.
func (b *ByteBuffer) GetUint64() (uint64, error) {
	v, err := b.GetUint64At(b.pos)
	if err != nil {
		return 0, err
	}
	b.pos += 8
	return v, nil
}

// GetUint64At reads a 64-bit unsigned integer at offset.
func (b *ByteBuffer) GetUint64At(offset int) (uint64, error) {
	if err := b.checkBounds(offset, 8); err != nil {
		return 0, err
	}
	return b.order.Uint64(b.data[offset : offset+8]), nil
}

// PutUint64 writes a 64-bit unsigned integer at the current position.
func (b *ByteBuffer) PutUint64(v uint64) error {
	if err := b.PutUint64At(b.pos, v); err != nil {
		return err
	}
	b.pos += 8
	return nil
}

// PutUint64At writes a 64-bit unsigned integer at offset.
func (b *ByteBuffer) PutUint64At(offset int, v uint64) error {
	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkBounds(offset, 8); err != nil {
		return err
	}
	b.order.PutUint64(b.data[offset:offset+8], v)
	return nil
}

// GetFloat32 reads an IEEE-754 single-precision float at the current position.
func (b *ByteBuffer) GetFloat32() (float32, error) {
	bits, err := b.GetUint32()
	if err != nil {
		return 0, err
	}
	return float32FromBits(bits), nil
}

// PutFloat32 writes an IEEE-754 single-precision float at the current position.
func (b *ByteBuffer) PutFloat32(v float32) error {
	return b.PutUint32(float32ToBits(v))
}

// GetFloat64 reads an IEEE-754 double-precision float at the current position.
func (b *ByteBuffer) GetFloat64() (float64, error) {
	bits, err := b.GetUint64()
	if err != nil {
		return 0, err
	}
	return float64FromBits(bits), nil
}

// PutFloat64 writes an IEEE-754 double-precision float at the current position.
func (b *ByteBuffer) PutFloat64(v float64) error {
	return b.PutUint64(float64ToBits(v))
}

// GetBytes reads n raw bytes at the current position. The returned slice
// aliases the buffer's backing array; callers that need an independent copy
// must clone it.
func (b *ByteBuffer) GetBytes(n int) ([]byte, error) {
	if err := b.checkBounds(b.pos, n); err != nil {
		return nil, err
	}
	v := b.data[b.pos : b.pos+n]
	b.pos += n
	return v, nil
}

// PutBytes writes a raw byte slice at the current position.
func (b *ByteBuffer) PutBytes(v []byte) error {
	if err := b.checkWritable(); err != nil {
		return err
	}
	if err := b.checkBounds(b.pos, len(v)); err != nil {
		return err
	}
	copy(b.data[b.pos:b.pos+len(v)], v)
	b.pos += len(v)
	return nil
}
