package core

import (
	"bufio"
	"bytes"
	"testing"
)

func TestBitWriterReaderRoundTripBits(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewBitWriter(*bw)

	values := []struct {
		value int
		bits  int
	}{
		{5, 3},
		{21, 5},
		{200, 8},
	}

	for _, v := range values {
		if err := w.WriteBits(v.value, v.bits); err != nil {
			t.Fatalf("WriteBits(%d, %d) error = %v", v.value, v.bits, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	r := NewBitReader(bufio.NewReader(bytes.NewReader(buf.Bytes())))
	for _, v := range values {
		got, err := r.ReadBits(v.bits)
		if err != nil {
			t.Fatalf("ReadBits(%d) error = %v", v.bits, err)
		}
		if got != v.value {
			t.Errorf("ReadBits(%d) = %d, want %d", v.bits, got, v.value)
		}
	}
}

func TestBitWriterReaderRoundTripSingleBits(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0}

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewBitWriter(*bw)

	for _, b := range bits {
		if err := w.WriteBit(b); err != nil {
			t.Fatalf("WriteBit(%d) error = %v", b, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got := buf.Len(); got != 1 {
		t.Fatalf("wrote %d bytes, want 1 (8 bits pack into one byte)", got)
	}

	r := NewBitReader(bufio.NewReader(bytes.NewReader(buf.Bytes())))
	for i, want := range bits {
		got, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit() #%d error = %v", i, err)
		}
		if got != want {
			t.Errorf("ReadBit() #%d = %d, want %d", i, got, want)
		}
	}
}

func TestBitWriterAlignPadsToByteBoundary(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewBitWriter(*bw)

	if err := w.WriteBits(1, 3); err != nil {
		t.Fatalf("WriteBits() error = %v", err)
	}
	if w.IsByteAligned() {
		t.Fatal("expected writer to not be byte-aligned after writing 3 bits")
	}
	if err := w.Align(); err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if !w.IsByteAligned() {
		t.Error("expected writer to be byte-aligned after Align()")
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf.Len(); got != 1 {
		t.Fatalf("buf.Len() = %d, want 1", got)
	}
}

func TestBitReaderLookAheadDoesNotConsume(t *testing.T) {
	r := NewBitReader(bufio.NewReader(bytes.NewReader([]byte{0x42})))

	peeked, err := r.LookAhead()
	if err != nil {
		t.Fatalf("LookAhead() error = %v", err)
	}
	if peeked != 0x42 {
		t.Fatalf("LookAhead() = %#x, want 0x42", peeked)
	}

	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != 0x42 {
		t.Fatalf("Read() = %#x, want 0x42", got)
	}
}
