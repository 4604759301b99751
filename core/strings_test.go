package core

import (
	"bufio"
	"bytes"
	"testing"
)

func TestStringEncoderWriteValueMissEncodesLiteral(t *testing.T) {
	se := NewStringEncoderImpl(true)
	qnc := NewQNameContext(0, 0, QName{Local: "greeting"})

	var buf bytes.Buffer
	enc := NewBitEncoderChannel(*bufio.NewWriter(&buf))
	if err := se.WriteValue(qnc, enc, "hi"); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	dec := NewBitDecoderChannel(bufio.NewReader(bytes.NewReader(buf.Bytes())))
	i, err := dec.DecodeUnsignedInteger()
	if err != nil {
		t.Fatalf("DecodeUnsignedInteger() error = %v", err)
	}
	if i != len("hi")+2 {
		t.Fatalf("discriminator = %d, want %d (len+2)", i, len("hi")+2)
	}
	runes, err := dec.DecodeStringOnly(i - 2)
	if err != nil {
		t.Fatalf("DecodeStringOnly() error = %v", err)
	}
	if got := string(runes); got != "hi" {
		t.Errorf("DecodeStringOnly() = %q, want %q", got, "hi")
	}

	if vc := se.GetValueContainer("hi"); vc == nil {
		t.Error("expected \"hi\" to be added to the value partition after a miss")
	}
}

func TestStringEncoderWriteValueHitsEncodeLocalAndGlobalIDs(t *testing.T) {
	se := NewStringEncoderImpl(true)
	qncA := NewQNameContext(0, 0, QName{Local: "a"})
	qncB := NewQNameContext(0, 1, QName{Local: "b"})

	if err := se.AddValue(qncA, "hello"); err != nil {
		t.Fatalf("AddValue(hello) error = %v", err)
	}
	if err := se.AddValue(qncB, "world"); err != nil {
		t.Fatalf("AddValue(world) error = %v", err)
	}

	var buf bytes.Buffer
	enc := NewBitEncoderChannel(*bufio.NewWriter(&buf))

	// Same QNameContext as the add ==> local hit, discriminator 0.
	if err := se.WriteValue(qncA, enc, "hello"); err != nil {
		t.Fatalf("WriteValue(local hit) error = %v", err)
	}
	// Different QNameContext than the add ==> global hit, discriminator 1.
	if err := se.WriteValue(qncA, enc, "world"); err != nil {
		t.Fatalf("WriteValue(global hit) error = %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	worldVC := se.GetValueContainer("world")
	if worldVC == nil {
		t.Fatal("expected \"world\" to be present in the value partition")
	}

	dec := NewBitDecoderChannel(bufio.NewReader(bytes.NewReader(buf.Bytes())))

	discLocal, err := dec.DecodeUnsignedInteger()
	if err != nil {
		t.Fatalf("DecodeUnsignedInteger() error = %v", err)
	}
	if discLocal != 0 {
		t.Fatalf("local-hit discriminator = %d, want 0", discLocal)
	}
	// GetNumberOfStringValues(qncA) is 1 ("hello" only) ==> 0 bits of width.
	localID, err := dec.DecodeNBitUnsignedInteger(0)
	if err != nil {
		t.Fatalf("DecodeNBitUnsignedInteger(local) error = %v", err)
	}
	if localID != 0 {
		t.Errorf("local ID = %d, want 0", localID)
	}

	discGlobal, err := dec.DecodeUnsignedInteger()
	if err != nil {
		t.Fatalf("DecodeUnsignedInteger() error = %v", err)
	}
	if discGlobal != 1 {
		t.Fatalf("global-hit discriminator = %d, want 1", discGlobal)
	}
	// Two global values total ("hello", "world") ==> 1 bit of width.
	globalID, err := dec.DecodeNBitUnsignedInteger(1)
	if err != nil {
		t.Fatalf("DecodeNBitUnsignedInteger(global) error = %v", err)
	}
	if globalID != worldVC.GlobalValueID {
		t.Errorf("global ID = %d, want %d", globalID, worldVC.GlobalValueID)
	}
}

func TestBoundedStringCoderEvictsOldestAtCapacity(t *testing.T) {
	se := NewBoundedStringEncoderImpl(false, -1, 2)

	for _, v := range []string{"aaa", "bbb", "ccc"} {
		if err := se.AddValue(nil, v); err != nil {
			t.Fatalf("AddValue(%q) error = %v", v, err)
		}
	}

	if got := se.GetValueContainerSize(); got != 2 {
		t.Fatalf("GetValueContainerSize() = %d, want 2 (capacity caps the live set)", got)
	}
	if vc := se.GetValueContainer("aaa"); vc != nil {
		t.Error("expected \"aaa\" to have been evicted once capacity was exceeded")
	}
	bbbVC := se.GetValueContainer("bbb")
	if bbbVC == nil {
		t.Fatal("expected \"bbb\" to still be present")
	}
	if bbbVC.GlobalValueID != 1 {
		t.Errorf("\"bbb\" GlobalValueID = %d, want 1", bbbVC.GlobalValueID)
	}
	cccVC := se.GetValueContainer("ccc")
	if cccVC == nil {
		t.Fatal("expected \"ccc\" to be present")
	}
	if cccVC.GlobalValueID != 0 {
		t.Errorf("\"ccc\" GlobalValueID = %d, want 0 (wrapped back to the start of the ring)", cccVC.GlobalValueID)
	}

	sd := NewBoundedStringDecoderImpl(false, -1, 2)
	for _, v := range []string{"aaa", "bbb", "ccc"} {
		if err := sd.AddValue(nil, NewStringValueFromString(v)); err != nil {
			t.Fatalf("AddValue(%q) error = %v", v, err)
		}
	}

	if got := len(sd.globalValues); got != 2 {
		t.Fatalf("len(globalValues) = %d, want 2", got)
	}
	if got, _ := sd.globalValues[0].ToString(); got != "ccc" {
		t.Errorf("globalValues[0] = %q, want %q (mirrors the encoder's ring position)", got, "ccc")
	}
	if got, _ := sd.globalValues[1].ToString(); got != "bbb" {
		t.Errorf("globalValues[1] = %q, want %q", got, "bbb")
	}
}
