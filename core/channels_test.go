package core

import (
	"bufio"
	"bytes"
	"testing"
)

func encodeDecodeRoundTrip(t *testing.T, encode func(*BitEncoderChannel) error, decode func(*BitDecoderChannel) error) {
	t.Helper()

	var buf bytes.Buffer
	enc := NewBitEncoderChannel(*bufio.NewWriter(&buf))
	if err := encode(enc); err != nil {
		t.Fatalf("encode error = %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	dec := NewBitDecoderChannel(bufio.NewReader(bytes.NewReader(buf.Bytes())))
	if err := decode(dec); err != nil {
		t.Fatalf("decode error = %v", err)
	}
}

func TestNBitUnsignedIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		value int
		bits  int
	}{
		{0, 4},
		{9, 4},
		{200, 8},
		{1, 1},
	}

	for _, tt := range tests {
		encodeDecodeRoundTrip(t,
			func(enc *BitEncoderChannel) error { return enc.EncodeNBitUnsignedInteger(tt.value, tt.bits) },
			func(dec *BitDecoderChannel) error {
				got, err := dec.DecodeNBitUnsignedInteger(tt.bits)
				if err != nil {
					return err
				}
				if got != tt.value {
					t.Errorf("DecodeNBitUnsignedInteger(%d) = %d, want %d", tt.bits, got, tt.value)
				}
				return nil
			},
		)
	}
}

func TestBooleanRoundTrip(t *testing.T) {
	for _, want := range []bool{true, false} {
		encodeDecodeRoundTrip(t,
			func(enc *BitEncoderChannel) error { return enc.EncodeBoolean(want) },
			func(dec *BitDecoderChannel) error {
				got, err := dec.DecodeBoolean()
				if err != nil {
					return err
				}
				if got != want {
					t.Errorf("DecodeBoolean() = %v, want %v", got, want)
				}
				return nil
			},
		)
	}
}

func TestUnsignedIntegerRoundTripMultiByte(t *testing.T) {
	for _, want := range []int{0, 1, 127, 128, 300, 16384, 1 << 20} {
		encodeDecodeRoundTrip(t,
			func(enc *BitEncoderChannel) error { return enc.EncodeUnsignedInteger(want) },
			func(dec *BitDecoderChannel) error {
				got, err := dec.DecodeUnsignedInteger()
				if err != nil {
					return err
				}
				if got != want {
					t.Errorf("DecodeUnsignedInteger() = %d, want %d", got, want)
				}
				return nil
			},
		)
	}
}

func TestSignedIntegerRoundTrip(t *testing.T) {
	for _, want := range []int{0, 42, -1, -128, 1000, -1000} {
		encodeDecodeRoundTrip(t,
			func(enc *BitEncoderChannel) error { return enc.EncodeInteger(want) },
			func(dec *BitDecoderChannel) error {
				iv, err := dec.DecodeIntegerValue()
				if err != nil {
					return err
				}
				if got := iv.Value32(); got != want {
					t.Errorf("DecodeIntegerValue().Value32() = %d, want %d", got, want)
				}
				return nil
			},
		)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, want := range []string{"", "hello", "exi codec", "a"} {
		encodeDecodeRoundTrip(t,
			func(enc *BitEncoderChannel) error { return enc.EncodeString(want) },
			func(dec *BitDecoderChannel) error {
				runes, err := dec.DecodeString()
				if err != nil {
					return err
				}
				if got := string(runes); got != want {
					t.Errorf("DecodeString() = %q, want %q", got, want)
				}
				return nil
			},
		)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	encodeDecodeRoundTrip(t,
		func(enc *BitEncoderChannel) error {
			return enc.EncodeDecimal(true, IntegerValueOf32(12), IntegerValueOf32(340))
		},
		func(dec *BitDecoderChannel) error {
			dv, err := dec.DecodeDecimalValue()
			if err != nil {
				return err
			}
			if !dv.IsNegative() {
				t.Error("IsNegative() = false, want true")
			}
			if got := dv.GetIntegral().Value32(); got != 12 {
				t.Errorf("GetIntegral().Value32() = %d, want 12", got)
			}
			if got := dv.GetRevFractional().Value32(); got != 340 {
				t.Errorf("GetRevFractional().Value32() = %d, want 340", got)
			}
			return nil
		},
	)
}

func TestFloatRoundTrip(t *testing.T) {
	encodeDecodeRoundTrip(t,
		func(enc *BitEncoderChannel) error {
			return enc.EncodeFloat(NewFloatValue(IntegerValueOf32(314), IntegerValueOf32(-2)))
		},
		func(dec *BitDecoderChannel) error {
			fv, err := dec.DecodeFloatValue()
			if err != nil {
				return err
			}
			if got := fv.GetMantissa().Value32(); got != 314 {
				t.Errorf("GetMantissa().Value32() = %d, want 314", got)
			}
			if got := fv.GetExponent().Value32(); got != -2 {
				t.Errorf("GetExponent().Value32() = %d, want -2", got)
			}
			return nil
		},
	)
}
