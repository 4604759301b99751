package structs

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/exip-go/exip/core"
)

type person struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name"`
}

func TestStructRoundTripAttributeAndChildElement(t *testing.T) {
	encoder, err := NewStructEncoder(core.NewDefaultEXIFactory())
	if err != nil {
		t.Fatalf("NewStructEncoder() error = %v", err)
	}

	var exiBuf bytes.Buffer
	writer := bufio.NewWriter(&exiBuf)
	source := &person{ID: "42", Name: "Ada"}
	if err := encoder.EncodeStruct(writer, source, "person", ""); err != nil {
		t.Fatalf("EncodeStruct() error = %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("writer.Flush() error = %v", err)
	}

	decoder, err := NewStructDecoder(core.NewDefaultEXIFactory())
	if err != nil {
		t.Fatalf("NewStructDecoder() error = %v", err)
	}

	var out person
	if err := decoder.DecodeStruct(bufio.NewReader(bytes.NewReader(exiBuf.Bytes())), &out); err != nil {
		t.Fatalf("DecodeStruct() error = %v", err)
	}

	if out.ID != "42" {
		t.Errorf("ID = %q, want %q", out.ID, "42")
	}
	if out.Name != "Ada" {
		t.Errorf("Name = %q, want %q", out.Name, "Ada")
	}
}
