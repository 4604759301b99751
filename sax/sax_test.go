package sax

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/exip-go/exip/core"
)

// encodeThenDecode runs the full SAX encoder over the given XML document,
// then feeds the resulting EXI stream back through the SAX decoder,
// returning the root element name reported by the decoder and the
// re-serialized XML.
func encodeThenDecode(t *testing.T, xmlDoc string) (string, string) {
	t.Helper()

	encFactory := core.NewDefaultEXIFactory()
	encoder, err := NewSAXEncoder(encFactory)
	if err != nil {
		t.Fatalf("NewSAXEncoder() error = %v", err)
	}

	var exiBuf bytes.Buffer
	writer := bufio.NewWriter(&exiBuf)
	if err := encoder.SetWriter(writer); err != nil {
		t.Fatalf("SetWriter() error = %v", err)
	}
	if err := encoder.Encode(bufio.NewReader(strings.NewReader(xmlDoc)), nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("writer.Flush() error = %v", err)
	}

	decFactory := core.NewDefaultEXIFactory()
	decoder, err := NewSAXDecoder(decFactory)
	if err != nil {
		t.Fatalf("NewSAXDecoder() error = %v", err)
	}

	var xmlOut bytes.Buffer
	xmlWriter := xml.NewEncoder(&xmlOut)
	rootName, err := decoder.Parse(bufio.NewReader(bytes.NewReader(exiBuf.Bytes())), xmlWriter)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	return rootName, xmlOut.String()
}

func TestSAXRoundTripSimpleElementWithCharacters(t *testing.T) {
	rootName, out := encodeThenDecode(t, `<greeting>hello</greeting>`)

	if rootName != "greeting" {
		t.Errorf("root name = %q, want %q", rootName, "greeting")
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("decoded XML = %q, want it to contain %q", out, "hello")
	}
	if !strings.Contains(out, "greeting") {
		t.Errorf("decoded XML = %q, want it to contain the element name %q", out, "greeting")
	}
}

func TestSAXRoundTripNestedElementsWithAttribute(t *testing.T) {
	rootName, out := encodeThenDecode(t, `<person id="42"><name>Ada</name></person>`)

	if rootName != "person" {
		t.Errorf("root name = %q, want %q", rootName, "person")
	}
	if !strings.Contains(out, "name") {
		t.Errorf("decoded XML = %q, want it to contain the nested element %q", out, "name")
	}
	if !strings.Contains(out, "Ada") {
		t.Errorf("decoded XML = %q, want it to contain %q", out, "Ada")
	}
	if !strings.Contains(out, "42") {
		t.Errorf("decoded XML = %q, want it to contain the attribute value %q", out, "42")
	}
}
