package core

import "testing"

func TestBuiltInFragmentContentLearnStartElementIsIdempotent(t *testing.T) {
	c := NewBuiltInFragmentContent()
	qnc := NewQNameContext(0, 0, QName{Local: "item"})
	se := NewStartElement(qnc)

	before := c.GetNumberOfEvents()
	c.LearnStartElement(se)
	afterFirst := c.GetNumberOfEvents()
	if afterFirst != before+1 {
		t.Fatalf("GetNumberOfEvents() after first learn = %d, want %d", afterFirst, before+1)
	}

	c.LearnStartElement(se)
	afterSecond := c.GetNumberOfEvents()
	if afterSecond != afterFirst {
		t.Errorf("GetNumberOfEvents() after relearning the same StartElement = %d, want %d (no duplicate production)", afterSecond, afterFirst)
	}
}

func TestBuiltInStartTagLearnEndElementIsIdempotent(t *testing.T) {
	tag := NewBuiltInStartTag()

	if tag.HasEndElement() {
		t.Fatal("expected HasEndElement() to be false before learning EE")
	}

	tag.LearnEndElement()
	afterFirst := tag.GetNumberOfEvents()
	if !tag.HasEndElement() {
		t.Fatal("expected HasEndElement() to be true after learning EE")
	}

	tag.LearnEndElement()
	afterSecond := tag.GetNumberOfEvents()
	if afterSecond != afterFirst {
		t.Errorf("GetNumberOfEvents() after relearning EE = %d, want %d (learnedEE guards against a duplicate terminal production)", afterSecond, afterFirst)
	}
}

func TestBuiltInStartTagLearnAttributeXsiTypeIsIdempotent(t *testing.T) {
	tag := NewBuiltInStartTag()
	// namespaceUriID 2 / localNameID 1 is xsi:type's well-known position in
	// the initial URI/local-name partitions.
	xsiType := NewQNameContext(2, 1, QName{Local: "type"})
	at := NewAttribute(xsiType)

	if err := tag.LearnAttribute(at); err != nil {
		t.Fatalf("LearnAttribute() error = %v", err)
	}
	afterFirst := tag.GetNumberOfEvents()

	if err := tag.LearnAttribute(at); err != nil {
		t.Fatalf("LearnAttribute() error = %v", err)
	}
	afterSecond := tag.GetNumberOfEvents()

	if afterSecond != afterFirst {
		t.Errorf("GetNumberOfEvents() after relearning xsi:type = %d, want %d (learnedXsiType guards against a duplicate production)", afterSecond, afterFirst)
	}
}
