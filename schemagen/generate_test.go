package schemagen

import (
	"testing"

	"github.com/exip-go/exip/core"
)

// buildPersonForest assembles a small unqualified-schema forest: a bare
// string-typed global element ("greeting"), and a global element ("person")
// typed by a named complexType carrying one required attribute and a single
// mandatory child element.
func buildPersonForest() []*TreeTableEntry {
	globals := &GlobalDefs{ElementFormDefault: "unqualified", AttributeFormDefault: "unqualified"}

	greeting := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "greeting"}, Globals: globals}

	attrID := &TreeTableEntry{Kind: KindAttribute, Attrs: map[AttrTag]string{AttrName: "id", AttrUse: "required"}, Globals: globals}
	nameElem := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "name"}, Globals: globals}
	seq := &TreeTableEntry{Kind: KindSequence, Child: nameElem}
	attrID.Next = seq

	personType := &TreeTableEntry{Kind: KindComplexType, Attrs: map[AttrTag]string{AttrName: "personType"}, Child: attrID}
	person := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "person", AttrType: "personType"}, Globals: globals}

	return []*TreeTableEntry{greeting, person, personType}
}

func TestGenerateBuildsDocumentAndFragmentGrammars(t *testing.T) {
	grammars, err := Generate(buildPersonForest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	ctx := grammars.GetGrammarContext()
	if got := ctx.GetNumberOfGrammarUriContexts(); got != 4 {
		t.Fatalf("GetNumberOfGrammarUriContexts() = %d, want 4 (empty, xml, xsi, xsd)", got)
	}

	doc := grammars.GetDocumentGrammar()
	if got := doc.GetNumberOfEvents(); got != 1 {
		t.Fatalf("document GetNumberOfEvents() = %d, want 1 (SD)", got)
	}
	docContent := doc.GetProductionByEventCode(0).GetNextGrammar()
	if got := docContent.GetNumberOfEvents(); got != 2 {
		t.Fatalf("doc content GetNumberOfEvents() = %d, want 2 (SE greeting, SE person)", got)
	}

	frag := grammars.GetFragmentGrammar()
	if got := frag.GetNumberOfEvents(); got != 1 {
		t.Fatalf("fragment GetNumberOfEvents() = %d, want 1 (SD)", got)
	}
	fragContent := frag.GetProductionByEventCode(0).GetNextGrammar()
	if got := fragContent.GetNumberOfEvents(); got != 3 {
		t.Fatalf("fragment content GetNumberOfEvents() = %d, want 3 (ED, SE greeting, SE person)", got)
	}
}

func TestGenerateResolvesNamedComplexType(t *testing.T) {
	forest := buildPersonForest()
	grammars, err := Generate(forest)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	ctx := grammars.GetGrammarContext()
	uri0 := ctx.GetGrammarUriContext("")
	if uri0 == nil {
		t.Fatal("expected a grammar URI context for the empty namespace")
	}

	personQNC := findByLocalName(uri0, "person")
	if personQNC == nil {
		t.Fatal("expected a QNameContext for \"person\"")
	}

	se := personQNC.GetGlobalStartElement()
	if se == nil {
		t.Fatal("expected person's global StartElement to be set")
	}

	fst := se.GetGrammar()
	// id (required attribute) + xsi:type (always added by applyNillable).
	if got := fst.GetNumberOfEvents(); got != 2 {
		t.Fatalf("person's type grammar GetNumberOfEvents() = %d, want 2 (AT id, AT xsi:type)", got)
	}
}

// findByLocalName scans a URI partition for the QNameContext with the given
// local name.
func findByLocalName(uri *core.GrammarUriContext, name string) *core.QNameContext {
	for i := 0; i < uri.GetNumberOfQNames(); i++ {
		qnc := uri.GetQNameContextByLocalNameID(i)
		if qnc != nil && qnc.GetLocalName() == name {
			return qnc
		}
	}
	return nil
}
