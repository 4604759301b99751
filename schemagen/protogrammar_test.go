package schemagen

import (
	"testing"

	"github.com/exip-go/exip/core"
)

func TestSimpleTypeGrammar(t *testing.T) {
	term := simpleTypeGrammar(core.NewStringDatatype(nil))
	g := term(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 1 {
		t.Fatalf("GetNumberOfEvents() = %d, want 1", got)
	}
	ev := g.GetProductionByEventCode(0).GetEvent()
	if !ev.IsEventType(core.EventTypeCharacters) {
		t.Errorf("event type = %v, want EventTypeCharacters", ev.GetEventType())
	}
}

func TestAttributeUseGrammarOptional(t *testing.T) {
	qnc := core.NewQNameContext(0, 0, core.QName{Local: "foo"})
	term := attributeUseGrammar(false, core.NewStringDatatype(nil), qnc)
	g := term(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 2 {
		t.Fatalf("GetNumberOfEvents() = %d, want 2 (AT + EE)", got)
	}
}

func TestAttributeUseGrammarRequired(t *testing.T) {
	qnc := core.NewQNameContext(0, 0, core.QName{Local: "foo"})
	term := attributeUseGrammar(true, core.NewStringDatatype(nil), qnc)
	g := term(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 1 {
		t.Fatalf("GetNumberOfEvents() = %d, want 1 (AT only)", got)
	}
}

func TestSequenceGrammarConcatenates(t *testing.T) {
	a := simpleTypeGrammar(core.NewStringDatatype(nil))
	b := simpleTypeGrammar(core.NewStringDatatype(nil))

	seq := sequenceGrammar([]termFn{a, b})
	g := seq(terminalGrammar())

	// Rule 0 only ever exposes CH leading into the second part; walking
	// the chain two levels deep should reach a second CH before EE.
	if got := g.GetNumberOfEvents(); got != 1 {
		t.Fatalf("GetNumberOfEvents() = %d, want 1", got)
	}
	next := g.GetProductionByEventCode(0).GetNextGrammar()
	if got := next.GetNumberOfEvents(); got != 1 {
		t.Fatalf("second rule GetNumberOfEvents() = %d, want 1", got)
	}
}

func TestChoiceGrammarUnionsAlternatives(t *testing.T) {
	qncA := core.NewQNameContext(0, 0, core.QName{Local: "a"})
	qncB := core.NewQNameContext(0, 1, core.QName{Local: "b"})

	choice := choiceGrammar([]termFn{
		elementTermGrammar(qncA),
		elementTermGrammar(qncB),
	})
	g := choice(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 2 {
		t.Fatalf("GetNumberOfEvents() = %d, want 2 (one SE per alternative)", got)
	}
}

func TestParticleGrammarBoundedOptional(t *testing.T) {
	qnc := core.NewQNameContext(0, 0, core.QName{Local: "item"})
	particle := particleGrammar(0, 2, elementTermGrammar(qnc))
	g := particle(terminalGrammar())

	// min=0 means the outermost copy is itself optional: its rule offers
	// SE(item) (take an occurrence, leading to the second optional copy)
	// and EE (stop here) straight to rest, so the caller can skip the
	// particle entirely.
	if got := g.GetNumberOfEvents(); got != 2 {
		t.Fatalf("GetNumberOfEvents() = %d, want 2 (SE + EE)", got)
	}
}

func TestParticleGrammarUnboundedUsesBackEdge(t *testing.T) {
	qnc := core.NewQNameContext(0, 0, core.QName{Local: "item"})
	particle := particleGrammar(0, Unbounded, elementTermGrammar(qnc))
	g := particle(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 2 {
		t.Fatalf("GetNumberOfEvents() = %d, want 2 (SE + EE)", got)
	}

	prod := g.GetProductionByEventCode(0)
	if !prod.GetEvent().IsEventType(core.EventTypeStartElement) {
		t.Fatalf("event type = %v, want EventTypeStartElement", prod.GetEvent().GetEventType())
	}
	// The back-edge is a placeholder that forwards to the loop body itself,
	// so querying through it reports the same event count as the body.
	loop := prod.GetNextGrammar()
	if got := loop.GetNumberOfEvents(); got != g.GetNumberOfEvents() {
		t.Errorf("back-edge GetNumberOfEvents() = %d, want %d (loops back to the body)", got, g.GetNumberOfEvents())
	}
}

func TestComplexTypeGrammarOrdersAttributesAheadOfContent(t *testing.T) {
	qncAttr := core.NewQNameContext(0, 0, core.QName{Local: "id"})
	attr := attributeUseGrammar(true, core.NewStringDatatype(nil), qncAttr)
	content := simpleTypeGrammar(core.NewStringDatatype(nil))

	term := complexTypeGrammar([]termFn{attr}, content, false)
	g := term(terminalGrammar())

	prod := g.GetProductionByEventCode(0)
	if !prod.GetEvent().IsEventType(core.EventTypeAttribute) {
		t.Fatalf("rule 0 event type = %v, want EventTypeAttribute", prod.GetEvent().GetEventType())
	}
}

func TestComplexTypeGrammarMixedAddsCharactersLoop(t *testing.T) {
	content := func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedElement()
		addOrClash(r0, core.NewEndElement(), rest)
		return r0
	}

	term := complexTypeGrammar(nil, content, true)
	g := term(terminalGrammar())

	if got := g.GetNumberOfEvents(); got != 2 {
		t.Fatalf("GetNumberOfEvents() = %d, want 2 (EE + generic CH loop)", got)
	}
}
