package schemagen

import "github.com/exip-go/exip/core"

// termFn builds a grammar fragment given what should happen once the
// fragment is satisfied ("rest" — the continuation). This is the
// constructive equivalent of spec.md §4.7's mutable proto-grammar
// operators: instead of building a detached (rules × productions) array
// and later splicing EE productions into a successor (concatenate), each
// operator here takes its successor up front and wires straight into it,
// which is how a reference-counted GC language naturally expresses the
// same "every EE eventually leads here" contract spec.md describes.
type termFn func(rest core.Grammar) core.Grammar

// grammarClash is raised (via panic, caught at generate.go's public
// entry point) when two productions disagree on what follows the same
// event — spec.md §4.7's "resolving same-terminal/different-non-terminal
// collisions" case, surfaced as an error rather than synthesized away
// (see DESIGN.md Open Questions).
type grammarClash struct{ err error }

func addOrClash(g core.Grammar, event core.Event, next core.Grammar) {
	if err := g.AddProduction(event, next); err != nil {
		panic(grammarClash{err})
	}
}

// terminalGrammar is "R1 := EE" — the fragment that ends the rule.
func terminalGrammar() core.Grammar {
	g := core.NewSchemaInformedElement()
	g.AddTerminalProduction(core.NewEndElement())
	return g
}

// simpleTypeGrammar is spec.md §4.7's simpleTypeGrammar(typeId):
// R0 := CH(typeId) R1, R1 := EE (or whatever rest names).
func simpleTypeGrammar(datatype core.Datatype) termFn {
	return func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedElement()
		addOrClash(r0, core.NewCharacters(datatype), rest)
		return r0
	}
}

// attributeUseGrammar is spec.md §4.7's attributeUseGrammar(required,
// typeId, qname): R0 := AT(qname, typeId) R1 [ | EE if not required ].
func attributeUseGrammar(required bool, datatype core.Datatype, qnc *core.QNameContext) termFn {
	return func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedStartTag()
		addOrClash(r0, core.NewAttributeWithDatatype(qnc, datatype), rest)
		if !required {
			addOrClash(r0, core.NewEndElement(), rest)
		}
		return r0
	}
}

// elementTermGrammar is spec.md §4.7's elementTermGrammar(qname, grIndex):
// R0 := SE(qname) R1. The pushed child grammar itself is resolved by the
// grammar stack at runtime (core/grammar.go's push-on-SE, C5); this
// fragment only records that the parent's content model admits the event.
func elementTermGrammar(qnc *core.QNameContext) termFn {
	return func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedElement()
		addOrClash(r0, core.NewStartElement(qnc), rest)
		return r0
	}
}

// wildcardTermGrammar is spec.md §4.7's wildcardTermGrammar(namespaces):
// ##any/##other emit SE(*); explicit namespaces emit one SE(uri) each.
func wildcardTermGrammar(anyAny bool, namespaceIDs []int, namespaces []string) termFn {
	return func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedElement()
		if anyAny || len(namespaces) == 0 {
			addOrClash(r0, core.NewStartElementGeneric(), rest)
			return r0
		}
		for i, ns := range namespaces {
			addOrClash(r0, core.NewStartElementNS(namespaceIDs[i], ns), rest)
		}
		return r0
	}
}

// concatenate is spec.md §4.7's concatenate(L, R): splice R after L by
// threading R as L's continuation.
func concatenate(left, right termFn) termFn {
	return func(rest core.Grammar) core.Grammar {
		return left(right(rest))
	}
}

// sequenceGrammar is spec.md §4.7's sequenceGrammar(parts): left-fold
// concatenate.
func sequenceGrammar(parts []termFn) termFn {
	return func(rest core.Grammar) core.Grammar {
		g := rest
		for i := len(parts) - 1; i >= 0; i-- {
			g = parts[i](g)
		}
		return g
	}
}

// choiceGrammar is spec.md §4.7's choiceGrammar(parts): concatenate part 0,
// then union every other part's rule-0 productions into the accumulator,
// resolving collisions the way core.Grammar.AddProduction already does
// (same event + different next-grammar is rejected rather than
// fixed-point-synthesized — see DESIGN.md).
func choiceGrammar(parts []termFn) termFn {
	return func(rest core.Grammar) core.Grammar {
		combined := core.NewSchemaInformedElement()
		for _, part := range parts {
			g := part(rest)
			for i := 0; i < g.GetNumberOfEvents(); i++ {
				prod := g.GetProductionByEventCode(i)
				addOrClash(combined, prod.GetEvent(), prod.GetNextGrammar())
			}
		}
		return combined
	}
}

// particleGrammar is spec.md §4.7's particleGrammar(min, max, term):
// concatenate term min times; if max > min, splice in max-min further
// optional copies (each also wired directly to rest, making it
// skippable); if max is Unbounded, wire a back-edge instead of further
// concatenation.
func particleGrammar(min, max int, term termFn) termFn {
	return func(rest core.Grammar) core.Grammar {
		var head core.Grammar

		if max == Unbounded {
			loop := newPlaceholder()
			body := term(loop)
			addOrClash(body, core.NewEndElement(), rest)
			loop.resolve(body)
			head = body
		} else {
			tail := rest
			for i := 0; i < max-min; i++ {
				iter := term(tail)
				addOrClash(iter, core.NewEndElement(), rest)
				tail = iter
			}
			head = tail
		}

		for i := 0; i < min; i++ {
			head = term(head)
		}
		return head
	}
}

// complexTypeGrammar is spec.md §4.7's complexTypeGrammar(attrUses,
// contentGr, isMixed): attrUses ordered by (uri, ln), concatenated ahead
// of the content grammar; if isMixed, a CH(untyped) self-loop is added to
// the content grammar's own start rule only; the later rules of contentGr
// do not get one.
func complexTypeGrammar(attrUses []termFn, content termFn, isMixed bool) termFn {
	return func(rest core.Grammar) core.Grammar {
		contentStart := content(rest)
		if isMixed {
			addOrClash(contentStart, core.NewCharactersGeneric(), contentStart)
		}

		g := contentStart
		for i := len(attrUses) - 1; i >= 0; i-- {
			g = attrUses[i](g)
		}
		return g
	}
}
