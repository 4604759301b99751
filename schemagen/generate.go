package schemagen

import (
	"sort"
	"strings"

	"github.com/exip-go/exip/core"
	"github.com/exip-go/exip/internal/xlog"
	"github.com/exip-go/exip/utils"
)

// Generate builds schema-informed grammars from a parsed tree-table forest
// (spec.md §6, §4.7 "Flow"). forest holds one entry per top-level
// declaration — a global element, a named complexType, or a named
// simpleType — with nested declarations hanging off Child/Next the way
// spec.md §6 describes. Grammars are assembled from the §4.7 operators in
// protogrammar.go; recursive element content is resolved the way the
// teacher's own decoder resolves it at runtime (core/coders.go's
// GetGlobalStartElement/GetTypeGrammar lookup by QNameContext), so no
// back-edge or placeholder is needed across element boundaries — only
// particleGrammar's own unbounded self-loop (see protogrammar.go) still
// uses one.
func Generate(forest []*TreeTableEntry) (grammars *core.SchemaInformedGrammars, err error) {
	defer func() {
		if r := recover(); r != nil {
			if clash, ok := r.(grammarClash); ok {
				err = clash.err
				return
			}
			panic(r)
		}
	}()

	gen := newGenerator(forest)
	gen.buildContext()

	var globals []*TreeTableEntry
	for _, e := range forest {
		if e.Kind == KindElement {
			globals = append(globals, e)
		}
	}
	sort.Slice(globals, func(i, j int) bool {
		return globals[i].QName(false).String() < globals[j].QName(false).String()
	})

	for _, ge := range globals {
		gen.ensureGlobalElement(ge)
	}

	doc := gen.buildDocumentGrammar(globals)
	frag := gen.buildFragmentGrammar(globals)

	return core.NewSchemaInformedGrammars(gen.grammarContext, doc, frag, core.NewSchemaInformedFragmentContent()), nil
}

type generator struct {
	forest []*TreeTableEntry

	grammarContext *core.GrammarContext
	qncByQName     map[utils.QName]*core.QNameContext
	xsdByName      map[string]*core.QNameContext
	xsiNilQNC      *core.QNameContext
	xsiTypeQNC     *core.QNameContext
	dynamicURI     string
	dynamicURIID   int

	byLocalName map[string]*TreeTableEntry // named complexType/simpleType, keyed by local name
}

func newGenerator(forest []*TreeTableEntry) *generator {
	g := &generator{
		forest:      forest,
		qncByQName:  map[utils.QName]*core.QNameContext{},
		xsdByName:   map[string]*core.QNameContext{},
		byLocalName: map[string]*TreeTableEntry{},
	}
	for _, e := range forest {
		switch e.Kind {
		case KindComplexType, KindSimpleType:
			if n := e.Name(); n != "" {
				g.byLocalName[n] = e
			}
		}
	}
	return g
}

// buildContext pre-populates URI 0-3 exactly as spec.md §4.3 mandates
// ({"", xml, xsi, xs}), then adds one URI (4) for the schema's target
// namespace, scoped to the element/attribute qnames actually declared in
// the forest rather than every XSD builtin (a deliberate narrowing of the
// teacher's SchemaLessGrammars eager load — see DESIGN.md).
func (g *generator) buildContext() {
	tns := g.targetNamespace()
	names := g.collectDeclaredNames()
	// An unqualified schema's declared names belong to the empty URI (0)
	// itself rather than a separate dynamic partition, since EXI identifies
	// a URI partition by its string value — a second "" entry at URI 4
	// would silently shadow URI 0's.
	foldIntoEmpty := tns == ""

	var uriCtxs []*core.GrammarUriContext

	var emptyQncs []*core.QNameContext
	if foldIntoEmpty {
		emptyQncs = make([]*core.QNameContext, len(names))
		for i, ln := range names {
			qnc := core.NewQNameContext(0, i, utils.QName{Local: ln})
			emptyQncs[i] = qnc
			g.qncByQName[utils.QName{Local: ln}] = qnc
		}
	} else {
		emptyQncs = make([]*core.QNameContext, len(core.LocalNamesEmpty))
	}
	uriCtxs = append(uriCtxs, core.NewGrammarUriContext(0, core.EmptyString, emptyQncs, core.PrefixesEmpty))

	xmlQncs := make([]*core.QNameContext, len(core.LocalNamesXML))
	for i, ln := range core.LocalNamesXML {
		xmlQncs[i] = core.NewQNameContext(1, i, utils.QName{Space: core.XML_NS_URI, Local: ln})
	}
	uriCtxs = append(uriCtxs, core.NewGrammarUriContext(1, core.XML_NS_URI, xmlQncs, core.PrefixesXML))

	xsiQncs := make([]*core.QNameContext, len(core.LocalNamesXSI))
	for i, ln := range core.LocalNamesXSI {
		xsiQncs[i] = core.NewQNameContext(2, i, utils.QName{Space: core.XMLSchemaInstanceNS_URI, Local: ln})
	}
	uriCtxs = append(uriCtxs, core.NewGrammarUriContext(2, core.XMLSchemaInstanceNS_URI, xsiQncs, core.PrefixesXSI))
	g.xsiNilQNC = xsiQncs[0]
	g.xsiTypeQNC = xsiQncs[1]

	xsdQncs := make([]*core.QNameContext, len(core.LocalNamesXSD))
	for i, ln := range core.LocalNamesXSD {
		xsdQncs[i] = core.NewQNameContext(3, i, utils.QName{Space: core.XMLSchemaNS_URI, Local: ln})
		g.xsdByName[ln] = xsdQncs[i]
	}
	uriCtxs = append(uriCtxs, core.NewGrammarUriContext(3, core.XMLSchemaNS_URI, xsdQncs, core.PrefixesXSD))

	if !foldIntoEmpty && tns != core.XMLSchemaNS_URI && tns != core.XML_NS_URI && tns != core.XMLSchemaInstanceNS_URI {
		tnsQncs := make([]*core.QNameContext, len(names))
		for i, ln := range names {
			qnc := core.NewQNameContext(4, i, utils.QName{Space: tns, Local: ln})
			tnsQncs[i] = qnc
			g.qncByQName[utils.QName{Space: tns, Local: ln}] = qnc
		}
		uriCtxs = append(uriCtxs, core.NewGrammarUriContext(4, tns, tnsQncs, nil))
		g.dynamicURIID = 4
	} else {
		g.dynamicURIID = 0
	}
	g.dynamicURI = tns

	total := 0
	for _, u := range uriCtxs {
		total += u.GetNumberOfQNames()
	}
	g.grammarContext = core.NewGrammarContext(uriCtxs, total)
}

func (g *generator) targetNamespace() string {
	for _, e := range g.forest {
		if e.Globals != nil {
			return e.Globals.TargetNamespace
		}
	}
	return ""
}

// collectDeclaredNames walks the whole forest and returns the sorted,
// de-duplicated set of every element/attribute local name declared
// anywhere (global or nested) — the superset this schema's target-namespace
// QNameContexts need.
func (g *generator) collectDeclaredNames() []string {
	seen := map[string]bool{}
	var walk func(e *TreeTableEntry)
	walk = func(e *TreeTableEntry) {
		if e == nil {
			return
		}
		if e.Kind == KindElement || e.Kind == KindAttribute {
			if n := e.Name(); n != "" {
				seen[n] = true
			}
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	for _, e := range g.forest {
		walk(e)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (g *generator) qncFor(qn utils.QName) *core.QNameContext {
	if qnc, ok := g.qncByQName[qn]; ok {
		return qnc
	}
	// Referenced but never declared (e.g. a dangling "ref") — register it
	// on demand so generation still completes instead of panicking.
	xlog.Default.Warning("qname %q referenced but never declared in the forest, registering on demand", qn.String())
	qnc := core.NewQNameContext(g.dynamicURIID, len(g.qncByQName), qn)
	g.qncByQName[qn] = qnc
	return qnc
}

// ensureGlobalElement builds (once) the QNameContext wiring for a
// top-level element declaration: its global StartElement event and the
// type grammar that event pushes, mirroring how core/coders.go's
// getGlobalStartElement/updateCurrentRule expect to find them (C5). The
// event is registered before the type grammar is built, so a recursive
// reference to the same element reuses it instead of rebuilding the type.
func (g *generator) ensureGlobalElement(e *TreeTableEntry) *core.QNameContext {
	qn := e.QName(false)
	qnc := g.qncFor(qn)
	if qnc.GetGlobalStartElement() != nil {
		return qnc
	}

	se := core.NewStartElement(qnc)
	qnc.SetGlobalStartElement(se)
	fst := g.firstStartTagFor(e)
	se.SetGrammar(fst)
	qnc.SetTypeGrammar(fst)
	return qnc
}

// firstStartTagFor builds the SchemaInformedFirstStartTag an element
// particle's content pushes, resolving its type by name (AttrType) or, for
// an anonymous inline type, from the element's own Child.
func (g *generator) firstStartTagFor(e *TreeTableEntry) *core.SchemaInformedFirstStartTag {
	typeEntry := g.resolveTypeEntry(e)
	if typeEntry == nil {
		// No schema information for this element's content: fall back to
		// the permissive "untyped string, no attributes" grammar.
		raw := simpleTypeGrammar(core.NewStringDatatype(nil))(terminalGrammar())
		fst := promoteToFirstStartTag(raw)
		g.applyNillable(fst, e)
		return fst
	}

	raw := g.termForType(typeEntry)(terminalGrammar())
	fst := promoteToFirstStartTag(raw)
	g.applyNillable(fst, e)
	return fst
}

// resolveTypeEntry finds the tree-table node describing e's type: a named
// complexType/simpleType referenced via the "type" attribute, or an
// anonymous type nested directly under e.
func (g *generator) resolveTypeEntry(e *TreeTableEntry) *TreeTableEntry {
	if typeName, ok := e.attr(AttrType); ok && typeName != "" {
		if named, ok := g.byLocalName[localPart(typeName)]; ok {
			return named
		}
		if _, builtin := g.xsdByName[localPart(typeName)]; !builtin {
			xlog.Default.Warning("element %q references unresolved type %q, falling back to string content", e.Name(), typeName)
		}
		return nil // built-in simple type, handled by termForType's default case
	}
	for _, c := range e.Children() {
		if c.Kind == KindComplexType || c.Kind == KindSimpleType {
			return c
		}
	}
	return nil
}

func (g *generator) applyNillable(fst *core.SchemaInformedFirstStartTag, e *TreeTableEntry) {
	fst.SetNillable(e.IsNillable())
	if e.IsNillable() {
		addOrClash(fst, core.NewAttributeWithDatatype(g.xsiNilQNC, core.NewBooleanDatatype(nil)), fst)
	}
	fst.SetTypeCastable(true)
	addOrClash(fst, core.NewAttributeWithDatatype(g.xsiTypeQNC, core.NewStringDatatype(nil)), fst)
}

// termForType builds the term for a (possibly anonymous) type entry, or —
// if typeEntry is nil or names an XSD builtin — falls back to the builtin
// simple-type datatype by name.
func (g *generator) termForType(typeEntry *TreeTableEntry) termFn {
	if typeEntry == nil {
		return simpleTypeGrammar(core.NewStringDatatype(nil))
	}
	switch typeEntry.Kind {
	case KindSimpleType:
		return simpleTypeGrammar(g.datatypeForSimpleType(typeEntry))
	case KindComplexType:
		return g.termForComplexType(typeEntry)
	default:
		return simpleTypeGrammar(core.NewStringDatatype(nil))
	}
}

func (g *generator) datatypeForSimpleType(e *TreeTableEntry) core.Datatype {
	// Restriction/list/union base resolution is scoped to the declared
	// base's builtin name (see DESIGN.md); user-defined simple-type chains
	// deeper than one level fall back to the base's own default.
	for _, c := range e.Children() {
		if base, ok := c.attr(AttrBase); ok && base != "" {
			return g.datatypeForXsdName(localPart(base))
		}
		if item, ok := c.attr(AttrItemType); ok && item != "" {
			return core.NewListDatatype(g.datatypeForXsdName(localPart(item)), nil)
		}
	}
	return core.NewStringDatatype(nil)
}

func (g *generator) datatypeForXsdName(name string) core.Datatype {
	schemaType := g.xsdByName[name]
	switch name {
	case "boolean":
		return core.NewBooleanDatatype(schemaType)
	case "decimal":
		return core.NewDecimalDatatype(schemaType)
	case "float", "double":
		return core.NewFloatDatatype(schemaType)
	case "integer", "int", "long", "short", "byte",
		"negativeInteger", "nonPositiveInteger", "positiveInteger":
		return core.NewIntegerDatatype(schemaType)
	case "nonNegativeInteger", "unsignedInt", "unsignedLong", "unsignedShort", "unsignedByte":
		return core.NewUnsignedIntegerDatatype(schemaType)
	case "base64Binary":
		return core.NewBinaryBase64Datatype(schemaType)
	case "hexBinary":
		return core.NewBinaryHexDatatype(schemaType)
	case "dateTime":
		return core.NewDatetimeDatatype(core.DateTimeDateTime, schemaType)
	case "date":
		return core.NewDatetimeDatatype(core.DateTimeDate, schemaType)
	case "time":
		return core.NewDatetimeDatatype(core.DateTimeTime, schemaType)
	case "gYear":
		return core.NewDatetimeDatatype(core.DateTimeGYear, schemaType)
	case "gYearMonth":
		return core.NewDatetimeDatatype(core.DateTimeGYearMonth, schemaType)
	case "gMonth":
		return core.NewDatetimeDatatype(core.DateTimeGMonth, schemaType)
	case "gMonthDay":
		return core.NewDatetimeDatatype(core.DateTimeGMonthDay, schemaType)
	case "gDay":
		return core.NewDatetimeDatatype(core.DateTimeGDay, schemaType)
	default:
		if schemaType == nil {
			xlog.Default.Warning("unrecognized XSD builtin %q, treating as xs:string", name)
		}
		return core.NewStringDatatype(schemaType)
	}
}

type namedAttrUse struct {
	qname utils.QName
	term  termFn
}

func (g *generator) termForComplexType(e *TreeTableEntry) termFn {
	var attrUses []namedAttrUse
	var contentChild *TreeTableEntry

	for _, c := range e.Children() {
		switch c.Kind {
		case KindAttribute:
			qn := c.QName(true)
			dt := g.datatypeForAttributeUse(c)
			attrUses = append(attrUses, namedAttrUse{qn, attributeUseGrammar(c.Required(), dt, g.qncFor(qn))})
		case KindSequence, KindChoice, KindAll, KindGroup, KindSimpleContent, KindComplexContent:
			contentChild = c
		}
	}

	sort.Slice(attrUses, func(i, j int) bool {
		return attrUses[i].qname.String() < attrUses[j].qname.String()
	})
	terms := make([]termFn, len(attrUses))
	for i, a := range attrUses {
		terms[i] = a.term
	}

	var content termFn
	if contentChild != nil {
		content = g.termForGroup(contentChild)
	} else {
		content = func(rest core.Grammar) core.Grammar { return rest }
	}

	return complexTypeGrammar(terms, content, e.IsMixed())
}

func (g *generator) datatypeForAttributeUse(c *TreeTableEntry) core.Datatype {
	if typeName, ok := c.attr(AttrType); ok && typeName != "" {
		local := localPart(typeName)
		if named, ok := g.byLocalName[local]; ok && named.Kind == KindSimpleType {
			return g.datatypeForSimpleType(named)
		}
		return g.datatypeForXsdName(local)
	}
	return core.NewStringDatatype(nil)
}

func (g *generator) termForGroup(e *TreeTableEntry) termFn {
	switch e.Kind {
	case KindSequence, KindAll, KindGroup:
		children := e.Children()
		parts := make([]termFn, len(children))
		for i, c := range children {
			parts[i] = g.termForParticle(c)
		}
		return sequenceGrammar(parts)
	case KindChoice:
		children := e.Children()
		parts := make([]termFn, len(children))
		for i, c := range children {
			parts[i] = g.termForParticle(c)
		}
		return choiceGrammar(parts)
	case KindComplexContent:
		for _, c := range e.Children() {
			switch c.Kind {
			case KindSequence, KindChoice, KindAll, KindGroup:
				return g.termForGroup(c)
			}
		}
		return func(rest core.Grammar) core.Grammar { return rest }
	case KindSimpleContent:
		for _, c := range e.Children() {
			if base, ok := c.attr(AttrBase); ok && base != "" {
				return simpleTypeGrammar(g.datatypeForXsdName(localPart(base)))
			}
		}
		return simpleTypeGrammar(core.NewStringDatatype(nil))
	default:
		return g.termForParticle(e)
	}
}

func (g *generator) termForParticle(c *TreeTableEntry) termFn {
	var base termFn
	switch c.Kind {
	case KindElement:
		base = g.termForElementParticle(c)
	case KindAny:
		anyAny := true
		if ns, ok := c.attr(AttrNamespace); ok && ns != "" && ns != "##any" {
			anyAny = false
		}
		base = wildcardTermGrammar(anyAny, nil, splitNamespaces(c))
	case KindSequence, KindChoice, KindAll, KindGroup, KindSimpleContent, KindComplexContent:
		base = g.termForGroup(c)
	default:
		base = func(rest core.Grammar) core.Grammar { return rest }
	}
	return particleGrammar(c.MinOccurs(), c.MaxOccurs(), base)
}

func splitNamespaces(c *TreeTableEntry) []string {
	ns, ok := c.attr(AttrNamespace)
	if !ok || ns == "" || ns == "##any" || ns == "##other" {
		return nil
	}
	return strings.Fields(ns)
}

// termForElementParticle wires SE(qname) into the parent's content model;
// the pushed child grammar is looked up through the QNameContext at decode
// time (core/coders.go's getGlobalStartElement/GetTypeGrammar), exactly
// like the teacher's own built-in-grammar learning does for runtime
// elements, so repeated references to the same qname always share one
// grammar instance (see DESIGN.md's "shared local elements" simplification).
func (g *generator) termForElementParticle(c *TreeTableEntry) termFn {
	qnc := g.ensureGlobalElement(c)
	return func(rest core.Grammar) core.Grammar {
		r0 := core.NewSchemaInformedElement()
		addOrClash(r0, qnc.GetGlobalStartElement(), rest)
		return r0
	}
}

func (g *generator) buildDocumentGrammar(globals []*TreeTableEntry) *core.Document {
	docEnd := core.NewDocEndWithLabel("DocEnd")
	docEnd.AddTerminalProduction(core.NewEndDocument())

	docContent := core.NewSchemaInformedDocContentWithLabel("DocContent")
	for _, ge := range globals {
		qnc := g.qncFor(ge.QName(false))
		addOrClash(docContent, qnc.GetGlobalStartElement(), docEnd)
	}

	doc := core.NewDocumentWithLabel("Document")
	addOrClash(doc, core.NewStartDocument(), docContent)
	return doc
}

func (g *generator) buildFragmentGrammar(globals []*TreeTableEntry) *core.Fragment {
	content := core.NewSchemaInformedFragmentContentWithLabel("FragmentContent")
	content.AddTerminalProduction(core.NewEndDocument())
	for _, ge := range globals {
		qnc := g.qncFor(ge.QName(false))
		addOrClash(content, qnc.GetGlobalStartElement(), content)
	}

	frag := core.NewFragmentWithLabel("Fragment")
	addOrClash(frag, core.NewStartDocument(), content)
	return frag
}

// promoteToFirstStartTag copies an ordinary start-tag grammar's
// productions into a fresh SchemaInformedFirstStartTag — the same
// "clone top level, fixing up self-references" step
// core/grammar.go's NewSchemaInformedFirstStartTagWithStartTag performs,
// generalized to accept any core.Grammar rather than requiring the
// narrower SchemaInformedFirstStartTagGrammar interface the teacher's own
// constructor demands (see DESIGN.md).
func promoteToFirstStartTag(raw core.Grammar) *core.SchemaInformedFirstStartTag {
	if fst, ok := raw.(*core.SchemaInformedFirstStartTag); ok {
		return fst
	}
	fst := core.NewSchemaInformedFirstStartTag()
	fst.SetElementContentGrammar(raw.GetElementContentGrammar())
	for i := 0; i < raw.GetNumberOfEvents(); i++ {
		prod := raw.GetProductionByEventCode(i)
		next := prod.GetNextGrammar()
		if next == raw {
			next = fst
		}
		addOrClash(fst, prod.GetEvent(), next)
	}
	return fst
}

func localPart(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
