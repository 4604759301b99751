// Package schemagen turns an already-parsed XML Schema tree-table into the
// EXI schema-informed grammars core.Grammars expects (spec.md §4.7, "C7").
// The XSD file parser that produces the tree-table is out of scope (spec.md
// §1); this package only consumes the contract.
package schemagen

import "github.com/exip-go/exip/utils"

// Kind classifies a TreeTableEntry node.
type Kind int

const (
	KindElement Kind = iota
	KindAttribute
	KindSequence
	KindChoice
	KindAll
	KindGroup
	KindAttributeGroup
	KindSimpleType
	KindComplexType
	KindSimpleContent
	KindComplexContent
	KindRestriction
	KindExtension
	KindList
	KindUnion
	KindAny
	KindAnyAttribute
	KindEnumeration
	KindPattern
	KindFacet
)

// AttrTag is one of the fixed ATTRIBUTE_* tags spec.md §6 names.
type AttrTag int

const (
	AttrName AttrTag = iota
	AttrType
	AttrRef
	AttrBase
	AttrMinOccurs
	AttrMaxOccurs
	AttrForm
	AttrUse
	AttrNamespace
	AttrNillable
	AttrItemType
	AttrValue
	AttrMixed
)

// Unbounded is the sentinel maxOccurs value for "unbounded".
const Unbounded = -1

// GlobalDefs carries the schema-wide defaults spec.md §6 names.
type GlobalDefs struct {
	TargetNamespace      string
	ElementFormDefault   string // "qualified" | "unqualified"
	AttributeFormDefault string
}

// TreeTableEntry is one node of the parsed-schema forest (spec.md §6).
type TreeTableEntry struct {
	Kind Kind

	Attrs map[AttrTag]string

	Child     *TreeTableEntry
	Next      *TreeTableEntry
	Supertype *TreeTableEntry

	Globals *GlobalDefs
}

func (e *TreeTableEntry) attr(tag AttrTag) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[tag]
	return v, ok
}

// Name returns the entry's "name" attribute, or "" if absent.
func (e *TreeTableEntry) Name() string {
	v, _ := e.attr(AttrName)
	return v
}

// QName resolves the entry's qualified name against its global defaults'
// target namespace, honoring elementFormDefault/attributeFormDefault.
func (e *TreeTableEntry) QName(attributeForm bool) utils.QName {
	name := e.Name()
	ns := ""
	if e.Globals != nil {
		form := e.Globals.ElementFormDefault
		if attributeForm {
			form = e.Globals.AttributeFormDefault
		}
		if form == "qualified" {
			ns = e.Globals.TargetNamespace
		}
	}
	return utils.QName{Space: ns, Local: name}
}

// MinOccurs returns the entry's minOccurs, defaulting to 1 as XSD does.
func (e *TreeTableEntry) MinOccurs() int {
	v, ok := e.attr(AttrMinOccurs)
	if !ok {
		return 1
	}
	return atoiOr(v, 1)
}

// MaxOccurs returns the entry's maxOccurs, defaulting to 1; "unbounded"
// maps to the Unbounded sentinel.
func (e *TreeTableEntry) MaxOccurs() int {
	v, ok := e.attr(AttrMaxOccurs)
	if !ok {
		return 1
	}
	if v == "unbounded" {
		return Unbounded
	}
	return atoiOr(v, 1)
}

// IsMixed reports whether the complex type entry declares mixed content.
func (e *TreeTableEntry) IsMixed() bool {
	v, _ := e.attr(AttrMixed)
	return v == "true" || v == "1"
}

// IsNillable reports whether the element entry is nillable.
func (e *TreeTableEntry) IsNillable() bool {
	v, _ := e.attr(AttrNillable)
	return v == "true" || v == "1"
}

// Required reports whether an attribute use entry is "required".
func (e *TreeTableEntry) Required() bool {
	v, _ := e.attr(AttrUse)
	return v == "required"
}

// Children walks the Next-linked sibling list starting at Child.
func (e *TreeTableEntry) Children() []*TreeTableEntry {
	var out []*TreeTableEntry
	for c := e.Child; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n := 0
	neg := false
	i := 0
	if len(s) == 0 {
		return fallback
	}
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return fallback
	}
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
