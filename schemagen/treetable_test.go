package schemagen

import "testing"

func TestTreeTableEntryOccurs(t *testing.T) {
	tests := []struct {
		name        string
		attrs       map[AttrTag]string
		wantMin     int
		wantMax     int
	}{
		{"defaults", nil, 1, 1},
		{"explicit bounds", map[AttrTag]string{AttrMinOccurs: "0", AttrMaxOccurs: "5"}, 0, 5},
		{"unbounded", map[AttrTag]string{AttrMaxOccurs: "unbounded"}, 1, Unbounded},
		{"garbage falls back", map[AttrTag]string{AttrMinOccurs: "nope"}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &TreeTableEntry{Kind: KindElement, Attrs: tt.attrs}
			if got := e.MinOccurs(); got != tt.wantMin {
				t.Errorf("MinOccurs() = %d, want %d", got, tt.wantMin)
			}
			if got := e.MaxOccurs(); got != tt.wantMax {
				t.Errorf("MaxOccurs() = %d, want %d", got, tt.wantMax)
			}
		})
	}
}

func TestTreeTableEntryQName(t *testing.T) {
	globals := &GlobalDefs{
		TargetNamespace:      "http://example.com/ns",
		ElementFormDefault:   "qualified",
		AttributeFormDefault: "unqualified",
	}

	elem := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "foo"}, Globals: globals}
	if qn := elem.QName(false); qn.Space != globals.TargetNamespace || qn.Local != "foo" {
		t.Errorf("element QName() = %+v, want namespace-qualified foo", qn)
	}

	attr := &TreeTableEntry{Kind: KindAttribute, Attrs: map[AttrTag]string{AttrName: "bar"}, Globals: globals}
	if qn := attr.QName(true); qn.Space != "" || qn.Local != "bar" {
		t.Errorf("attribute QName() = %+v, want unqualified bar", qn)
	}
}

func TestTreeTableEntryFlags(t *testing.T) {
	e := &TreeTableEntry{
		Kind: KindComplexType,
		Attrs: map[AttrTag]string{
			AttrMixed:    "true",
			AttrNillable: "true",
			AttrUse:      "required",
		},
	}

	if !e.IsMixed() {
		t.Error("IsMixed() = false, want true")
	}
	if !e.IsNillable() {
		t.Error("IsNillable() = false, want true")
	}
	if !e.Required() {
		t.Error("Required() = false, want true")
	}
}

func TestTreeTableEntryChildren(t *testing.T) {
	c1 := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "a"}}
	c2 := &TreeTableEntry{Kind: KindElement, Attrs: map[AttrTag]string{AttrName: "b"}}
	c1.Next = c2
	parent := &TreeTableEntry{Kind: KindSequence, Child: c1}

	children := parent.Children()
	if len(children) != 2 {
		t.Fatalf("Children() returned %d entries, want 2", len(children))
	}
	if children[0].Name() != "a" || children[1].Name() != "b" {
		t.Errorf("Children() = [%s, %s], want [a, b]", children[0].Name(), children[1].Name())
	}
}
