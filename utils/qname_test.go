package utils

import "testing"

func TestQNameString(t *testing.T) {
	tests := []struct {
		name string
		q    QName
		want string
	}{
		{"unqualified", QName{Local: "foo"}, "foo"},
		{"qualified", QName{Space: "http://example.com/ns", Local: "foo"}, "{http://example.com/ns}foo"},
		{"zero value", QName{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQNameEquals(t *testing.T) {
	a := QName{Space: "ns", Local: "foo"}
	b := QName{Space: "ns", Local: "foo"}
	c := QName{Space: "ns", Local: "bar"}
	d := QName{Space: "other", Local: "foo"}

	if !a.Equals(b) {
		t.Errorf("expected %v to equal %v", a, b)
	}
	if a.Equals(c) {
		t.Errorf("expected %v to not equal %v", a, c)
	}
	if a.Equals(d) {
		t.Errorf("expected %v to not equal %v", a, d)
	}
}
