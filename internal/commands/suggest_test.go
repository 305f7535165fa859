package commands

import (
	"errors"
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		got      string
		accepted []string
		want     []string
	}{
		{"SUBB", formatTags, []string{"SUB", "SUP"}},
		{"ul", listTags, []string{"UL", "OL"}},
		{"xyzzy", listTags, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.got, func(t *testing.T) {
			if got := Suggest(tt.got, tt.accepted); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.got, got, tt.want)
			}
		})
	}
}

func TestUnknownTagInfo(t *testing.T) {
	_, err := BorderTable("outr")(at(doc(p()), 1, 1))
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if e.Code != CodeTable || e.Info != `did you mean "outer"?` {
		t.Errorf("error = %+v", e)
	}

	_, err = SetStyle("H7")(at(doc(p()), 1, 1))
	if !errors.As(err, &e) || e.Info != `did you mean "H1"?` {
		t.Errorf("SetStyle(H7) error = %v", err)
	}
}
