package topic

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"editor.state.changed", "editor.state.changed", true},
		{"editor.state.changed", "editor.*.changed", true},
		{"editor.state.changed", "editor.*", false},
		{"editor.state.changed", "editor.**", true},
		{"editor.state.changed", "**", true},
		{"editor.error", "editor.**.error", true},
		{"editor.error", "search.**", false},
		{"editor", "editor.*", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopicHelpers(t *testing.T) {
	tp := Topic("editor.state.changed")
	if !tp.HasPrefix("editor.state") || tp.HasPrefix("editor.sta") {
		t.Error("HasPrefix should match whole segments only")
	}
	if !Topic("editor.*").IsWildcard() || tp.IsWildcard() {
		t.Error("IsWildcard mismatch")
	}
	for _, bad := range []Topic{"", ".editor", "editor..state", "editor."} {
		if bad.IsValid() {
			t.Errorf("IsValid(%q) = true", bad)
		}
	}
	if !tp.IsValid() {
		t.Errorf("IsValid(%q) = false", tp)
	}
}
