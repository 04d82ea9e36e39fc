package catalog

import "testing"

func TestRewriteTags(t *testing.T) {
	tests := []struct {
		name    string
		tags    string
		tag     string
		present bool
		want    string
	}{
		{"add to empty", "", "roomviz-enabled", true, "roomviz-enabled"},
		{"add to existing", "sale, new", "roomviz-enabled", true, "sale, new, roomviz-enabled"},
		{"already present", "sale, roomviz-enabled", "roomviz-enabled", true, "sale, roomviz-enabled"},
		{"remove present", "sale, roomviz-enabled, new", "roomviz-enabled", false, "sale, new"},
		{"remove absent", "sale, new", "roomviz-enabled", false, "sale, new"},
		{"whitespace normalized", " sale ,  new ", "roomviz-enabled", true, "sale, new, roomviz-enabled"},
		{"remove from empty", "", "roomviz-enabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteTags(tt.tags, tt.tag, tt.present); got != tt.want {
				t.Errorf("rewriteTags(%q, %q, %v) = %q, want %q", tt.tags, tt.tag, tt.present, got, tt.want)
			}
		})
	}
}
