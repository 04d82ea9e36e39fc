package catalog

import "strings"

// rewriteTags returns the comma-separated tag list with tag present or
// absent. Existing tags keep their order.
func rewriteTags(tags string, tag string, present bool) string {
	var out []string
	found := false
	for _, t := range strings.Split(tags, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if t == tag {
			found = true
			if !present {
				continue
			}
		}
		out = append(out, t)
	}
	if present && !found {
		out = append(out, tag)
	}
	return strings.Join(out, ", ")
}
