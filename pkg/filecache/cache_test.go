package filecache

import (
	"testing"
	"time"
)

func TestUsable(t *testing.T) {
	c := &Cache{margin: 5 * time.Minute}

	far := time.Now().Add(time.Hour)
	near := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		uri       string
		expiresAt *time.Time
		want      bool
	}{
		{"valid handle", "files/abc", &far, true},
		{"inside expiry margin", "files/abc", &near, false},
		{"already expired", "files/abc", &past, false},
		{"no uri", "", &far, false},
		{"no expiry", "files/abc", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Usable(tt.uri, tt.expiresAt); got != tt.want {
				t.Errorf("Usable(%q) = %v, want %v", tt.uri, got, tt.want)
			}
		})
	}
}
