package entity

import (
	"testing"
	"time"
)

func TestSessionCurrentImageRef(t *testing.T) {
	s := &RoomSession{OriginalImageRef: "orig.jpg"}
	if got := s.CurrentImageRef(); got != "orig.jpg" {
		t.Errorf("CurrentImageRef = %q, want original", got)
	}

	s.CleanedImageRef = "cleaned.jpg"
	if got := s.CurrentImageRef(); got != "cleaned.jpg" {
		t.Errorf("CurrentImageRef = %q, want cleaned", got)
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	s := &RoomSession{ExpiresAt: now.Add(time.Hour)}
	if s.IsExpired(now) {
		t.Error("session should not be expired before its deadline")
	}
	if !s.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("session should be expired after its deadline")
	}
}

func TestInvalidateProviderFile(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	s := &RoomSession{ProviderFileURI: "files/abc", ProviderFileExpiresAt: &exp}

	s.InvalidateProviderFile()

	if s.ProviderFileURI != "" || s.ProviderFileExpiresAt != nil {
		t.Error("provider handle should be fully cleared")
	}
}
