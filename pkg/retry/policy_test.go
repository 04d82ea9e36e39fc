package retry

import "testing"

func TestPolicyEligibility(t *testing.T) {
	p := NewPolicy(3)

	tests := []struct {
		attempts int
		eligible bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{3, false},
		{4, false},
	}

	for _, tt := range tests {
		if got := p.Eligible(tt.attempts); got != tt.eligible {
			t.Errorf("Eligible(%d) = %v, want %v", tt.attempts, got, tt.eligible)
		}
		if got := p.Exhausted(tt.attempts); got == tt.eligible {
			t.Errorf("Exhausted(%d) should be the inverse of Eligible", tt.attempts)
		}
	}
}
