package entity

import (
	"testing"
)

func result(status VariantStatus) *VariantResult {
	return &VariantResult{Status: status}
}

func TestAggregateRunStatus(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		results   []*VariantResult
		want      RunStatus
	}{
		{
			name:      "no results yet",
			requested: 4,
			results:   nil,
			want:      RunStatusInFlight,
		},
		{
			name:      "some results still missing",
			requested: 4,
			results:   []*VariantResult{result(VariantStatusSuccess), result(VariantStatusFailed)},
			want:      RunStatusInFlight,
		},
		{
			name:      "all succeeded",
			requested: 3,
			results:   []*VariantResult{result(VariantStatusSuccess), result(VariantStatusSuccess), result(VariantStatusSuccess)},
			want:      RunStatusComplete,
		},
		{
			name:      "none succeeded",
			requested: 2,
			results:   []*VariantResult{result(VariantStatusFailed), result(VariantStatusTimeout)},
			want:      RunStatusFailed,
		},
		{
			name:      "mixed outcome",
			requested: 4,
			results: []*VariantResult{
				result(VariantStatusSuccess),
				result(VariantStatusFailed),
				result(VariantStatusTimeout),
				result(VariantStatusSuccess),
			},
			want: RunStatusPartial,
		},
		{
			name:      "single variant success",
			requested: 1,
			results:   []*VariantResult{result(VariantStatusSuccess)},
			want:      RunStatusComplete,
		},
		{
			name:      "single variant timeout",
			requested: 1,
			results:   []*VariantResult{result(VariantStatusTimeout)},
			want:      RunStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateRunStatus(tt.requested, tt.results); got != tt.want {
				t.Errorf("AggregateRunStatus(%d, %d results) = %s, want %s",
					tt.requested, len(tt.results), got, tt.want)
			}
		})
	}
}

func TestAggregateRunStatusIsPure(t *testing.T) {
	results := []*VariantResult{result(VariantStatusSuccess), result(VariantStatusFailed)}
	first := AggregateRunStatus(2, results)
	second := AggregateRunStatus(2, results)
	if first != second {
		t.Errorf("aggregate drifted between calls: %s then %s", first, second)
	}
}
