package model

import "testing"

func TestSaturationBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, SaturationBlueOcean},
		{29.99, SaturationBlueOcean},
		{30, SaturationModerate},
		{59.99, SaturationModerate},
		{60, SaturationRedOcean},
		{100, SaturationRedOcean},
	}
	for _, tt := range tests {
		if got := SaturationBand(tt.score); got != tt.want {
			t.Errorf("SaturationBand(%.2f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestOpportunityBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, OpportunityGold},
		{70.01, OpportunityGold},
		{70, OpportunityMedium},
		{40.01, OpportunityMedium},
		{40, OpportunityLow},
		{0, OpportunityLow},
	}
	for _, tt := range tests {
		if got := OpportunityBand(tt.score); got != tt.want {
			t.Errorf("OpportunityBand(%.2f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
