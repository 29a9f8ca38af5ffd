package model

import "testing"

func TestSizeClassFor(t *testing.T) {
	tests := []struct {
		subscribers int64
		want        string
	}{
		{0, ChannelSizeSmall},
		{5_000, ChannelSizeSmall},
		{9_999, ChannelSizeSmall},
		{10_000, ChannelSizeMedium},
		{99_999, ChannelSizeMedium},
		{100_000, ChannelSizeLarge},
		{2_000_000, ChannelSizeLarge},
	}

	for _, tt := range tests {
		if got := SizeClassFor(tt.subscribers); got != tt.want {
			t.Errorf("SizeClassFor(%d) = %q, want %q", tt.subscribers, got, tt.want)
		}
	}
}
