package bot

import (
	"testing"

	"github.com/lrivero/muvisor/internal/config"
)

func TestActiveSpot(t *testing.T) {
	spots := []config.FarmingSpot{
		{Name: "Lorencia", UntilLevel: 50},
		{Name: "Devias", UntilLevel: 150},
		{Name: "Lost Tower", UntilLevel: 330},
	}

	cases := []struct {
		level    int
		wantName string
		wantOK   bool
	}{
		{1, "Lorencia", true},
		{49, "Lorencia", true},
		{50, "Devias", true}, // ceiling is exclusive
		{149, "Devias", true},
		{150, "Lost Tower", true},
		{329, "Lost Tower", true},
		{330, "", false},
		{400, "", false},
	}

	for _, tc := range cases {
		spot, ok := ActiveSpot(spots, tc.level)
		if ok != tc.wantOK || spot.Name != tc.wantName {
			t.Errorf("ActiveSpot(level=%d) = (%q, %v), want (%q, %v)",
				tc.level, spot.Name, ok, tc.wantName, tc.wantOK)
		}
	}
}

func TestActiveSpotEmpty(t *testing.T) {
	if _, ok := ActiveSpot(nil, 10); ok {
		t.Error("no spots configured should mean no active spot")
	}
}
