package bot

import "testing"

func TestDecidePrecedence(t *testing.T) {
	cases := []struct {
		name             string
		level            int
		resetLevel       int
		hasSpot          bool
		shouldDistribute bool
		want             Decision
	}{
		{"farm at low level", 29, 400, true, false, DecisionFarm},
		{"reset wins over farming", 400, 400, true, true, DecisionReset},
		{"reset past threshold", 412, 400, false, false, DecisionReset},
		{"farm wins over distribution", 120, 400, true, true, DecisionFarm},
		{"distribute without spot", 130, 400, false, true, DecisionDistribute},
		{"nothing to do", 350, 400, false, false, DecisionWait},
		{"reset disabled", 500, 0, false, false, DecisionWait},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.level, tc.resetLevel, tc.hasSpot, tc.shouldDistribute)
			if got != tc.want {
				t.Errorf("Decide(%d, %d, %v, %v) = %v, want %v",
					tc.level, tc.resetLevel, tc.hasSpot, tc.shouldDistribute, got, tc.want)
			}
		})
	}
}
