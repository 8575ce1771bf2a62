package config

import "testing"

func TestValidateSpots(t *testing.T) {
	valid := []FarmingSpot{
		{Name: "Lorencia", UntilLevel: 50, FarmAction: "hold_right_click"},
		{Name: "Devias", UntilLevel: 150, FarmAction: "middle_click"},
	}
	if err := ValidateSpots(valid); err != nil {
		t.Errorf("valid spots rejected: %v", err)
	}

	outOfOrder := []FarmingSpot{
		{Name: "Devias", UntilLevel: 150, FarmAction: "middle_click"},
		{Name: "Lorencia", UntilLevel: 50, FarmAction: "hold_right_click"},
	}
	if err := ValidateSpots(outOfOrder); err == nil {
		t.Error("descending untilLevel should be rejected")
	}

	duplicate := []FarmingSpot{
		{Name: "A", UntilLevel: 100, FarmAction: "middle_click"},
		{Name: "B", UntilLevel: 100, FarmAction: "middle_click"},
	}
	if err := ValidateSpots(duplicate); err == nil {
		t.Error("equal untilLevel should be rejected")
	}

	badAction := []FarmingSpot{
		{Name: "A", UntilLevel: 100, FarmAction: "teleport_spam"},
	}
	if err := ValidateSpots(badAction); err == nil {
		t.Error("unknown farmAction should be rejected")
	}

	if err := ValidateSpots(nil); err != nil {
		t.Errorf("empty spot list is legal: %v", err)
	}
}

func TestValidateDistribution(t *testing.T) {
	if err := validateDistribution(map[string]float64{"str": 0.5, "agi": 0.3, "vit": 0.2}); err != nil {
		t.Errorf("valid distribution rejected: %v", err)
	}
	if err := validateDistribution(nil); err != nil {
		t.Errorf("empty distribution is legal: %v", err)
	}
	if err := validateDistribution(map[string]float64{"str": 0.5, "luck": 0.5}); err == nil {
		t.Error("unknown stat key should be rejected")
	}
	if err := validateDistribution(map[string]float64{"str": 0.5, "agi": 0.1}); err == nil {
		t.Error("ratios not summing to 1 should be rejected")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &ServerCfg{}
	applyDefaults(cfg)

	if cfg.LevelTitlePattern == "" {
		t.Error("level title pattern default missing")
	}
	if cfg.OCR.GoldenLower != [3]uint8{15, 80, 150} || cfg.OCR.GoldenUpper != [3]uint8{45, 255, 255} {
		t.Errorf("golden HSV defaults wrong: %v / %v", cfg.OCR.GoldenLower, cfg.OCR.GoldenUpper)
	}
	if cfg.Navigation.PixelsPerUnit != 8 || cfg.Navigation.StuckThreshold != 3 {
		t.Errorf("navigation defaults wrong: %+v", cfg.Navigation)
	}
	if cfg.Timing.HelperRetrySec != 180 || cfg.Timing.HelperStuckSec != 600 {
		t.Errorf("helper watchdog defaults wrong: %+v", cfg.Timing)
	}
	if cfg.Timing.MapLoadMs != 2000 || cfg.Timing.HelperWarmupMs != 3000 {
		t.Errorf("settle delay defaults wrong: %+v", cfg.Timing)
	}
	if cfg.Timing.ClickSettleMs != 300 || cfg.Timing.PopupDismissMs != 1000 {
		t.Errorf("click settle defaults wrong: %+v", cfg.Timing)
	}
}

func TestValidateStats(t *testing.T) {
	cfg := &ServerCfg{}
	applyDefaults(cfg)
	if err := validateStats(cfg.Stats); err != nil {
		t.Errorf("defaulted stats config rejected: %v", err)
	}

	if err := validateStats(StatsCfg{IntervalLevels: -10, PointsPerLevel: 5}); err == nil {
		t.Error("negative intervalLevels should be rejected")
	}
	if err := validateStats(StatsCfg{IntervalLevels: 10, PointsPerLevel: -5}); err == nil {
		t.Error("negative pointsPerLevel should be rejected")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &ServerCfg{
		OCR: OcrCfg{
			GoldenLower:      [3]uint8{10, 60, 100},
			GoldenUpper:      [3]uint8{50, 255, 255},
			FailureThreshold: 3,
		},
		Navigation: NavigationCfg{PixelsPerUnit: 12},
	}
	applyDefaults(cfg)

	if cfg.OCR.GoldenLower != [3]uint8{10, 60, 100} {
		t.Error("explicit golden range was overwritten")
	}
	if cfg.OCR.FailureThreshold != 3 {
		t.Error("explicit failure threshold was overwritten")
	}
	if cfg.Navigation.PixelsPerUnit != 12 {
		t.Error("explicit pixelsPerUnit was overwritten")
	}
}
