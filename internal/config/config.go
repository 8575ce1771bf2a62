package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"

	"github.com/lrivero/muvisor/internal/data"
)

var (
	cfgMux  sync.RWMutex
	Muvisor *MuvisorCfg
	Servers map[string]*ServerCfg
	Version = "dev"
)

type MuvisorCfg struct {
	Debug struct {
		Log         bool `yaml:"log"`
		Screenshots bool `yaml:"screenshots"`
	} `yaml:"debug"`
	FirstRun         bool   `yaml:"firstRun"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`
	DefaultServer    string `yaml:"defaultServer"`
	TesseractPath    string `yaml:"tesseractPath"`
	Discord          struct {
		Enabled    bool   `yaml:"enabled"`
		ChannelID  string `yaml:"channelId"`
		Token      string `yaml:"token"`
		UseWebhook bool   `yaml:"useWebhook"`
		WebhookURL string `yaml:"webhookUrl"`
	} `yaml:"discord"`
	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
}

// ServerCfg holds everything needed to supervise one MU server: window
// identity, OCR calibration, farming route, launcher script and timings.
type ServerCfg struct {
	ConfigFolderName string `yaml:"-"`

	WindowTitle       string `yaml:"windowTitle"`
	LevelTitlePattern string `yaml:"levelTitlePattern"`

	OCR        OcrCfg        `yaml:"ocr"`
	Stats      StatsCfg      `yaml:"stats"`
	Launcher   LauncherCfg   `yaml:"launcher"`
	Navigation NavigationCfg `yaml:"navigation"`
	Timing     TimingCfg     `yaml:"timing"`

	ResetLevel          int  `yaml:"resetLevel"`
	ResetNeedsReconnect bool `yaml:"resetNeedsReconnect"`
	LevelUpDismiss      *int `yaml:"levelUpDismiss,omitempty"`

	// HelperButton is the on-screen toggle for the in-game helper. When nil
	// the helper is toggled with a middle click at the window centre.
	HelperButton *data.Point `yaml:"helperButton,omitempty"`

	PostLoginSteps []ClickStep `yaml:"postLoginSteps,omitempty"`
}

type OcrCfg struct {
	LevelRegion      data.Region `yaml:"levelRegion"`
	ExperienceRegion data.Region `yaml:"experienceRegion"`
	CoordsRegion     data.Region `yaml:"coordsRegion"`
	LocationRegion   data.Region `yaml:"locationRegion"`
	GoldenLower      [3]uint8    `yaml:"goldenLower,flow"`
	GoldenUpper      [3]uint8    `yaml:"goldenUpper,flow"`
	FailureThreshold int         `yaml:"failureThreshold"`
	// Optional overrides for the built-in confusable-glyph table.
	Corrections map[string]string `yaml:"corrections,omitempty"`
}

type StatsCfg struct {
	IntervalLevels int                `yaml:"intervalLevels"`
	PointsPerLevel int                `yaml:"pointsPerLevel"`
	Distribution   map[string]float64 `yaml:"distribution"`
	PointsRegion   data.Region        `yaml:"pointsRegion"`
	Commands       map[string]string  `yaml:"commands,omitempty"`
}

type LauncherCfg struct {
	ExePath             string      `yaml:"exePath"`
	LauncherWindowTitle string      `yaml:"launcherWindowTitle"`
	Password            string      `yaml:"password"`
	LoginSteps          []ClickStep `yaml:"loginSteps"`
	ConnectButton       data.Point  `yaml:"connectButton"`
}

// ClickStep is a single scripted interaction: a click at Point, or a
// clipboard paste of Text after clicking Point.
type ClickStep struct {
	Label     string     `yaml:"label"`
	Action    string     `yaml:"action"` // "click" or "paste"
	Point     data.Point `yaml:"point"`
	Text      string     `yaml:"text,omitempty"`
	WaitAfter int        `yaml:"waitAfterSec,omitempty"`
}

type NavigationCfg struct {
	PixelsPerUnit  float64       `yaml:"pixelsPerUnit"`
	MaxClickRadius int           `yaml:"maxClickRadius"`
	Tolerance      int           `yaml:"tolerance"`
	MinProgress    int           `yaml:"minProgress"`
	StepDelayMs    int           `yaml:"stepDelayMs"`
	MaxSteps       int           `yaml:"maxSteps"`
	StuckThreshold int           `yaml:"stuckThreshold"`
	Spots          []FarmingSpot `yaml:"spots"`
}

// FarmingSpot describes where and how the character grinds for a level range.
// Spots must be listed in ascending UntilLevel order with contiguous ranges.
type FarmingSpot struct {
	Name        string          `yaml:"name"`
	UntilLevel  int             `yaml:"untilLevel"`
	FarmAction  string          `yaml:"farmAction"` // "hold_right_click" or "middle_click"
	WarpCommand string          `yaml:"warpCommand,omitempty"`
	WarpButton  *data.Point     `yaml:"warpButton,omitempty"`
	Spot        *data.Position  `yaml:"spot,omitempty"`
	Waypoints   []data.Position `yaml:"waypoints,omitempty"`
}

type TimingCfg struct {
	LoopIntervalSec      int `yaml:"loopIntervalSec"`
	FarmCheckIntervalSec int `yaml:"farmCheckIntervalSec"`
	ChatOpenMs           int `yaml:"chatOpenMs"`
	CommandSendMs        int `yaml:"commandSendMs"`
	WarpMenuMs           int `yaml:"warpMenuMs"`
	WarpTravelSec        int `yaml:"warpTravelSec"`
	MapLoadMs            int `yaml:"mapLoadMs"`
	HelperWarmupMs       int `yaml:"helperWarmupMs"`
	ClickSettleMs        int `yaml:"clickSettleMs"`
	PopupDismissMs       int `yaml:"popupDismissMs"`
	HelperRetrySec       int `yaml:"helperRetrySec"`
	HelperStuckSec       int `yaml:"helperStuckSec"`
	ResetDisconnectSec   int `yaml:"resetDisconnectSec"`
	PostReconnectSec     int `yaml:"postReconnectSec"`
	LaunchPauseSec       int `yaml:"launchPauseSec"`
	OcrFailurePauseSec   int `yaml:"ocrFailurePauseSec"`
	ErrorPauseSec        int `yaml:"errorPauseSec"`
	LauncherTimeoutSec   int `yaml:"launcherTimeoutSec"`
	GameWindowTimeoutSec int `yaml:"gameWindowTimeoutSec"`
}

func getAbsPath(relative string) string {
	wd, err := os.Getwd()
	if err != nil {
		return relative
	}
	return filepath.Join(wd, relative)
}

func Load() error {
	cfgMux.Lock()
	defer cfgMux.Unlock()
	Servers = make(map[string]*ServerCfg)

	muvisorPath := getAbsPath("config/muvisor.yaml")
	r, err := os.Open(muvisorPath)
	if err != nil {
		return fmt.Errorf("error loading muvisor.yaml: %w", err)
	}
	defer r.Close()

	d := yaml.NewDecoder(r)
	if err = d.Decode(&Muvisor); err != nil {
		return fmt.Errorf("error reading config %s: %w", muvisorPath, err)
	}

	configDir := getAbsPath("config")
	entries, err := os.ReadDir(configDir)
	if err != nil {
		return fmt.Errorf("error reading config directory %s: %w", configDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "template" {
			continue
		}

		srvCfg := ServerCfg{}

		srvConfigPath := getAbsPath(filepath.Join("config", entry.Name(), "config.yaml"))
		r, err = os.Open(srvConfigPath)
		if err != nil {
			return fmt.Errorf("error loading config.yaml: %w", err)
		}

		d := yaml.NewDecoder(r)
		if err = d.Decode(&srvCfg); err != nil {
			_ = r.Close()
			return fmt.Errorf("error reading %s server config: %w", srvConfigPath, err)
		}
		_ = r.Close()

		srvCfg.ConfigFolderName = entry.Name()
		applyDefaults(&srvCfg)

		if srvCfg.Launcher.Password != "" {
			plain, err := decryptPassword(srvCfg.Launcher.Password)
			if err != nil {
				return fmt.Errorf("error decrypting launcher password for %s: %w", entry.Name(), err)
			}
			srvCfg.Launcher.Password = plain
		}

		if err := ValidateSpots(srvCfg.Navigation.Spots); err != nil {
			return fmt.Errorf("invalid farming spots for %s: %w", entry.Name(), err)
		}
		if err := validateDistribution(srvCfg.Stats.Distribution); err != nil {
			return fmt.Errorf("invalid stat distribution for %s: %w", entry.Name(), err)
		}
		if err := validateStats(srvCfg.Stats); err != nil {
			return fmt.Errorf("invalid stats config for %s: %w", entry.Name(), err)
		}

		Servers[entry.Name()] = &srvCfg
	}

	return nil
}

func applyDefaults(cfg *ServerCfg) {
	if cfg.LevelTitlePattern == "" {
		cfg.LevelTitlePattern = `[Ll]evel\s*:?\s*(\d+)`
	}
	if cfg.OCR.GoldenLower == [3]uint8{} && cfg.OCR.GoldenUpper == [3]uint8{} {
		// MU golden stat-text in OpenCV-style HSV (H 0-179, S/V 0-255).
		cfg.OCR.GoldenLower = [3]uint8{15, 80, 150}
		cfg.OCR.GoldenUpper = [3]uint8{45, 255, 255}
	}
	if cfg.OCR.FailureThreshold == 0 {
		cfg.OCR.FailureThreshold = 5
	}
	if cfg.Navigation.PixelsPerUnit == 0 {
		cfg.Navigation.PixelsPerUnit = 8
	}
	if cfg.Navigation.MaxClickRadius == 0 {
		cfg.Navigation.MaxClickRadius = 200
	}
	if cfg.Navigation.Tolerance == 0 {
		cfg.Navigation.Tolerance = 3
	}
	if cfg.Navigation.MinProgress == 0 {
		cfg.Navigation.MinProgress = 1
	}
	if cfg.Navigation.StepDelayMs == 0 {
		cfg.Navigation.StepDelayMs = 1500
	}
	if cfg.Navigation.MaxSteps == 0 {
		cfg.Navigation.MaxSteps = 100
	}
	if cfg.Navigation.StuckThreshold == 0 {
		cfg.Navigation.StuckThreshold = 3
	}
	if cfg.Stats.IntervalLevels == 0 {
		cfg.Stats.IntervalLevels = 10
	}
	if cfg.Stats.PointsPerLevel == 0 {
		cfg.Stats.PointsPerLevel = 5
	}

	t := &cfg.Timing
	if t.LoopIntervalSec == 0 {
		t.LoopIntervalSec = 30
	}
	if t.FarmCheckIntervalSec == 0 {
		t.FarmCheckIntervalSec = 60
	}
	if t.ChatOpenMs == 0 {
		t.ChatOpenMs = 300
	}
	if t.CommandSendMs == 0 {
		t.CommandSendMs = 1000
	}
	if t.WarpMenuMs == 0 {
		t.WarpMenuMs = 1500
	}
	if t.WarpTravelSec == 0 {
		t.WarpTravelSec = 8
	}
	if t.MapLoadMs == 0 {
		t.MapLoadMs = 2000
	}
	if t.HelperWarmupMs == 0 {
		t.HelperWarmupMs = 3000
	}
	if t.ClickSettleMs == 0 {
		t.ClickSettleMs = 300
	}
	if t.PopupDismissMs == 0 {
		t.PopupDismissMs = 1000
	}
	if t.HelperRetrySec == 0 {
		t.HelperRetrySec = 180
	}
	if t.HelperStuckSec == 0 {
		t.HelperStuckSec = 600
	}
	if t.ResetDisconnectSec == 0 {
		t.ResetDisconnectSec = 10
	}
	if t.PostReconnectSec == 0 {
		t.PostReconnectSec = 20
	}
	if t.LaunchPauseSec == 0 {
		t.LaunchPauseSec = 600
	}
	if t.OcrFailurePauseSec == 0 {
		t.OcrFailurePauseSec = 300
	}
	if t.ErrorPauseSec == 0 {
		t.ErrorPauseSec = 60
	}
	if t.LauncherTimeoutSec == 0 {
		t.LauncherTimeoutSec = 30
	}
	if t.GameWindowTimeoutSec == 0 {
		t.GameWindowTimeoutSec = 60
	}
}

// ValidateSpots enforces the ordering contract farming spots must satisfy:
// strictly ascending untilLevel and a known farm action.
func ValidateSpots(spots []FarmingSpot) error {
	last := 0
	for i, s := range spots {
		if s.UntilLevel <= last {
			return fmt.Errorf("spot %q (index %d): untilLevel %d must be greater than previous %d", s.Name, i, s.UntilLevel, last)
		}
		switch s.FarmAction {
		case "hold_right_click", "middle_click":
		default:
			return fmt.Errorf("spot %q: unknown farmAction %q", s.Name, s.FarmAction)
		}
		last = s.UntilLevel
	}
	return nil
}

func validateDistribution(dist map[string]float64) error {
	if len(dist) == 0 {
		return nil
	}
	total := 0.0
	for key, ratio := range dist {
		switch key {
		case "str", "agi", "vit", "ene":
		default:
			return fmt.Errorf("unknown stat key %q", key)
		}
		total += ratio
	}
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("stat distribution ratios must sum to 1.0, got %.2f", total)
	}
	return nil
}

// validateStats runs after defaults, so zero values are already filled in;
// anything non-positive here was configured explicitly. A non-positive
// interval would keep the distribution baseline uninitialised forever.
func validateStats(cfg StatsCfg) error {
	if cfg.IntervalLevels <= 0 {
		return fmt.Errorf("intervalLevels must be positive, got %d", cfg.IntervalLevels)
	}
	if cfg.PointsPerLevel <= 0 {
		return fmt.Errorf("pointsPerLevel must be positive, got %d", cfg.PointsPerLevel)
	}
	return nil
}

func GetServers() map[string]*ServerCfg {
	cfgMux.RLock()
	defer cfgMux.RUnlock()
	copied := make(map[string]*ServerCfg, len(Servers))
	for k, v := range Servers {
		copied[k] = v
	}
	return copied
}

func GetServer(name string) (*ServerCfg, bool) {
	cfgMux.RLock()
	defer cfgMux.RUnlock()
	cfg, ok := Servers[name]
	return cfg, ok
}

// CreateFromTemplate instantiates a new server config directory by copying
// the bundled template, then reloads everything from disk.
func CreateFromTemplate(name string) error {
	if _, exists := Servers[name]; exists {
		return fmt.Errorf("server %s already exists", name)
	}

	err := cp.Copy("config/template", "config/"+name)
	if err != nil {
		return fmt.Errorf("error copying template: %w", err)
	}

	return Load()
}

// SaveServer writes a server config back to disk with the launcher password
// encrypted at rest.
func SaveServer(name string, cfg *ServerCfg) error {
	cfgMux.Lock()
	defer cfgMux.Unlock()

	onDisk := *cfg
	if onDisk.Launcher.Password != "" {
		enc, err := encryptPassword(onDisk.Launcher.Password)
		if err != nil {
			return fmt.Errorf("error encrypting launcher password: %w", err)
		}
		onDisk.Launcher.Password = enc
	}

	out, err := yaml.Marshal(&onDisk)
	if err != nil {
		return fmt.Errorf("error marshalling server config: %w", err)
	}

	path := getAbsPath(filepath.Join("config", name, "config.yaml"))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	Servers[name] = cfg
	return nil
}
