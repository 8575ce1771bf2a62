package bot

import (
	"context"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/game"
	"github.com/lrivero/muvisor/internal/ocr"
)

type fakeReader struct {
	snap        data.Snapshot
	err         error
	location    string
	hasLocation bool
	resetCalls  int
}

func (f *fakeReader) Read() (data.Snapshot, error) { return f.snap, f.err }

func (f *fakeReader) ReadLevel() (int, bool) { return f.snap.Level, f.snap.HasLevel }

func (f *fakeReader) ReadLocationText() (string, bool) { return f.location, f.hasLocation }

func (f *fakeReader) ResetFailures() { f.resetCalls++ }

type fakeAllocator struct {
	initialized      bool
	shouldDistribute bool
	distributed      []int
	forgotten        bool
}

func (f *fakeAllocator) InitializeFromLevel(level int) { f.initialized = true }

func (f *fakeAllocator) Initialized() bool { return f.initialized }

func (f *fakeAllocator) Forget() { f.forgotten = true; f.initialized = false }

func (f *fakeAllocator) ShouldDistribute(level int) bool { return f.shouldDistribute }

func (f *fakeAllocator) Distribute(level int) error {
	f.distributed = append(f.distributed, level)
	return nil
}

func (f *fakeAllocator) DistributeForReset(level int) error { return nil }

type fakeLauncher struct {
	running bool
}

func (f *fakeLauncher) IsGameRunning() bool { return f.running }

func (f *fakeLauncher) LaunchAndLogin(ctx context.Context) error { return nil }

func (f *fakeLauncher) RunSteps(ctx context.Context, steps []config.ClickStep) error { return nil }

type fakeWalker struct{}

func (f *fakeWalker) NavigateTo(target data.Position, waypoints []data.Position) error { return nil }

func (f *fakeWalker) WarpTo(button data.Point) error { return nil }

type fakeInput struct {
	chatCommands []string
	pressed      int
	released     int
}

func (f *fakeInput) SendChatCommand(text string) error {
	f.chatCommands = append(f.chatCommands, text)
	return nil
}

func (f *fakeInput) KeyTap(key string, modifiers ...string) error { return nil }

func (f *fakeInput) ClickAt(x, y int) {}

func (f *fakeInput) Click(btn game.MouseButton, x, y int) {}

func (f *fakeInput) PressButton(btn game.MouseButton, x, y int) { f.pressed++ }

func (f *fakeInput) ReleaseButton(btn game.MouseButton, x, y int) { f.released++ }

func (f *fakeInput) Center() (int, int) { return 400, 300 }

type fakeScreen struct {
	captures int
}

func (f *fakeScreen) CaptureClientArea() (image.Image, error) {
	f.captures++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func testServerCfg() *config.ServerCfg {
	return &config.ServerCfg{
		ResetLevel: 400,
		Navigation: config.NavigationCfg{
			Spots: []config.FarmingSpot{
				{Name: "Lorencia", UntilLevel: 100, FarmAction: "hold_right_click"},
			},
		},
		Timing: config.TimingCfg{
			LoopIntervalSec:    30,
			OcrFailurePauseSec: 300,
			ErrorPauseSec:      60,
			LaunchPauseSec:     600,
		},
	}
}

func newTestSupervisor(reader *fakeReader, alloc *fakeAllocator) *Supervisor {
	return &Supervisor{
		name:     "test",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		srv:      testServerCfg(),
		input:    &fakeInput{},
		reader:   reader,
		walker:   &fakeWalker{},
		stats:    alloc,
		launcher: &fakeLauncher{running: true},
	}
}

func TestReadStatusMissingLevelPauses(t *testing.T) {
	reader := &fakeReader{snap: data.Snapshot{HasLevel: false}}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})

	s.state = StateReadStatus
	s.doReadStatus(context.Background())

	if s.state != StateErrorPause {
		t.Fatalf("missing level should pause, got state %s", s.state)
	}
	if want := 60 * time.Second; s.pause != want {
		t.Errorf("expected generic pause %s, got %s", want, s.pause)
	}
}

func TestReadStatusPerceptionFailurePauses(t *testing.T) {
	reader := &fakeReader{err: ocr.ErrPerception}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})

	s.doReadStatus(context.Background())

	if s.state != StateErrorPause {
		t.Fatalf("perception error should pause, got state %s", s.state)
	}
	if want := 300 * time.Second; s.pause != want {
		t.Errorf("expected perception pause %s, got %s", want, s.pause)
	}
	if reader.resetCalls != 1 {
		t.Errorf("failure counter should be reset once, got %d", reader.resetCalls)
	}
}

func TestReadStatusRoutesToFarm(t *testing.T) {
	reader := &fakeReader{snap: data.Snapshot{Level: 29, HasLevel: true}}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})

	s.doReadStatus(context.Background())

	if s.state != StateNavigateAndFarm {
		t.Errorf("level 29 with an active spot should farm, got %s", s.state)
	}
	if s.currentLevel != 29 {
		t.Errorf("current level should track the read, got %d", s.currentLevel)
	}
}

func TestReadStatusResetBeatsFarming(t *testing.T) {
	reader := &fakeReader{snap: data.Snapshot{Level: 400, HasLevel: true}}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true, shouldDistribute: true})
	// A spot covering the reset level must not keep the character farming.
	s.srv.Navigation.Spots = []config.FarmingSpot{
		{Name: "Swamp", UntilLevel: 500, FarmAction: "middle_click"},
	}

	s.doReadStatus(context.Background())

	if s.state != StateReset {
		t.Errorf("level at reset threshold should reset, got %s", s.state)
	}
}

func TestReadStatusDistributeWithoutSpot(t *testing.T) {
	reader := &fakeReader{snap: data.Snapshot{Level: 150, HasLevel: true}}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true, shouldDistribute: true})

	s.doReadStatus(context.Background())

	if s.state != StateDistributeStats {
		t.Errorf("no spot with pending points should distribute, got %s", s.state)
	}
}

func TestCheckGameAliveRoutes(t *testing.T) {
	s := newTestSupervisor(&fakeReader{}, &fakeAllocator{})

	s.launcher = &fakeLauncher{running: true}
	s.doCheckGameAlive()
	if s.state != StateReadStatus {
		t.Errorf("live window should read status, got %s", s.state)
	}

	s.launcher = &fakeLauncher{running: false}
	s.doCheckGameAlive()
	if s.state != StateLaunchGame {
		t.Errorf("dead window should relaunch, got %s", s.state)
	}
}

func TestDistributeStatsAdvancesToWait(t *testing.T) {
	alloc := &fakeAllocator{initialized: true}
	s := newTestSupervisor(&fakeReader{}, alloc)
	s.currentLevel = 140
	s.hasLevel = true

	s.doDistributeStats()

	if s.state != StateWait {
		t.Errorf("expected StateWait after distribution, got %s", s.state)
	}
	if len(alloc.distributed) != 1 || alloc.distributed[0] != 140 {
		t.Errorf("expected one distribution at level 140, got %v", alloc.distributed)
	}
}

func TestOnMapStripsTrailingDigits(t *testing.T) {
	reader := &fakeReader{location: "noria", hasLocation: true}
	s := newTestSupervisor(reader, &fakeAllocator{})

	if !s.onMap("Noria3") {
		t.Error("Noria3 should match a 'noria' readout with the digits stripped")
	}
	if s.onMap("Elveland2") {
		t.Error("Elveland2 must not match a 'noria' readout")
	}

	reader.hasLocation = false
	if s.onMap("Noria3") {
		t.Error("an unreadable location never matches")
	}
}

func TestNavigateAndFarmSkipsWarpWhenOnMap(t *testing.T) {
	reader := &fakeReader{
		snap:        data.Snapshot{Level: 200, HasLevel: true},
		location:    "Elveland",
		hasLocation: true,
	}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})
	s.srv.Navigation.Spots = []config.FarmingSpot{
		{Name: "Elveland3", UntilLevel: 330, FarmAction: "hold_right_click", WarpCommand: "/move elveland3"},
	}
	s.currentLevel = 200
	s.hasLevel = true
	s.srv.Timing = config.TimingCfg{}

	// Cancelled context so the farm loop exits on its first poll.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.state = StateNavigateAndFarm
	s.doNavigateAndFarm(ctx)

	input := s.input.(*fakeInput)
	if len(input.chatCommands) != 0 {
		t.Errorf("already on the spot's map, no warp expected, got %v", input.chatCommands)
	}
	if s.state != StateNavigateAndFarm {
		t.Errorf("interrupted farm should leave the state in place, got %s", s.state)
	}
}

func TestNavigateAndFarmRetriesFailedWarp(t *testing.T) {
	reader := &fakeReader{
		snap:        data.Snapshot{Level: 200, HasLevel: true},
		location:    "Lorencia",
		hasLocation: true,
	}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})
	s.srv.Navigation.Spots = []config.FarmingSpot{
		{Name: "Elveland3", UntilLevel: 330, FarmAction: "hold_right_click", WarpCommand: "/move elveland3"},
	}
	s.currentLevel = 200
	s.hasLevel = true
	s.srv.Timing = config.TimingCfg{}

	s.state = StateNavigateAndFarm
	s.doNavigateAndFarm(context.Background())

	input := s.input.(*fakeInput)
	if len(input.chatCommands) != 1 || input.chatCommands[0] != "/move elveland3" {
		t.Errorf("warp command should go out once, got %v", input.chatCommands)
	}
	if s.state != StateReadStatus {
		t.Errorf("landing on the wrong map should return to status reading, got %s", s.state)
	}
}

func TestFarmHoldRightClickStopsAtCeiling(t *testing.T) {
	reader := &fakeReader{snap: data.Snapshot{Level: 100, HasLevel: true}}
	s := newTestSupervisor(reader, &fakeAllocator{initialized: true})
	s.srv.Timing = config.TimingCfg{}
	spot := config.FarmingSpot{Name: "Lorencia", UntilLevel: 100, FarmAction: "hold_right_click"}

	if err := s.farmHoldRightClick(context.Background(), spot); err != nil {
		t.Fatalf("reaching the ceiling should end the farm cleanly: %v", err)
	}

	input := s.input.(*fakeInput)
	if input.pressed != 1 || input.released != 1 {
		t.Errorf("right button should be pressed and released exactly once, got %d/%d", input.pressed, input.released)
	}
}

func TestPauseEventAttachesScreenshot(t *testing.T) {
	prev := config.Muvisor
	defer func() { config.Muvisor = prev }()
	config.Muvisor = &config.MuvisorCfg{}
	config.Muvisor.Debug.Screenshots = true

	screen := &fakeScreen{}
	s := newTestSupervisor(&fakeReader{}, &fakeAllocator{})
	s.screen = screen
	s.errorPause(time.Minute, "window lost")

	evt := s.pauseEvent()
	if evt.Image() == nil {
		t.Error("screenshot debugging should attach a frame to the pause event")
	}
	if evt.Pause != time.Minute {
		t.Errorf("pause duration should ride on the event, got %s", evt.Pause)
	}
	if screen.captures != 1 {
		t.Errorf("expected one capture, got %d", screen.captures)
	}

	config.Muvisor.Debug.Screenshots = false
	if evt := s.pauseEvent(); evt.Image() != nil {
		t.Error("no frame should be attached with screenshot debugging off")
	}
}
