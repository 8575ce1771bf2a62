package stats

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
)

type fakeChat struct {
	commands []string
	keys     []string
}

func (f *fakeChat) SendChatCommand(text string) error {
	f.commands = append(f.commands, text)
	return nil
}

func (f *fakeChat) KeyTap(key string, modifiers ...string) error {
	f.keys = append(f.keys, key)
	return nil
}

type fakePoints struct {
	points int
	ok     bool
}

func (f *fakePoints) ReadPointsRegion(region data.Region) (int, bool) {
	return f.points, f.ok
}

func newTestDistributor(chat *fakeChat, points *fakePoints, cfg config.StatsCfg) *Distributor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDistributor(chat, points, cfg, config.TimingCfg{}, logger)
}

func TestChunkPoints(t *testing.T) {
	cases := []struct {
		amount int
		want   []int
	}{
		{0, nil},
		{100, []int{100}},
		{65000, []int{65000}},
		{65001, []int{65000, 1}},
		{150000, []int{65000, 65000, 20000}},
	}

	for _, tc := range cases {
		got := ChunkPoints(tc.amount, 65000)
		if len(got) != len(tc.want) {
			t.Errorf("ChunkPoints(%d) = %v, want %v", tc.amount, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ChunkPoints(%d) = %v, want %v", tc.amount, got, tc.want)
				break
			}
		}
	}
}

func TestSplitByRatioExact(t *testing.T) {
	ratios := map[string]float64{"str": 0.5, "agi": 0.3, "vit": 0.2}

	for _, points := range []int{1, 7, 100, 99999} {
		shares := SplitByRatio(points, ratios)
		total := 0
		for _, v := range shares {
			total += v
		}
		if total != points {
			t.Errorf("shares of %d sum to %d", points, total)
		}
	}
}

func TestInitializeFromLevelAnchorsBaseline(t *testing.T) {
	cfg := config.StatsCfg{
		IntervalLevels: 10,
		PointsPerLevel: 5,
		Distribution:   map[string]float64{"str": 1.0},
	}
	d := newTestDistributor(&fakeChat{}, &fakePoints{}, cfg)

	d.InitializeFromLevel(127)

	if d.ShouldDistribute(128) {
		t.Error("level 128 is inside the anchored interval, should not distribute")
	}
	if !d.ShouldDistribute(130) {
		t.Error("level 130 crosses the interval, should distribute")
	}
}

func TestDistributeSendsChunkedCommands(t *testing.T) {
	chat := &fakeChat{}
	cfg := config.StatsCfg{
		IntervalLevels: 10,
		PointsPerLevel: 5,
		Distribution:   map[string]float64{"str": 1.0},
	}
	d := newTestDistributor(chat, &fakePoints{points: 70000, ok: true}, cfg)
	d.InitializeFromLevel(100)

	if err := d.Distribute(110); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}

	want := []string{"/addstr 65000", "/addstr 5000"}
	if len(chat.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", chat.commands, want)
	}
	for i := range want {
		if chat.commands[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, chat.commands[i], want[i])
		}
	}

	// The character window is toggled open and closed around the read.
	if len(chat.keys) != 2 || chat.keys[0] != "c" || chat.keys[1] != "c" {
		t.Errorf("expected character window toggle c/c, got %v", chat.keys)
	}

	if d.ShouldDistribute(115) {
		t.Error("baseline should have advanced past 110")
	}
}

func TestDistributeEstimatesWhenUnreadable(t *testing.T) {
	chat := &fakeChat{}
	cfg := config.StatsCfg{
		IntervalLevels: 10,
		PointsPerLevel: 5,
		Distribution:   map[string]float64{"str": 1.0},
	}
	d := newTestDistributor(chat, &fakePoints{ok: false}, cfg)
	d.InitializeFromLevel(100)

	if err := d.Distribute(110); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}

	// 10 levels gained at 5 points each.
	if len(chat.commands) != 1 || chat.commands[0] != "/addstr 50" {
		t.Errorf("expected estimated /addstr 50, got %v", chat.commands)
	}
}

func TestDistributeCustomCommands(t *testing.T) {
	chat := &fakeChat{}
	cfg := config.StatsCfg{
		IntervalLevels: 10,
		PointsPerLevel: 5,
		Distribution:   map[string]float64{"ene": 1.0},
		Commands:       map[string]string{"ene": "/addene2"},
	}
	d := newTestDistributor(chat, &fakePoints{points: 10, ok: true}, cfg)
	d.InitializeFromLevel(10)

	if err := d.Distribute(20); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if len(chat.commands) != 1 || !strings.HasPrefix(chat.commands[0], "/addene2 ") {
		t.Errorf("expected custom command, got %v", chat.commands)
	}
}
