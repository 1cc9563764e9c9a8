package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/ca/table"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/sim"
)

func TestListSortedAndComplete(t *testing.T) {
	list := List()
	if len(list) < 8 {
		t.Fatalf("List() returned %d presets, expected at least 8", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
	for _, info := range list {
		if _, err := Create(info.ID); err != nil {
			t.Errorf("Create(%q) error = %v", info.ID, err)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() with a duplicate ID did not panic")
		}
	}()
	Register("life", Preset{})
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("nope"); err == nil {
		t.Error("Create(unknown) returned no error")
	}
	if Exists("nope") || !Exists("sandpile") {
		t.Error("Exists() gave the wrong answer")
	}
}

func TestResolve(t *testing.T) {
	eq, err := Resolve("1-v", ResolveOptions{NumStates: 2})
	if err != nil {
		t.Fatalf("Resolve(equation) error = %v", err)
	}
	if eq.NumStates() != 2 || Kind("1-v") != "equation" {
		t.Error("equation spec resolved with wrong options")
	}

	preset, err := Resolve("preset:life", ResolveOptions{})
	if err != nil || preset.NIn().Len() != 9 {
		t.Fatalf("Resolve(preset:life) = %v, %v", preset, err)
	}

	tbl, err := table.FromRule(preset, 2, 0)
	if err != nil {
		t.Fatalf("FromRule(life) error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "life.tbl")
	if err := table.Save(path, tbl); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Resolve(TablePrefix+path, ResolveOptions{})
	if err != nil || Kind(TablePrefix+path) != "table" {
		t.Fatalf("Resolve(table) error = %v", err)
	}
	if loaded.NIn().Len() != 9 {
		t.Errorf("table NIn().Len() = %d, expected 9", loaded.NIn().Len())
	}

	if _, err := Resolve("1 +", ResolveOptions{}); !errors.Is(err, ca.ErrMalformedRule) {
		t.Errorf("Resolve(bad equation) error = %v, expected ErrMalformedRule", err)
	}
	if _, err := Resolve("", ResolveOptions{}); err == nil {
		t.Error("Resolve(empty) returned no error")
	}
}

func TestLifeBlinker(t *testing.T) {
	rule, err := Create("life")
	if err != nil {
		t.Fatalf("Create(life) error = %v", err)
	}
	g, _ := grid.ParseText("0 0 0 0 0\n0 0 1 0 0\n0 0 1 0 0\n0 0 1 0 0\n0 0 0 0 0\n", 1)
	s, err := sim.New(rule, g, sim.Options{})
	if err != nil {
		t.Fatalf("sim.New() error = %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	s.Step()
	expected := "0 0 0 0 0\n0 0 0 0 0\n0 1 1 1 0\n0 0 0 0 0\n0 0 0 0 0\n"
	if got := s.Grid().String(); got != expected {
		t.Errorf("after one step got\n%s\nexpected\n%s", got, expected)
	}
	s.Step()
	if !s.Grid().Equal(g) {
		t.Errorf("blinker did not return after two steps:\n%s", s.Grid())
	}
}

func TestBriansBrainCycle(t *testing.T) {
	rule, _ := Create("briansbrain")
	g, _ := grid.ParseText("0 0 0 0\n0 1 1 0\n0 0 0 0\n", 1)
	s, _ := sim.New(rule, g, sim.Options{})
	_ = s.Finalize()

	s.Step()
	if s.Grid().At(geom.Pt(1, 1)) != 2 || s.Grid().At(geom.Pt(1, 0)) != 1 {
		t.Errorf("unexpected generation:\n%s", s.Grid())
	}
}

func TestParityAndSpreadPresets(t *testing.T) {
	spread, _ := Create("spread")
	if !spread.IsStateDead(1) || spread.GetsStable() != ca.StabilityAlways {
		t.Error("spread preset lost its options")
	}
	parity, _ := Create("parity")
	g, _ := grid.ParseText("0 0 0\n0 0 1\n0 0 0\n", 1)
	out := make([]int, 1)
	parity.NextState(g, geom.Pt(1, 1), out)
	if out[0] != 1 {
		t.Errorf("parity at center = %d, expected 1", out[0])
	}
}
