package engine

import (
	"math/rand/v2"
	"testing"
)

func generated(t *testing.T, width, height int, seed uint64) *Grid {
	t.Helper()
	g, err := NewGrid(width, height)
	if err != nil {
		t.Fatalf("NewGrid(%d,%d): %v", width, height, err)
	}
	NewSeededGenerator(seed).Generate(g)
	return g
}

func TestGenerateOpensEveryChamber(t *testing.T) {
	sizes := [][2]int{{5, 5}, {21, 11}, {11, 31}, {41, 41}, {7, 5}}
	for _, size := range sizes {
		for seed := uint64(0); seed < 20; seed++ {
			g := generated(t, size[0], size[1], seed)
			for y := 0; y < g.Height(); y += 2 {
				for x := 0; x < g.Width(); x += 2 {
					if c, _ := g.Get(x, y); c != Path {
						t.Fatalf("%dx%d seed %d: chamber (%d,%d) is %v", size[0], size[1], seed, x, y, c)
					}
				}
			}
			for y := 1; y < g.Height(); y += 2 {
				for x := 1; x < g.Width(); x += 2 {
					if c, _ := g.Get(x, y); c != Wall {
						t.Fatalf("%dx%d seed %d: pillar (%d,%d) was carved", size[0], size[1], seed, x, y)
					}
				}
			}
		}
	}
}

func TestGenerateOpensEntranceAndExit(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g := generated(t, 15, 9, seed)
		for _, p := range []Position{g.Entrance(), g.Exit()} {
			if c, _ := g.Get(p.X, p.Y); c != Path {
				t.Fatalf("seed %d: %v is %v", seed, p, c)
			}
		}
	}
}

func TestGenerateCarvesSpanningTree(t *testing.T) {
	for seed := uint64(0); seed < 30; seed++ {
		g := generated(t, 21, 11, seed)
		chambers := ((g.Width() + 1) / 2) * ((g.Height() + 1) / 2)
		open := g.Count(Path)
		// A spanning tree over the chambers opens 2C-1 cells; forcing the
		// entrance and exit adds at most two more.
		if open < 2*chambers-1 || open > 2*chambers+1 {
			t.Errorf("seed %d: %d open cells for %d chambers", seed, open, chambers)
		}
		if r := Validate(g); !r.Valid {
			t.Errorf("seed %d: generated maze invalid: %v", seed, r.Errors)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := generated(t, 31, 17, 1234)
	b := generated(t, 31, 17, 1234)
	if !a.Equal(b) {
		t.Error("same seed produced different mazes")
	}

	different := false
	for seed := uint64(1); seed < 10 && !different; seed++ {
		different = !a.Equal(generated(t, 31, 17, 1234+seed))
	}
	if !different {
		t.Error("expected other seeds to produce a different maze")
	}
}

func TestGenerateOverwritesPreviousContent(t *testing.T) {
	g := generated(t, 11, 11, 7)
	g.Fill(Solution)
	NewSeededGenerator(7).Generate(g)
	if !g.Equal(generated(t, 11, 11, 7)) {
		t.Error("generation should not depend on prior grid content")
	}
}

func TestGenerateTinyGrids(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 1}, {1, 3}, {3, 3}} {
		g, err := NewGrid(size[0], size[1])
		if err != nil {
			t.Fatal(err)
		}
		Generate(g, rand.New(rand.NewPCG(1, 2)))
		if c, _ := g.Get(0, 0); c != Path {
			t.Errorf("%dx%d: origin chamber should be open", size[0], size[1])
		}
	}
}

func TestNewGeneratorNilRand(t *testing.T) {
	g, _ := NewGrid(9, 9)
	NewGenerator(nil).Generate(g)
	if r := Validate(g); !r.ExitReachable {
		t.Error("expected a solvable maze from a clock-seeded generator")
	}
}

func TestStartChamberIsUniform(t *testing.T) {
	g, _ := NewGrid(5, 7)
	gen := NewSeededGenerator(3)

	const draws = 6000
	xs := map[int]int{}
	ys := map[int]int{}
	for i := 0; i < draws; i++ {
		p := gen.startChamber(g)
		if p.X%2 != 0 || p.Y%2 != 0 || !g.InBounds(p.X, p.Y) {
			t.Fatalf("start %v is not a chamber", p)
		}
		xs[p.X]++
		ys[p.Y]++
	}

	check := func(axis string, counts map[int]int, chambers int) {
		if len(counts) != chambers {
			t.Errorf("%s: expected %d distinct chambers, got %v", axis, chambers, counts)
		}
		want := draws / chambers
		for v, n := range counts {
			if n < want*8/10 || n > want*12/10 {
				t.Errorf("%s=%d drawn %d times, expected about %d", axis, v, n, want)
			}
		}
	}
	check("x", xs, 3)
	check("y", ys, 4)
}
