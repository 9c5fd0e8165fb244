package engine

import (
	"math/rand/v2"
	"time"
)

// chamberSteps are the offsets between neighbouring chambers.
var chamberSteps = [4]Position{{X: 0, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: -2}, {X: -2, Y: 0}}

// Generator carves perfect mazes with an iterative recursive backtracker.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng. A nil rng is replaced
// with one seeded from the clock.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = newRand(uint64(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// NewSeededGenerator returns a generator whose output is fully determined
// by seed.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(newRand(seed))
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate overwrites g with a freshly carved maze. Every chamber (even x,
// even y) ends up open and connected, and the entrance and exit are always
// opened.
func (gen *Generator) Generate(g *Grid) {
	g.Fill(Wall)

	start := gen.startChamber(g)
	g.Set(start.X, start.Y, Path)

	stack := []Position{start}
	candidates := make([]Position, 0, len(chamberSteps))

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		candidates = candidates[:0]
		for _, step := range chamberSteps {
			nx, ny := cur.X+step.X, cur.Y+step.Y
			if c, ok := g.Get(nx, ny); ok && c == Wall {
				candidates = append(candidates, Position{X: nx, Y: ny})
			}
		}
		if len(candidates) == 0 {
			continue
		}

		next := candidates[gen.rng.IntN(len(candidates))]
		g.Set((cur.X+next.X)/2, (cur.Y+next.Y)/2, Path)
		g.Set(next.X, next.Y, Path)
		stack = append(stack, cur, next)
	}

	entrance, exit := g.Entrance(), g.Exit()
	g.Set(entrance.X, entrance.Y, Path)
	g.Set(exit.X, exit.Y, Path)
}

// startChamber picks a chamber uniformly; there are (n+1)/2 of them along
// an axis of odd length n.
func (gen *Generator) startChamber(g *Grid) Position {
	return Position{
		X: 2 * gen.rng.IntN((g.width+1)/2),
		Y: 2 * gen.rng.IntN((g.height+1)/2),
	}
}
