package engine

import "testing"

func TestValidateReportsLoops(t *testing.T) {
	g := gridFromRows(t,
		"# ###",
		"#   #",
		"# # #",
		"#   #",
		"### #",
	)
	r := Validate(g)
	if !r.Valid {
		t.Fatalf("expected valid maze, got errors %v", r.Errors)
	}
	if r.Perfect {
		t.Error("expected loop to be detected")
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a loop warning")
	}
	if r.OpenCells != r.ReachableCells {
		t.Errorf("open %d != reachable %d", r.OpenCells, r.ReachableCells)
	}
}

func TestValidatePerfectMaze(t *testing.T) {
	g := gridFromRows(t,
		"# ###",
		"#   #",
		"# # #",
		"# # #",
		"### #",
	)
	r := Validate(g)
	if !r.Valid || !r.Perfect {
		t.Errorf("expected valid perfect maze: %+v", r)
	}
}

func TestValidateDetectsProblems(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"closed entrance", []string{"#####", "#   #", "### #"}},
		{"closed exit", []string{"# ###", "#   #", "#####"}},
		{"disconnected", []string{"# ###", "#   #", "#####", "#   #", "### #"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(gridFromRows(t, tt.rows...))
			if r.Valid {
				t.Error("expected invalid report")
			}
			if len(r.Errors) == 0 {
				t.Error("expected errors to be listed")
			}
		})
	}
}

func TestValidateUnreachablePocket(t *testing.T) {
	g := gridFromRows(t,
		"# #####",
		"#     #",
		"##### #",
		"# #   #",
		"##### #",
	)
	r := Validate(g)
	if !r.ExitReachable {
		t.Error("exit should be reachable")
	}
	if r.Valid {
		t.Error("isolated pocket at (1,3) should invalidate the maze")
	}
}
