package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wricardo/maze-runner/game/engine"
)

// Save writes g to path. The data goes to a temporary file in the same
// directory first so a failed write never leaves a half-written map behind.
func Save(g *engine.Grid, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".map-*.tmp")
	if err != nil {
		return fsFailure(err, path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, g); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fsFailure(err, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fsFailure(err, path)
	}
	return nil
}

// Load reads the grid stored at path.
func Load(path string) (*engine.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fsFailure(err, path)
	}
	g, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

func fsFailure(err error, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermission, path, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
}
