// Package library manages the directory of saved mazes.
//
// Each map is one file named <name>.bin holding a grid in the codec format.
// Names are limited to letters, digits, '-' and '_' so they can never escape
// the directory. The directory is created on first use, and NextDefaultName
// hands out map1, map2, ... skipping names already taken.
//
// Usage:
//
//	lib, err := library.NewLibrary("maps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	name, _ := lib.NextDefaultName()
//	info, err := lib.Save(name, grid)
//
//	maps, err := lib.List()
//	grid, err = lib.Load("map1")
//
// List decodes each file once and caches the result until the file's size
// or modification time changes. Corrupt files are skipped, not fatal.
package library
