// Package naming derives output file names for remapped volumes.
package naming

import (
	"path/filepath"

	"ctcormack/pkg/remap"
)

// Default prefixes, one letter for the unit system the output is in
const (
	CormackPrefix    = "c"
	HounsfieldPrefix = "h"
)

// DefaultPrefix returns the prefix conventionally used for output written in
// dir's target units
func DefaultPrefix(dir remap.Direction) string {
	if dir == remap.CormackToHounsfield {
		return HounsfieldPrefix
	}
	return CormackPrefix
}

// Derive prepends prefix to the file name in inputPath, keeping the
// directory. "scans/ct.nii" with prefix "c" becomes "scans/cct.nii".
func Derive(inputPath, prefix string) string {
	dir, base := filepath.Split(inputPath)
	return dir + prefix + base
}

// ForDirection picks prefix when set, otherwise DefaultPrefix(dir), and
// derives the output name from inputPath
func ForDirection(inputPath, prefix string, dir remap.Direction) string {
	if prefix == "" {
		prefix = DefaultPrefix(dir)
	}
	return Derive(inputPath, prefix)
}
