// Package commitfile implements the write-temp + rename atomic commit
// sequence shared by the merge and remove engines (spec §4.3.4): never
// open-truncate-write the live file directly.
package commitfile

import (
	"os"
	"path/filepath"

	"github.com/sineer/routerconf/errs"
	"github.com/sineer/routerconf/model"
)

// Commit writes cfg to livePath atomically: write to
// "<dir>/.<base>.tmp" with the live file's existing mode bits (0644 for a
// new file), then rename over livePath. If rename fails, the temp file is
// unlinked and the error is returned with errs.KindIO.
func Commit(op, livePath string, cfg *model.Config) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(livePath); err == nil {
		mode = info.Mode()
	}

	dir := filepath.Dir(livePath)
	base := filepath.Base(livePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.KindIO, op, err)
	}

	tmpPath := filepath.Join(dir, "."+base+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	if err := model.Emit(f, cfg); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, op, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, op, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, op, err)
	}

	if err := os.Rename(tmpPath, livePath); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, op, err)
	}
	return nil
}
