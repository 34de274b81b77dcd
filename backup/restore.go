package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sineer/routerconf/errs"
)

// Restore replaces the contents of liveDir with the contents of handle's
// archive. It is idempotent and leaves liveDir untouched on failure: the
// archive is extracted into a sibling staging directory first, then swapped
// into place by renaming liveDir aside and renaming the staging directory to
// liveDir; if that second rename fails, liveDir is renamed back (best-effort).
func (s *Store) Restore(ctx context.Context, handle Handle, liveDir string) error {
	const op = "backup.Restore"
	if err := ctx.Err(); err != nil {
		return errs.New(errs.KindCancelled, op, err)
	}

	staging := liveDir + ".restore-tmp"
	if err := os.RemoveAll(staging); err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	defer os.RemoveAll(staging)

	if err := extractArchive(handle.Path, staging); err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	if err := ctx.Err(); err != nil {
		return errs.New(errs.KindCancelled, op, err)
	}

	// Preserve liveDir's own mode if it exists, then swap.
	mode := os.FileMode(0o755)
	if info, err := os.Stat(liveDir); err == nil {
		mode = info.Mode()
	}

	backupOfLive := liveDir + ".pre-restore"
	os.RemoveAll(backupOfLive)
	if _, err := os.Stat(liveDir); err == nil {
		if err := os.Rename(liveDir, backupOfLive); err != nil {
			return errs.New(errs.KindIO, op, err)
		}
	}
	if err := os.Rename(staging, liveDir); err != nil {
		// Best-effort roll back the swap so liveDir is left untouched.
		os.Rename(backupOfLive, liveDir)
		return errs.New(errs.KindIO, op, err)
	}
	os.Chmod(liveDir, mode)
	os.RemoveAll(backupOfLive)

	return nil
}

func extractArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.Clean("/"+hdr.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}
		out.Close()
	}
	return nil
}
