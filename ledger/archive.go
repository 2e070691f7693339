package ledger

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// fileDay parses the UTC day out of a daily ledger file name
// (trades_YYYYMMDD.csv or trades_raw_YYYYMMDD.csv).
func fileDay(name string) (time.Time, bool) {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	base = strings.TrimPrefix(base, "trades_")
	base = strings.TrimPrefix(base, "raw_")
	day, err := time.ParseInLocation("20060102", base, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// ArchiveOld xz-compresses daily ledger files whose UTC day is strictly
// before the cutoff, replacing each trades_*.csv with trades_*.csv.xz.
// Today's files are never touched, so the single-writer invariant on the
// live pair holds. Returns the paths of the archives written.
func ArchiveOld(dir string, before time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ledger dir: %w", err)
	}
	cutoff := before.UTC().Truncate(24 * time.Hour)

	var archived []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "trades_") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		day, ok := fileDay(name)
		if !ok || !day.Before(cutoff) {
			continue
		}

		src := filepath.Join(dir, name)
		dst := src + ".xz"
		if err := compressFile(src, dst); err != nil {
			return archived, fmt.Errorf("archive %s: %w", name, err)
		}
		if err := os.Remove(src); err != nil {
			return archived, fmt.Errorf("remove %s after archive: %w", name, err)
		}
		archived = append(archived, dst)
	}
	return archived, nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(xw, in); err != nil {
		return err
	}
	if err := xw.Close(); err != nil {
		return err
	}
	return out.Close()
}

// ExportBundle zips every ledger file in dir (live CSVs and .xz archives)
// into a single bundle for sharing or offsite backup.
func ExportBundle(dir, zipPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read ledger dir: %w", err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "trades_") {
			continue
		}
		if err := addToZip(zw, filepath.Join(dir, name), name); err != nil {
			zw.Close()
			return fmt.Errorf("bundle %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	return out.Close()
}

func addToZip(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// ImportBundle extracts a previously exported bundle into dir. Existing
// files are overwritten; run it only against a fresh ledger directory.
func ImportBundle(zipPath, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := unzip.Extract(zipPath, dir); err != nil {
		return fmt.Errorf("extract bundle: %w", err)
	}
	return nil
}
