// Package publish replaces a destination directory with a freshly built
// artifact tree. The new tree is staged next to the destination and
// swapped in by rename, so readers never observe a half-copied tree.
package publish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Publisher struct {
	dest string
}

func New(dest string) *Publisher {
	return &Publisher{dest: dest}
}

// Publish copies srcDir over the destination, destroying whatever was
// there before. Replacement is not transactional across crashes, but the
// destination is only ever a complete old tree or a complete new tree.
func (p *Publisher) Publish(srcDir string) error {
	parent := filepath.Dir(p.dest)

	stage, err := os.MkdirTemp(parent, ".publish-stage-")
	if err != nil {
		return fmt.Errorf("staging publish dir: %w", err)
	}
	defer os.RemoveAll(stage)

	if err := os.Chmod(stage, 0755); err != nil {
		return err
	}
	if err := copyTree(srcDir, stage); err != nil {
		return fmt.Errorf("staging %s: %w", srcDir, err)
	}

	retired := ""
	if _, err := os.Stat(p.dest); err == nil {
		retired, err = os.MkdirTemp(parent, ".publish-old-")
		if err != nil {
			return err
		}
		// Rename into a sibling so the retired tree can be removed after
		// the swap completes.
		retired = filepath.Join(retired, "prior")
		if err := os.Rename(p.dest, retired); err != nil {
			return fmt.Errorf("retiring old publish dir: %w", err)
		}
	}

	if err := os.Rename(stage, p.dest); err != nil {
		return fmt.Errorf("swapping in publish dir: %w", err)
	}

	if retired != "" {
		if err := os.RemoveAll(filepath.Dir(retired)); err != nil {
			return err
		}
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
