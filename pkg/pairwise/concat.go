package pairwise

// concat.go implements the output concatenation spec.md §4.5 calls out as an
// external collaborator: gluing the per-(pass, thread) tile files together,
// in (pass, thread) order, into one deterministic output file. It is kept
// separate from Run/runPass/writeTile so that callers who want their own
// concatenation strategy (e.g. streaming tiles to a different destination
// entirely) can ignore it.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Concat writes, in (pass, thread) order, every tile file this Engine
// produced under OutDir into outputPath. Working files under OutDir are left
// in place afterward (spec.md §7: "No partial output files are deleted on
// failure" — this extends to success too; cleanup is the caller's choice).
func (e *Engine) Concat(outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", outputPath, err)
	}
	defer out.Close()

	for pass := 0; pass < e.Passes; pass++ {
		for threadID := 0; threadID < e.Threads; threadID++ {
			name := fmt.Sprintf("%d_%03d.txt", pass, threadID)
			path := filepath.Join(e.OutDir, name)

			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					// A thread may have been assigned zero rows (more
					// threads than rows in a short final pass); it never
					// created a file, which is not an error.
					continue
				}
				return fmt.Errorf("open tile file %s: %w", path, err)
			}
			_, err = io.Copy(out, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("append tile file %s: %w", path, err)
			}
		}
	}
	return nil
}
