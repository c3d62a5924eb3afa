package sketchio

import (
	"bufio"
	"fmt"
	"os"
)

// ReadFilelist reads one sketch file path per line (spec.md §6: blank lines
// are not special, no comments). A missing or unreadable filelist is fatal
// to the caller, matching spec.md §7's "Filelist-open ... errors are fatal".
func ReadFilelist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filelist %s: %w", path, err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	// Signature paths can be long; grow the scanner's line cap from the
	// default 64KiB to 1MiB. A longer line fails the read with
	// bufio.ErrTooLong.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		paths = append(paths, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read filelist %s: %w", path, err)
	}
	return paths, nil
}
