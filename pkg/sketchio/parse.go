// Package sketchio reads sketches from disk: the JSON signature format
// described in spec.md §6, filelists of sketch paths, and (optionally) a
// Badger-backed cache that skips re-parsing unchanged files across runs.
//
// © 2025 smash authors. MIT License.
package sketchio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// wireSignature mirrors signatures[0] of the sketch JSON document.
type wireSignature struct {
	Mins    []sketch.Hash `json:"mins"`
	MD5Sum  string        `json:"md5sum"`
	KSize   int           `json:"ksize"`
	MaxHash sketch.Hash   `json:"max_hash"`
	Seed    int           `json:"seed"`
}

// wireElement mirrors element 0 of the top-level JSON array.
type wireElement struct {
	Name       string          `json:"name"`
	Signatures []wireSignature `json:"signatures"`
}

// ParseFile reads and decodes a single sketch JSON file. A missing file,
// malformed JSON, or a document missing the expected fields all yield an
// empty Sketch carrying a non-nil LoadErr — per spec.md §7, this is never
// fatal to the caller; it is the caller's responsibility to count it.
func ParseFile(path string) sketch.Sketch {
	f, err := os.Open(path)
	if err != nil {
		return sketch.Sketch{FilePath: path, LoadErr: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()

	var doc []wireElement
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return sketch.Sketch{FilePath: path, LoadErr: fmt.Errorf("decode %s: %w", path, err)}
	}
	if len(doc) == 0 || len(doc[0].Signatures) == 0 {
		return sketch.Sketch{FilePath: path, LoadErr: fmt.Errorf("%s: no signatures present", path)}
	}

	el := doc[0]
	sig := el.Signatures[0]
	return sketch.Sketch{
		Hashes:   sig.Mins,
		Name:     el.Name,
		MD5:      sig.MD5Sum,
		FilePath: path,
		KSize:    sig.KSize,
		MaxHash:  sig.MaxHash,
		Seed:     sig.Seed,
	}
}
