// sketchgen.go is a tiny helper utility to generate synthetic sketch JSON
// files (spec.md §6's wire format) for exercising gather/prefetch/pairwise
// without hand-authoring fixtures, adapted from the teacher's
// tools/dataset_gen/dataset_gen.go (which emits flat files of random uint64
// keys for cache benchmarking). Unlike the teacher's tool, this one also
// writes a matching filelist so its output can be fed straight to
// smash-compare/smash-prefetch/smash-gather.
//
// This generates synthetic hash sets, not MinHashes computed from sequence
// data (that remains out of scope per spec.md §1's Non-goals).
//
// Usage:
//
//	go run ./tools/sketchgen -n 1000 -hashes 500 -overlap 0.2 -out corpus/
//
// © 2025 smash authors. MIT License.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type wireSignature struct {
	Mins    []uint64 `json:"mins"`
	MD5Sum  string   `json:"md5sum"`
	KSize   int      `json:"ksize"`
	MaxHash uint64   `json:"max_hash"`
	Seed    int      `json:"seed"`
}

type wireElement struct {
	Name       string          `json:"name"`
	Signatures []wireSignature `json:"signatures"`
}

func main() {
	var (
		n         = flag.Int("n", 100, "number of sketches to generate")
		hashes    = flag.Int("hashes", 1000, "hashes per sketch")
		dist      = flag.String("dist", "uniform", "hash distribution: uniform or zipf")
		zipfS     = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV     = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		overlap   = flag.Float64("overlap", 0.0, "fraction of each sketch's hashes drawn from a shared pool, biasing non-trivial containment")
		poolSize  = flag.Int("pool-size", 5000, "size of the shared hash pool used by -overlap")
		seedVal   = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outDir    = flag.String("out", "sketches", "output directory for generated sketch files")
		filelist  = flag.String("filelist", "", "optional path to write a filelist of generated sketch paths")
		ksize     = flag.Int("ksize", 21, "ksize metadata field to stamp on each sketch")
		seedField = flag.Int("sketch-seed", 42, "seed metadata field to stamp on each sketch")
	)
	flag.Parse()

	if *overlap < 0 || *overlap > 1 {
		fmt.Fprintln(os.Stderr, "overlap must be in [0, 1]")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = rnd.Uint64
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1.0 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, ^uint64(0))
		gen = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	pool := make([]uint64, *poolSize)
	for i := range pool {
		pool[i] = gen()
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "cannot create output dir:", err)
		os.Exit(1)
	}

	paths := make([]string, 0, *n)
	for i := 0; i < *n; i++ {
		seen := make(map[uint64]struct{}, *hashes)
		mins := make([]uint64, 0, *hashes)
		numShared := int(float64(*hashes) * *overlap)
		for len(mins) < numShared {
			h := pool[rnd.Intn(len(pool))]
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			mins = append(mins, h)
		}
		for len(mins) < *hashes {
			h := gen()
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			mins = append(mins, h)
		}
		sort.Slice(mins, func(a, b int) bool { return mins[a] < mins[b] })

		name := fmt.Sprintf("sketch_%06d", i)
		doc := []wireElement{{
			Name: name,
			Signatures: []wireSignature{{
				Mins:    mins,
				MD5Sum:  fmt.Sprintf("%032x", i),
				KSize:   *ksize,
				MaxHash: ^uint64(0),
				Seed:    *seedField,
			}},
		}}

		path := filepath.Join(*outDir, name+".sig.json")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create sketch file:", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		if err := enc.Encode(doc); err != nil {
			f.Close()
			fmt.Fprintln(os.Stderr, "cannot write sketch file:", err)
			os.Exit(1)
		}
		f.Close()
		paths = append(paths, path)
	}

	if *filelist != "" {
		f, err := os.Create(*filelist)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create filelist:", err)
			os.Exit(1)
		}
		defer f.Close()
		for _, p := range paths {
			fmt.Fprintln(f, p)
		}
	}

	fmt.Printf("generated %d sketches in %s\n", *n, *outDir)
}
