package cliutil

import "flag"

// AddFloatAlias registers the same float64 flag under a short and a long
// name, matching spec.md §6's "-c/--containment-threshold" style surfaces.
// The standard flag package has no built-in alias support; pointing two
// flag.Var registrations at the same variable is the common workaround used
// across the Go ecosystem when sticking to the standard library instead of
// a third-party flag parser.
func AddFloatAlias(fs *flag.FlagSet, p *float64, short, long string, def float64, usage string) {
	fs.Float64Var(p, short, def, usage)
	fs.Float64Var(p, long, def, usage)
}

// AddIntAlias is AddFloatAlias for int-valued flags.
func AddIntAlias(fs *flag.FlagSet, p *int, short, long string, def int, usage string) {
	fs.IntVar(p, short, def, usage)
	fs.IntVar(p, long, def, usage)
}
