// Package policy loads protocol policy constants from CUE documents.
//
// The raise percentage, anti-sniping window, fee cap, supply cap, and cash
// batch limit are deployment parameters, not protocol constants, so they
// live in a policy file rather than in code. A compiled-in default CUE
// document covers the zero-configuration path.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

//go:embed default.cue
var defaultCUE string

// Policy holds the tunable protocol parameters. All durations are logical
// clock ticks; the clock only advances when the host ticks it.
type Policy struct {
	// AuctionLength is the initial Live window set by start.
	AuctionLength uint64

	// MinRaiseBips is the minimum raise over the high bid, in basis points.
	MinRaiseBips uint64

	// ExtensionWindow is the anti-sniping threshold: a bid landing with
	// less than this many ticks remaining pushes expiry to now + window.
	ExtensionWindow uint64

	// MaxFeeBips caps the owner-settable protocol fee.
	MaxFeeBips uint64

	// MaxSupply caps the shares minted per vault.
	MaxSupply uint64

	// CashBatchLimit caps share ids per cash call, which bounds the burn
	// batch recorded against the reclaim account.
	CashBatchLimit uint64
}

// LoadError reports a policy compilation or validation failure with the
// CUE source position when one is available.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: policy.%s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("policy.%s: %s", e.Field, e.Message)
}

// Default returns the policy compiled from the embedded CUE document.
// Panics only if the embedded document is itself broken, which a unit test
// guards against.
func Default() Policy {
	ctx := cuecontext.New()
	v := ctx.CompileString(defaultCUE)
	p, err := compile(v)
	if err != nil {
		panic(fmt.Sprintf("embedded default policy invalid: %v", err))
	}
	return p
}

// Load compiles all CUE files in dir into a Policy. Files unify in CUE's
// usual way, so a deployment can split overrides across files.
func Load(dir string) (Policy, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return Policy{}, &LoadError{Field: "dir", Message: fmt.Sprintf("policy directory not found: %s", dir)}
	}
	if err != nil {
		return Policy{}, &LoadError{Field: "dir", Message: fmt.Sprintf("error accessing policy directory: %v", err)}
	}
	if !info.IsDir() {
		return Policy{}, &LoadError{Field: "dir", Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return Policy{}, &LoadError{Field: "dir", Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(matches) == 0 {
		return Policy{}, &LoadError{Field: "dir", Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return Policy{}, &LoadError{Field: "dir", Message: "no CUE instances loaded"}
	}
	if instances[0].Err != nil {
		return Policy{}, &LoadError{Field: "dir", Message: instances[0].Err.Error()}
	}

	v := ctx.BuildInstance(instances[0])
	return compile(v)
}

// compile extracts and validates a Policy from a CUE value whose root
// contains a `policy` struct.
func compile(v cue.Value) (Policy, error) {
	if err := v.Err(); err != nil {
		return Policy{}, &LoadError{Field: "policy", Message: err.Error(), Pos: v.Pos()}
	}

	root := v.LookupPath(cue.ParsePath("policy"))
	if !root.Exists() {
		return Policy{}, &LoadError{Field: "policy", Message: "policy struct is required", Pos: v.Pos()}
	}

	var p Policy
	fields := []struct {
		name string
		dst  *uint64
	}{
		{"auction_length", &p.AuctionLength},
		{"min_raise_bips", &p.MinRaiseBips},
		{"extension_window", &p.ExtensionWindow},
		{"max_fee_bips", &p.MaxFeeBips},
		{"max_supply", &p.MaxSupply},
		{"cash_batch_limit", &p.CashBatchLimit},
	}
	for _, f := range fields {
		fv := root.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			return Policy{}, &LoadError{Field: f.name, Message: "field is required", Pos: root.Pos()}
		}
		n, err := fv.Uint64()
		if err != nil {
			return Policy{}, &LoadError{Field: f.name, Message: err.Error(), Pos: fv.Pos()}
		}
		*f.dst = n
	}

	return p, p.validate(root)
}

func (p Policy) validate(root cue.Value) error {
	pos := root.Pos()
	switch {
	case p.AuctionLength == 0:
		return &LoadError{Field: "auction_length", Message: "must be positive", Pos: pos}
	case p.MinRaiseBips == 0 || p.MinRaiseBips > 10_000:
		return &LoadError{Field: "min_raise_bips", Message: "must be in 1..10000", Pos: pos}
	case p.ExtensionWindow >= p.AuctionLength:
		return &LoadError{Field: "extension_window", Message: "must be shorter than auction_length", Pos: pos}
	case p.MaxFeeBips > 10_000:
		return &LoadError{Field: "max_fee_bips", Message: "must be at most 10000", Pos: pos}
	case p.MaxSupply == 0:
		return &LoadError{Field: "max_supply", Message: "must be positive", Pos: pos}
	case p.CashBatchLimit == 0:
		return &LoadError{Field: "cash_batch_limit", Message: "must be positive", Pos: pos}
	}
	return nil
}
