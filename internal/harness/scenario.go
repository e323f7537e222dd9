package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a flow of registry
// operations with expected outcomes and assertions over the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy optionally overrides governing policy fields. Unset fields
	// keep their defaults.
	Policy *PolicyOverrides `yaml:"policy,omitempty"`

	// Setup contains operations run before the main flow to establish
	// state. Setup operations must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the operations under test, each with an optional
	// expected outcome. A step without an expect clause must succeed.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final registry state.
	Assertions []Assertion `yaml:"assertions"`
}

// PolicyOverrides holds optional per-scenario policy overrides.
// Amounts and counts are plain integers; bips are basis points.
type PolicyOverrides struct {
	AuctionLength   *uint64 `yaml:"auction_length,omitempty"`
	MinRaiseBips    *uint64 `yaml:"min_raise_bips,omitempty"`
	ExtensionWindow *uint64 `yaml:"extension_window,omitempty"`
	MaxFeeBips      *uint64 `yaml:"max_fee_bips,omitempty"`
	MaxSupply       *uint64 `yaml:"max_supply,omitempty"`
	CashBatchLimit  *uint64 `yaml:"cash_batch_limit,omitempty"`
}

// Step is one registry operation: the journal op name and its args.
// Amounts must be given as decimal strings ("292.5"), never YAML floats.
type Step struct {
	// Op is the operation name, e.g. "mint-vault", "start", "cash".
	Op string `yaml:"op"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args"`

	// Expect specifies the expected outcome. Nil means the operation
	// must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Error is the expected error code, e.g. "QUORUM_NOT_MET". Empty
	// means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates one fact about the final registry state.
type Assertion struct {
	// Type selects the assertion:
	//   - "balance": account's spendable balance equals amount
	//   - "escrow": vault's escrow balance equals amount
	//   - "vault_state": vault's auction state equals state
	//   - "reserve": vault's voting weight and weighted reserve
	//   - "supply": vault's total minted share count equals total
	//   - "share_balance": account's share count in vault equals count
	//   - "underlying_owner": vault's released-to account equals account
	//   - "proceeds_left": vault's unpaid proceeds equal amount
	//   - "burn_batches": reclaimer's pending batch count equals count
	Type string `yaml:"type"`

	Vault   uint64 `yaml:"vault,omitempty"`
	Account string `yaml:"account,omitempty"`
	Amount  string `yaml:"amount,omitempty"`
	State   string `yaml:"state,omitempty"`
	Weight  uint64 `yaml:"weight,omitempty"`
	Reserve string `yaml:"reserve,omitempty"`
	Total   uint64 `yaml:"total,omitempty"`
	Count   uint64 `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBalance         = "balance"
	AssertEscrow          = "escrow"
	AssertVaultState      = "vault_state"
	AssertReserve         = "reserve"
	AssertSupply          = "supply"
	AssertShareBalance    = "share_balance"
	AssertUnderlyingOwner = "underlying_owner"
	AssertProceedsLeft    = "proceeds_left"
	AssertBurnBatches     = "burn_batches"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation
// (catches typos like "assertion:" vs "assertions:").
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Op == "" {
			return fmt.Errorf("setup[%d]: op is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("setup[%d]: args is required (use empty map if no args)", i)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: setup steps must succeed, expect is not allowed", i)
		}
	}

	for i, step := range s.Flow {
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("flow[%d]: args is required (use empty map if no args)", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertBalance:
		if a.Account == "" || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: balance needs account and amount", index)
		}
	case AssertEscrow, AssertProceedsLeft:
		if a.Vault == 0 || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: %s needs vault and amount", index, a.Type)
		}
	case AssertVaultState:
		if a.Vault == 0 || a.State == "" {
			return fmt.Errorf("assertions[%d]: vault_state needs vault and state", index)
		}
	case AssertReserve:
		if a.Vault == 0 {
			return fmt.Errorf("assertions[%d]: reserve needs vault", index)
		}
	case AssertSupply:
		if a.Vault == 0 {
			return fmt.Errorf("assertions[%d]: supply needs vault", index)
		}
	case AssertShareBalance:
		if a.Vault == 0 || a.Account == "" {
			return fmt.Errorf("assertions[%d]: share_balance needs vault and account", index)
		}
	case AssertUnderlyingOwner:
		if a.Vault == 0 || a.Account == "" {
			return fmt.Errorf("assertions[%d]: underlying_owner needs vault and account", index)
		}
	case AssertBurnBatches:
		if a.Account == "" {
			return fmt.Errorf("assertions[%d]: burn_batches needs account", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
