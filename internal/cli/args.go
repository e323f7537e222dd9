package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fracdao/fractional/internal/fraction"
)

// parseIDList parses a comma-separated list of ids with range shorthand,
// e.g. "1,2,5-9". Share batches routinely span a hundred ids, so ranges
// keep command lines sane.
func parseIDList(s string) ([]uint64, error) {
	var out []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty id entry in %q", s)
		}
		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad id %q: %w", part, err)
			}
			out = append(out, n)
			continue
		}
		from, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range start %q: %w", lo, err)
		}
		to, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range end %q: %w", hi, err)
		}
		if to < from {
			return nil, fmt.Errorf("descending range %q", part)
		}
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
	}
	return out, nil
}

func parseShareIDs(s string) ([]fraction.ShareID, error) {
	raw, err := parseIDList(s)
	if err != nil {
		return nil, err
	}
	ids := make([]fraction.ShareID, len(raw))
	for i, n := range raw {
		ids[i] = fraction.ShareID(n)
	}
	return ids, nil
}

func parseItemIDs(s string) ([]fraction.ItemID, error) {
	raw, err := parseIDList(s)
	if err != nil {
		return nil, err
	}
	ids := make([]fraction.ItemID, len(raw))
	for i, n := range raw {
		ids[i] = fraction.ItemID(n)
	}
	return ids, nil
}

// parseAmountFlag parses an 8-decimal fixed-point amount flag value.
func parseAmountFlag(name, value string) (fraction.Amount, error) {
	amt, err := fraction.ParseAmount(value)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", name), err)
	}
	return amt, nil
}
