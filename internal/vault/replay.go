package vault

import (
	"encoding/json"
	"strconv"

	"github.com/fracdao/fractional/internal/fraction"
)

// ApplyOp re-executes a journaled operation from its recorded name and
// arguments. Replay drives this: re-applying the journal against a fresh
// in-memory registry must reproduce the persisted state exactly, because
// every operation is a pure function of its arguments and the state
// before it.
func (r *Registry) ApplyOp(name string, args map[string]any) error {
	d := argDecoder{args: args}
	switch name {
	case "tick":
		_, err := r.Tick(d.uint("delta"))
		return firstErr(d.err, err)
	case "faucet":
		return firstErr(d.err, r.Faucet(d.account("account"), d.amount("amount")))
	case "register-receiver":
		return firstErr(d.err, r.RegisterReceiver(d.account("account"), d.string("path")))
	case "mint-vault":
		_, err := r.MintVault(d.account("curator"), d.items("items"), d.uint("cap"))
		return firstErr(d.err, err)
	case "mint-shares":
		_, err := r.MintShares(d.account("caller"), d.vaultID("vault"), d.uint("count"))
		return firstErr(d.err, err)
	case "cast-vote":
		return firstErr(d.err, r.CastVote(
			d.account("caller"), d.vaultID("vault"),
			fraction.ShareID(d.uint("start")), d.uint("count"), d.amount("price")))
	case "transfer-shares":
		return firstErr(d.err, r.TransferShares(
			d.account("from"), d.account("to"), d.vaultID("vault"), d.shares("ids")))
	case "start":
		return firstErr(d.err, r.Start(d.account("bidder"), d.vaultID("vault"), d.amount("amount")))
	case "bid":
		return firstErr(d.err, r.Bid(d.account("bidder"), d.vaultID("vault"), d.amount("amount")))
	case "end":
		return firstErr(d.err, r.End(d.account("caller"), d.vaultID("vault")))
	case "cash":
		_, err := r.Cash(d.account("holder"), d.vaultID("vault"), d.shares("ids"))
		return firstErr(d.err, err)
	case "redeem":
		return firstErr(d.err, r.Redeem(d.account("holder"), d.vaultID("vault"), d.uint("amount")))
	case "withdraw-underlying":
		return firstErr(d.err, r.WithdrawUnderlying(d.account("holder"), d.vaultID("vault")))
	case "reclaim-storage":
		_, err := r.ReclaimStorage(d.account("reclaimer"), d.uint("index"))
		return firstErr(d.err, err)
	case "set-fee-rate":
		return firstErr(d.err, r.SetFeeRate(d.account("caller"), d.uint("bips")))
	case "set-fee-receiver":
		return firstErr(d.err, r.SetFeeReceiver(
			d.account("caller"), d.vaultID("vault"), d.account("receiver"), d.string("path")))
	default:
		return fraction.Newf(fraction.BadRequest, "unknown journaled operation %q", name)
	}
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

// argDecoder pulls typed values out of a journal args map. Values arrive
// either as native Go types (fresh journal) or as json.Number/string
// (read back from the store), so every accessor accepts both.
type argDecoder struct {
	args map[string]any
	err  error
}

func (d *argDecoder) fail(key string) {
	if d.err == nil {
		d.err = fraction.Newf(fraction.BadRequest, "journal arg %q missing or malformed", key)
	}
}

func (d *argDecoder) uint(key string) uint64 {
	v, ok := d.args[key]
	if !ok {
		d.fail(key)
		return 0
	}
	n, ok := asUint(v)
	if !ok {
		d.fail(key)
		return 0
	}
	return n
}

func (d *argDecoder) string(key string) string {
	s, ok := d.args[key].(string)
	if !ok {
		d.fail(key)
		return ""
	}
	return s
}

func (d *argDecoder) account(key string) fraction.Account {
	v, ok := d.args[key]
	if !ok {
		d.fail(key)
		return ""
	}
	switch a := v.(type) {
	case fraction.Account:
		return a
	case string:
		return fraction.Account(a)
	default:
		d.fail(key)
		return ""
	}
}

func (d *argDecoder) amount(key string) fraction.Amount {
	v, ok := d.args[key]
	if !ok {
		d.fail(key)
		return 0
	}
	switch a := v.(type) {
	case fraction.Amount:
		return a
	case string:
		amt, err := fraction.ParseAmount(a)
		if err != nil {
			d.fail(key)
			return 0
		}
		return amt
	default:
		d.fail(key)
		return 0
	}
}

func (d *argDecoder) vaultID(key string) fraction.VaultID {
	return fraction.VaultID(d.uint(key))
}

func (d *argDecoder) shares(key string) []fraction.ShareID {
	list, ok := d.args[key].([]any)
	if !ok {
		d.fail(key)
		return nil
	}
	out := make([]fraction.ShareID, len(list))
	for i, v := range list {
		n, ok := asUint(v)
		if !ok {
			d.fail(key)
			return nil
		}
		out[i] = fraction.ShareID(n)
	}
	return out
}

func (d *argDecoder) items(key string) []fraction.ItemID {
	list, ok := d.args[key].([]any)
	if !ok {
		d.fail(key)
		return nil
	}
	out := make([]fraction.ItemID, len(list))
	for i, v := range list {
		n, ok := asUint(v)
		if !ok {
			d.fail(key)
			return nil
		}
		out[i] = fraction.ItemID(n)
	}
	return out
}

func asUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case fraction.VaultID:
		return uint64(n), true
	case fraction.ShareID:
		return uint64(n), true
	case fraction.ItemID:
		return uint64(n), true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}
