package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// LoadState seeds a fresh registry from the mirrored state tables. The
// registry must not have served any operation yet; restoring into a live
// registry would silently merge two histories.
func (s *Store) LoadState(r *vault.Registry) error {
	seq, err := s.metaUint("seq")
	if err != nil {
		return err
	}
	r.RestoreSeq(seq)

	now, err := s.metaUint("time")
	if err != nil {
		return err
	}
	r.RestoreClock(now)

	bips, err := s.metaUint("fee_bips")
	if err != nil {
		return err
	}
	r.RestoreFeeBips(bips)

	if err := s.loadVaults(r); err != nil {
		return err
	}
	if err := s.loadShares(r); err != nil {
		return err
	}
	if err := s.loadVotes(r); err != nil {
		return err
	}
	if err := s.loadFunds(r); err != nil {
		return err
	}
	return s.loadBurns(r)
}

// metaUint reads a meta value, defaulting to 0 when the key was never
// written (a fresh database).
func (s *Store) metaUint(key string) (uint64, error) {
	var text string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read meta %s: %w", key, err)
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse meta %s = %q: %w", key, text, err)
	}
	return n, nil
}

func (s *Store) loadVaults(r *vault.Registry) error {
	rows, err := s.db.Query(`
		SELECT id, curator, underlying, underlying_holder, fee_receiver, fee_receiver_path,
		       state, auction_end, live_price, winning, net_proceeds, proceeds_left,
		       redeemed, redeemer, total_minted, cap
		FROM vaults
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("query vaults: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row                                    vault.VaultRow
			curator, holder, receiver, path        string
			winning, redeemer                      string
			itemsJSON, price, proceeds, left       string
			state                                  int
		)
		if err := rows.Scan(
			&row.Record.ID, &curator, &itemsJSON, &holder, &receiver, &path,
			&state, &row.Record.AuctionEnd, &price, &winning, &proceeds, &left,
			&row.Record.Redeemed, &redeemer, &row.TotalMinted, &row.Cap,
		); err != nil {
			return fmt.Errorf("scan vault: %w", err)
		}
		items, err := unmarshalItems(itemsJSON)
		if err != nil {
			return err
		}
		row.Record.Curator = fraction.Account(curator)
		row.Record.Underlying = items
		row.Record.UnderlyingHolder = fraction.Account(holder)
		row.Record.FeeReceiver = fraction.Account(receiver)
		row.Record.FeeReceiverPath = path
		row.Record.State = fraction.AuctionState(state)
		row.Record.Winning = fraction.Account(winning)
		row.Record.Redeemer = fraction.Account(redeemer)
		if row.Record.LivePrice, err = parseAmount(price); err != nil {
			return err
		}
		if row.Record.NetProceeds, err = parseAmount(proceeds); err != nil {
			return err
		}
		if row.Record.ProceedsLeft, err = parseAmount(left); err != nil {
			return err
		}
		r.RestoreVault(row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate vaults: %w", err)
	}
	return nil
}

func (s *Store) loadShares(r *vault.Registry) error {
	rows, err := s.db.Query(`SELECT vault, share, owner FROM shares ORDER BY vault ASC, share ASC`)
	if err != nil {
		return fmt.Errorf("query shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    fraction.VaultID
			share fraction.ShareID
			owner string
		)
		if err := rows.Scan(&id, &share, &owner); err != nil {
			return fmt.Errorf("scan share: %w", err)
		}
		if err := r.RestoreShare(id, share, fraction.Account(owner)); err != nil {
			return fmt.Errorf("restore share %d/%d: %w", id, share, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate shares: %w", err)
	}
	return nil
}

func (s *Store) loadVotes(r *vault.Registry) error {
	rows, err := s.db.Query(`SELECT vault, share, price FROM votes ORDER BY vault ASC, share ASC`)
	if err != nil {
		return fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    fraction.VaultID
			share fraction.ShareID
			text  string
		)
		if err := rows.Scan(&id, &share, &text); err != nil {
			return fmt.Errorf("scan vote: %w", err)
		}
		price, err := parseAmount(text)
		if err != nil {
			return err
		}
		if err := r.RestoreVote(id, share, price); err != nil {
			return fmt.Errorf("restore vote %d/%d: %w", id, share, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate votes: %w", err)
	}
	return nil
}

func (s *Store) loadFunds(r *vault.Registry) error {
	rows, err := s.db.Query(`SELECT account, amount FROM balances ORDER BY account ASC`)
	if err != nil {
		return fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var account, text string
		if err := rows.Scan(&account, &text); err != nil {
			return fmt.Errorf("scan balance: %w", err)
		}
		amt, err := parseAmount(text)
		if err != nil {
			return err
		}
		r.Funds().RestoreBalance(fraction.Account(account), amt)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate balances: %w", err)
	}

	escrows, err := s.db.Query(`SELECT vault, amount FROM escrows ORDER BY vault ASC`)
	if err != nil {
		return fmt.Errorf("query escrows: %w", err)
	}
	defer escrows.Close()
	for escrows.Next() {
		var (
			id   fraction.VaultID
			text string
		)
		if err := escrows.Scan(&id, &text); err != nil {
			return fmt.Errorf("scan escrow: %w", err)
		}
		amt, err := parseAmount(text)
		if err != nil {
			return err
		}
		r.Funds().RestoreEscrow(id, amt)
	}
	if err := escrows.Err(); err != nil {
		return fmt.Errorf("iterate escrows: %w", err)
	}

	receivers, err := s.db.Query(`SELECT account, path FROM receivers ORDER BY account ASC, path ASC`)
	if err != nil {
		return fmt.Errorf("query receivers: %w", err)
	}
	defer receivers.Close()
	for receivers.Next() {
		var account, path string
		if err := receivers.Scan(&account, &path); err != nil {
			return fmt.Errorf("scan receiver: %w", err)
		}
		if err := r.Funds().RegisterReceiver(fraction.Account(account), path); err != nil {
			return fmt.Errorf("restore receiver %s %s: %w", account, path, err)
		}
	}
	if err := receivers.Err(); err != nil {
		return fmt.Errorf("iterate receivers: %w", err)
	}
	return nil
}

func (s *Store) loadBurns(r *vault.Registry) error {
	rows, err := s.db.Query(`SELECT account, batches FROM burns ORDER BY account ASC`)
	if err != nil {
		return fmt.Errorf("query burns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var account, batchesJSON string
		if err := rows.Scan(&account, &batchesJSON); err != nil {
			return fmt.Errorf("scan burns: %w", err)
		}
		batches, err := unmarshalBatches(batchesJSON)
		if err != nil {
			return err
		}
		r.Burns().Restore(fraction.Account(account), batches)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate burns: %w", err)
	}
	return nil
}

// ReadJournal returns every journaled operation in commit order.
func (s *Store) ReadJournal() ([]vault.OpRecord, error) {
	rows, err := s.db.Query(`
		SELECT seq, token, time, name, args, result
		FROM journal
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []vault.OpRecord
	for rows.Next() {
		var (
			rec                vault.OpRecord
			argsJSON, resJSON  string
		)
		if err := rows.Scan(&rec.Seq, &rec.Token, &rec.Time, &rec.Name, &argsJSON, &resJSON); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if rec.Args, err = unmarshalDoc(argsJSON); err != nil {
			return nil, err
		}
		if rec.Result, err = unmarshalDoc(resJSON); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}

	if records == nil {
		records = []vault.OpRecord{}
	}
	return records, nil
}

// JournalLength returns the number of committed operations.
func (s *Store) JournalLength() (uint64, error) {
	var n uint64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM journal`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}
