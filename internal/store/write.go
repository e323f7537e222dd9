package store

import (
	"database/sql"
	"fmt"

	"github.com/fracdao/fractional/internal/vault"
)

// SaveOp commits one journal record and the state rows the operation
// touched in a single transaction. Implements vault.Persister.
//
// The journal insert uses ON CONFLICT(seq) DO NOTHING so re-committing
// an already persisted operation (a retry after a crash between commit
// and acknowledgment) is idempotent; the state rows are absolute values
// and upserts, so re-applying them is harmless.
func (s *Store) SaveOp(rec vault.OpRecord, cs vault.ChangeSet) error {
	argsJSON, err := marshalDoc(rec.Args)
	if err != nil {
		return fmt.Errorf("save op %s: %w", rec.Name, err)
	}
	resultJSON, err := marshalDoc(rec.Result)
	if err != nil {
		return fmt.Errorf("save op %s: %w", rec.Name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save op %s: begin tx: %w", rec.Name, err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.Exec(`
		INSERT INTO journal (seq, token, time, name, args, result)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, rec.Seq, rec.Token, rec.Time, rec.Name, argsJSON, resultJSON)
	if err != nil {
		return fmt.Errorf("save op %s: journal: %w", rec.Name, err)
	}

	if err := setMeta(tx, "seq", fmt.Sprintf("%d", rec.Seq)); err != nil {
		return fmt.Errorf("save op %s: %w", rec.Name, err)
	}
	if err := setMeta(tx, "time", fmt.Sprintf("%d", rec.Time)); err != nil {
		return fmt.Errorf("save op %s: %w", rec.Name, err)
	}
	if cs.FeeBips != nil {
		if err := setMeta(tx, "fee_bips", fmt.Sprintf("%d", *cs.FeeBips)); err != nil {
			return fmt.Errorf("save op %s: %w", rec.Name, err)
		}
	}

	if err := applyChangeSet(tx, cs); err != nil {
		return fmt.Errorf("save op %s: %w", rec.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save op %s: commit: %w", rec.Name, err)
	}
	return nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func applyChangeSet(tx *sql.Tx, cs vault.ChangeSet) error {
	if cs.Vault != nil {
		if err := upsertVault(tx, cs.Vault); err != nil {
			return err
		}
	}
	for _, row := range cs.SetShares {
		_, err := tx.Exec(`
			INSERT INTO shares (vault, share, owner) VALUES (?, ?, ?)
			ON CONFLICT(vault, share) DO UPDATE SET owner = excluded.owner
		`, row.Vault, row.Share, string(row.Owner))
		if err != nil {
			return fmt.Errorf("upsert share %d/%d: %w", row.Vault, row.Share, err)
		}
	}
	for _, key := range cs.DelShares {
		if _, err := tx.Exec(`DELETE FROM shares WHERE vault = ? AND share = ?`, key.Vault, key.Share); err != nil {
			return fmt.Errorf("delete share %d/%d: %w", key.Vault, key.Share, err)
		}
	}
	for _, row := range cs.SetVotes {
		_, err := tx.Exec(`
			INSERT INTO votes (vault, share, price) VALUES (?, ?, ?)
			ON CONFLICT(vault, share) DO UPDATE SET price = excluded.price
		`, row.Vault, row.Share, row.Price.String())
		if err != nil {
			return fmt.Errorf("upsert vote %d/%d: %w", row.Vault, row.Share, err)
		}
	}
	for _, key := range cs.DelVotes {
		if _, err := tx.Exec(`DELETE FROM votes WHERE vault = ? AND share = ?`, key.Vault, key.Share); err != nil {
			return fmt.Errorf("delete vote %d/%d: %w", key.Vault, key.Share, err)
		}
	}
	for _, row := range cs.Balances {
		_, err := tx.Exec(`
			INSERT INTO balances (account, amount) VALUES (?, ?)
			ON CONFLICT(account) DO UPDATE SET amount = excluded.amount
		`, string(row.Account), row.Amount.String())
		if err != nil {
			return fmt.Errorf("upsert balance %s: %w", row.Account, err)
		}
	}
	for _, row := range cs.Escrows {
		_, err := tx.Exec(`
			INSERT INTO escrows (vault, amount) VALUES (?, ?)
			ON CONFLICT(vault) DO UPDATE SET amount = excluded.amount
		`, row.Vault, row.Amount.String())
		if err != nil {
			return fmt.Errorf("upsert escrow %d: %w", row.Vault, err)
		}
	}
	for _, row := range cs.Receivers {
		_, err := tx.Exec(`
			INSERT INTO receivers (account, path) VALUES (?, ?)
			ON CONFLICT(account, path) DO NOTHING
		`, string(row.Account), row.Path)
		if err != nil {
			return fmt.Errorf("upsert receiver %s %s: %w", row.Account, row.Path, err)
		}
	}
	for _, row := range cs.Burns {
		if len(row.Batches) == 0 {
			if _, err := tx.Exec(`DELETE FROM burns WHERE account = ?`, string(row.Account)); err != nil {
				return fmt.Errorf("delete burns %s: %w", row.Account, err)
			}
			continue
		}
		batchesJSON, err := marshalBatches(row.Batches)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO burns (account, batches) VALUES (?, ?)
			ON CONFLICT(account) DO UPDATE SET batches = excluded.batches
		`, string(row.Account), batchesJSON)
		if err != nil {
			return fmt.Errorf("upsert burns %s: %w", row.Account, err)
		}
	}
	return nil
}

func upsertVault(tx *sql.Tx, row *vault.VaultRow) error {
	itemsJSON, err := marshalItems(row.Record.Underlying)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO vaults
		(id, curator, underlying, underlying_holder, fee_receiver, fee_receiver_path,
		 state, auction_end, live_price, winning, net_proceeds, proceeds_left,
		 redeemed, redeemer, total_minted, cap)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			underlying_holder = excluded.underlying_holder,
			fee_receiver      = excluded.fee_receiver,
			fee_receiver_path = excluded.fee_receiver_path,
			state             = excluded.state,
			auction_end       = excluded.auction_end,
			live_price        = excluded.live_price,
			winning           = excluded.winning,
			net_proceeds      = excluded.net_proceeds,
			proceeds_left     = excluded.proceeds_left,
			redeemed          = excluded.redeemed,
			redeemer          = excluded.redeemer,
			total_minted      = excluded.total_minted
	`,
		row.Record.ID,
		string(row.Record.Curator),
		itemsJSON,
		string(row.Record.UnderlyingHolder),
		string(row.Record.FeeReceiver),
		row.Record.FeeReceiverPath,
		int(row.Record.State),
		row.Record.AuctionEnd,
		row.Record.LivePrice.String(),
		string(row.Record.Winning),
		row.Record.NetProceeds.String(),
		row.Record.ProceedsLeft.String(),
		row.Record.Redeemed,
		string(row.Record.Redeemer),
		row.TotalMinted,
		row.Cap,
	)
	if err != nil {
		return fmt.Errorf("upsert vault %d: %w", row.Record.ID, err)
	}
	return nil
}
