package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/trustsphere/trustsphere/business/core/record"
)

// Read looks up a transaction by id and decodes its note. The indexer is
// consulted first since it serves confirmed transactions; very recent
// transactions fall back to the node's pending view. ErrNotFound is
// returned only when the transaction exists in neither place.
func (c *Core) Read(ctx context.Context, txID string) (Transaction, error) {
	if info, err := c.indexer.LookupTransaction(ctx, txID); err == nil {
		var ts *time.Time
		if info.RoundTime > 0 {
			t := time.Unix(int64(info.RoundTime), 0).UTC()
			ts = &t
		}

		tx := Transaction{
			TxID:      info.ID,
			Sender:    info.Sender,
			Round:     info.ConfirmedRound,
			Timestamp: ts,
			Note:      record.Decode(info.Note),
		}
		return tx, nil
	}

	pending, err := c.node.PendingTransaction(ctx, txID)
	if err != nil {
		return Transaction{}, ErrNotFound
	}

	tx := Transaction{
		TxID:   txID,
		Sender: pending.Sender,
		Round:  pending.ConfirmedRound,
		Note:   record.Decode(pending.Note),
	}

	return tx, nil
}

// Verify checks that a transaction is a valid record of the expected
// type. Every defect is accumulated so the caller sees them all in one
// response: an unconfirmed transaction, an undecodable or foreign note,
// a type mismatch and each missing required field. A hard error is
// reserved for a transaction id that does not exist anywhere.
func (c *Core) Verify(ctx context.Context, txID string, expected record.Type) (Verification, error) {
	tx, err := c.Read(ctx, txID)
	if err != nil {
		return Verification{}, err
	}

	var errs []string

	if tx.Round == 0 {
		errs = append(errs, "transaction is not confirmed")
	}

	if !tx.Note.Decoded() {
		errs = append(errs, "transaction has no decodable JSON note")
		return Verification{
			TxID:      tx.TxID,
			Sender:    tx.Sender,
			Round:     tx.Round,
			Timestamp: tx.Timestamp,
			Errors:    errs,
		}, nil
	}

	rec := tx.Note.Record

	if rec.App != record.AppTag {
		errs = append(errs, fmt.Sprintf("note app tag is %q, expected %q", rec.App, record.AppTag))
	}

	if rec.Type != expected {
		errs = append(errs, fmt.Sprintf("note type is %q, expected %q", rec.Type, expected))
	}

	for _, name := range record.MissingFields(expected, rec.Data) {
		errs = append(errs, fmt.Sprintf("missing data.%s", name))
	}

	return Verification{
		Valid:     len(errs) == 0,
		TxID:      tx.TxID,
		Sender:    tx.Sender,
		Round:     tx.Round,
		Timestamp: tx.Timestamp,
		Record:    rec,
		Errors:    errs,
	}, nil
}

// DataHash extracts the named hash field from a verified record so it
// can be cross-checked against an off-chain mirror. The empty string is
// returned when the record carries no such field.
func DataHash(v Verification, field string) string {
	if v.Record == nil {
		return ""
	}

	value, exists := v.Record.Data[field]
	if !exists {
		return ""
	}

	s, ok := value.(string)
	if !ok {
		return ""
	}

	return s
}
