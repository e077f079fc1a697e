// Package ledger implements the on-chain side of the governance record
// protocol: building unsigned note-carrying transactions, broadcasting
// externally signed blobs and verifying records read back from the chain.
// The ledger never holds or needs a signing key.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	"github.com/trustsphere/trustsphere/foundation/algorand"
	"go.uber.org/zap"
)

// defaultWaitRounds bounds how many rounds Submit waits for a
// confirmation before reporting the transaction as still pending.
const defaultWaitRounds = 4

// NodeGateway provides access to a chain node for parameter resolution,
// broadcasting and pending transaction lookups.
type NodeGateway interface {
	TransactionParams(ctx context.Context) (algorand.TxParams, error)
	SendRawTransaction(ctx context.Context, stx []byte) (string, error)
	PendingTransaction(ctx context.Context, txID string) (algorand.PendingTx, error)
	WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (algorand.PendingTx, error)
}

// IndexerGateway provides access to an indexing service for confirmed
// transaction lookups.
type IndexerGateway interface {
	LookupTransaction(ctx context.Context, txID string) (algorand.TxInfo, error)
}

// EventHandler defines a function that is called when ledger events
// occur in the system.
type EventHandler func(v string, args ...any)

// Config represents the dependencies required by the ledger.
type Config struct {
	Log        *zap.SugaredLogger
	Node       NodeGateway
	Indexer    IndexerGateway
	Limiter    *ratelimit.Limiter
	WaitRounds uint64
	EvHandler  EventHandler
}

// Core manages the record submission and verification protocol.
type Core struct {
	log        *zap.SugaredLogger
	node       NodeGateway
	indexer    IndexerGateway
	limiter    *ratelimit.Limiter
	waitRounds uint64
	evHandler  EventHandler
}

// NewCore constructs a ledger core for the specified gateways.
func NewCore(cfg Config) *Core {
	waitRounds := cfg.WaitRounds
	if waitRounds == 0 {
		waitRounds = defaultWaitRounds
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Core{
		log:        cfg.Log,
		node:       cfg.Node,
		indexer:    cfg.Indexer,
		limiter:    cfg.Limiter,
		waitRounds: waitRounds,
		evHandler:  ev,
	}
}

// Prepare builds an unsigned zero-value self transfer carrying a record
// of the specified type and returns it base64 encoded for external
// signing. All validation happens before any network call.
func (c *Core) Prepare(ctx context.Context, senderAddress string, typ record.Type, data map[string]any) (string, error) {
	if err := record.Check(typ, data); err != nil {
		return "", err
	}

	if len(senderAddress) != algorand.AddressLength || !algorand.IsValidAddress(senderAddress) {
		return "", ErrInvalidAddress
	}

	if c.limiter != nil {
		if err := c.limiter.Admit(senderAddress); err != nil {
			return "", err
		}
	}

	note, err := record.Encode(typ, data)
	if err != nil {
		return "", err
	}

	params, err := c.node.TransactionParams(ctx)
	if err != nil {
		return "", NewUpstreamError("fetching network parameters", err)
	}

	unsigned, err := algorand.BuildNotePayment(senderAddress, note, params)
	if err != nil {
		return "", fmt.Errorf("building unsigned transaction: %w", err)
	}

	c.evHandler("ledger: prepare: type[%s] sender[%s] note[%d bytes]", typ, senderAddress, len(note))

	return unsigned, nil
}

// Submit broadcasts an externally signed transaction blob and waits a
// bounded number of rounds for confirmation. A wait that exceeds the
// bound is not a failure: the receipt reports confirmed false and the
// caller is expected to read the transaction back later. Re-submitting
// the same blob is safe, the network deduplicates by transaction id.
func (c *Core) Submit(ctx context.Context, signedBlob string) (Receipt, error) {
	raw, err := algorand.DecodeSignedBlob(signedBlob)
	if err != nil {
		return Receipt{}, validate.NewFieldsError("signedTxn", err)
	}

	txID, err := c.node.SendRawTransaction(ctx, raw)
	if err != nil {
		return Receipt{}, NewUpstreamError("broadcasting transaction", err)
	}

	c.evHandler("ledger: submit: broadcast: txid[%s]", txID)

	pending, err := c.node.WaitForConfirmation(ctx, txID, c.waitRounds)
	if err != nil {
		if errors.Is(err, algorand.ErrWaitTimeout) {
			c.evHandler("ledger: submit: pending: txid[%s]", txID)
			return Receipt{TxID: txID}, nil
		}
		return Receipt{TxID: txID}, NewUpstreamError("waiting for confirmation", err)
	}

	c.evHandler("ledger: submit: confirmed: txid[%s] round[%d]", txID, pending.ConfirmedRound)

	return Receipt{
		TxID:      txID,
		Confirmed: true,
		Round:     pending.ConfirmedRound,
	}, nil
}
