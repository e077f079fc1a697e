// Package algorand provides a thin client over an Algorand node and indexer.
// It resolves network parameters, broadcasts raw transactions and reads
// transactions back, exposing plain wire types so callers can substitute
// fakes in tests. The client holds no key material.
package algorand

import (
	"context"
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
)

// ErrWaitTimeout indicates a transaction was not confirmed within the
// bounded number of rounds. The transaction may still confirm later.
var ErrWaitTimeout = errors.New("confirmation wait exceeded round bound")

// TxParams carries the network parameters needed to construct a new
// transaction.
type TxParams struct {
	Fee         uint64
	MinFee      uint64
	FirstRound  uint64
	LastRound   uint64
	GenesisID   string
	GenesisHash []byte
}

// PendingTx is the node's view of a transaction that was submitted to it.
type PendingTx struct {
	Sender         string
	Note           []byte
	ConfirmedRound uint64
	PoolError      string
}

// TxInfo is the indexer's view of a confirmed transaction.
type TxInfo struct {
	ID             string
	Sender         string
	Note           []byte
	ConfirmedRound uint64
	RoundTime      uint64
}

// Config represents the settings required to construct a client. The
// defaults target the public Algonode TestNet endpoints which require
// no token.
type Config struct {
	NodeURL    string
	IndexerURL string
	Token      string
}

// Client provides access to an Algorand node and indexer.
type Client struct {
	algod   *algod.Client
	indexer *indexer.Client
}

// New constructs a client for the configured node and indexer endpoints.
func New(cfg Config) (*Client, error) {
	ac, err := algod.MakeClient(cfg.NodeURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("constructing algod client: %w", err)
	}

	ic, err := indexer.MakeClient(cfg.IndexerURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("constructing indexer client: %w", err)
	}

	return &Client{
		algod:   ac,
		indexer: ic,
	}, nil
}

// TransactionParams fetches the suggested parameters for constructing a
// new transaction.
func (c *Client) TransactionParams(ctx context.Context) (TxParams, error) {
	sp, err := c.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return TxParams{}, fmt.Errorf("fetching suggested params: %w", err)
	}

	params := TxParams{
		Fee:         uint64(sp.Fee),
		MinFee:      sp.MinFee,
		FirstRound:  uint64(sp.FirstRoundValid),
		LastRound:   uint64(sp.LastRoundValid),
		GenesisID:   sp.GenesisID,
		GenesisHash: sp.GenesisHash,
	}

	return params, nil
}

// SendRawTransaction broadcasts signed transaction bytes to the network
// and returns the transaction id. A rejection by the node is returned
// with the node's reason preserved.
func (c *Client) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	txID, err := c.algod.SendRawTransaction(stx).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("broadcast rejected: %w", err)
	}

	return txID, nil
}

// PendingTransaction reads a transaction from the node's view. This works
// for transactions that were recently submitted and may not have reached
// the indexer yet.
func (c *Client) PendingTransaction(ctx context.Context, txID string) (PendingTx, error) {
	info, stxn, err := c.algod.PendingTransactionInformation(txID).Do(ctx)
	if err != nil {
		return PendingTx{}, fmt.Errorf("pending transaction lookup: %w", err)
	}

	pending := PendingTx{
		Sender:         stxn.Txn.Sender.String(),
		Note:           stxn.Txn.Note,
		ConfirmedRound: info.ConfirmedRound,
		PoolError:      info.PoolError,
	}

	return pending, nil
}

// WaitForConfirmation polls the node until the transaction is confirmed
// or the specified number of rounds has elapsed. The bound is a round
// count, not wall-clock time. ErrWaitTimeout is returned when the bound
// is exceeded without a confirmation.
func (c *Client) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (PendingTx, error) {
	status, err := c.algod.Status().Do(ctx)
	if err != nil {
		return PendingTx{}, fmt.Errorf("fetching node status: %w", err)
	}

	currentRound := status.LastRound
	lastRound := currentRound + waitRounds

	for currentRound <= lastRound {
		pending, err := c.PendingTransaction(ctx, txID)
		if err != nil {
			return PendingTx{}, err
		}

		if pending.PoolError != "" {
			return pending, fmt.Errorf("transaction rejected by pool: %s", pending.PoolError)
		}

		if pending.ConfirmedRound > 0 {
			return pending, nil
		}

		if _, err := c.algod.StatusAfterBlock(currentRound).Do(ctx); err != nil {
			return PendingTx{}, fmt.Errorf("waiting for round %d: %w", currentRound, err)
		}
		currentRound++
	}

	return PendingTx{}, ErrWaitTimeout
}

// LookupTransaction reads a confirmed transaction from the indexer.
func (c *Client) LookupTransaction(ctx context.Context, txID string) (TxInfo, error) {
	resp, err := c.indexer.LookupTransaction(txID).Do(ctx)
	if err != nil {
		return TxInfo{}, fmt.Errorf("indexer lookup: %w", err)
	}

	tx := resp.Transaction

	info := TxInfo{
		ID:             tx.Id,
		Sender:         tx.Sender,
		Note:           tx.Note,
		ConfirmedRound: tx.ConfirmedRound,
		RoundTime:      tx.RoundTime,
	}

	return info, nil
}
