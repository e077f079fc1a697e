package ledger_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	"github.com/trustsphere/trustsphere/foundation/algorand"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// senderAddr is the well known Algorand zero address. It is a valid
// address for building unsigned transactions without key material.
const senderAddr = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAY5HFKQ"

// =============================================================================
// Fake gateways

type fakeNode struct {
	params     algorand.TxParams
	paramsErr  error
	paramCalls int
	sendTxID   string
	sendErr    error
	sendCalls  int
	pending    map[string]algorand.PendingTx
	waitTx     algorand.PendingTx
	waitErr    error
}

func (f *fakeNode) TransactionParams(ctx context.Context) (algorand.TxParams, error) {
	f.paramCalls++
	return f.params, f.paramsErr
}

func (f *fakeNode) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	f.sendCalls++
	return f.sendTxID, f.sendErr
}

func (f *fakeNode) PendingTransaction(ctx context.Context, txID string) (algorand.PendingTx, error) {
	tx, exists := f.pending[txID]
	if !exists {
		return algorand.PendingTx{}, errors.New("transaction not found in pool")
	}
	return tx, nil
}

func (f *fakeNode) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (algorand.PendingTx, error) {
	return f.waitTx, f.waitErr
}

type fakeIndexer struct {
	txs map[string]algorand.TxInfo
}

func (f *fakeIndexer) LookupTransaction(ctx context.Context, txID string) (algorand.TxInfo, error) {
	tx, exists := f.txs[txID]
	if !exists {
		return algorand.TxInfo{}, errors.New("no transaction found for " + txID)
	}
	return tx, nil
}

func newTestCore(node *fakeNode, indexer *fakeIndexer, limiter *ratelimit.Limiter) *ledger.Core {
	return ledger.NewCore(ledger.Config{
		Log:     zap.NewNop().Sugar(),
		Node:    node,
		Indexer: indexer,
		Limiter: limiter,
	})
}

func noteBytes(t *testing.T, app string, typ string, data map[string]any) []byte {
	t.Helper()

	b, err := json.Marshal(map[string]any{
		"app":       app,
		"type":      typ,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build a note fixture: %v", failed, err)
	}

	return b
}

func signedBlob(t *testing.T) string {
	t.Helper()

	var stx types.SignedTxn
	return base64.StdEncoding.EncodeToString(msgpack.Encode(&stx))
}

func testParams() algorand.TxParams {
	return algorand.TxParams{
		MinFee:      1000,
		FirstRound:  1000,
		LastRound:   2000,
		GenesisID:   "testnet-v1.0",
		GenesisHash: make([]byte, 32),
	}
}

// =============================================================================

func TestPrepare(t *testing.T) {
	if len(senderAddr) != algorand.AddressLength || !algorand.IsValidAddress(senderAddr) {
		t.Fatalf("\t%s\tSender fixture must be a well formed address: len[%d]", failed, len(senderAddr))
	}

	t.Log("Given the need to build unsigned record transactions.")
	{
		t.Log("\tTest 0:\tWhen preparing a valid attendance record.")
		{
			node := &fakeNode{params: testParams()}
			core := newTestCore(node, &fakeIndexer{}, nil)

			data := map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			}

			unsigned, err := core.Prepare(context.Background(), senderAddr, record.TypeAttendance, data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to prepare the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to prepare the transaction.", success)

			if _, err := base64.StdEncoding.DecodeString(unsigned); err != nil {
				t.Fatalf("\t%s\tShould produce a base64 encoded blob: %v", failed, err)
			}
			t.Logf("\t%s\tShould produce a base64 encoded blob.", success)
		}

		t.Log("\tTest 1:\tWhen preparing a vote with an empty payload.")
		{
			node := &fakeNode{params: testParams()}
			core := newTestCore(node, &fakeIndexer{}, nil)

			_, err := core.Prepare(context.Background(), senderAddr, record.TypeVote, map[string]any{})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tShould get field errors for the missing payload: %v", failed, err)
			}
			t.Logf("\t%s\tShould get field errors for the missing payload.", success)

			if node.paramCalls != 0 {
				t.Fatalf("\t%s\tShould not touch the network on a rejected payload: calls[%d]", failed, node.paramCalls)
			}
			t.Logf("\t%s\tShould not touch the network on a rejected payload.", success)
		}

		t.Log("\tTest 2:\tWhen preparing with a malformed sender address.")
		{
			core := newTestCore(&fakeNode{params: testParams()}, &fakeIndexer{}, nil)

			data := map[string]any{
				"hash": "0xdeadbeef",
			}

			_, err := core.Prepare(context.Background(), "short-address", record.TypeComplaint, data)
			if !errors.Is(err, ledger.ErrInvalidAddress) {
				t.Fatalf("\t%s\tShould get ErrInvalidAddress: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrInvalidAddress.", success)
		}

		t.Log("\tTest 3:\tWhen the rate limit for an address is exhausted.")
		{
			limiter := ratelimit.New(1, time.Minute)
			defer limiter.Stop()

			core := newTestCore(&fakeNode{params: testParams()}, &fakeIndexer{}, limiter)

			data := map[string]any{
				"hash": "0xdeadbeef",
			}

			if _, err := core.Prepare(context.Background(), senderAddr, record.TypeComplaint, data); err != nil {
				t.Fatalf("\t%s\tShould admit the first request: %v", failed, err)
			}
			t.Logf("\t%s\tShould admit the first request.", success)

			_, err := core.Prepare(context.Background(), senderAddr, record.TypeComplaint, data)
			if !errors.Is(err, ratelimit.ErrLimitExceeded) {
				t.Fatalf("\t%s\tShould reject the request over the limit: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the request over the limit.", success)
		}

		t.Log("\tTest 4:\tWhen the node cannot serve network parameters.")
		{
			node := &fakeNode{paramsErr: errors.New("connection refused")}
			core := newTestCore(node, &fakeIndexer{}, nil)

			data := map[string]any{
				"hash": "0xdeadbeef",
			}

			_, err := core.Prepare(context.Background(), senderAddr, record.TypeComplaint, data)
			if !ledger.IsUpstreamError(err) {
				t.Fatalf("\t%s\tShould surface an upstream error: %v", failed, err)
			}
			t.Logf("\t%s\tShould surface an upstream error.", success)
		}
	}
}

func TestSubmit(t *testing.T) {
	t.Log("Given the need to broadcast signed transactions.")
	{
		t.Log("\tTest 0:\tWhen the transaction confirms within the wait bound.")
		{
			node := &fakeNode{
				sendTxID: "TX1",
				waitTx:   algorand.PendingTx{ConfirmedRound: 42},
			}
			core := newTestCore(node, &fakeIndexer{}, nil)

			receipt, err := core.Submit(context.Background(), signedBlob(t))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to submit the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to submit the transaction.", success)

			if !receipt.Confirmed || receipt.Round != 42 || receipt.TxID != "TX1" {
				t.Fatalf("\t%s\tShould report a confirmed receipt: %+v", failed, receipt)
			}
			t.Logf("\t%s\tShould report a confirmed receipt.", success)
		}

		t.Log("\tTest 1:\tWhen confirmation is still pending after the wait bound.")
		{
			node := &fakeNode{
				sendTxID: "TX2",
				waitErr:  algorand.ErrWaitTimeout,
			}
			core := newTestCore(node, &fakeIndexer{}, nil)

			receipt, err := core.Submit(context.Background(), signedBlob(t))
			if err != nil {
				t.Fatalf("\t%s\tShould not treat a pending transaction as a failure: %v", failed, err)
			}
			t.Logf("\t%s\tShould not treat a pending transaction as a failure.", success)

			if receipt.Confirmed || receipt.TxID != "TX2" {
				t.Fatalf("\t%s\tShould report an unconfirmed receipt with the txid: %+v", failed, receipt)
			}
			t.Logf("\t%s\tShould report an unconfirmed receipt with the txid.", success)
		}

		t.Log("\tTest 2:\tWhen the signed blob is not valid base64.")
		{
			node := &fakeNode{}
			core := newTestCore(node, &fakeIndexer{}, nil)

			_, err := core.Submit(context.Background(), "!!!not-base64!!!")
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tShould get field errors for the blob: %v", failed, err)
			}
			t.Logf("\t%s\tShould get field errors for the blob.", success)

			if node.sendCalls != 0 {
				t.Fatalf("\t%s\tShould not broadcast a malformed blob: calls[%d]", failed, node.sendCalls)
			}
			t.Logf("\t%s\tShould not broadcast a malformed blob.", success)
		}

		t.Log("\tTest 3:\tWhen the network rejects the broadcast.")
		{
			node := &fakeNode{sendErr: errors.New("overspend")}
			core := newTestCore(node, &fakeIndexer{}, nil)

			_, err := core.Submit(context.Background(), signedBlob(t))
			if !ledger.IsUpstreamError(err) {
				t.Fatalf("\t%s\tShould surface an upstream error: %v", failed, err)
			}
			t.Logf("\t%s\tShould surface an upstream error.", success)
		}
	}
}

func TestRead(t *testing.T) {
	t.Log("Given the need to read transactions back from the chain.")
	{
		t.Log("\tTest 0:\tWhen the indexer knows the transaction.")
		{
			indexer := &fakeIndexer{txs: map[string]algorand.TxInfo{
				"TX1": {
					ID:             "TX1",
					Sender:         senderAddr,
					Note:           noteBytes(t, record.AppTag, "complaint", map[string]any{"hash": "0xdead"}),
					ConfirmedRound: 42,
					RoundTime:      1700000000,
				},
			}}
			core := newTestCore(&fakeNode{}, indexer, nil)

			tx, err := core.Read(context.Background(), "TX1")
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to read the transaction.", success)

			if !tx.Note.Decoded() || tx.Round != 42 || tx.Timestamp == nil {
				t.Fatalf("\t%s\tShould carry the decoded note and chain metadata: %+v", failed, tx)
			}
			t.Logf("\t%s\tShould carry the decoded note and chain metadata.", success)
		}

		t.Log("\tTest 1:\tWhen only the node's pending pool knows the transaction.")
		{
			node := &fakeNode{pending: map[string]algorand.PendingTx{
				"TX2": {
					Sender: senderAddr,
					Note:   noteBytes(t, record.AppTag, "complaint", map[string]any{"hash": "0xdead"}),
				},
			}}
			core := newTestCore(node, &fakeIndexer{}, nil)

			tx, err := core.Read(context.Background(), "TX2")
			if err != nil {
				t.Fatalf("\t%s\tShould fall back to the pending pool: %v", failed, err)
			}
			t.Logf("\t%s\tShould fall back to the pending pool.", success)

			if tx.Round != 0 {
				t.Fatalf("\t%s\tShould report the transaction as unconfirmed: round[%d]", failed, tx.Round)
			}
			t.Logf("\t%s\tShould report the transaction as unconfirmed.", success)
		}

		t.Log("\tTest 2:\tWhen the transaction exists nowhere.")
		{
			core := newTestCore(&fakeNode{}, &fakeIndexer{}, nil)

			_, err := core.Read(context.Background(), "TX3")
			if !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tShould get ErrNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrNotFound.", success)
		}
	}
}

func TestVerify(t *testing.T) {
	indexerWith := func(note []byte, round uint64) *fakeIndexer {
		return &fakeIndexer{txs: map[string]algorand.TxInfo{
			"TX1": {
				ID:             "TX1",
				Sender:         senderAddr,
				Note:           note,
				ConfirmedRound: round,
				RoundTime:      1700000000,
			},
		}}
	}

	t.Log("Given the need to verify on-chain governance records.")
	{
		t.Log("\tTest 0:\tWhen the record is well formed and confirmed.")
		{
			note := noteBytes(t, record.AppTag, "attendance", map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			})
			core := newTestCore(&fakeNode{}, indexerWith(note, 42), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to verify the transaction.", success)

			if !v.Valid || len(v.Errors) != 0 {
				t.Fatalf("\t%s\tShould report a valid record: %+v", failed, v)
			}
			t.Logf("\t%s\tShould report a valid record.", success)
		}

		t.Log("\tTest 1:\tWhen the note carries a foreign app tag.")
		{
			note := noteBytes(t, "SomeOtherApp", "attendance", map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			})
			core := newTestCore(&fakeNode{}, indexerWith(note, 42), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}

			if v.Valid || len(v.Errors) != 1 {
				t.Fatalf("\t%s\tShould report exactly the app tag defect: %+v", failed, v.Errors)
			}
			t.Logf("\t%s\tShould report exactly the app tag defect.", success)
		}

		t.Log("\tTest 2:\tWhen the note carries the wrong record type.")
		{
			note := noteBytes(t, record.AppTag, "vote", map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			})
			core := newTestCore(&fakeNode{}, indexerWith(note, 42), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}

			if v.Valid {
				t.Fatalf("\t%s\tShould report the type mismatch: %+v", failed, v.Errors)
			}
			t.Logf("\t%s\tShould report the type mismatch.", success)
		}

		t.Log("\tTest 3:\tWhen the note is missing a required field.")
		{
			note := noteBytes(t, record.AppTag, "attendance", map[string]any{
				"sessionId": "ses-100",
			})
			core := newTestCore(&fakeNode{}, indexerWith(note, 42), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}

			if v.Valid || len(v.Errors) != 1 || v.Errors[0] != "missing data.studentId" {
				t.Fatalf("\t%s\tShould name the missing field: %+v", failed, v.Errors)
			}
			t.Logf("\t%s\tShould name the missing field.", success)
		}

		t.Log("\tTest 4:\tWhen the transaction is not yet confirmed.")
		{
			note := noteBytes(t, record.AppTag, "attendance", map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			})
			core := newTestCore(&fakeNode{}, indexerWith(note, 0), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}

			if v.Valid || len(v.Errors) != 1 || v.Errors[0] != "transaction is not confirmed" {
				t.Fatalf("\t%s\tShould report the missing confirmation: %+v", failed, v.Errors)
			}
			t.Logf("\t%s\tShould report the missing confirmation.", success)
		}

		t.Log("\tTest 5:\tWhen the note does not decode as JSON.")
		{
			core := newTestCore(&fakeNode{}, indexerWith([]byte("raw bytes"), 42), nil)

			v, err := core.Verify(context.Background(), "TX1", record.TypeAttendance)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify the transaction: %v", failed, err)
			}

			if v.Valid {
				t.Fatalf("\t%s\tShould report the undecodable note: %+v", failed, v.Errors)
			}
			t.Logf("\t%s\tShould report the undecodable note.", success)

			if v.Record != nil {
				t.Fatalf("\t%s\tShould not fabricate a record for raw bytes.", failed)
			}
			t.Logf("\t%s\tShould not fabricate a record for raw bytes.", success)
		}

		t.Log("\tTest 6:\tWhen the transaction id exists nowhere.")
		{
			core := newTestCore(&fakeNode{}, &fakeIndexer{}, nil)

			_, err := core.Verify(context.Background(), "TXMISSING", record.TypeAttendance)
			if !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tShould get ErrNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrNotFound.", success)
		}
	}
}
