package ledger

import (
	"time"

	"github.com/trustsphere/trustsphere/business/core/record"
)

// Receipt reports the outcome of broadcasting a signed transaction.
// Confirmed false with a non-empty TxID means the transaction was
// accepted by the network but not yet confirmed within the round bound.
type Receipt struct {
	TxID      string `json:"txId"`
	Confirmed bool   `json:"confirmed"`
	Round     uint64 `json:"round"`
}

// Transaction is the decoded view of a transaction read back from
// the chain.
type Transaction struct {
	TxID      string      `json:"txId"`
	Sender    string      `json:"sender,omitempty"`
	Round     uint64      `json:"round,omitempty"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
	Note      record.Note `json:"note"`
}

// Verification is the derived, read-only result of checking an on-chain
// record. It is computed fresh on every call and never persisted. Valid
// is true only when the errors list is empty.
type Verification struct {
	Valid     bool           `json:"valid"`
	TxID      string         `json:"txId"`
	Sender    string         `json:"sender,omitempty"`
	Round     uint64         `json:"round,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Record    *record.Record `json:"record,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}
