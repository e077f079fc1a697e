package complaint

import (
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
)

// Complaint represents a mirrored grievance. The original text is
// never stored; only its digest and the redacted copy survive.
type Complaint struct {
	ID             string    `json:"id"`
	TxID           string    `json:"txId"`
	OriginalHash   string    `json:"originalHash"`
	AnonymizedText string    `json:"anonymizedText"`
	Category       string    `json:"category"`
	Priority       string    `json:"priority"`
	PriorityScore  int       `json:"priorityScore"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// NewSubmission contains the information needed to prepare a complaint.
type NewSubmission struct {
	Text          string `json:"text" validate:"required,min=10"`
	SenderAddress string `json:"senderAddress" validate:"required"`
}

// PreparedSubmission is handed back for wallet signing along with the
// triage results so the author sees what will be mirrored.
type PreparedSubmission struct {
	UnsignedTxn    string `json:"unsignedTxn"`
	OriginalHash   string `json:"originalHash"`
	AnonymizedText string `json:"anonymizedText"`
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	PriorityScore  int    `json:"priorityScore"`
}

// CommitSubmission contains the signed transaction and the triage
// results being acknowledged into the mirror.
type CommitSubmission struct {
	SignedTxn      string `json:"signedTxn" validate:"required"`
	OriginalHash   string `json:"originalHash" validate:"required"`
	AnonymizedText string `json:"anonymizedText" validate:"required"`
	Category       string `json:"category" validate:"required"`
	Priority       string `json:"priority" validate:"required"`
	PriorityScore  int    `json:"priorityScore"`
}

// VerifiedComplaint pairs the on-chain verification with the mirror.
type VerifiedComplaint struct {
	Verification   ledger.Verification `json:"blockchain"`
	Mirror         *Complaint          `json:"database,omitempty"`
	IntegrityMatch bool                `json:"integrityMatch"`
}
