package certificate

import (
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
)

// Certificate represents a mirrored credential.
type Certificate struct {
	ID       string    `json:"id"`
	TxID     string    `json:"txId"`
	Student  string    `json:"student"`
	Event    string    `json:"event"`
	Role     string    `json:"role"`
	IPFSHash string    `json:"ipfsHash,omitempty"`
	IssuedBy string    `json:"issuedBy"`
	IssuedAt time.Time `json:"issuedAt"`
	CertHash string    `json:"certHash"`
}

// NewIssuance contains the information needed to prepare a certificate.
type NewIssuance struct {
	Student       string `json:"student" validate:"required"`
	Event         string `json:"event" validate:"required"`
	Role          string `json:"role" validate:"required"`
	IPFSHash      string `json:"ipfsHash"`
	IssuedBy      string `json:"issuedBy" validate:"required"`
	SenderAddress string `json:"senderAddress" validate:"required"`
}

// PreparedIssuance is handed back for wallet signing.
type PreparedIssuance struct {
	UnsignedTxn string    `json:"unsignedTxn"`
	CertHash    string    `json:"certHash"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// CommitIssuance contains the signed transaction and the credential
// fields being acknowledged into the mirror.
type CommitIssuance struct {
	SignedTxn string    `json:"signedTxn" validate:"required"`
	Student   string    `json:"student" validate:"required"`
	Event     string    `json:"event" validate:"required"`
	Role      string    `json:"role" validate:"required"`
	IPFSHash  string    `json:"ipfsHash"`
	IssuedBy  string    `json:"issuedBy" validate:"required"`
	IssuedAt  time.Time `json:"issuedAt" validate:"required"`
	CertHash  string    `json:"certHash" validate:"required"`
}

// VerifiedCertificate pairs the on-chain verification with the mirror.
type VerifiedCertificate struct {
	Verification   ledger.Verification `json:"blockchain"`
	Mirror         *Certificate        `json:"database,omitempty"`
	IntegrityMatch bool                `json:"integrityMatch"`
}
