// Package certificate provides the credential issuance and
// verification flows. Each certificate is committed to the chain as a
// cert record whose certHash fingerprints the credential fields; the
// mirror enforces one certificate per student and event.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/database"
	"github.com/trustsphere/trustsphere/foundation/hash"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a certificate is not in the mirror.
var ErrNotFound = errors.New("certificate not found")

// fingerprint is the set of credential fields bound into the certHash.
// The hash covers this exact shape; changing it invalidates nothing
// already issued since each certificate carries its own hash.
type fingerprint struct {
	Student  string `json:"student"`
	Event    string `json:"event"`
	Role     string `json:"role"`
	IssuedAt string `json:"issuedAt"`
}

// DuplicateError is returned when a certificate already exists for the
// same student and event. It carries the existing transaction id so
// the caller can point at the prior issuance.
type DuplicateError struct {
	Student string
	Event   string
	TxID    string
}

// Error implements the error interface.
func (de *DuplicateError) Error() string {
	return fmt.Sprintf("certificate already issued to %q for %q", de.Student, de.Event)
}

// IsDuplicateError checks if an error of type DuplicateError exists.
func IsDuplicateError(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// GetDuplicateError returns a copy of the DuplicateError.
func GetDuplicateError(err error) *DuplicateError {
	var de *DuplicateError
	if !errors.As(err, &de) {
		return nil
	}
	return de
}

// Core manages the set of APIs for certificate access.
type Core struct {
	log    *zap.SugaredLogger
	store  Store
	ledger *ledger.Core
}

// NewCore constructs a core for certificate api access.
func NewCore(log *zap.SugaredLogger, db *database.DB, lgr *ledger.Core) Core {
	return Core{
		log:    log,
		store:  NewStore(db),
		ledger: lgr,
	}
}

// PrepareIssue fingerprints the credential and builds the unsigned
// issuance transaction. The duplicate pre-check here gives issuers a
// fast failure; the store re-checks inside its critical section at
// acknowledgment time.
func (c Core) PrepareIssue(ctx context.Context, ni NewIssuance) (PreparedIssuance, error) {
	if existing, err := c.store.QueryByStudentEvent(ni.Student, ni.Event); err == nil {
		return PreparedIssuance{}, &DuplicateError{
			Student: ni.Student,
			Event:   ni.Event,
			TxID:    existing.TxID,
		}
	}

	issuedAt := time.Now().UTC()
	certHash := hash.Hash(fingerprint{
		Student:  ni.Student,
		Event:    ni.Event,
		Role:     ni.Role,
		IssuedAt: issuedAt.Format(time.RFC3339),
	})

	data := map[string]any{
		"student":  ni.Student,
		"event":    ni.Event,
		"role":     ni.Role,
		"ipfsHash": ni.IPFSHash,
		"issuedBy": ni.IssuedBy,
		"issuedAt": issuedAt.Format(time.RFC3339),
		"certHash": certHash,
	}

	unsigned, err := c.ledger.Prepare(ctx, ni.SenderAddress, record.TypeCertificate, data)
	if err != nil {
		return PreparedIssuance{}, err
	}

	return PreparedIssuance{
		UnsignedTxn: unsigned,
		CertHash:    certHash,
		IssuedAt:    issuedAt,
	}, nil
}

// CommitIssue broadcasts the signed issuance and mirrors the
// credential metadata.
func (c Core) CommitIssue(ctx context.Context, ci CommitIssuance) (Certificate, ledger.Receipt, error) {
	receipt, err := c.ledger.Submit(ctx, ci.SignedTxn)
	if err != nil {
		return Certificate{}, ledger.Receipt{}, fmt.Errorf("submitting certificate: %w", err)
	}

	cert, err := c.store.Create(ci, receipt.TxID)
	if err != nil {
		return Certificate{}, receipt, err
	}

	return cert, receipt, nil
}

// QueryByTxID finds a mirrored certificate by its transaction id.
func (c Core) QueryByTxID(txID string) (Certificate, error) {
	return c.store.QueryByTxID(txID)
}

// QueryByStudent returns the certificates issued to a student.
func (c Core) QueryByStudent(student string) ([]Certificate, error) {
	return c.store.QueryByStudent(student)
}

// VerifyIssuance checks the on-chain cert record against the mirror.
// The integrity match recomputes nothing: it compares the certHash
// committed on chain with the certHash the mirror stored at issuance.
func (c Core) VerifyIssuance(ctx context.Context, txID string) (VerifiedCertificate, error) {
	verification, err := c.ledger.Verify(ctx, txID, record.TypeCertificate)
	if err != nil {
		return VerifiedCertificate{}, err
	}

	vc := VerifiedCertificate{
		Verification: verification,
	}

	cert, err := c.store.QueryByTxID(txID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return vc, nil
		}
		return VerifiedCertificate{}, err
	}

	vc.Mirror = &cert
	vc.IntegrityMatch = verification.Valid && cert.CertHash == ledger.DataHash(verification, "certHash")

	return vc, nil
}
