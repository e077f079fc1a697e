// Package complaint provides the anonymous grievance flows. Only the
// sha-256 digest of the original text ever reaches the chain; the
// mirror keeps a redacted copy alongside its classification so staff
// can triage without learning who filed it.
package complaint

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/ai"
	"github.com/trustsphere/trustsphere/business/sys/database"
	"github.com/trustsphere/trustsphere/foundation/hash"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a complaint is not in the mirror.
var ErrNotFound = errors.New("complaint not found")

// Core manages the set of APIs for complaint access.
type Core struct {
	log    *zap.SugaredLogger
	store  Store
	ledger *ledger.Core
}

// NewCore constructs a core for complaint api access.
func NewCore(log *zap.SugaredLogger, db *database.DB, lgr *ledger.Core) Core {
	return Core{
		log:    log,
		store:  NewStore(db),
		ledger: lgr,
	}
}

// PrepareSubmit redacts and classifies the complaint text and builds
// the unsigned transaction committing its digest. The digest is taken
// over the original text before redaction, so the author can later
// prove authorship by revealing the text.
func (c Core) PrepareSubmit(ctx context.Context, ns NewSubmission) (PreparedSubmission, error) {
	originalHash := hash.String(ns.Text)

	redacted := ai.Anonymize(ns.Text)
	classification := ai.Classify(ns.Text)

	data := map[string]any{
		"hash":     originalHash,
		"category": classification.Category,
		"priority": classification.Priority,
	}

	unsigned, err := c.ledger.Prepare(ctx, ns.SenderAddress, record.TypeComplaint, data)
	if err != nil {
		return PreparedSubmission{}, err
	}

	return PreparedSubmission{
		UnsignedTxn:    unsigned,
		OriginalHash:   originalHash,
		AnonymizedText: redacted,
		Category:       classification.Category,
		Priority:       classification.Priority,
		PriorityScore:  classification.PriorityScore,
	}, nil
}

// CommitSubmit broadcasts the signed complaint and mirrors the
// redacted text with its classification.
func (c Core) CommitSubmit(ctx context.Context, cs CommitSubmission) (Complaint, ledger.Receipt, error) {
	receipt, err := c.ledger.Submit(ctx, cs.SignedTxn)
	if err != nil {
		return Complaint{}, ledger.Receipt{}, fmt.Errorf("submitting complaint: %w", err)
	}

	complaint, err := c.store.Create(cs, receipt.TxID)
	if err != nil {
		return Complaint{}, receipt, err
	}

	return complaint, receipt, nil
}

// QueryByTxID finds a mirrored complaint by its transaction id.
func (c Core) QueryByTxID(txID string) (Complaint, error) {
	return c.store.QueryByTxID(txID)
}

// Query returns the mirrored complaints, most urgent first.
func (c Core) Query() ([]Complaint, error) {
	return c.store.Query()
}

// VerifyIntegrity checks the on-chain complaint record against the
// mirror. The integrity match compares the digest committed on chain
// with the digest the mirror stored at submission time.
func (c Core) VerifyIntegrity(ctx context.Context, txID string) (VerifiedComplaint, error) {
	verification, err := c.ledger.Verify(ctx, txID, record.TypeComplaint)
	if err != nil {
		return VerifiedComplaint{}, err
	}

	vc := VerifiedComplaint{
		Verification: verification,
	}

	complaint, err := c.store.QueryByTxID(txID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return vc, nil
		}
		return VerifiedComplaint{}, err
	}

	vc.Mirror = &complaint
	vc.IntegrityMatch = verification.Valid && complaint.OriginalHash == ledger.DataHash(verification, "hash")

	return vc, nil
}
