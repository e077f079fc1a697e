// Package attendance provides the session check-in flows. A check-in is
// committed to the chain as an attendance record carrying only hashes of
// the student identity, selfie and device fingerprint, while the mirror
// keeps the queryable session state.
package attendance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/ai"
	"github.com/trustsphere/trustsphere/business/sys/database"
	"github.com/trustsphere/trustsphere/foundation/hash"
	"go.uber.org/zap"
)

// Set of error variables for the attendance flows.
var (
	ErrNotFound      = errors.New("session not found or inactive")
	ErrQRInvalid     = errors.New("qr code expired or invalid")
	ErrAlreadyMarked = errors.New("attendance already marked for this session")
	ErrLivenessCheck = errors.New("liveness check failed")
)

// Core manages the set of APIs for attendance access.
type Core struct {
	log    *zap.SugaredLogger
	store  Store
	ledger *ledger.Core
}

// NewCore constructs a core for attendance api access.
func NewCore(log *zap.SugaredLogger, db *database.DB, lgr *ledger.Core) Core {
	return Core{
		log:    log,
		store:  NewStore(db),
		ledger: lgr,
	}
}

// CreateSession adds a new session to the mirror. A QR secret is
// generated when the caller does not bring one, and the QR expiry
// defaults to two hours out.
func (c Core) CreateSession(ns NewSession) (Session, error) {
	if ns.QRSecret == "" {
		secret := make([]byte, 16)
		if _, err := rand.Read(secret); err != nil {
			return Session{}, fmt.Errorf("generating qr secret: %w", err)
		}
		ns.QRSecret = hex.EncodeToString(secret)
	}

	if ns.QRExpiresAt.IsZero() {
		ns.QRExpiresAt = time.Now().Add(2 * time.Hour)
	}

	return c.store.Create(ns)
}

// QuerySessionByID finds a session by its id.
func (c Core) QuerySessionByID(sessionID string) (Session, error) {
	return c.store.QueryByID(sessionID)
}

// PrepareCheckIn validates the session and student state and builds an
// unsigned attendance transaction for external signing. The note carries
// hashes only, never the raw student id or selfie.
func (c Core) PrepareCheckIn(ctx context.Context, nc NewCheckIn) (PreparedCheckIn, error) {
	session, err := c.store.QueryByID(nc.SessionID)
	if err != nil {
		return PreparedCheckIn{}, err
	}

	if !session.Active {
		return PreparedCheckIn{}, ErrNotFound
	}

	if session.QRSecret != nc.QRCode || time.Now().After(session.QRExpiresAt) {
		return PreparedCheckIn{}, ErrQRInvalid
	}

	for _, att := range session.Attendees {
		if att.StudentID == nc.StudentID {
			return PreparedCheckIn{}, ErrAlreadyMarked
		}
	}

	if liveness := ai.CheckLiveness(nc.SelfieBase64); !liveness.Alive {
		return PreparedCheckIn{}, ErrLivenessCheck
	}

	selfie := nc.SelfieBase64
	if selfie == "" {
		selfie = "no-selfie"
	}

	data := map[string]any{
		"sessionId":   nc.SessionID,
		"studentHash": hash.String(nc.StudentID),
		"faceHash":    hash.String(selfie),
		"deviceHash":  hash.String(nc.DeviceFingerprint),
		"time":        time.Now().UTC().Format(time.RFC3339),
	}

	unsigned, err := c.ledger.Prepare(ctx, nc.SenderAddress, record.TypeAttendance, data)
	if err != nil {
		return PreparedCheckIn{}, err
	}

	return PreparedCheckIn{
		UnsignedTxn: unsigned,
		Data:        data,
	}, nil
}

// CommitCheckIn broadcasts the signed check-in and records the attendee
// in the mirror. The one-student-one-session rule is enforced by the
// store's compare-and-set at acknowledgment time; the chain write is
// append-only evidence, not the concurrency control.
func (c Core) CommitCheckIn(ctx context.Context, sessionID string, studentID string, signedTxn string) (ledger.Receipt, error) {
	session, err := c.store.QueryByID(sessionID)
	if err != nil {
		return ledger.Receipt{}, err
	}
	if !session.Active {
		return ledger.Receipt{}, ErrNotFound
	}

	for _, att := range session.Attendees {
		if att.StudentID == studentID {
			return ledger.Receipt{}, ErrAlreadyMarked
		}
	}

	receipt, err := c.ledger.Submit(ctx, signedTxn)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("submitting check-in: %w", err)
	}

	attendee := Attendee{
		StudentID:   studentID,
		StudentHash: hash.String(studentID),
		TxID:        receipt.TxID,
		MarkedAt:    time.Now().UTC(),
	}

	if err := c.store.AddAttendee(sessionID, attendee); err != nil {
		return receipt, err
	}

	return receipt, nil
}

// VerifyCheckIn checks the on-chain attendance record and cross-checks
// it against the mirror. The integrity match holds only when the hash of
// the mirrored student id equals the studentHash embedded on-chain.
func (c Core) VerifyCheckIn(ctx context.Context, txID string) (VerifiedCheckIn, error) {
	verification, err := c.ledger.Verify(ctx, txID, record.TypeAttendance)
	if err != nil {
		return VerifiedCheckIn{}, err
	}

	vc := VerifiedCheckIn{
		Verification: verification,
	}

	session, attendee, found, err := c.store.QueryByTxID(txID)
	if err != nil {
		return VerifiedCheckIn{}, err
	}
	if !found {
		return vc, nil
	}

	vc.Mirror = &CheckInMirror{
		SessionID:    session.ID,
		SessionTitle: session.Title,
		SessionDate:  session.CreatedAt,
		StudentID:    attendee.StudentID,
		MarkedAt:     attendee.MarkedAt,
	}
	vc.IntegrityMatch = verification.Valid && hash.String(attendee.StudentID) == ledger.DataHash(verification, "studentHash")

	return vc, nil
}
