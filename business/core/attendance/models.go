package attendance

import (
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
)

// Session represents a class session open for check-ins.
type Session struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Active      bool       `json:"active"`
	QRSecret    string     `json:"qrSecret"`
	QRExpiresAt time.Time  `json:"qrExpiresAt"`
	Attendees   []Attendee `json:"attendees"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Attendee is a single recorded check-in inside a session. The raw
// student id stays in the mirror; only its hash reaches the chain.
type Attendee struct {
	StudentID   string    `json:"studentId"`
	StudentHash string    `json:"studentHash"`
	TxID        string    `json:"txId"`
	MarkedAt    time.Time `json:"markedAt"`
}

// NewSession contains the information needed to open a session.
type NewSession struct {
	Title       string    `json:"title" validate:"required"`
	QRSecret    string    `json:"qrSecret"`
	QRExpiresAt time.Time `json:"qrExpiresAt"`
}

// NewCheckIn contains the information needed to prepare a check-in.
type NewCheckIn struct {
	SessionID         string `json:"sessionId" validate:"required"`
	StudentID         string `json:"studentId" validate:"required"`
	QRCode            string `json:"qrCode" validate:"required"`
	SelfieBase64      string `json:"selfieBase64"`
	DeviceFingerprint string `json:"deviceFingerprint"`
	SenderAddress     string `json:"senderAddress" validate:"required"`
}

// PreparedCheckIn carries the unsigned transaction and the payload that
// was embedded in its note.
type PreparedCheckIn struct {
	UnsignedTxn string         `json:"unsignedTxn"`
	Data        map[string]any `json:"attendanceData"`
}

// CheckInMirror is the mirror's view of a recorded check-in.
type CheckInMirror struct {
	SessionID    string    `json:"sessionId"`
	SessionTitle string    `json:"sessionTitle"`
	SessionDate  time.Time `json:"sessionDate"`
	StudentID    string    `json:"studentId"`
	MarkedAt     time.Time `json:"markedAt"`
}

// VerifiedCheckIn combines the on-chain verification with the mirror
// cross-check.
type VerifiedCheckIn struct {
	Verification   ledger.Verification `json:"blockchain"`
	Mirror         *CheckInMirror      `json:"database,omitempty"`
	IntegrityMatch bool                `json:"integrityMatch"`
}
