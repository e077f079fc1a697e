package certificate

import (
	"github.com/google/uuid"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

const collection = "certificates"

// Store manages the set of APIs for certificate mirror access.
type Store struct {
	db *database.DB
}

// NewStore constructs a store for certificate mirror access.
func NewStore(db *database.DB) Store {
	return Store{
		db: db,
	}
}

// Create adds an acknowledged certificate to the mirror. The duplicate
// check runs inside the update's critical section so two racing
// issuances for the same student and event cannot both land.
func (s Store) Create(ci CommitIssuance, txID string) (Certificate, error) {
	cert := Certificate{
		ID:       uuid.NewString(),
		TxID:     txID,
		Student:  ci.Student,
		Event:    ci.Event,
		Role:     ci.Role,
		IPFSHash: ci.IPFSHash,
		IssuedBy: ci.IssuedBy,
		IssuedAt: ci.IssuedAt,
		CertHash: ci.CertHash,
	}

	err := database.Update(s.db, collection, func(certs []Certificate) ([]Certificate, error) {
		for _, existing := range certs {
			if existing.Student == ci.Student && existing.Event == ci.Event {
				return nil, &DuplicateError{
					Student: ci.Student,
					Event:   ci.Event,
					TxID:    existing.TxID,
				}
			}
		}
		return append(certs, cert), nil
	})
	if err != nil {
		return Certificate{}, err
	}

	return cert, nil
}

// QueryByTxID finds a certificate by its transaction id.
func (s Store) QueryByTxID(txID string) (Certificate, error) {
	cert, found, err := database.FindOne[Certificate](s.db, collection, func(c Certificate) bool {
		return c.TxID == txID
	})
	if err != nil {
		return Certificate{}, err
	}
	if !found {
		return Certificate{}, ErrNotFound
	}

	return cert, nil
}

// QueryByStudentEvent finds a certificate by student and event.
func (s Store) QueryByStudentEvent(student string, event string) (Certificate, error) {
	cert, found, err := database.FindOne[Certificate](s.db, collection, func(c Certificate) bool {
		return c.Student == student && c.Event == event
	})
	if err != nil {
		return Certificate{}, err
	}
	if !found {
		return Certificate{}, ErrNotFound
	}

	return cert, nil
}

// QueryByStudent returns the certificates issued to a student.
func (s Store) QueryByStudent(student string) ([]Certificate, error) {
	return database.Find[Certificate](s.db, collection, func(c Certificate) bool {
		return c.Student == student
	})
}
