package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

// collection is the mirror collection holding sessions.
const collection = "sessions"

// Store manages the set of database access for sessions.
type Store struct {
	db *database.DB
}

// NewStore constructs a session store for api access.
func NewStore(db *database.DB) Store {
	return Store{
		db: db,
	}
}

// Create adds a new session to the mirror.
func (s Store) Create(ns NewSession) (Session, error) {
	session := Session{
		ID:          uuid.NewString(),
		Title:       ns.Title,
		Active:      true,
		QRSecret:    ns.QRSecret,
		QRExpiresAt: ns.QRExpiresAt,
		CreatedAt:   time.Now().UTC(),
	}

	if err := database.Insert(s.db, collection, session); err != nil {
		return Session{}, err
	}

	return session, nil
}

// QueryByID finds the session identified by the specified id.
func (s Store) QueryByID(sessionID string) (Session, error) {
	session, found, err := database.FindOne(s.db, collection, func(doc Session) bool {
		return doc.ID == sessionID
	})
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, ErrNotFound
	}

	return session, nil
}

// QueryByTxID finds the session and attendee holding the specified
// transaction id.
func (s Store) QueryByTxID(txID string) (Session, Attendee, bool, error) {
	sessions, err := database.Find(s.db, collection, func(doc Session) bool {
		for _, att := range doc.Attendees {
			if att.TxID == txID {
				return true
			}
		}
		return false
	})
	if err != nil {
		return Session{}, Attendee{}, false, err
	}
	if len(sessions) == 0 {
		return Session{}, Attendee{}, false, nil
	}

	session := sessions[0]
	for _, att := range session.Attendees {
		if att.TxID == txID {
			return session, att, true, nil
		}
	}

	return Session{}, Attendee{}, false, nil
}

// AddAttendee records a check-in for the specified session. The
// duplicate check and the append run inside the store's critical
// section so two racing check-ins for the same student cannot both
// land.
func (s Store) AddAttendee(sessionID string, attendee Attendee) error {
	return database.Update(s.db, collection, func(docs []Session) ([]Session, error) {
		for i, session := range docs {
			if session.ID != sessionID {
				continue
			}

			if !session.Active {
				return nil, ErrNotFound
			}

			for _, att := range session.Attendees {
				if att.StudentID == attendee.StudentID {
					return nil, ErrAlreadyMarked
				}
			}

			docs[i].Attendees = append(docs[i].Attendees, attendee)
			return docs, nil
		}

		return nil, ErrNotFound
	})
}
