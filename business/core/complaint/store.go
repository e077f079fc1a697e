package complaint

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

const collection = "complaints"

// Store manages the set of APIs for complaint mirror access.
type Store struct {
	db *database.DB
}

// NewStore constructs a store for complaint mirror access.
func NewStore(db *database.DB) Store {
	return Store{
		db: db,
	}
}

// Create adds an acknowledged complaint to the mirror.
func (s Store) Create(cs CommitSubmission, txID string) (Complaint, error) {
	complaint := Complaint{
		ID:             uuid.NewString(),
		TxID:           txID,
		OriginalHash:   cs.OriginalHash,
		AnonymizedText: cs.AnonymizedText,
		Category:       cs.Category,
		Priority:       cs.Priority,
		PriorityScore:  cs.PriorityScore,
		SubmittedAt:    time.Now().UTC(),
	}

	if err := database.Insert(s.db, collection, complaint); err != nil {
		return Complaint{}, err
	}

	return complaint, nil
}

// QueryByTxID finds a complaint by its transaction id.
func (s Store) QueryByTxID(txID string) (Complaint, error) {
	complaint, found, err := database.FindOne[Complaint](s.db, collection, func(c Complaint) bool {
		return c.TxID == txID
	})
	if err != nil {
		return Complaint{}, err
	}
	if !found {
		return Complaint{}, ErrNotFound
	}

	return complaint, nil
}

// Query returns all complaints ordered by descending priority score.
func (s Store) Query() ([]Complaint, error) {
	complaints, err := database.Find[Complaint](s.db, collection, func(c Complaint) bool {
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].PriorityScore > complaints[j].PriorityScore
	})

	return complaints, nil
}
