package election

import (
	"time"

	"github.com/google/uuid"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

const collection = "elections"

// Store manages the set of APIs for election mirror access.
type Store struct {
	db *database.DB
}

// NewStore constructs a store for election mirror access.
func NewStore(db *database.DB) Store {
	return Store{
		db: db,
	}
}

// Create adds a new election to the mirror.
func (s Store) Create(ne NewElection) (Election, error) {
	candidates := make([]Candidate, len(ne.Candidates))
	for i, nc := range ne.Candidates {
		candidates[i] = Candidate{
			Name:  nc.Name,
			Party: nc.Party,
		}
	}

	election := Election{
		ID:         uuid.NewString(),
		Title:      ne.Title,
		Status:     StatusActive,
		EndsAt:     ne.EndsAt,
		Candidates: candidates,
		Voters:     []string{},
		Ballots:    []Ballot{},
		CreatedAt:  time.Now().UTC(),
	}

	if err := database.Insert(s.db, collection, election); err != nil {
		return Election{}, err
	}

	return election, nil
}

// QueryByID finds an election by its id.
func (s Store) QueryByID(electionID string) (Election, error) {
	election, found, err := database.FindOne[Election](s.db, collection, func(e Election) bool {
		return e.ID == electionID
	})
	if err != nil {
		return Election{}, err
	}
	if !found {
		return Election{}, ErrNotFound
	}

	return election, nil
}

// Query returns all elections in the mirror.
func (s Store) Query() ([]Election, error) {
	return database.Find[Election](s.db, collection, func(e Election) bool {
		return true
	})
}

// RecordVote acknowledges a broadcast ballot inside the store's
// critical section. The wallet check and the tally increment happen
// under the same lock, so a wallet can never be counted twice even
// when two of its ballots race.
func (s Store) RecordVote(electionID string, wallet string, candidateIndex int, ballot Ballot) error {
	return database.Update(s.db, collection, func(elections []Election) ([]Election, error) {
		for i, e := range elections {
			if e.ID != electionID {
				continue
			}

			if err := checkVotable(e, wallet, candidateIndex); err != nil {
				return nil, err
			}

			e.Voters = append(e.Voters, wallet)
			e.Ballots = append(e.Ballots, ballot)
			e.Candidates[candidateIndex].VoteCount++
			elections[i] = e
			return elections, nil
		}

		return nil, ErrNotFound
	})
}

// Close marks an election as no longer accepting ballots.
func (s Store) Close(electionID string) error {
	return database.Update(s.db, collection, func(elections []Election) ([]Election, error) {
		for i := range elections {
			if elections[i].ID == electionID {
				elections[i].Status = StatusClosed
				return elections, nil
			}
		}
		return nil, ErrNotFound
	})
}
