package election_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/trustsphere/trustsphere/business/core/election"
	"github.com/trustsphere/trustsphere/business/sys/database"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newStore(t *testing.T) election.Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
	}

	return election.NewStore(db)
}

func demoElection(t *testing.T, store election.Store) election.Election {
	t.Helper()

	elec, err := store.Create(election.NewElection{
		Title:  "Student Council President",
		EndsAt: time.Now().Add(24 * time.Hour),
		Candidates: []election.NewCandidate{
			{Name: "Asha Verma", Party: "Unity"},
			{Name: "Rohan Iyer", Party: "Progress"},
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create an election: %v", failed, err)
	}

	return elec
}

func TestRecordVote(t *testing.T) {
	t.Log("Given the need to enforce one vote per wallet.")
	{
		t.Log("\tTest 0:\tWhen a wallet casts its first ballot.")
		{
			store := newStore(t)
			elec := demoElection(t, store)

			ballot := election.Ballot{TxID: "TX1", CastAt: time.Now()}
			if err := store.RecordVote(elec.ID, "WALLET1", 0, ballot); err != nil {
				t.Fatalf("\t%s\tShould be able to record the vote: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to record the vote.", success)

			updated, err := store.QueryByID(elec.ID)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to query the election: %v", failed, err)
			}

			if updated.Candidates[0].VoteCount != 1 || len(updated.Voters) != 1 {
				t.Fatalf("\t%s\tShould increment the tally and the voter set: %+v", failed, updated)
			}
			t.Logf("\t%s\tShould increment the tally and the voter set.", success)
		}

		t.Log("\tTest 1:\tWhen the same wallet casts a second ballot.")
		{
			store := newStore(t)
			elec := demoElection(t, store)

			ballot := election.Ballot{TxID: "TX1", CastAt: time.Now()}
			if err := store.RecordVote(elec.ID, "WALLET1", 0, ballot); err != nil {
				t.Fatalf("\t%s\tShould be able to record the first vote: %v", failed, err)
			}

			err := store.RecordVote(elec.ID, "WALLET1", 1, election.Ballot{TxID: "TX2", CastAt: time.Now()})
			if !errors.Is(err, election.ErrAlreadyVoted) {
				t.Fatalf("\t%s\tShould reject the second vote with ErrAlreadyVoted: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the second vote with ErrAlreadyVoted.", success)

			updated, err := store.QueryByID(elec.ID)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to query the election: %v", failed, err)
			}

			if updated.Candidates[1].VoteCount != 0 {
				t.Fatalf("\t%s\tShould leave the tally untouched: %+v", failed, updated.Candidates)
			}
			t.Logf("\t%s\tShould leave the tally untouched.", success)
		}

		t.Log("\tTest 2:\tWhen the candidate index is out of range.")
		{
			store := newStore(t)
			elec := demoElection(t, store)

			err := store.RecordVote(elec.ID, "WALLET1", 5, election.Ballot{TxID: "TX1"})
			if !errors.Is(err, election.ErrInvalidCandidate) {
				t.Fatalf("\t%s\tShould reject the out of range index: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the out of range index.", success)
		}

		t.Log("\tTest 3:\tWhen the election is closed.")
		{
			store := newStore(t)
			elec := demoElection(t, store)

			if err := store.Close(elec.ID); err != nil {
				t.Fatalf("\t%s\tShould be able to close the election: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to close the election.", success)

			err := store.RecordVote(elec.ID, "WALLET1", 0, election.Ballot{TxID: "TX1"})
			if !errors.Is(err, election.ErrNotActive) {
				t.Fatalf("\t%s\tShould reject a ballot for a closed election: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a ballot for a closed election.", success)
		}
	}
}
