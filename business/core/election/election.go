// Package election provides the anonymous voting flows. A ballot is
// committed to the chain as a vote record carrying a blinded choice
// commitment and a pseudonymous voter token; the mirror keeps the tally
// and enforces one vote per wallet.
package election

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/database"
	"github.com/trustsphere/trustsphere/foundation/hash"
	"go.uber.org/zap"
)

// Set of error variables for the election flows.
var (
	ErrNotFound         = errors.New("election not found")
	ErrNotActive        = errors.New("election is not active")
	ErrEnded            = errors.New("election has ended")
	ErrInvalidCandidate = errors.New("invalid candidate index")
	ErrAlreadyVoted     = errors.New("this wallet has already voted in this election")
)

// Core manages the set of APIs for election access.
type Core struct {
	log    *zap.SugaredLogger
	store  Store
	ledger *ledger.Core
}

// NewCore constructs a core for election api access.
func NewCore(log *zap.SugaredLogger, db *database.DB, lgr *ledger.Core) Core {
	return Core{
		log:    log,
		store:  NewStore(db),
		ledger: lgr,
	}
}

// CreateElection adds a new election to the mirror.
func (c Core) CreateElection(ne NewElection) (Election, error) {
	return c.store.Create(ne)
}

// QueryElectionByID finds an election by its id.
func (c Core) QueryElectionByID(electionID string) (Election, error) {
	return c.store.QueryByID(electionID)
}

// PrepareVote validates the election state and builds an unsigned vote
// transaction. The note carries a blinded choice commitment, never the
// candidate index: the commitment hashes the choice together with a
// random nonce so it cannot be reversed by enumerating candidates.
func (c Core) PrepareVote(ctx context.Context, nv NewVote) (PreparedVote, error) {
	election, err := c.store.QueryByID(nv.ElectionID)
	if err != nil {
		return PreparedVote{}, err
	}

	if err := checkVotable(election, nv.SenderAddress, nv.CandidateIndex); err != nil {
		return PreparedVote{}, err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return PreparedVote{}, fmt.Errorf("generating commitment nonce: %w", err)
	}

	choiceHash := hash.String(fmt.Sprintf("%s:%d:%s", nv.ElectionID, nv.CandidateIndex, hex.EncodeToString(nonce)))

	data := map[string]any{
		"electionId":     nv.ElectionID,
		"choiceHash":     choiceHash,
		"anonymousToken": hash.String(nv.SenderAddress + nv.ElectionID),
	}

	unsigned, err := c.ledger.Prepare(ctx, nv.SenderAddress, record.TypeVote, data)
	if err != nil {
		return PreparedVote{}, err
	}

	return PreparedVote{
		UnsignedTxn:   unsigned,
		ChoiceHash:    choiceHash,
		ElectionTitle: election.Title,
		CandidateName: election.Candidates[nv.CandidateIndex].Name,
	}, nil
}

// CastVote broadcasts the signed ballot and records the vote in the
// mirror. The one-vote-per-wallet rule is a single compare-and-set
// inside the store's critical section at acknowledgment time: the voter
// set check and the tally increment cannot be interleaved by a racing
// ballot from the same wallet.
func (c Core) CastVote(ctx context.Context, cv CastVote) (ledger.Receipt, error) {
	election, err := c.store.QueryByID(cv.ElectionID)
	if err != nil {
		return ledger.Receipt{}, err
	}

	if err := checkVotable(election, cv.SenderAddress, cv.CandidateIndex); err != nil {
		return ledger.Receipt{}, err
	}

	receipt, err := c.ledger.Submit(ctx, cv.SignedTxn)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("submitting ballot: %w", err)
	}

	ballot := Ballot{
		TxID:   receipt.TxID,
		CastAt: time.Now().UTC(),
	}

	if err := c.store.RecordVote(cv.ElectionID, cv.SenderAddress, cv.CandidateIndex, ballot); err != nil {
		return receipt, err
	}

	return receipt, nil
}

// Results tallies the mirrored votes for an election.
func (c Core) Results(electionID string) (Results, error) {
	election, err := c.store.QueryByID(electionID)
	if err != nil {
		return Results{}, err
	}

	var total int
	for _, cand := range election.Candidates {
		total += cand.VoteCount
	}

	standings := make([]Standing, len(election.Candidates))
	for i, cand := range election.Candidates {
		pct := 0.0
		if total > 0 {
			pct = float64(cand.VoteCount) / float64(total) * 100
		}
		standings[i] = Standing{
			Name:       cand.Name,
			Party:      cand.Party,
			Votes:      cand.VoteCount,
			Percentage: fmt.Sprintf("%.1f", pct),
		}
	}

	return Results{
		ElectionID:  election.ID,
		Title:       election.Title,
		Status:      election.Status,
		EndsAt:      election.EndsAt,
		TotalVotes:  total,
		TotalVoters: len(election.Voters),
		Candidates:  standings,
	}, nil
}

// checkVotable validates an election accepts a ballot from the
// specified wallet for the specified candidate.
func checkVotable(election Election, wallet string, candidateIndex int) error {
	if election.Status != StatusActive {
		return ErrNotActive
	}

	if time.Now().After(election.EndsAt) {
		return ErrEnded
	}

	if candidateIndex < 0 || candidateIndex >= len(election.Candidates) {
		return ErrInvalidCandidate
	}

	for _, voter := range election.Voters {
		if voter == wallet {
			return ErrAlreadyVoted
		}
	}

	return nil
}
