package election

import "time"

// Set of election statuses.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Election represents a mirrored election with its running tally.
type Election struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	EndsAt     time.Time   `json:"endsAt"`
	Candidates []Candidate `json:"candidates"`
	Voters     []string    `json:"voters"`
	Ballots    []Ballot    `json:"ballots"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Candidate represents a single option on the ballot.
type Candidate struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	VoteCount int    `json:"voteCount"`
}

// Ballot represents an acknowledged on-chain vote. It carries the
// transaction id only; the wallet that cast it lives in the voters set
// and the choice lives nowhere but the blinded commitment.
type Ballot struct {
	TxID   string    `json:"txId"`
	CastAt time.Time `json:"castAt"`
}

// NewElection contains the information needed to create an election.
type NewElection struct {
	Title      string         `json:"title" validate:"required"`
	EndsAt     time.Time      `json:"endsAt" validate:"required"`
	Candidates []NewCandidate `json:"candidates" validate:"required,min=2,dive"`
}

// NewCandidate contains the information needed to add a ballot option.
type NewCandidate struct {
	Name  string `json:"name" validate:"required"`
	Party string `json:"party"`
}

// NewVote contains the information needed to prepare a ballot.
type NewVote struct {
	ElectionID     string `json:"electionId" validate:"required"`
	CandidateIndex int    `json:"candidateIndex" validate:"min=0"`
	SenderAddress  string `json:"senderAddress" validate:"required"`
}

// PreparedVote is the unsigned ballot handed back for wallet signing.
type PreparedVote struct {
	UnsignedTxn   string `json:"unsignedTxn"`
	ChoiceHash    string `json:"choiceHash"`
	ElectionTitle string `json:"electionTitle"`
	CandidateName string `json:"candidateName"`
}

// CastVote contains the signed ballot and the choice being acknowledged.
type CastVote struct {
	ElectionID     string `json:"electionId" validate:"required"`
	CandidateIndex int    `json:"candidateIndex" validate:"min=0"`
	SenderAddress  string `json:"senderAddress" validate:"required"`
	SignedTxn      string `json:"signedTxn" validate:"required"`
}

// Standing represents one candidate's share of the tally.
type Standing struct {
	Name       string `json:"name"`
	Party      string `json:"party"`
	Votes      int    `json:"votes"`
	Percentage string `json:"percentage"`
}

// Results represents the published tally for an election.
type Results struct {
	ElectionID  string     `json:"electionId"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	EndsAt      time.Time  `json:"endsAt"`
	TotalVotes  int        `json:"totalVotes"`
	TotalVoters int        `json:"totalVoters"`
	Candidates  []Standing `json:"candidates"`
}
