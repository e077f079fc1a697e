// Package votegrp maintains the group of handlers for the anonymous
// voting flow.
package votegrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/trustsphere/trustsphere/business/core/election"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	v1 "github.com/trustsphere/trustsphere/business/web/v1"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of voting endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Election election.Core
}

// CreateElection opens a new election.
func (h Handlers) CreateElection(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ne election.NewElection
	if err := web.Decode(r, &ne); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(ne); err != nil {
		return err
	}

	elec, err := h.Election.CreateElection(ne)
	if err != nil {
		return fmt.Errorf("creating election: %w", err)
	}

	return web.Respond(ctx, w, elec, http.StatusCreated)
}

// Prepare validates the ballot and builds an unsigned vote transaction.
func (h Handlers) Prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nv election.NewVote
	if err := web.Decode(r, &nv); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(nv); err != nil {
		return err
	}

	h.Log.Infow("prepare ballot", "traceid", v.TraceID, "election", nv.ElectionID)

	prepared, err := h.Election.PrepareVote(ctx, nv)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, prepared, http.StatusOK)
}

// Submit broadcasts the signed ballot and updates the tally.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cv election.CastVote
	if err := web.Decode(r, &cv); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(cv); err != nil {
		return err
	}

	receipt, err := h.Election.CastVote(ctx, cv)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Results returns the published tally for an election.
func (h Handlers) Results(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	results, err := h.Election.Results(web.Param(r, "electionid"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, results, http.StatusOK)
}

func toRequestError(err error) error {
	switch {
	case errors.Is(err, election.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return v1.NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, election.ErrAlreadyVoted):
		return v1.NewRequestError(err, http.StatusConflict)

	case errors.Is(err, election.ErrNotActive), errors.Is(err, election.ErrEnded),
		errors.Is(err, election.ErrInvalidCandidate), errors.Is(err, ledger.ErrInvalidAddress):
		return v1.NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return v1.NewRequestError(err, http.StatusTooManyRequests)

	case ledger.IsUpstreamError(err):
		return v1.NewRequestError(err, http.StatusBadGateway)
	}

	return err
}
