// Package complaintgrp maintains the group of handlers for the
// anonymous complaint flow.
package complaintgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/trustsphere/trustsphere/business/core/complaint"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	v1 "github.com/trustsphere/trustsphere/business/web/v1"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of complaint endpoints.
type Handlers struct {
	Log       *zap.SugaredLogger
	Complaint complaint.Core
}

// Prepare redacts and classifies the complaint and builds an unsigned
// transaction committing its digest.
func (h Handlers) Prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ns complaint.NewSubmission
	if err := web.Decode(r, &ns); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(ns); err != nil {
		return err
	}

	prepared, err := h.Complaint.PrepareSubmit(ctx, ns)
	if err != nil {
		return toRequestError(err)
	}

	h.Log.Infow("prepare complaint", "traceid", v.TraceID, "category", prepared.Category, "priority", prepared.Priority)

	return web.Respond(ctx, w, prepared, http.StatusOK)
}

// Submit broadcasts the signed complaint and mirrors the redacted copy.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cs complaint.CommitSubmission
	if err := web.Decode(r, &cs); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(cs); err != nil {
		return err
	}

	cmp, receipt, err := h.Complaint.CommitSubmit(ctx, cs)
	if err != nil {
		return toRequestError(err)
	}

	resp := struct {
		Complaint complaint.Complaint `json:"complaint"`
		Receipt   ledger.Receipt      `json:"receipt"`
	}{
		Complaint: cmp,
		Receipt:   receipt,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Query returns the mirrored complaints, most urgent first.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	complaints, err := h.Complaint.Query()
	if err != nil {
		return fmt.Errorf("querying complaints: %w", err)
	}

	return web.Respond(ctx, w, complaints, http.StatusOK)
}

// Verify cross-checks the on-chain digest with the mirrored copy.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	verified, err := h.Complaint.VerifyIntegrity(ctx, web.Param(r, "txid"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, verified, http.StatusOK)
}

func toRequestError(err error) error {
	switch {
	case errors.Is(err, complaint.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return v1.NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, ledger.ErrInvalidAddress):
		return v1.NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return v1.NewRequestError(err, http.StatusTooManyRequests)

	case ledger.IsUpstreamError(err):
		return v1.NewRequestError(err, http.StatusBadGateway)
	}

	return err
}
