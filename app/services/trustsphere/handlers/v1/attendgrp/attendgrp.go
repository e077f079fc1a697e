// Package attendgrp maintains the group of handlers for the attendance
// check-in flow.
package attendgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/trustsphere/trustsphere/business/core/attendance"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	v1 "github.com/trustsphere/trustsphere/business/web/v1"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of attendance endpoints.
type Handlers struct {
	Log        *zap.SugaredLogger
	Attendance attendance.Core
}

// CreateSession opens a new attendance session with a fresh QR secret.
func (h Handlers) CreateSession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ns attendance.NewSession
	if err := web.Decode(r, &ns); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(ns); err != nil {
		return err
	}

	session, err := h.Attendance.CreateSession(ns)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return web.Respond(ctx, w, session, http.StatusCreated)
}

// QuerySession returns a session with its attendee list.
func (h Handlers) QuerySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := h.Attendance.QuerySessionByID(web.Param(r, "id"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, session, http.StatusOK)
}

// Prepare validates the check-in and builds an unsigned transaction.
func (h Handlers) Prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nc attendance.NewCheckIn
	if err := web.Decode(r, &nc); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(nc); err != nil {
		return err
	}

	h.Log.Infow("prepare check-in", "traceid", v.TraceID, "session", nc.SessionID, "sender", nc.SenderAddress)

	prepared, err := h.Attendance.PrepareCheckIn(ctx, nc)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, prepared, http.StatusOK)
}

// Submit broadcasts the signed check-in and mirrors the attendee.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	receipt, err := h.Attendance.CommitCheckIn(ctx, req.SessionID, req.StudentID, req.SignedTxn)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Verify cross-checks the on-chain check-in record with the mirror.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	verified, err := h.Attendance.VerifyCheckIn(ctx, web.Param(r, "txid"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, verified, http.StatusOK)
}

func toRequestError(err error) error {
	switch {
	case errors.Is(err, attendance.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return v1.NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, attendance.ErrAlreadyMarked):
		return v1.NewRequestError(err, http.StatusConflict)

	case errors.Is(err, attendance.ErrQRInvalid), errors.Is(err, attendance.ErrLivenessCheck), errors.Is(err, ledger.ErrInvalidAddress):
		return v1.NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return v1.NewRequestError(err, http.StatusTooManyRequests)

	case ledger.IsUpstreamError(err):
		return v1.NewRequestError(err, http.StatusBadGateway)
	}

	return err
}
