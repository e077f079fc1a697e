// Package certgrp maintains the group of handlers for certificate
// issuance and public verification.
package certgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/trustsphere/trustsphere/business/core/certificate"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	v1 "github.com/trustsphere/trustsphere/business/web/v1"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of certificate endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	Certificate certificate.Core
}

// Prepare fingerprints the credential and builds an unsigned issuance
// transaction.
func (h Handlers) Prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ni certificate.NewIssuance
	if err := web.Decode(r, &ni); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(ni); err != nil {
		return err
	}

	h.Log.Infow("prepare certificate", "traceid", v.TraceID, "student", ni.Student, "event", ni.Event)

	prepared, err := h.Certificate.PrepareIssue(ctx, ni)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, prepared, http.StatusOK)
}

// Submit broadcasts the signed issuance and mirrors the credential.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ci certificate.CommitIssuance
	if err := web.Decode(r, &ci); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(ci); err != nil {
		return err
	}

	cert, receipt, err := h.Certificate.CommitIssue(ctx, ci)
	if err != nil {
		return toRequestError(err)
	}

	resp := struct {
		Certificate certificate.Certificate `json:"certificate"`
		Receipt     ledger.Receipt          `json:"receipt"`
	}{
		Certificate: cert,
		Receipt:     receipt,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// QueryByStudent returns the certificates issued to a student.
func (h Handlers) QueryByStudent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	certs, err := h.Certificate.QueryByStudent(web.Param(r, "student"))
	if err != nil {
		return fmt.Errorf("querying certificates: %w", err)
	}

	return web.Respond(ctx, w, certs, http.StatusOK)
}

// Verify cross-checks the on-chain cert record with the mirror. This
// is the public employer-facing verification endpoint.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	verified, err := h.Certificate.VerifyIssuance(ctx, web.Param(r, "txid"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, verified, http.StatusOK)
}

func toRequestError(err error) error {
	switch {
	case errors.Is(err, certificate.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return v1.NewRequestError(err, http.StatusNotFound)

	case certificate.IsDuplicateError(err):
		return v1.NewRequestError(err, http.StatusConflict)

	case errors.Is(err, ledger.ErrInvalidAddress):
		return v1.NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return v1.NewRequestError(err, http.StatusTooManyRequests)

	case ledger.IsUpstreamError(err):
		return v1.NewRequestError(err, http.StatusBadGateway)
	}

	return err
}
