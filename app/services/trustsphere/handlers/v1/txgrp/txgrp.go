// Package txgrp maintains the group of handlers for raw record
// transaction access.
package txgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/business/sys/validate"
	v1 "github.com/trustsphere/trustsphere/business/web/v1"
	"github.com/trustsphere/trustsphere/foundation/events"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of raw transaction endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *ledger.Core
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Prepare builds an unsigned record transaction for wallet signing.
func (h Handlers) Prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req prepareRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	typ, err := record.ParseType(req.Type)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("prepare record", "traceid", v.TraceID, "type", typ, "sender", req.SenderAddress)

	unsigned, err := h.Ledger.Prepare(ctx, req.SenderAddress, typ, req.Data)
	if err != nil {
		return toRequestError(err)
	}

	resp := prepareResponse{
		UnsignedTxn: unsigned,
		TxType:      string(typ),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Broadcast submits a signed record transaction to the network.
func (h Handlers) Broadcast(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req broadcastRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	receipt, err := h.Ledger.Submit(ctx, req.SignedTxn)
	if err != nil {
		return toRequestError(err)
	}

	h.Log.Infow("broadcast record", "traceid", v.TraceID, "txid", receipt.TxID, "confirmed", receipt.Confirmed)

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Verify runs the record verification checks for a transaction id.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	typ, err := record.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	verification, err := h.Ledger.Verify(ctx, web.Param(r, "txid"), typ)
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, verification, http.StatusOK)
}

// Read returns a transaction with its decoded record note.
func (h Handlers) Read(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tx, err := h.Ledger.Read(ctx, web.Param(r, "txid"))
	if err != nil {
		return toRequestError(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// Events handles a web socket to provide ledger events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(ev.String())); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// toRequestError maps ledger failures to trusted web errors so the
// middleware reports the right status instead of a blanket 500.
func toRequestError(err error) error {
	switch {
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return v1.NewRequestError(err, http.StatusTooManyRequests)

	case errors.Is(err, ledger.ErrNotFound):
		return v1.NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, ledger.ErrInvalidAddress), errors.Is(err, record.ErrPayloadTooLarge):
		return v1.NewRequestError(err, http.StatusBadRequest)

	case ledger.IsUpstreamError(err):
		return v1.NewRequestError(err, http.StatusBadGateway)
	}

	return err
}
