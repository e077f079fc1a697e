// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers/v1/attendgrp"
	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers/v1/certgrp"
	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers/v1/complaintgrp"
	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers/v1/txgrp"
	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers/v1/votegrp"
	"github.com/trustsphere/trustsphere/business/core/attendance"
	"github.com/trustsphere/trustsphere/business/core/certificate"
	"github.com/trustsphere/trustsphere/business/core/complaint"
	"github.com/trustsphere/trustsphere/business/core/election"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/foundation/events"
	"github.com/trustsphere/trustsphere/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	Ledger      *ledger.Core
	Attendance  attendance.Core
	Election    election.Core
	Complaint   complaint.Core
	Certificate certificate.Core
	Evts        *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	tgh := txgrp.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/tx/prepare", tgh.Prepare)
	app.Handle(http.MethodPost, version, "/tx/broadcast", tgh.Broadcast)
	app.Handle(http.MethodGet, version, "/tx/verify/:txid", tgh.Verify)
	app.Handle(http.MethodGet, version, "/tx/:txid", tgh.Read)
	app.Handle(http.MethodGet, version, "/events", tgh.Events)

	agh := attendgrp.Handlers{
		Log:        cfg.Log,
		Attendance: cfg.Attendance,
	}

	app.Handle(http.MethodPost, version, "/chain/attendance/session", agh.CreateSession)
	app.Handle(http.MethodGet, version, "/chain/attendance/session/:id", agh.QuerySession)
	app.Handle(http.MethodPost, version, "/chain/attendance/prepare", agh.Prepare)
	app.Handle(http.MethodPost, version, "/chain/attendance/submit", agh.Submit)
	app.Handle(http.MethodGet, version, "/chain/attendance/verify/:txid", agh.Verify)

	vgh := votegrp.Handlers{
		Log:      cfg.Log,
		Election: cfg.Election,
	}

	app.Handle(http.MethodPost, version, "/chain/vote/election", vgh.CreateElection)
	app.Handle(http.MethodPost, version, "/chain/vote/prepare", vgh.Prepare)
	app.Handle(http.MethodPost, version, "/chain/vote/submit", vgh.Submit)
	app.Handle(http.MethodGet, version, "/chain/vote/result/:electionid", vgh.Results)

	cgh := complaintgrp.Handlers{
		Log:       cfg.Log,
		Complaint: cfg.Complaint,
	}

	app.Handle(http.MethodPost, version, "/chain/complaint/prepare", cgh.Prepare)
	app.Handle(http.MethodPost, version, "/chain/complaint/submit", cgh.Submit)
	app.Handle(http.MethodGet, version, "/chain/complaint/list", cgh.Query)
	app.Handle(http.MethodGet, version, "/chain/complaint/verify/:txid", cgh.Verify)

	crgh := certgrp.Handlers{
		Log:         cfg.Log,
		Certificate: cfg.Certificate,
	}

	app.Handle(http.MethodPost, version, "/chain/cert/prepare", crgh.Prepare)
	app.Handle(http.MethodPost, version, "/chain/cert/submit", crgh.Submit)
	app.Handle(http.MethodGet, version, "/chain/cert/student/:student", crgh.QueryByStudent)
	app.Handle(http.MethodGet, version, "/chain/cert/verify/:txid", crgh.Verify)
}
