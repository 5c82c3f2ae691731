// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/ledger/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/ledger/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/journal/list", pbl.Journal)
	app.Handle(http.MethodGet, version, "/journal/list/:account", pbl.Journal)
	app.Handle(http.MethodPost, version, "/tx/deposit", pbl.Deposit)
	app.Handle(http.MethodPost, version, "/tx/transfer", pbl.Transfer)
	app.Handle(http.MethodPost, version, "/tx/transfer/batch", pbl.TransferBatch)
	app.Handle(http.MethodPost, version, "/tx/withdraw", pbl.Withdraw)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/admin/account/register", prv.RegisterAccount)
	app.Handle(http.MethodPost, version, "/admin/account/status", prv.SetStatus)
	app.Handle(http.MethodGet, version, "/admin/treasury", prv.Treasury)
	app.Handle(http.MethodPost, version, "/admin/reconcile", prv.Reconcile)
}
