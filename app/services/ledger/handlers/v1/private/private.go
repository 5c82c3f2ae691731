// Package private maintains the group of handlers for administrative access.
// These routes are only reachable on the trusted private plane where the
// host supplies the caller identity in the payload.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledger/business/sys/validate"
	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// registerTx is what is expected for a register operation.
type registerTx struct {
	AccountID string `json:"account_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Balance   uint64 `json:"balance"`
}

// statusTx is what is expected for a status transition.
type statusTx struct {
	Caller    string `json:"caller" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// =============================================================================

// RegisterAccount creates a new account with an opening balance.
func (h Handlers) RegisterAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx registerTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	h.Log.Infow("register", "traceid", v.TraceID, "account", tx.AccountID, "name", tx.Name, "balance", tx.Balance)
	if err := h.State.RegisterAccount(database.AccountID(tx.AccountID), tx.Name, tx.Balance); err != nil {
		return v1.LedgerError(err)
	}

	resp := struct {
		Status    string `json:"status"`
		LatestSeq uint64 `json:"latest_seq"`
	}{
		Status:    "account registered",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SetStatus transitions the status of an account. The caller must be the
// genesis admin.
func (h Handlers) SetStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx statusTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	status, err := database.ToStatus(tx.Status)
	if err != nil {
		return v1.LedgerError(err)
	}

	h.Log.Infow("set status", "traceid", v.TraceID, "caller", tx.Caller, "account", tx.AccountID, "status", status)
	if err := h.State.SetStatus(database.AccountID(tx.Caller), database.AccountID(tx.AccountID), status); err != nil {
		return v1.LedgerError(err)
	}

	resp := struct {
		Status    string `json:"status"`
		LatestSeq uint64 `json:"latest_seq"`
	}{
		Status:    "status changed",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Treasury returns the treasury account and the running totals.
func (h Handlers) Treasury(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	treasury, err := h.State.RetrieveTreasury()
	if err != nil {
		return v1.LedgerError(err)
	}

	resp := struct {
		AccountID database.AccountID `json:"account_id"`
		Name      string             `json:"name"`
		Balance   uint64             `json:"balance"`
		Totals    database.Totals    `json:"totals"`
	}{
		AccountID: treasury.AccountID,
		Name:      h.NS.Lookup(treasury.AccountID),
		Balance:   treasury.Balance,
		Totals:    h.State.RetrieveTotals(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Reconcile runs the conservation audit over the current balances.
func (h Handlers) Reconcile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	report := h.State.Reconcile()
	return web.Respond(ctx, w, report, http.StatusOK)
}
