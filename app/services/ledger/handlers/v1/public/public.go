// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide committed ledger events to a client.
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

	h.Log.Infow("events", "traceid", v.TraceID, "status", "websocket open")

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the current state for all accounts or one account.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var accounts map[database.AccountID]database.Account
	switch account {
	case "":
		accounts = h.State.QueryAccounts()

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		acct, err := h.State.QueryAccount(accountID)
		if err != nil {
			return v1.LedgerError(err)
		}
		accounts = map[database.AccountID]database.Account{accountID: acct}
	}

	acts := make([]info, 0, len(accounts))
	for accountID, account := range accounts {
		act := info{
			AccountID:  accountID,
			Name:       h.NS.Lookup(accountID),
			Balance:    account.Balance,
			Reputation: account.Reputation,
			Status:     account.Status,
		}
		acts = append(acts, act)
	}

	ai := actInfo{
		LatestSeq: h.State.RetrieveLatestSeq(),
		Accounts:  acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Journal returns the committed journal records, optionally restricted to
// one account.
func (h Handlers) Journal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var accountID database.AccountID
	if account != "" {
		var err error
		accountID, err = database.ToAccountID(account)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
	}

	records, err := h.State.QueryJournal(accountID)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// Deposit credits an account with new value entering the ledger.
func (h Handlers) Deposit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx depositTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	accountID, err := database.ToAccountID(tx.AccountID)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("deposit", "traceid", v.TraceID, "account", accountID, "amount", tx.Amount)
	if err := h.State.Deposit(accountID, tx.Amount); err != nil {
		return v1.LedgerError(err)
	}

	resp := txResult{
		Status:    "deposit committed",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transfer moves value between two accounts with the fee routed to
// the treasury.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx transferTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	fromID, err := database.ToAccountID(tx.From)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("transfer", "traceid", v.TraceID, "from", fromID, "to", tx.To, "amount", tx.Amount)
	if err := h.State.Transfer(fromID, database.AccountID(tx.To), tx.Amount); err != nil {
		return v1.LedgerError(err)
	}

	resp := txResult{
		Status:    "transfer committed",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TransferBatch moves value from one account to a set of recipients as a
// single all-or-nothing operation.
func (h Handlers) TransferBatch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx transferBatchTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	fromID, err := database.ToAccountID(tx.From)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	items := make([]database.BatchItem, len(tx.Items))
	for i, item := range tx.Items {
		items[i] = database.BatchItem{
			To:     database.AccountID(item.To),
			Amount: item.Amount,
		}
	}

	h.Log.Infow("transfer batch", "traceid", v.TraceID, "from", fromID, "items", len(items))
	if err := h.State.TransferBatch(fromID, items); err != nil {
		return v1.LedgerError(err)
	}

	resp := txResult{
		Status:    "batch committed",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Withdraw debits an account and hands the value to the external releaser.
func (h Handlers) Withdraw(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx withdrawTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	accountID, err := database.ToAccountID(tx.AccountID)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("withdraw", "traceid", v.TraceID, "account", accountID, "amount", tx.Amount)
	if err := h.State.Withdraw(accountID, tx.Amount); err != nil {
		return v1.LedgerError(err)
	}

	resp := txResult{
		Status:    "withdraw committed",
		LatestSeq: h.State.RetrieveLatestSeq(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
