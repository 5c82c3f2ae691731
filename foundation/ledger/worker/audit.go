package worker

// auditOperations handles running the conservation audit on a ticker.
func (w *Worker) auditOperations() {
	w.evHandler("worker: auditOperations: G started")
	defer w.evHandler("worker: auditOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runAuditOperation()
			}
		case <-w.shut:
			w.evHandler("worker: auditOperations: received shut signal")
			return
		}
	}
}

// runAuditOperation sums every balance on the ledger and checks the result
// against the running totals. Drift means value was created or destroyed.
func (w *Worker) runAuditOperation() {
	w.evHandler("worker: runAuditOperation: started")
	defer w.evHandler("worker: runAuditOperation: completed")

	report := w.state.Reconcile()
	if !report.Balanced {
		w.evHandler("worker: runAuditOperation: ERROR: conservation drift: expected[%d] actual[%d]", report.Expected, report.Actual)
		return
	}

	w.evHandler("worker: runAuditOperation: balanced: total[%d] seq[%d]", report.Actual, w.state.RetrieveLatestSeq())
}
