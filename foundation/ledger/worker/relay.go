package worker

import (
	"context"
	"encoding/json"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/segmentio/kafka-go"
)

// envelope is the wire form committed events are relayed in.
type envelope struct {
	Type string         `json:"type"`
	Data database.Event `json:"data"`
}

// relayOperations forwards committed events to the registered sinks in the
// order the mutations completed.
func (w *Worker) relayOperations() {
	w.evHandler("worker: relayOperations: G started")
	defer w.evHandler("worker: relayOperations: G completed")

	for {
		select {
		case event := <-w.eventCh:
			if !w.isShutdown() {
				w.runRelayOperation(event)
			}
		case <-w.shut:
			w.evHandler("worker: relayOperations: received shut signal")
			return
		}
	}
}

// runRelayOperation relays one committed event to the websocket
// subscribers and, when configured, to the broker topic.
func (w *Worker) runRelayOperation(event database.Event) {
	data, err := json.Marshal(envelope{Type: event.Kind(), Data: event})
	if err != nil {
		w.evHandler("worker: runRelayOperation: marshal: ERROR: %s", err)
		return
	}

	if w.evts != nil {
		w.evts.Send(string(data))
	}

	if w.producer != nil {
		msg := kafka.Message{
			Key:   []byte(eventKey(event)),
			Value: data,
		}
		if err := w.producer.WriteMessages(context.Background(), msg); err != nil {
			w.evHandler("worker: runRelayOperation: produce: ERROR: %s", err)
		}
	}
}

// eventKey returns the primary account the event concerns so the broker
// partitions stay ordered per account.
func eventKey(event database.Event) database.AccountID {
	switch e := event.(type) {
	case database.AccountRegistered:
		return e.AccountID
	case database.BalanceChanged:
		return e.AccountID
	case database.TransferExecuted:
		return e.From
	case database.StatusChanged:
		return e.AccountID
	}

	return ""
}
