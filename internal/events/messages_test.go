package events

import (
	"testing"
	"time"
)

func TestTransactionEventJSONRoundTrip(t *testing.T) {
	ev := NewTransactionEvent(7, 42, ActionCreated)
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserID != 7 || got.TransactionID != 42 || got.Action != ActionCreated {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("timestamp not stamped: %v", got.Timestamp)
	}
}

func TestTransactionEventFromInvalidJSON(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
