package tonapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())
}

func TestClientGetAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/accounts/"+rawAddr {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"address": "` + rawAddr + `", "balance": 123456789, "status": "active"}`))
	})

	account, err := client.GetAccount(context.Background(), rawAddr)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if account.Balance.Int64() != 123456789 {
		t.Errorf("Balance = %s", account.Balance)
	}
	if account.Address != rawAddr {
		t.Errorf("Address = %q", account.Address)
	}
}

func TestClientGetEventsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "50" || q.Get("before_lt") != "9000" || q.Get("start_date") != "1700000000" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"events": []}`))
	})

	beforeLt := int64(9000)
	startTS := int64(1700000000)
	events, err := client.GetEvents(context.Background(), rawAddr, &beforeLt, &startTS, 50)
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want empty page", len(events))
	}
}

func TestClientErrorPayloadSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	})

	_, err := client.GetAccount(context.Background(), rawAddr)
	if err == nil {
		t.Fatal("GetAccount() should fail on a 429")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error = %v, want the provider's message included", err)
	}
}

func TestClientEstimateFee(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/events/emulate" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"trace": {"transaction": {"total_fees": 3500000}},
			"event": {
				"event_id": "emu-1",
				"account": {"address": "` + rawAddr + `"},
				"lt": 1,
				"actions": [{"type": "TonTransfer", "status": "ok",
					"TonTransfer": {"sender": {"address": "` + rawAddr + `"}, "recipient": {"address": "` + rawPeer + `"}, "amount": 10}}]
			}
		}`))
	})

	result, err := client.EstimateFee(context.Background(), "te6cc-fake-boc")
	if err != nil {
		t.Fatalf("EstimateFee() error = %v", err)
	}
	if result.TotalFee.Int64() != 3500000 {
		t.Errorf("TotalFee = %s, want 3500000", result.TotalFee)
	}
	if result.Event == nil || result.Event.ID != "emu-1" {
		t.Errorf("Event = %+v, want the emulated event", result.Event)
	}
}

func TestClientEstimateFeeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "emulation failed"}`))
	})

	if _, err := client.EstimateFee(context.Background(), "te6cc-fake-boc"); err == nil {
		t.Fatal("EstimateFee() should surface emulation errors, not return zero")
	}
}
