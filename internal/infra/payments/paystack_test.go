package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func verifyResponse(status string, amount int64) string {
	return `{"status":true,"message":"Verification successful","data":{` +
		`"status":"` + status + `","reference":"ref-1","amount":` +
		strconv.FormatInt(amount, 10) + `,"currency":"KES","channel":"mobile_money"}}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*PaystackClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := &PaystackClient{
		Client:    server.Client(),
		BaseURL:   server.URL,
		SecretKey: "sk_test_abc",
	}
	return client, server
}

func TestVerifyCapturedCharge(t *testing.T) {
	var gotPath, gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(verifyResponse("success", 2500000)))
	})

	verification, err := client.Verify(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if gotPath != "/transaction/verify/ref-1" {
		t.Fatalf("path = %q, want %q", gotPath, "/transaction/verify/ref-1")
	}
	if gotAuth != "Bearer sk_test_abc" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if !verification.Captured {
		t.Fatal("Captured = false, want true")
	}
	if verification.Amount.Amount != 25000 || verification.Amount.Currency != "KES" {
		t.Fatalf("Amount = %+v, want 25000 KES", verification.Amount)
	}
	if verification.Channel != "mobile_money" {
		t.Fatalf("Channel = %q", verification.Channel)
	}
}

func TestVerifyFailedCharge(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(verifyResponse("failed", 2500000)))
	})

	verification, err := client.Verify(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if verification.Captured {
		t.Fatal("Captured = true, want false")
	}
}

func TestVerifyProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":false,"message":"Transaction reference not found"}`, http.StatusNotFound)
	})

	if _, err := client.Verify(context.Background(), "missing"); err == nil {
		t.Fatal("Verify() with provider error should fail")
	}
}

func TestVerifyRequiresReference(t *testing.T) {
	client := &PaystackClient{Client: http.DefaultClient, BaseURL: "http://localhost", SecretKey: "sk"}
	if _, err := client.Verify(context.Background(), "  "); err != ErrReferenceRequired {
		t.Fatalf("Verify() error = %v, want ErrReferenceRequired", err)
	}
}
