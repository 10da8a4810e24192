package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewTwilioSender_MissingCredentials(t *testing.T) {
	s := NewTwilioSender("", "token", "")

	_, err := s.Send(context.Background(), Message{To: "+15550001", From: "+15550002", Body: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestTwilioSender_Send(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSender("AC1", "secret", srv.URL)
	receipt, err := s.Send(context.Background(), Message{To: "+15550001", From: "+15550002", Body: "low stock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.ID != "SM123" {
		t.Errorf("expected sid SM123, got %q", receipt.ID)
	}
	if gotPath != "/2010-04-01/Accounts/AC1/Messages.json" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotUser != "AC1" {
		t.Errorf("expected basic auth user AC1, got %q", gotUser)
	}
	if gotFrom != "+15550002" {
		t.Errorf("expected From +15550002, got %q", gotFrom)
	}
	if gotTo != "+15550001" || gotBody != "low stock" {
		t.Errorf("unexpected form values To=%q Body=%q", gotTo, gotBody)
	}
}

func TestTwilioSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","more_info":"https://www.twilio.com/docs/errors/21211","status":400}`))
	}))
	defer srv.Close()

	s := NewTwilioSender("AC1", "secret", srv.URL)
	_, err := s.Send(context.Background(), Message{To: "bad", From: "+15550002", Body: "x"})

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Code != 21211 {
		t.Errorf("expected code 21211, got %d", perr.Code)
	}
	if perr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", perr.Status)
	}
	if perr.MoreInfo != "https://www.twilio.com/docs/errors/21211" {
		t.Errorf("unexpected more_info %q", perr.MoreInfo)
	}
}

func TestTwilioSender_CanceledContext(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewTwilioSender("AC1", "secret", srv.URL)
	_, err := s.Send(ctx, Message{To: "+15550001", From: "+15550002", Body: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("expected no request after cancellation")
	}
}

func TestTwilioSender_MissingFrom(t *testing.T) {
	s := NewTwilioSender("AC1", "secret", "http://unused.invalid")

	_, err := s.Send(context.Background(), Message{To: "+15550001", Body: "x"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
