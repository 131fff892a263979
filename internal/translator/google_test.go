package translator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *GoogleService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleService(ServiceConfig{},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
}

func TestGoogleService_Name(t *testing.T) {
	if got := NewGoogleService(ServiceConfig{}).Name(); got != "google" {
		t.Errorf("expected 'google', got %q", got)
	}
}

func TestGoogleService_Translate_InvalidTarget(t *testing.T) {
	svc := NewGoogleService(ServiceConfig{})

	result, err := svc.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "not a tag"})
	if err == nil {
		t.Fatal("expected error for invalid target language")
	}
	if result.Outcome != OutcomeNetworkError {
		t.Errorf("expected network error outcome, got %v", result.Outcome)
	}
	if result.ServiceName != "google" {
		t.Errorf("expected service name 'google', got %q", result.ServiceName)
	}
}

func TestGoogleService_Translate_Success(t *testing.T) {
	svc := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"good morning"}]}}`))
	})

	result, err := svc.Translate(context.Background(), TranslateRequest{Text: "bom dia", SourceLang: "pt", TargetLang: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "good morning" {
		t.Errorf("expected 'good morning', got %q", result.TranslatedText)
	}
}

func TestGoogleService_Translate_APIError(t *testing.T) {
	svc := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	})

	result, err := svc.Translate(context.Background(), TranslateRequest{Text: "bom dia", SourceLang: "pt", TargetLang: "en"})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if result.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", result.StatusCode)
	}
}
