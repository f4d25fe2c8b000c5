package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"brainup-client/internal/domain"
)

func TestChangeQuestion(t *testing.T) {
	var gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.ChangeQuestion(context.Background(), 7); err != nil {
		t.Fatalf("change question: %v", err)
	}
	if gotPath != "/api/change-question" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	var payload map[string]int
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["questionNumber"] != 7 {
		t.Fatalf("expected questionNumber 7, got %v", payload)
	}
}

func TestSubmitAnswerWithoutSelectionSendsNull(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SubmitAnswer(context.Background(), domain.AnswerSubmission{QuestionID: 3, TimeUsed: 10})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if v, present := payload["selectedAnswer"]; !present || v != nil {
		t.Fatalf("expected explicit null selectedAnswer, got %v", payload)
	}
}

func TestNon2xxIsCommandRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Exit(context.Background(), "p1")
	if !errors.Is(err, domain.ErrCommandRejected) {
		t.Fatalf("expected ErrCommandRejected, got %v", err)
	}
}
