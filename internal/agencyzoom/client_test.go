package agencyzoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, logger.New("development"))
}

func TestNewClientNormalizesBaseURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://api.agencyzoom.com", "https://api.agencyzoom.com/v1"},
		{"https://api.agencyzoom.com/", "https://api.agencyzoom.com/v1"},
		{"https://api.agencyzoom.com/v1", "https://api.agencyzoom.com/v1"},
		{"", ""},
	}
	for _, tc := range cases {
		c := NewClient(Config{BaseURL: tc.in}, logger.New("development"))
		if c.cfg.BaseURL != tc.want {
			t.Errorf("NewClient base URL %q = %q, want %q", tc.in, c.cfg.BaseURL, tc.want)
		}
	}
}

func TestCreateLeadAppliesDefaults(t *testing.T) {
	var got Lead
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leads/create" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode lead: %v", err)
		}
		fmt.Fprint(w, `{"id": 4711, "success": true}`)
	})

	result, err := client.CreateLead(context.Background(), Lead{
		FirstName: "John",
		LastName:  "Smith",
		Email:     "john@example.com",
		Phone:     "+18135550123",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if result.ID.String() != "4711" || !result.Success {
		t.Errorf("result = %+v", result)
	}

	if got.PipelineID != defaultPipelineID || got.StageID != defaultStageID {
		t.Errorf("pipeline placement = (%d, %d), want defaults", got.PipelineID, got.StageID)
	}
	if got.LeadSourceID != defaultLeadSourceID || got.AssignTo != defaultAssignTo {
		t.Errorf("lead source/assignee = (%d, %d), want defaults", got.LeadSourceID, got.AssignTo)
	}
}

func TestCreateLeadKeepsExplicitPlacement(t *testing.T) {
	var got Lead
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, `{"id": 1, "success": true}`)
	})

	_, err := client.CreateLead(context.Background(), Lead{
		FirstName:  "Ann",
		PipelineID: 99,
		StageID:    7,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.PipelineID != 99 || got.StageID != 7 {
		t.Errorf("explicit placement overridden: (%d, %d)", got.PipelineID, got.StageID)
	}
}

func TestSearchContactByPhone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if phone := r.URL.Query().Get("phone"); phone != "+18135550123" {
			t.Errorf("phone query = %q", phone)
		}
		fmt.Fprint(w, `{"contacts": [{"id": 5, "firstname": "John", "lastname": "Smith", "phone": "+18135550123"}]}`)
	})

	contacts, err := client.SearchContactByPhone(context.Background(), "+18135550123")
	if err != nil {
		t.Fatalf("SearchContactByPhone: %v", err)
	}
	if len(contacts) != 1 || contacts[0].FirstName != "John" {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusUnauthorized, apperr.KindUnauthorized},
		{http.StatusForbidden, apperr.KindUnauthorized},
		{http.StatusInternalServerError, apperr.KindExternal},
		{http.StatusUnprocessableEntity, apperr.KindExternal},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, `{"message": "nope"}`)
		})
		_, err := client.CreateLead(context.Background(), Lead{FirstName: "X"})
		if !apperr.Is(err, tc.kind) {
			t.Errorf("status %d: got %v, want kind %v", tc.status, err, tc.kind)
		}
	}
}

func TestUnconfiguredClientRefuses(t *testing.T) {
	client := NewClient(Config{}, logger.New("development"))
	if client.Configured() {
		t.Fatal("Configured() should be false without an API key")
	}
	if _, err := client.CreateLead(context.Background(), Lead{}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("CreateLead: got %v, want unauthorized", err)
	}
	if _, err := client.SearchContactByEmail(context.Background(), "a@b.c"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("SearchContactByEmail: got %v, want unauthorized", err)
	}
}
