package agencyzoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

const requestTimeout = 15 * time.Second

// Lead pipeline placement for quote requests arriving from the intake
// assistant.
const (
	defaultPipelineID   = 3816
	defaultStageID      = 11446
	defaultLeadSourceID = 113762
	defaultAssignTo     = 148687
)

// Config holds the AgencyZoom API credentials and endpoint.
type Config struct {
	APIKey   string
	BaseURL  string
	AgencyID string
}

// Client talks to the AgencyZoom REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient builds an AgencyZoom client from config. The base URL is
// normalized to end in /v1.
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL != "" && !strings.HasSuffix(cfg.BaseURL, "/v1") {
		cfg.BaseURL += "/v1"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// CustomField is an arbitrary extra field on a lead.
type CustomField struct {
	FieldName  string   `json:"fieldName"`
	FieldValue []string `json:"fieldValue"`
}

// Lead is the create-lead payload. Pipeline placement fields are filled with
// intake defaults when left zero.
type Lead struct {
	FirstName     string        `json:"firstname"`
	LastName      string        `json:"lastname"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	PipelineID    int           `json:"pipelineId"`
	StageID       int           `json:"stageId"`
	LeadSourceID  int           `json:"leadSourceId"`
	AssignTo      int           `json:"assignTo"`
	Notes         string        `json:"notes,omitempty"`
	StreetAddress string        `json:"streetAddress,omitempty"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state,omitempty"`
	Country       string        `json:"country,omitempty"`
	Zip           string        `json:"zip,omitempty"`
	CustomFields  []CustomField `json:"customFields,omitempty"`
}

// CreateLeadResult is the API's response to a created lead.
type CreateLeadResult struct {
	ID      json.Number `json:"id"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// CreateLead creates a lead, applying the intake pipeline defaults to any
// unset placement fields.
func (c *Client) CreateLead(ctx context.Context, lead Lead) (*CreateLeadResult, error) {
	const op = "agencyzoom.CreateLead"

	if !c.Configured() {
		return nil, apperr.Unauthorized("agencyzoom api key is not configured").WithOp(op)
	}
	if lead.PipelineID == 0 {
		lead.PipelineID = defaultPipelineID
	}
	if lead.StageID == 0 {
		lead.StageID = defaultStageID
	}
	if lead.LeadSourceID == 0 {
		lead.LeadSourceID = defaultLeadSourceID
	}
	if lead.AssignTo == 0 {
		lead.AssignTo = defaultAssignTo
	}

	var result CreateLeadResult
	if err := c.do(ctx, http.MethodPost, "/api/leads/create", nil, lead, &result); err != nil {
		return nil, err
	}
	c.log.ExternalCall("agencyzoom", "CreateLead", nil)
	return &result, nil
}

// Contact is a contact row returned by the search endpoints.
type Contact struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstname"`
	LastName  string      `json:"lastname"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
}

type contactSearchResponse struct {
	Contacts []Contact `json:"contacts"`
}

// SearchContactByPhone looks up contacts by phone number.
func (c *Client) SearchContactByPhone(ctx context.Context, phone string) ([]Contact, error) {
	return c.searchContacts(ctx, url.Values{"phone": {phone}})
}

// SearchContactByEmail looks up contacts by email address.
func (c *Client) SearchContactByEmail(ctx context.Context, email string) ([]Contact, error) {
	return c.searchContacts(ctx, url.Values{"email": {email}})
}

func (c *Client) searchContacts(ctx context.Context, query url.Values) ([]Contact, error) {
	const op = "agencyzoom.searchContacts"

	if !c.Configured() {
		return nil, apperr.Unauthorized("agencyzoom api key is not configured").WithOp(op)
	}
	var result contactSearchResponse
	if err := c.do(ctx, http.MethodGet, "/contacts/search", query, nil, &result); err != nil {
		return nil, err
	}
	c.log.ExternalCall("agencyzoom", "SearchContacts", nil)
	return result.Contacts, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	const op = "agencyzoom.do"

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "marshal agencyzoom payload", err).WithOp(op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build agencyzoom request", err).WithOp(op)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindExternal, "agencyzoom request failed", err).WithOp(op)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperr.Wrap(apperr.KindExternal, "read agencyzoom response", err).WithOp(op)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.Unauthorized(fmt.Sprintf("agencyzoom returned status %d", resp.StatusCode)).WithOp(op)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apperr.External(fmt.Sprintf("agencyzoom returned status %d: %s", resp.StatusCode, truncate(respBody, 200))).WithOp(op)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperr.Wrap(apperr.KindExternal, "agencyzoom response could not be parsed", err).WithOp(op)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
