package ams360

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

const (
	soapNamespace  = "http://www.WSAPI.AMS360.com/v3.0"
	contractPrefix = "http://www.WSAPI.AMS360.com/v3.0/WSAPIServiceContract/"

	requestTimeout = 20 * time.Second
)

// Config holds the AMS360 agency credentials and endpoint.
type Config struct {
	BaseURL   string
	AgencyNo  string
	LoginID   string
	Password  string
	TicketTTL time.Duration
}

// Client talks to the AMS360 SOAP API. Session tickets are cached and
// refreshed transparently.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
	tickets    *ticketCache
}

// NewClient builds an AMS360 client from config.
func NewClient(cfg Config, log *logger.Logger) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
	c.tickets = newTicketCache(cfg.TicketTTL, c.login)
	return c
}

// Configured reports whether agency credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.AgencyNo != "" && c.cfg.LoginID != "" && c.cfg.Password != ""
}

// PolicySummary is the subset of a policy row the conversation needs.
type PolicySummary struct {
	PolicyID       string `json:"policy_id"`
	CustomerID     string `json:"customer_id"`
	PolicyNumber   string `json:"policy_number"`
	PolicyType     string `json:"policy_type,omitempty"`
	LineOfBusiness string `json:"line_of_business,omitempty"`
	EffectiveDate  string `json:"effective_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	PolicyStatus   string `json:"policy_status,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	PremiumAmount  string `json:"premium_amount,omitempty"`
}

// CustomerSummary is the subset of a customer row the conversation needs.
type CustomerSummary struct {
	CustomerID     string `json:"customer_id"`
	CustomerNumber string `json:"customer_number,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	FirmName       string `json:"firm_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	ZipCode        string `json:"zip_code,omitempty"`
}

// PolicyLookup bundles everything fetched for a policy number: the matched
// policy, the owning customer's full policy list and the customer record.
type PolicyLookup struct {
	Policy           PolicySummary    `json:"policy"`
	CustomerPolicies []PolicySummary  `json:"customer_policies,omitempty"`
	Customer         *CustomerSummary `json:"customer,omitempty"`
}

// LookupPolicyByNumber resolves a policy number to its policy, the customer
// record and the customer's other policies. Follow-up fetch failures are
// logged rather than failing the lookup.
func (c *Client) LookupPolicyByNumber(ctx context.Context, policyNumber string) (*PolicyLookup, error) {
	const op = "ams360.LookupPolicyByNumber"

	body, err := c.call(ctx, "PolicyGetListByPolicyNumber", fmt.Sprintf(
		"<a:PolicyNumber>%s</a:PolicyNumber>", xmlEscape(policyNumber)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Policies []policyInfoXML `xml:"Body>PolicyGetListByPolicyNumberResponse>PolicyGetListByPolicyNumberResult>PolicyInfoList>PolicyInfo"`
	}
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "ams360 response could not be parsed", err).WithOp(op)
	}
	if len(resp.Policies) == 0 {
		return nil, apperr.NotFound("no policy found for number "+policyNumber).WithOp(op)
	}

	lookup := &PolicyLookup{Policy: resp.Policies[0].summary()}

	if lookup.Policy.CustomerID != "" {
		policies, err := c.PoliciesByCustomer(ctx, lookup.Policy.CustomerID)
		if err != nil {
			c.log.ExternalCall("ams360", "PolicyGetListByCustomerId", err)
		} else {
			lookup.CustomerPolicies = policies
		}

		customer, err := c.customerByID(ctx, lookup.Policy.CustomerID)
		if err != nil {
			c.log.ExternalCall("ams360", "CustomerGetById", err)
		} else {
			lookup.Customer = customer
		}
	}

	c.log.ExternalCall("ams360", "PolicyGetListByPolicyNumber", nil)
	return lookup, nil
}

// SearchCustomersByName finds customers whose name starts with prefix.
func (c *Client) SearchCustomersByName(ctx context.Context, prefix string, maxRows int) ([]CustomerSummary, error) {
	return c.searchCustomers(ctx, prefix, maxRows)
}

// SearchCustomersByPhone finds customers by phone number. The API exposes no
// dedicated phone search, so the number rides through the prefix search.
func (c *Client) SearchCustomersByPhone(ctx context.Context, phone string, maxRows int) ([]CustomerSummary, error) {
	return c.searchCustomers(ctx, phone, maxRows)
}

func (c *Client) searchCustomers(ctx context.Context, prefix string, maxRows int) ([]CustomerSummary, error) {
	const op = "ams360.searchCustomers"

	if maxRows <= 0 {
		maxRows = 10
	}
	body, err := c.call(ctx, "CustomerGetListByNamePrefix", fmt.Sprintf(
		"<a:NamePrefix>%s</a:NamePrefix><a:MaxRows>%d</a:MaxRows>", xmlEscape(prefix), maxRows))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Customers []customerXML `xml:"Body>CustomerGetListByNamePrefixResponse>CustomerGetListByNamePrefixResult>CustomerList>Customer"`
	}
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "ams360 response could not be parsed", err).WithOp(op)
	}

	out := make([]CustomerSummary, 0, len(resp.Customers))
	for _, cu := range resp.Customers {
		out = append(out, cu.summary())
	}
	c.log.ExternalCall("ams360", "CustomerGetListByNamePrefix", nil)
	return out, nil
}

// PoliciesByCustomer lists every policy on a customer's account.
func (c *Client) PoliciesByCustomer(ctx context.Context, customerID string) ([]PolicySummary, error) {
	const op = "ams360.PoliciesByCustomer"

	body, err := c.call(ctx, "PolicyGetListByCustomerId", fmt.Sprintf(
		"<a:CustomerId>%s</a:CustomerId>", xmlEscape(customerID)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Policies []policyInfoXML `xml:"Body>PolicyGetListByCustomerIdResponse>PolicyGetListByCustomerIdResult>PolicyInfoList>PolicyInfo"`
	}
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "ams360 response could not be parsed", err).WithOp(op)
	}

	out := make([]PolicySummary, 0, len(resp.Policies))
	for _, p := range resp.Policies {
		out = append(out, p.summary())
	}
	return out, nil
}

func (c *Client) customerByID(ctx context.Context, customerID string) (*CustomerSummary, error) {
	const op = "ams360.customerByID"

	body, err := c.call(ctx, "CustomerGetById", fmt.Sprintf(
		"<a:CustomerId>%s</a:CustomerId>", xmlEscape(customerID)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Customer *customerXML `xml:"Body>CustomerGetByIdResponse>CustomerGetByIdResult>Customer"`
	}
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "ams360 response could not be parsed", err).WithOp(op)
	}
	if resp.Customer == nil {
		return nil, apperr.NotFound("customer "+customerID+" not found").WithOp(op)
	}
	s := resp.Customer.summary()
	return &s, nil
}

// login authenticates against the API and returns a fresh session ticket.
func (c *Client) login(ctx context.Context) (string, error) {
	const op = "ams360.login"

	if !c.Configured() {
		return "", apperr.Unauthorized("ams360 credentials are not configured").WithOp(op)
	}

	envelope := fmt.Sprintf(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <Login xmlns="%s">
      <Request xmlns:a="%s/DataContract" xmlns:i="http://www.w3.org/2001/XMLSchema-instance">
        <a:AgencyNo>%s</a:AgencyNo>
        <a:LoginId>%s</a:LoginId>
        <a:Password>%s</a:Password>
        <a:EmployeeCode/>
      </Request>
    </Login>
  </s:Body>
</s:Envelope>`, soapNamespace, soapNamespace, xmlEscape(c.cfg.AgencyNo), xmlEscape(c.cfg.LoginID), xmlEscape(c.cfg.Password))

	body, err := c.post(ctx, "Login", envelope)
	if err != nil {
		return "", err
	}

	var resp struct {
		HeaderTicket string `xml:"Header>WSAPISession>Ticket"`
		BodyTicket   string `xml:"Body>LoginResponse>LoginResult>Ticket"`
	}
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "ams360 login response could not be parsed", err).WithOp(op)
	}

	ticket := resp.HeaderTicket
	if ticket == "" {
		ticket = resp.BodyTicket
	}
	if ticket == "" {
		return "", apperr.Unauthorized("ams360 login failed, no session ticket in response").WithOp(op)
	}

	c.log.Info("ams360 login successful, ticket cached")
	return ticket, nil
}

// call wraps a ticketed operation. When the API rejects the session the
// cached ticket is dropped and the call retried once with a fresh login.
func (c *Client) call(ctx context.Context, operation, requestBody string) ([]byte, error) {
	ticket, err := c.tickets.Get(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, operation, ticketedEnvelope(ticket, operation, requestBody))
	if apperr.GetKind(err) == apperr.KindUnauthorized {
		c.tickets.Invalidate()
		ticket, err = c.tickets.Get(ctx)
		if err != nil {
			return nil, err
		}
		body, err = c.post(ctx, operation, ticketedEnvelope(ticket, operation, requestBody))
	}
	return body, err
}

func (c *Client) post(ctx context.Context, operation, envelope string) ([]byte, error) {
	const op = "ams360.post"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(envelope))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "build ams360 request", err).WithOp(op)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", contractPrefix+operation))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "ams360 request failed", err).WithOp(op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "read ams360 response", err).WithOp(op)
	}

	if fault := parseFault(body); fault != "" {
		if isAuthFault(fault) {
			return nil, apperr.Unauthorized("ams360 rejected session: "+fault).WithOp(op)
		}
		return nil, apperr.External("ams360 fault: "+fault).WithOp(op)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperr.Unauthorized(fmt.Sprintf("ams360 returned status %d", resp.StatusCode)).WithOp(op)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.External(fmt.Sprintf("ams360 returned status %d", resp.StatusCode)).WithOp(op)
	}
	return body, nil
}

type policyInfoXML struct {
	PolicyID       string `xml:"PolicyId"`
	CustomerID     string `xml:"CustomerId"`
	PolicyNumber   string `xml:"PolicyNumber"`
	PolicyType     string `xml:"PolicyType"`
	LineOfBusiness string `xml:"LineOfBusiness"`
	EffectiveDate  string `xml:"PolicyEffectiveDate"`
	ExpirationDate string `xml:"PolicyExpirationDate"`
	PolicyStatus   string `xml:"PolicyStatus"`
	CompanyName    string `xml:"CompanyName"`
	PremiumAmount  string `xml:"FullTermPremium"`
}

func (p policyInfoXML) summary() PolicySummary {
	return PolicySummary{
		PolicyID:       p.PolicyID,
		CustomerID:     p.CustomerID,
		PolicyNumber:   p.PolicyNumber,
		PolicyType:     p.PolicyType,
		LineOfBusiness: p.LineOfBusiness,
		EffectiveDate:  p.EffectiveDate,
		ExpirationDate: p.ExpirationDate,
		PolicyStatus:   p.PolicyStatus,
		CompanyName:    p.CompanyName,
		PremiumAmount:  p.PremiumAmount,
	}
}

type customerXML struct {
	CustomerID     string `xml:"CustomerId"`
	CustomerNumber string `xml:"CustomerNumber"`
	FirstName      string `xml:"FirstName"`
	LastName       string `xml:"LastName"`
	FirmName       string `xml:"FirmName"`
	Phone          string `xml:"Phone1"`
	Email          string `xml:"Email"`
	Address        string `xml:"Address1"`
	City           string `xml:"City"`
	State          string `xml:"State"`
	ZipCode        string `xml:"ZipCode"`
}

func (c customerXML) summary() CustomerSummary {
	return CustomerSummary{
		CustomerID:     c.CustomerID,
		CustomerNumber: c.CustomerNumber,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		FirmName:       c.FirmName,
		Phone:          c.Phone,
		Email:          c.Email,
		Address:        c.Address,
		City:           c.City,
		State:          c.State,
		ZipCode:        c.ZipCode,
	}
}

func ticketedEnvelope(ticket, operation, requestBody string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
<s:Header>
<WSAPISession xmlns="%s">
<Ticket>%s</Ticket>
</WSAPISession>
</s:Header>
<s:Body>
<%s xmlns="%s">
<Request xmlns:a="%s/DataContract" xmlns:i="http://www.w3.org/2001/XMLSchema-instance">
%s
</Request>
</%s>
</s:Body>
</s:Envelope>`, soapNamespace, xmlEscape(ticket), operation, soapNamespace, soapNamespace, requestBody, operation)
}

func parseFault(body []byte) string {
	var fault struct {
		FaultString string `xml:"Body>Fault>faultstring"`
		Reason      string `xml:"Body>Fault>Reason>Text"`
	}
	if err := xml.Unmarshal(body, &fault); err != nil {
		return ""
	}
	if fault.FaultString != "" {
		return fault.FaultString
	}
	return fault.Reason
}

func isAuthFault(fault string) bool {
	f := strings.ToLower(fault)
	return strings.Contains(f, "ticket") || strings.Contains(f, "session") ||
		strings.Contains(f, "unauthoriz") || strings.Contains(f, "authenticat")
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
