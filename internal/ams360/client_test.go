package ams360

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

const loginResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Header>
    <WSAPISession xmlns="http://www.WSAPI.AMS360.com/v3.0/DataContract/Session">
      <Ticket>TEST-TICKET</Ticket>
    </WSAPISession>
  </s:Header>
  <s:Body>
    <LoginResponse xmlns="http://www.WSAPI.AMS360.com/v3.0"/>
  </s:Body>
</s:Envelope>`

const policyListResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <PolicyGetListByPolicyNumberResponse xmlns="http://www.WSAPI.AMS360.com/v3.0">
      <PolicyGetListByPolicyNumberResult>
        <PolicyInfoList>
          <PolicyInfo>
            <PolicyId>POL-1</PolicyId>
            <CustomerId>CUST-9</CustomerId>
            <PolicyNumber>HO-12345</PolicyNumber>
            <PolicyType>Homeowners</PolicyType>
            <PolicyEffectiveDate>2025-01-01</PolicyEffectiveDate>
            <PolicyExpirationDate>2026-01-01</PolicyExpirationDate>
            <PolicyStatus>Active</PolicyStatus>
            <CompanyName>Acme Mutual</CompanyName>
            <FullTermPremium>1840.00</FullTermPremium>
          </PolicyInfo>
        </PolicyInfoList>
      </PolicyGetListByPolicyNumberResult>
    </PolicyGetListByPolicyNumberResponse>
  </s:Body>
</s:Envelope>`

const customerPoliciesResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <PolicyGetListByCustomerIdResponse xmlns="http://www.WSAPI.AMS360.com/v3.0">
      <PolicyGetListByCustomerIdResult>
        <PolicyInfoList>
          <PolicyInfo><PolicyId>POL-1</PolicyId><PolicyNumber>HO-12345</PolicyNumber></PolicyInfo>
          <PolicyInfo><PolicyId>POL-2</PolicyId><PolicyNumber>AU-77</PolicyNumber></PolicyInfo>
        </PolicyInfoList>
      </PolicyGetListByCustomerIdResult>
    </PolicyGetListByCustomerIdResponse>
  </s:Body>
</s:Envelope>`

const customerResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <CustomerGetByIdResponse xmlns="http://www.WSAPI.AMS360.com/v3.0">
      <CustomerGetByIdResult>
        <Customer>
          <CustomerId>CUST-9</CustomerId>
          <FirstName>John</FirstName>
          <LastName>Smith</LastName>
          <Phone1>813-555-0123</Phone1>
        </Customer>
      </CustomerGetByIdResult>
    </CustomerGetByIdResponse>
  </s:Body>
</s:Envelope>`

const sessionFaultResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultstring>The session ticket is invalid or expired.</faultstring>
    </s:Fault>
  </s:Body>
</s:Envelope>`

// soapAction extracts the operation name from the quoted SOAPAction header.
func soapAction(r *http.Request) string {
	action := strings.Trim(r.Header.Get("SOAPAction"), `"`)
	i := strings.LastIndex(action, "/")
	return action[i+1:]
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL,
		AgencyNo:  "1001",
		LoginID:   "agent",
		Password:  "secret",
		TicketTTL: 15 * time.Minute,
	}, logger.New("development"))
}

func TestLookupPolicyByNumber(t *testing.T) {
	var loginCalls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
			t.Errorf("Content-Type = %q", ct)
		}
		switch op := soapAction(r); op {
		case "Login":
			atomic.AddInt32(&loginCalls, 1)
			fmt.Fprint(w, loginResponse)
		case "PolicyGetListByPolicyNumber":
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "<Ticket>TEST-TICKET</Ticket>") {
				t.Error("request missing session ticket header")
			}
			if !strings.Contains(string(body), "<a:PolicyNumber>HO-12345</a:PolicyNumber>") {
				t.Error("request missing policy number")
			}
			fmt.Fprint(w, policyListResponse)
		case "PolicyGetListByCustomerId":
			fmt.Fprint(w, customerPoliciesResponse)
		case "CustomerGetById":
			fmt.Fprint(w, customerResponse)
		default:
			t.Errorf("unexpected operation %q", op)
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	lookup, err := client.LookupPolicyByNumber(context.Background(), "HO-12345")
	if err != nil {
		t.Fatalf("LookupPolicyByNumber: %v", err)
	}
	if lookup.Policy.PolicyNumber != "HO-12345" || lookup.Policy.CompanyName != "Acme Mutual" {
		t.Errorf("policy = %+v", lookup.Policy)
	}
	if len(lookup.CustomerPolicies) != 2 {
		t.Errorf("customer policies = %d, want 2", len(lookup.CustomerPolicies))
	}
	if lookup.Customer == nil || lookup.Customer.LastName != "Smith" {
		t.Errorf("customer = %+v", lookup.Customer)
	}
	if n := atomic.LoadInt32(&loginCalls); n != 1 {
		t.Errorf("login calls = %d, want the ticket reused across follow-ups", n)
	}
}

func TestLookupPolicyByNumberNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if soapAction(r) == "Login" {
			fmt.Fprint(w, loginResponse)
			return
		}
		fmt.Fprint(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
			<PolicyGetListByPolicyNumberResponse xmlns="http://www.WSAPI.AMS360.com/v3.0">
			<PolicyGetListByPolicyNumberResult><PolicyInfoList/></PolicyGetListByPolicyNumberResult>
			</PolicyGetListByPolicyNumberResponse></s:Body></s:Envelope>`)
	})

	_, err := client.LookupPolicyByNumber(context.Background(), "NOPE-1")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestCallRetriesOnceAfterSessionReject(t *testing.T) {
	var loginCalls, faulted int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch soapAction(r) {
		case "Login":
			atomic.AddInt32(&loginCalls, 1)
			fmt.Fprint(w, loginResponse)
		case "CustomerGetListByNamePrefix":
			if atomic.CompareAndSwapInt32(&faulted, 0, 1) {
				fmt.Fprint(w, sessionFaultResponse)
				return
			}
			fmt.Fprint(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
				<CustomerGetListByNamePrefixResponse xmlns="http://www.WSAPI.AMS360.com/v3.0">
				<CustomerGetListByNamePrefixResult><CustomerList>
				<Customer><CustomerId>CUST-1</CustomerId><FirstName>Ann</FirstName></Customer>
				</CustomerList></CustomerGetListByNamePrefixResult>
				</CustomerGetListByNamePrefixResponse></s:Body></s:Envelope>`)
		}
	})

	customers, err := client.SearchCustomersByName(context.Background(), "Ann", 0)
	if err != nil {
		t.Fatalf("SearchCustomersByName: %v", err)
	}
	if len(customers) != 1 || customers[0].FirstName != "Ann" {
		t.Errorf("customers = %+v", customers)
	}
	// One login for the first ticket, one more after the reject.
	if n := atomic.LoadInt32(&loginCalls); n != 2 {
		t.Errorf("login calls = %d, want 2", n)
	}
}

func TestNonAuthFaultIsNotRetried(t *testing.T) {
	var searchCalls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch soapAction(r) {
		case "Login":
			fmt.Fprint(w, loginResponse)
		case "CustomerGetListByNamePrefix":
			atomic.AddInt32(&searchCalls, 1)
			fmt.Fprint(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
				<s:Fault><faultstring>Internal server error.</faultstring></s:Fault>
				</s:Body></s:Envelope>`)
		}
	})

	_, err := client.SearchCustomersByName(context.Background(), "Ann", 5)
	if !apperr.Is(err, apperr.KindExternal) {
		t.Fatalf("got %v, want external error", err)
	}
	if n := atomic.LoadInt32(&searchCalls); n != 1 {
		t.Errorf("search calls = %d, want no retry on a non-auth fault", n)
	}
}

func TestLoginFailsWithoutCredentials(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", TicketTTL: time.Minute}, logger.New("development"))
	if client.Configured() {
		t.Fatal("Configured() should be false without credentials")
	}
	_, err := client.LookupPolicyByNumber(context.Background(), "HO-1")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("got %v, want unauthorized", err)
	}
}

func TestIsAuthFault(t *testing.T) {
	cases := []struct {
		fault string
		want  bool
	}{
		{"The session ticket is invalid or expired.", true},
		{"Unauthorized access", true},
		{"Authentication failed for user", true},
		{"Internal server error.", false},
		{"Invalid request body", false},
	}
	for _, tc := range cases {
		if got := isAuthFault(tc.fault); got != tc.want {
			t.Errorf("isAuthFault(%q) = %v, want %v", tc.fault, got, tc.want)
		}
	}
}
