package auth

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hintwise/hintgate/internal/config"
)

// ErrInvalidTicket is returned when the SSO service rejects a ticket.
// The caller must restart the login bounce.
var ErrInvalidTicket = errors.New("sso rejected ticket")

// TicketValidator abstracts the redirect-based SSO protocol so handlers and
// tests can substitute any implementation for the real CAS server.
type TicketValidator interface {
	// LoginURL returns the SSO login endpoint with the callback URL attached.
	LoginURL(service string) string
	// ValidateTicket exchanges a returned ticket for a principal identifier
	// via a server-to-server call.
	ValidateTicket(ctx context.Context, ticket, service string) (string, error)
	// LogoutURL returns the SSO logout endpoint.
	LogoutURL() string
}

// CASClient validates tickets against a CAS server. Only the client half of
// the protocol is implemented; the gateway never issues tickets itself.
type CASClient struct {
	baseURL string
	version string
	client  *http.Client
}

// NewCASClient creates a ticket validator for the configured CAS server.
func NewCASClient(cfg config.SSOConfig) *CASClient {
	return &CASClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		version: cfg.Version,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginURL returns the CAS login endpoint with the callback service attached.
func (c *CASClient) LoginURL(service string) string {
	return c.baseURL + "/login?service=" + url.QueryEscape(service)
}

// LogoutURL returns the CAS logout endpoint.
func (c *CASClient) LogoutURL() string {
	return c.baseURL + "/logout"
}

// validatePath maps the configured protocol version to its validation endpoint.
func (c *CASClient) validatePath() string {
	if c.version == "2.0" {
		return "/serviceValidate"
	}
	return "/p3/serviceValidate"
}

// serviceResponse mirrors the CAS validation XML envelope. Namespace prefixes
// are ignored on purpose: servers answer with the cas: prefix but encoding/xml
// matches on local names when the tag carries none.
type serviceResponse struct {
	XMLName xml.Name               `xml:"serviceResponse"`
	Success *authenticationSuccess `xml:"authenticationSuccess"`
	Failure *authenticationFailure `xml:"authenticationFailure"`
}

type authenticationSuccess struct {
	User string `xml:"user"`
}

type authenticationFailure struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// ValidateTicket performs the server-to-server ticket exchange and extracts
// the principal identifier from the validated response.
func (c *CASClient) ValidateTicket(ctx context.Context, ticket, service string) (string, error) {
	endpoint := c.baseURL + c.validatePath()

	query := url.Values{}
	query.Set("ticket", ticket)
	query.Set("service", service)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build ticket validation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call sso validation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sso validation endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read sso validation response: %w", err)
	}

	var parsed serviceResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse sso validation response: %w", err)
	}

	if parsed.Failure != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrInvalidTicket,
			strings.TrimSpace(parsed.Failure.Message), parsed.Failure.Code)
	}
	if parsed.Success == nil || strings.TrimSpace(parsed.Success.User) == "" {
		return "", fmt.Errorf("%w: response carried no principal", ErrInvalidTicket)
	}

	return strings.TrimSpace(parsed.Success.User), nil
}
