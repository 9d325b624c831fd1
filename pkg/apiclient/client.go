package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrMalformedResponse = errors.New("malformed response envelope")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	APIError   apiErrors.APIError
}

func (e *StatusError) Error() string {
	if e.APIError.Code == "" {
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.APIError.Error())
}

// Client talks to the sales tracker API on behalf of a Session. Every failure
// is reported as a domain FetchError.
type Client struct {
	baseURL    string
	session    *Session
	httpClient *http.Client
}

// NewClient builds a client. httpClient should carry an AuthTransport for
// session; when nil one is created around http.DefaultTransport.
func NewClient(baseURL string, session *Session, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		transport, err := NewAuthTransport(session, nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Transport: transport}
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parse api base url")
	}

	return &Client{
		baseURL:    baseURL,
		session:    session,
		httpClient: httpClient,
	}, nil
}

type loginEnvelope struct {
	User          *domain.User      `json:"user"`
	Authorization *domain.AuthToken `json:"authorization"`
}

type salesEnvelope struct {
	Sales  *[]*domain.Sale           `json:"sales"`
	Totals *domain.AggregationResult `json:"totals"`
}

type usersEnvelope struct {
	Users *[]*domain.User `json:"users"`
}

type userEnvelope struct {
	User *domain.User `json:"user"`
}

// Login authenticates and stores the issued token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var envelope loginEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/v1/login", nil, body, &envelope); err != nil {
		return nil, err
	}

	if envelope.User == nil || envelope.Authorization == nil || envelope.Authorization.Token == "" {
		return nil, malformed("login")
	}

	c.session.Login(*envelope.Authorization, envelope.User)

	return &domain.LoginResult{User: envelope.User, Authorization: *envelope.Authorization}, nil
}

// Logout revokes the token on the backend. The session is cleared even when
// the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Logout()
	return c.do(ctx, "logout", http.MethodPost, "/v1/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var envelope userEnvelope
	if err := c.do(ctx, "me", http.MethodGet, "/v1/me", nil, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, malformed("me")
	}
	return envelope.User, nil
}

func (c *Client) ListSales(ctx context.Context, filters domain.SaleFilters) (*domain.SalesListing, error) {
	query := url.Values{}
	if filters.StartDate != nil {
		query.Set("start_date", utils.FormatDate(filters.StartDate))
	}
	if filters.EndDate != nil {
		query.Set("end_date", utils.FormatDate(filters.EndDate))
	}
	if filters.UserID != nil {
		query.Set("user_id", strconv.Itoa(*filters.UserID))
	}

	var envelope salesEnvelope
	if err := c.do(ctx, "list sales", http.MethodGet, "/v1/sales", query, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Sales == nil || envelope.Totals == nil {
		return nil, malformed("list sales")
	}

	sales := *envelope.Sales
	for _, sale := range sales {
		if sale == nil {
			return nil, malformed("list sales")
		}
	}

	return &domain.SalesListing{Sales: sales, Totals: *envelope.Totals}, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var envelope usersEnvelope
	if err := c.do(ctx, "list users", http.MethodGet, "/v1/users", nil, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Users == nil {
		return nil, malformed("list users")
	}
	return *envelope.Users, nil
}

func (c *Client) do(ctx context.Context, op, method, endpointPath string, query url.Values, body any, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, endpointPath)
	if err != nil {
		return fetchError(op, errors.Wrap(err, "build url"))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fetchError(op, errors.Wrap(err, "encode request"))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fetchError(op, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchError(op, errors.Wrap(err, "read response"))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, &statusErr.APIError)
		return fetchError(op, statusErr)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fetchError(op, errors.Wrap(ErrMalformedResponse, err.Error()))
	}

	return nil
}

func fetchError(op string, err error) error {
	return domain.NewError(domain.FetchErrorKind, op, err)
}

func malformed(op string) error {
	return fetchError(op, ErrMalformedResponse)
}
