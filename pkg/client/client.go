package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("boma: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("boma: %d %s", e.Status, e.Code)
}

// IsUnauthenticated reports whether err is a 401 from the API.
func IsUnauthenticated(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL           string
	http              *http.Client
	session           *Session
	onUnauthenticated func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// OnUnauthenticated registers fn to run after a 401 clears the session.
func OnUnauthenticated(fn func()) Option {
	return func(c *Client) { c.onUnauthenticated = fn }
}

// New returns a client for the API mounted at baseURL, for example
// "http://localhost:8080/api".
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession(nil)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return User{}, err
	}
	return resp.User, c.session.Set(resp.Token, resp.User)
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return User{}, err
	}
	return resp.User, c.session.Set(resp.Token, resp.User)
}

// Logout forgets the session locally; tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me fetches the current profile and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return User{}, err
	}
	return u, c.session.setUser(u)
}

// Restore hydrates the session from its store and, when a token was found,
// confirms it with the server. An expired token leaves the session cleared.
func (c *Client) Restore(ctx context.Context) (User, bool, error) {
	if err := c.session.Hydrate(); err != nil {
		return User{}, false, err
	}
	if !c.session.IsAuthenticated() {
		return User{}, false, nil
	}
	u, err := c.Me(ctx)
	if err != nil {
		if IsUnauthenticated(err) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPut, "/auth/profile", update, &resp); err != nil {
		return User{}, err
	}
	return resp.User, c.session.Set(resp.Token, resp.User)
}

type Rating struct {
	Count    int     `json:"count"`
	Safety   float64 `json:"safety"`
	Water    float64 `json:"water"`
	Landlord float64 `json:"landlord"`
	Overall  float64 `json:"overall"`
}

type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	OwnerID     string    `json:"ownerId"`
	Verified    bool      `json:"verified"`
	Images      []string  `json:"images"`
	Price       int64     `json:"price"`
	Bedrooms    int       `json:"bedrooms"`
	Category    string    `json:"category"`
	Rating      Rating    `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address"`
	Price       int64    `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Category    string   `json:"category,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ListingQuery mirrors the listing search parameters; zero fields are omitted.
type ListingQuery struct {
	Search   string
	Location string
	MinPrice *int64
	MaxPrice *int64
	Bedrooms *int
	Category string
	Verified *bool
	OwnerID  string
	Page     int
	PerPage  int
}

func (q ListingQuery) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("search", q.Search)
	set("location", q.Location)
	set("category", q.Category)
	set("ownerId", q.OwnerID)
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*q.MinPrice, 10))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatInt(*q.MaxPrice, 10))
	}
	if q.Bedrooms != nil {
		v.Set("bedrooms", strconv.Itoa(*q.Bedrooms))
	}
	if q.Verified != nil {
		v.Set("verified", strconv.FormatBool(*q.Verified))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	return v
}

func (c *Client) ListListings(ctx context.Context, q ListingQuery) ([]Listing, error) {
	path := "/listings"
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}
	var out []Listing
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) GetListing(ctx context.Context, id string) (Listing, error) {
	var out Listing
	return out, c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &out)
}

func (c *Client) CreateListing(ctx context.Context, in ListingInput) (Listing, error) {
	var out Listing
	return out, c.do(ctx, http.MethodPost, "/listings", in, &out)
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, nil)
}

type Review struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listingId"`
	UserID         string    `json:"userId,omitempty"`
	SafetyRating   int       `json:"safetyRating"`
	WaterRating    int       `json:"waterRating"`
	LandlordRating int       `json:"landlordRating"`
	Comment        string    `json:"comment"`
	Anonymous      bool      `json:"anonymous"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ReviewInput struct {
	SafetyRating   int    `json:"safetyRating"`
	WaterRating    int    `json:"waterRating"`
	LandlordRating int    `json:"landlordRating"`
	Comment        string `json:"comment,omitempty"`
	Anonymous      *bool  `json:"anonymous,omitempty"`
}

func (c *Client) ListReviews(ctx context.Context, listingID string) ([]Review, error) {
	var out []Review
	return out, c.do(ctx, http.MethodGet, "/reviews/"+url.PathEscape(listingID), nil, &out)
}

func (c *Client) CreateReview(ctx context.Context, listingID string, in ReviewInput) (Review, error) {
	var out Review
	return out, c.do(ctx, http.MethodPost, "/reviews/"+url.PathEscape(listingID), in, &out)
}

type Verification struct {
	ID         string     `json:"id"`
	LandlordID string     `json:"landlordId"`
	ReviewerID string     `json:"reviewerId,omitempty"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}

func (c *Client) SubmitVerification(ctx context.Context) (Verification, error) {
	var out Verification
	return out, c.do(ctx, http.MethodPost, "/verification", nil, &out)
}

// do sends one request with the session token and decodes a JSON answer into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(apiErr)
		if apiErr.Code == "" {
			apiErr.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "_"))
		}
		if resp.StatusCode == http.StatusUnauthorized {
			_ = c.session.Clear()
			if c.onUnauthenticated != nil {
				c.onUnauthenticated()
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
