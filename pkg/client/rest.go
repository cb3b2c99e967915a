package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/session"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

// ------------------------------------------

type signInRequestPayload struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponsePayload struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type refreshResponsePayload struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// ------------------------------------------

// HuckleberryClient - client context
type HuckleberryClient struct {
	Email        string
	Password     string
	APIKey       string
	ProjectID    string
	SessionStore *session.Store

	// Optional, defaults are used when empty
	HTTPClient *http.Client
	Endpoints  *Endpoints
	Now        func() time.Time
	NewID      func() string

	authMutex sync.Mutex
}

func (c *HuckleberryClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return c.HTTPClient
}

func (c *HuckleberryClient) endpoints() Endpoints {
	if c.Endpoints == nil {
		return DefaultEndpoints()
	}

	return *c.Endpoints
}

func (c *HuckleberryClient) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}

	return c.Now()
}

func (c *HuckleberryClient) projectID() string {
	if c.ProjectID == "" {
		return DefaultProjectID
	}

	return c.ProjectID
}

// UserID - uid of the signed in user
func (c *HuckleberryClient) UserID() string {
	return c.SessionStore.Session.UserID
}

// MaybeAuthorize - Performs authorization if we don't have token or we assume it is expired
// Expired token is exchanged using the refresh token, forced authorization always signs in with credentials.
func (c *HuckleberryClient) MaybeAuthorize(ctx context.Context, force bool) error {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()

	s := c.SessionStore.Session
	if !force && s.IsAuthorized(c.now().Add(AuthTokenExpiryMargin)) {
		return nil
	}

	if !force && s.RefreshToken != "" {
		err := c.refresh(ctx)
		if err == nil {
			return nil
		}

		log.Warn().Err(err).Msg("Unable to refresh auth token, signing in again")
	}

	return c.authorize(ctx)
}

// Authorize - performs sign in using user credentials
func (c *HuckleberryClient) Authorize(ctx context.Context) error {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()

	return c.authorize(ctx)
}

func (c *HuckleberryClient) authorize(ctx context.Context) error {
	if c.Email == "" || c.Password == "" {
		return ErrMissingCredentials
	}

	log.Info().Str("email", c.Email).Str("password", utils.AnonymizeToken(c.Password, 0)).Msg("Authorizing using user credentials")

	requestBody, err := json.Marshal(signInRequestPayload{
		Email:             c.Email,
		Password:          c.Password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return fmt.Errorf("unable to marshal auth body: %w", err)
	}

	endpoint := fmt.Sprintf("%v/accounts:signInWithPassword?key=%v", c.endpoints().Identity, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("unable to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		if statusErr, ok := err.(*StatusError); ok && (statusErr.Code == 400 || statusErr.Code == 401) {
			return &AuthError{Reason: statusErr.Message}
		}
		return fmt.Errorf("unable to fetch auth token: %w", err)
	}

	authResponse := new(signInResponsePayload)
	if err := json.Unmarshal(body, authResponse); err != nil {
		return fmt.Errorf("unable to decode auth response: %w", err)
	}

	c.storeTokens(authResponse.IDToken, authResponse.RefreshToken, authResponse.LocalID, authResponse.ExpiresIn)
	log.Info().Str("token", utils.AnonymizeToken(authResponse.IDToken, 4)).Msg("Authorized")

	return c.SessionStore.Save()
}

func (c *HuckleberryClient) refresh(ctx context.Context) error {
	log.Debug().Msg("Refreshing auth token")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.SessionStore.Session.RefreshToken)

	endpoint := fmt.Sprintf("%v/token?key=%v", c.endpoints().SecureToken, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("unable to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("unable to refresh auth token: %w", err)
	}

	refreshResponse := new(refreshResponsePayload)
	if err := json.Unmarshal(body, refreshResponse); err != nil {
		return fmt.Errorf("unable to decode refresh response: %w", err)
	}

	c.storeTokens(refreshResponse.IDToken, refreshResponse.RefreshToken, refreshResponse.UserID, refreshResponse.ExpiresIn)
	log.Debug().Str("token", utils.AnonymizeToken(refreshResponse.IDToken, 4)).Msg("Auth token refreshed")

	return c.SessionStore.Save()
}

func (c *HuckleberryClient) storeTokens(idToken, refreshToken, userID, expiresIn string) {
	now := c.now()

	lifetime := AuthTokenTimelife
	if seconds, err := strconv.Atoi(expiresIn); err == nil && seconds > 0 {
		lifetime = time.Duration(seconds) * time.Second
	}

	s := c.SessionStore.Session
	s.IDToken = idToken
	if refreshToken != "" {
		s.RefreshToken = refreshToken
	}
	if userID != "" {
		s.UserID = userID
	}
	s.AuthTime = now
	s.ExpiresAt = now.Add(lifetime)
}

// do - executes the request and returns the body of a successful response
func (c *HuckleberryClient) do(req *http.Request) ([]byte, error) {
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Code: res.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// FetchAuthorized - makes authorized http request, re-authorizes once if the token was rejected
func (c *HuckleberryClient) FetchAuthorized(ctx context.Context, method string, endpoint string, body []byte) ([]byte, error) {
	for i := 0; i < 2; i++ {
		if err := c.MaybeAuthorize(ctx, i > 0); err != nil {
			return nil, err
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("unable to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.SessionStore.Session.IDToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resBody, err := c.do(req)
		if statusErr, ok := err.(*StatusError); ok && statusErr.Code == 401 {
			log.Info().Msg("Token might be expired. Will try to re-authenticate.")
			continue
		}

		return resBody, err
	}

	return nil, ErrUnauthorized
}

func (c *HuckleberryClient) documentURL(path string) string {
	return fmt.Sprintf("%v/projects/%v/databases/(default)/documents/%v", c.endpoints().Firestore, c.projectID(), path)
}

// GetDocument - reads a single document
func (c *HuckleberryClient) GetDocument(ctx context.Context, path string) (*Document, error) {
	log.Trace().Str("path", path).Msg("Fetching document")

	body, err := c.FetchAuthorized(ctx, http.MethodGet, c.documentURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch document %v: %w", path, err)
	}

	return DecodeDocument(body)
}

// PatchDocument - updates the fields of the patch only, creates the document if it does not exist
func (c *HuckleberryClient) PatchDocument(ctx context.Context, path string, patch Patch) error {
	log.Debug().Str("path", path).Strs("fields", patch.Mask()).Msg("Updating document")

	body, err := EncodeDocumentBody(patch.Fields())
	if err != nil {
		return fmt.Errorf("unable to encode document %v: %w", path, err)
	}

	query := url.Values{}
	for _, fieldPath := range patch.Mask() {
		query.Add("updateMask.fieldPaths", fieldPath)
	}

	if _, err := c.FetchAuthorized(ctx, http.MethodPatch, c.documentURL(path)+"?"+query.Encode(), body); err != nil {
		return fmt.Errorf("unable to update document %v: %w", path, err)
	}

	return nil
}

// CreateDocument - adds a document with generated id to the collection
// Fields are a map or a struct converted through its json representation.
func (c *HuckleberryClient) CreateDocument(ctx context.Context, collectionPath string, fields interface{}) (*Document, error) {
	log.Debug().Str("collection", collectionPath).Msg("Creating document")

	m, err := toMap(fields)
	if err != nil {
		return nil, fmt.Errorf("unable to encode document in %v: %w", collectionPath, err)
	}

	body, err := EncodeDocumentBody(m)
	if err != nil {
		return nil, fmt.Errorf("unable to encode document in %v: %w", collectionPath, err)
	}

	resBody, err := c.FetchAuthorized(ctx, http.MethodPost, c.documentURL(collectionPath), body)
	if err != nil {
		return nil, fmt.Errorf("unable to create document in %v: %w", collectionPath, err)
	}

	return DecodeDocument(resBody)
}
