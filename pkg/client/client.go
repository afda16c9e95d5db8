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
	"strings"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// Client talks to a notes server on behalf of one principal.
type Client struct {
	Base  string
	Token string
	HTTP  *http.Client
}

// New returns a client for the server at base. An empty token makes every
// request anonymous.
func New(base, token string) *Client {
	return &Client{Base: strings.TrimRight(base, "/"), Token: token, HTTP: http.DefaultClient}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// APIError is a non-2xx response. It unwraps to the matching store or
// identity sentinel so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notes server returned %d", e.Status)
	}
	return fmt.Sprintf("notes server returned %d %s: %s", e.Status, e.Code, e.Message)
}

var sentinels = map[string]error{
	"AnonymousCaller":        identity.ErrAnonymousCaller,
	"DeviceNotRegistered":    store.ErrDeviceNotRegistered,
	"UnknownPublicKey":       store.ErrUnknownPublicKey,
	"KeyNotSynchronized":     store.ErrKeyNotSynchronized,
	"AlreadyRegistered":      store.ErrAlreadyRegistered,
	"AliasAlreadyRegistered": store.ErrAliasAlreadyRegistered,
	"InvalidArgument":        store.ErrInvalidArgument,
	"NoteNotFound":           store.ErrNoteNotFound,
	"NoteTooLarge":           store.ErrNoteTooLarge,
}

func (e *APIError) Unwrap() error {
	return sentinels[e.Code]
}

// Code extracts the API error code from err, or "" if err is not an APIError.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

type registerDeviceRequest struct {
	Alias     string `json:"alias"`
	PublicKey string `json:"public_key"`
}

type seedRequest struct {
	PublicKey       string `json:"public_key"`
	EncryptedSecret string `json:"encrypted_secret"`
}

type uploadRequest struct {
	Entries []store.SecretEntry `json:"entries"`
}

type noteRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// Status is the /status payload.
type Status struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// Whoami is the /whoami payload.
type Whoami struct {
	Principal  string `json:"principal"`
	Registered bool   `json:"registered"`
}

func (c *Client) RegisterDevice(ctx context.Context, alias, publicKey string) error {
	return c.do(ctx, http.MethodPost, "/devices", registerDeviceRequest{Alias: alias, PublicKey: publicKey}, nil)
}

func (c *Client) DeviceAliases(ctx context.Context) ([]string, error) {
	var aliases []string
	err := c.do(ctx, http.MethodGet, "/devices", nil, &aliases)
	return aliases, err
}

func (c *Client) Devices(ctx context.Context) ([]store.Device, error) {
	var devices []store.Device
	err := c.do(ctx, http.MethodGet, "/devices?detail=true", nil, &devices)
	return devices, err
}

func (c *Client) DeleteDevice(ctx context.Context, alias string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+url.PathEscape(alias), nil, nil)
}

func (c *Client) IsSeed(ctx context.Context) (bool, error) {
	var out struct {
		Seed bool `json:"seed"`
	}
	err := c.do(ctx, http.MethodGet, "/secrets/seed", nil, &out)
	return out.Seed, err
}

func (c *Client) UploadSeedSecret(ctx context.Context, publicKey, encryptedSecret string) error {
	return c.do(ctx, http.MethodPost, "/secrets/seed", seedRequest{PublicKey: publicKey, EncryptedSecret: encryptedSecret}, nil)
}

func (c *Client) UploadEncryptedSecrets(ctx context.Context, entries []store.SecretEntry) error {
	return c.do(ctx, http.MethodPost, "/secrets", uploadRequest{Entries: entries}, nil)
}

func (c *Client) UnsyncedPublicKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := c.do(ctx, http.MethodGet, "/secrets/unsynced", nil, &keys)
	return keys, err
}

func (c *Client) EncryptedSecret(ctx context.Context, publicKey string) (string, error) {
	var out struct {
		EncryptedSecret string `json:"encrypted_secret"`
	}
	err := c.do(ctx, http.MethodGet, "/secrets?public_key="+url.QueryEscape(publicKey), nil, &out)
	return out.EncryptedSecret, err
}

func (c *Client) SyncState(ctx context.Context) (model.SyncState, error) {
	var out struct {
		State model.SyncState `json:"state"`
	}
	err := c.do(ctx, http.MethodGet, "/secrets/state", nil, &out)
	return out.State, err
}

func (c *Client) Notes(ctx context.Context) ([]store.Note, error) {
	var notes []store.Note
	err := c.do(ctx, http.MethodGet, "/notes", nil, &notes)
	return notes, err
}

// Note fetches a single note. A missing id yields an error matching store.ErrNoteNotFound.
func (c *Client) Note(ctx context.Context, id model.NoteID) (store.Note, error) {
	var note store.Note
	err := c.do(ctx, http.MethodGet, "/notes/"+id.String(), nil, &note)
	return note, err
}

func (c *Client) AddNote(ctx context.Context, ciphertext string) (model.NoteID, error) {
	var out struct {
		ID model.NoteID `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/notes", noteRequest{Ciphertext: ciphertext}, &out)
	return out.ID, err
}

func (c *Client) UpdateNote(ctx context.Context, id model.NoteID, ciphertext string) error {
	return c.do(ctx, http.MethodPut, "/notes/"+id.String(), noteRequest{Ciphertext: ciphertext}, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id model.NoteID) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+id.String(), nil, nil)
}

// Status reports server health. A 503 is returned as the decoded payload
// together with an APIError.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

func (c *Client) Whoami(ctx context.Context) (Whoami, error) {
	var out Whoami
	err := c.do(ctx, http.MethodGet, "/whoami", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		if out != nil && resp.StatusCode == http.StatusServiceUnavailable {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
		}
	}
	return nil
}
