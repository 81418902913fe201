// Package client is the programmatic counterpart of the admin frontend: a
// local board store, a field editor, and a sync layer that pushes changes to
// the server either per action or in bulk.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"centrale/internal/model"
	"centrale/pkg/circuitbreaker"
)

// APIClient talks to the centrale HTTP API. Calls run through a circuit
// breaker so a dead server fails fast instead of hanging every save.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewAPIClient(baseURL string) *APIClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cb: circuitbreaker.New(cbConfig),
	}
}

// SetToken installs the bearer token used on every request.
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// Login authenticates and stores the returned token on the client.
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", bytes.NewReader(body), &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// FetchBoards loads every board of a partition.
func (c *APIClient) FetchBoards(ctx context.Context, partition model.Partition) ([]*model.Board, error) {
	var resp struct {
		Boards []*model.Board `json:"boards"`
	}
	target := fmt.Sprintf("/api/centrale/boards?type=%s", partition)
	if err := c.doJSON(ctx, http.MethodGet, target, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Boards, nil
}

// SaveBoard pushes one full board document. The board's version is sent as
// If-Match so a concurrent edit on another client surfaces as a conflict.
func (c *APIClient) SaveBoard(ctx context.Context, partition model.Partition, board *model.Board) (*model.Board, error) {
	body, err := json.Marshal(board)
	if err != nil {
		return nil, err
	}
	ifMatch := ""
	if board.Version > 0 {
		ifMatch = strconv.FormatInt(board.Version, 10)
	}
	var updated model.Board
	target := fmt.Sprintf("/api/centrale/boards/%s?type=%s", board.ID, partition)
	if err := c.doJSON(ctx, http.MethodPut, target, ifMatch, bytes.NewReader(body), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateBoard makes a new board on the server.
func (c *APIClient) CreateBoard(ctx context.Context, partition model.Partition, name, icon, color string) (*model.Board, error) {
	body, err := json.Marshal(map[string]string{
		"name":  name,
		"icon":  icon,
		"color": color,
	})
	if err != nil {
		return nil, err
	}
	var created model.Board
	target := fmt.Sprintf("/api/centrale/boards?type=%s", partition)
	if err := c.doJSON(ctx, http.MethodPost, target, "", bytes.NewReader(body), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteBoard removes a board on the server.
func (c *APIClient) DeleteBoard(ctx context.Context, partition model.Partition, boardID string) error {
	target := fmt.Sprintf("/api/centrale/boards/%s?type=%s", boardID, partition)
	return c.doJSON(ctx, http.MethodDelete, target, "", nil, nil)
}

// SaveAll replaces the whole partition with the given boards.
func (c *APIClient) SaveAll(ctx context.Context, partition model.Partition, boards []*model.Board) error {
	body, err := json.Marshal(map[string]any{"boards": boards})
	if err != nil {
		return err
	}
	target := fmt.Sprintf("/api/centrale/sections/save-all?type=%s", partition)
	return c.doJSON(ctx, http.MethodPost, target, "", bytes.NewReader(body), nil)
}

// UploadFile sends one attachment as multipart form data and returns the
// stored reference.
func (c *APIClient) UploadFile(ctx context.Context, partition model.Partition, boardID, rowID, columnID, name string, data io.Reader) (model.FileRef, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"board_id":  boardID,
		"row_id":    rowID,
		"column_id": columnID,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return model.FileRef{}, err
		}
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return model.FileRef{}, err
	}
	if _, err := io.Copy(fw, data); err != nil {
		return model.FileRef{}, err
	}
	if err := mw.Close(); err != nil {
		return model.FileRef{}, err
	}

	var resp struct {
		File model.FileRef `json:"file"`
	}
	target := fmt.Sprintf("/api/centrale/boards/upload-file?type=%s", partition)
	err = c.do(ctx, http.MethodPost, target, "", &buf, mw.FormDataContentType(), &resp)
	if err != nil {
		return model.FileRef{}, err
	}
	return resp.File, nil
}

// DeleteFile unlinks one attachment on the server.
func (c *APIClient) DeleteFile(ctx context.Context, partition model.Partition, boardID, rowID, columnID, name string) error {
	body, err := json.Marshal(map[string]string{
		"board_id":  boardID,
		"row_id":    rowID,
		"column_id": columnID,
		"name":      name,
	})
	if err != nil {
		return err
	}
	target := fmt.Sprintf("/api/centrale/boards/delete-file?type=%s", partition)
	return c.doJSON(ctx, http.MethodPost, target, "", bytes.NewReader(body), nil)
}

func (c *APIClient) doJSON(ctx context.Context, method, target, ifMatch string, body io.Reader, out any) error {
	return c.do(ctx, method, target, ifMatch, body, "application/json", out)
}

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// do runs one request through the circuit breaker. Transport failures and
// 5xx responses count against the breaker; 4xx responses are the caller's
// problem and leave it closed.
func (c *APIClient) do(ctx context.Context, method, target, ifMatch string, body io.Reader, contentType string, out any) error {
	var clientErr error
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, body)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", contentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if ifMatch != "" {
			req.Header.Set("If-Match", ifMatch)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var apiErr struct {
				Error string `json:"error"`
			}
			data, _ := io.ReadAll(resp.Body)
			if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Error == "" {
				apiErr.Error = string(data)
			}
			if resp.StatusCode >= 500 {
				return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
			}
			clientErr = &APIError{Status: resp.StatusCode, Message: apiErr.Error}
			return nil
		}
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		return err
	}
	return clientErr
}
