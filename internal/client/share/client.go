// Package share talks to the folder share server: it signs and publishes
// folders and fetches published ones by id.
package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/integrity"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

type Client struct {
	baseURL string
	http    *http.Client
	signer  *integrity.Signer
}

func NewClient(baseURL string, signer *integrity.Signer, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		signer:  signer,
	}
}

type publishResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Publish signs the folder and posts it, returning the share id. Publishing
// the same folder again while its share is alive returns the same id.
func (c *Client) Publish(ctx context.Context, name string, worlds []json.RawMessage) (string, error) {
	if worlds == nil {
		worlds = []json.RawMessage{}
	}

	payload, code, err := c.signer.SignFolder(integrity.Folder{Name: name, Worlds: worlds})
	if err != nil {
		return "", err
	}
	body := publishBody(payload, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+common.ShareFolderPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", common.JSONContentType)

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var out publishResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("server returned an empty share id")
	}
	return out.ID, nil
}

// FetchRaw returns the stored payload bytes for id.
func (c *Client) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid share id %q", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+common.ShareFolderPath+"/"+id, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Fetch downloads and decodes a published folder.
func (c *Client) Fetch(ctx context.Context, id string) (*integrity.Folder, error) {
	raw, err := c.FetchRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	var f integrity.Folder
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode folder: %w", err)
	}
	if f.Worlds == nil {
		f.Worlds = []json.RawMessage{}
	}
	return &f, nil
}

// publishBody appends the hmac field to the signed payload so the server
// decodes exactly the name and world bytes that were signed.
func publishBody(payload []byte, code string) []byte {
	body := make([]byte, 0, len(payload)+len(code)+10)
	body = append(body, payload[:len(payload)-1]...)
	body = append(body, `,"hmac":"`...)
	body = append(body, code...)
	body = append(body, `"}`...)
	return body
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Error
		}
		return nil, apiErr
	}
	return body, nil
}
