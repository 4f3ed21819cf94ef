package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
)

const (
	responseBodyReadLimit int64 = 1024
	imageFormField              = "image"
)

var errBaseURLRequired = errors.New("ocr base url is required")

// Result is the normalized OCR output: the full extracted text plus the
// provider's confidence in [0,1].
type Result struct {
	Text       string
	Confidence float64
}

// Client wraps the external OCR service used to read receipt screenshots.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the OCR client for the configured endpoint.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimSpace(baseURL)
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmedURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return client, nil
}

// Extract submits the image bytes and returns the recognized text. Transport
// and provider failures surface as DEPENDENCY errors so callers can map them
// onto their own failure taxonomy.
func (c *Client) Extract(ctx context.Context, image []byte, filename string) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ocr client not configured")
	}
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is required")
	}
	if filename == "" {
		filename = "receipt"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(imageFormField, filename)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build ocr form")
	}
	if _, err := part.Write(image); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write ocr image")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize ocr form")
	}

	url := c.baseURL + "/v1/extract"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build ocr request")
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute ocr request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"ocr request failed")
	}

	var apiResp struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode ocr response")
	}

	return &Result{
		Text:       apiResp.Text,
		Confidence: apiResp.Confidence,
	}, nil
}
