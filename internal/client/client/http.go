package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/common"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
)

const (
	maxErrorBody    = 64 << 10
	maxResponseBody = 1 << 20

	DefaultRequestTimeout = 15 * time.Second
	DefaultDetectTimeout  = 60 * time.Second
)

type Options struct {
	RequestTimeout time.Duration
	DetectTimeout  time.Duration
	HTTPClient     *http.Client
	Logger         logging.Logger
}

type HTTPClient struct {
	baseURL        string
	hc             *http.Client
	tokens         TokenSource
	log            logging.Logger
	requestTimeout time.Duration
	detectTimeout  time.Duration
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, tokens TokenSource, opts Options) *HTTPClient {
	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		hc:             opts.HTTPClient,
		tokens:         tokens,
		log:            opts.Logger,
		requestTimeout: opts.RequestTimeout,
		detectTimeout:  opts.DetectTimeout,
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = DefaultRequestTimeout
	}
	if c.detectTimeout <= 0 {
		c.detectTimeout = DefaultDetectTimeout
	}
	return c
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.do(ctx, c.requestTimeout, http.MethodPost, "/register", "application/json", bytes.NewReader(body), false, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResponse{}, err
	}

	var resp LoginResponse
	if err := c.do(ctx, c.requestTimeout, http.MethodPost, "/login", "application/json", bytes.NewReader(body), false, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

func (c *HTTPClient) Me(ctx context.Context) (models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/me", "", nil, true, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// DetectDish uploads the image as the "file" part of a multipart form. The
// body is streamed; it is not buffered in memory.
func (c *HTTPClient) DetectDish(ctx context.Context, fileName, mediaType string, body io.Reader) (models.Detection, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFilePart(mw, fileName, mediaType, body))
	}()

	var d models.Detection
	err := c.do(ctx, c.detectTimeout, http.MethodPost, "/detect-dish", mw.FormDataContentType(), pr, true, &d)
	_ = pr.Close()
	if err != nil {
		return models.Detection{}, err
	}
	return d, nil
}

func writeFilePart(mw *multipart.Writer, fileName, mediaType string, body io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

func (c *HTTPClient) do(ctx context.Context, timeout time.Duration, method, path, contentType string, body io.Reader, auth bool, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set(common.UserAgentHeaderName, common.ClientUserAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if auth {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		v := common.BearerValue(token)
		if v == "" {
			return fmt.Errorf("%w: %w", ErrUnauthorized, ErrNoToken)
		}
		req.Header.Set(common.AuthorizationHeaderName, v)
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)
	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "err", err)
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mapTransportError(err)
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// mapTransportError keeps caller cancellation distinguishable and folds every
// other network failure, deadlines included, into ErrUnavailable.
func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
