// Package gradeapi talks to the homework service: it lists a submission's
// page images, issues upload targets for graded pages and records grades.
package gradeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/grademark/internal/backdrop"
	"github.com/example/grademark/internal/export"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/navigator"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the homework service.
type Client struct {
	Base  string
	Token string
	HTTP  *http.Client
}

// New creates a client rooted at base, for example
// "https://api.example.com/v1".
func New(base, token string) *Client {
	return &Client{
		Base:  strings.TrimRight(base, "/"),
		Token: token,
		HTTP:  &http.Client{Timeout: DefaultTimeout},
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Status }

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// onAPIHost reports whether u points below Base on the same scheme and
// host, so the token is never sent to another origin.
func (c *Client) onAPIHost(u *url.URL) bool {
	if c.Base == "" {
		return false
	}
	base, err := url.Parse(c.Base)
	if err != nil || base.Host == "" {
		return false
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return false
	}
	prefix := strings.TrimSuffix(base.Path, "/")
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

func (c *Client) submissionPath(ref navigator.Ref) string {
	return fmt.Sprintf("/classes/%s/lessons/%s", url.PathEscape(ref.Class), url.PathEscape(ref.Lesson))
}

func (c *Client) studentPath(ref navigator.Ref) string {
	return c.submissionPath(ref) + "/students/" + url.PathEscape(ref.Student)
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	logging.Logger().Debug("api request", "method", method, "path", path, "request_id", req.Header.Get("X-Request-Id"))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s %s: %w", method, path, statusError(resp))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	e := &StatusError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Message != "" {
		e.Message = payload.Message
	} else {
		e.Message = strings.TrimSpace(string(b))
	}
	return e
}

type imageList struct {
	Items []struct {
		Key string `json:"key"`
		URL string `json:"url"`
	} `json:"items"`
}

// FetchPages lists the page images of a submission.
func (c *Client) FetchPages(ctx context.Context, ref navigator.Ref) ([]navigator.Page, error) {
	var list imageList
	path := c.submissionPath(ref) + "/images?studentId=" + url.QueryEscape(ref.Student)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	pages := make([]navigator.Page, 0, len(list.Items))
	for _, it := range list.Items {
		pages = append(pages, navigator.Page{ID: it.Key, URL: it.URL})
	}
	return pages, nil
}

// Detail is the homework metadata shown next to the pages.
type Detail struct {
	Question string `json:"question"`
	Status   string `json:"status"`
	Score    *int   `json:"score,omitempty"`
	Comment  string `json:"comment"`
}

// Detail fetches the homework question and any previous grade.
func (c *Client) Detail(ctx context.Context, ref navigator.Ref) (Detail, error) {
	var out struct {
		Submission Detail `json:"submission"`
	}
	if err := c.do(ctx, http.MethodGet, c.studentPath(ref)+"/homework", nil, &out); err != nil {
		return Detail{}, err
	}
	return out.Submission, nil
}

type presignRequest struct {
	Keys []string `json:"keys"`
}

type presignResponse struct {
	Uploads []struct {
		Key     string            `json:"key"`
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"uploads"`
}

// RequestUploadTargets asks for one upload target per key in a single
// request.
func (c *Client) RequestUploadTargets(ctx context.Context, ref navigator.Ref, keys []string) (map[string]export.Target, error) {
	var resp presignResponse
	if err := c.do(ctx, http.MethodPost, c.studentPath(ref)+"/graded-images/presign", presignRequest{Keys: keys}, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]export.Target, len(resp.Uploads))
	for _, u := range resp.Uploads {
		out[u.Key] = export.Target{URL: u.URL, Headers: u.Headers}
	}
	return out, nil
}

// PutBytes stores blob at the target. Without target headers the body is
// sent as image/png.
func (c *Client) PutBytes(ctx context.Context, t export.Target, blob []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.URL, bytes.NewReader(blob))
	if err != nil {
		return err
	}
	if len(t.Headers) == 0 {
		req.Header.Set("Content-Type", "image/png")
	}
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	req.ContentLength = int64(len(blob))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

type gradeRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// FinalizeGrade records score and comment; the service marks the
// submission graded.
func (c *Client) FinalizeGrade(ctx context.Context, ref navigator.Ref, score int, comment string) error {
	return c.do(ctx, http.MethodPost, c.studentPath(ref)+"/grade", gradeRequest{Score: score, Comment: comment}, nil)
}

// Open fetches a page image, authenticating when the location is on the
// API host. Locations that are not http or https URLs are read as local
// files. Client thereby serves as a backdrop.Fetcher.
func (c *Client) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return backdrop.DefaultFetcher{}.Open(ctx, location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" && c.onAPIHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("fetch page image: %w", statusError(resp))
	}
	return resp.Body, nil
}
