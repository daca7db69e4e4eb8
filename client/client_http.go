// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/logging"
)

// HTTPClient implements Client against the ParaDrop REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	devID string
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server described by cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL(),
		http:    &http.Client{Timeout: cfg.Timeout},
		devID:   cfg.DevID,
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. with the one of
// an httptest server.
func (c *HTTPClient) WithHTTPClient(h *http.Client) *HTTPClient {
	c.http = h
	return c
}

// WithBaseURL points the client at another API root.
func (c *HTTPClient) WithBaseURL(u string) *HTTPClient {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	c.baseURL = u
	return c
}

// DevID returns the developer id currently in use.
func (c *HTTPClient) DevID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devID
}

// SessionToken returns the token of the current session, if any.
func (c *HTTPClient) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// request describes one API call.
type request struct {
	method     string // API method relative to the base URL
	httpMethod string // defaults to POST with a body and GET without
	body       any
	header     http.Header
}

// send performs r and returns the decoded JSON response.
func (c *HTTPClient) send(ctx context.Context, r request) (gjson.Result, error) {
	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("%s: encode body: %w", r.method, err)
		}
		payload = bytes.NewReader(b)
	}
	verb := r.httpMethod
	if verb == "" {
		verb = http.MethodGet
		if r.body != nil {
			verb = http.MethodPost
		}
	}

	req, err := http.NewRequestWithContext(ctx, verb, c.baseURL+r.method, payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", r.method, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	c.mu.Lock()
	if c.devID != "" {
		req.Header.Set("devid", c.devID)
	}
	if c.token != "" {
		req.Header.Set("sessionToken", c.token)
	}
	c.mu.Unlock()

	logging.Debugf("api %s %s", verb, r.method)
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", r.method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: read response: %w", r.method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if !IsAPIErrorCode(resp.StatusCode) {
			return gjson.Result{}, fmt.Errorf("%s: unexpected status %s", r.method, resp.Status)
		}
		apiErr := &APIError{Code: resp.StatusCode, Method: r.method, Detail: strings.TrimSpace(string(data))}
		if resp.StatusCode == ErrCodeTokenExpired {
			logging.Warnf("%s", i18n.T("client.token_expired"))
		} else {
			logging.Errorf("%v", apiErr)
		}
		return gjson.Result{}, apiErr
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s: response is not valid JSON", r.method)
	}
	return gjson.ParseBytes(data), nil
}

// expectOK checks the {"response": "OK", "data": ...} envelope.
func expectOK(method string, res gjson.Result) error {
	if !res.IsObject() {
		return fmt.Errorf("%s: API server error, malformed response", method)
	}
	if got := res.Get("response").String(); got != "OK" {
		return fmt.Errorf("%s: API server error, response %q", method, got)
	}
	return nil
}

// okData returns the data member of an OK envelope.
func okData(method string, res gjson.Result) (json.RawMessage, error) {
	if err := expectOK(method, res); err != nil {
		return nil, err
	}
	data := res.Get("data")
	if !data.Exists() {
		return nil, fmt.Errorf("%s: API server error, no data", method)
	}
	return json.RawMessage(data.Raw), nil
}

// okReport is okData for status and update queries, which may legitimately
// come back empty.
func okReport(method string, res gjson.Result) (json.RawMessage, error) {
	if expectOK(method, res) != nil || !res.Get("data").IsObject() {
		return nil, ErrNoData
	}
	return json.RawMessage(res.Get("data").Raw), nil
}

func arrayOf(method string, res gjson.Result) ([]json.RawMessage, error) {
	if !res.IsArray() {
		return nil, fmt.Errorf("%s: API server error, expected a list", method)
	}
	var out []json.RawMessage
	res.ForEach(func(_, v gjson.Result) bool {
		out = append(out, json.RawMessage(v.Raw))
		return true
	})
	return out, nil
}

// hashPassword returns the hex md5 digest the API server expects.
func hashPassword(p string) string {
	sum := md5.Sum([]byte(p))
	return hex.EncodeToString(sum[:])
}

// --- Session ---

func (c *HTTPClient) Signin(ctx context.Context, username, password string) (bool, error) {
	const method = "auth/signin"
	res, err := c.send(ctx, request{
		method: method,
		body:   map[string]string{"username": username, "password": hashPassword(password)},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	tok, dev := res.Get("sessionToken"), res.Get("devid")
	if !tok.Exists() || !dev.Exists() {
		return false, fmt.Errorf("%s: API server error signing in", method)
	}

	c.mu.Lock()
	c.token = tok.String()
	c.devID = dev.String()
	c.mu.Unlock()
	logging.Debugf("signed in as %s (devid %s)", username, dev.String())
	return true, nil
}

func (c *HTTPClient) Signout(ctx context.Context) error {
	_, err := c.send(ctx, request{method: "auth/signout"})
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return err
}

// --- Access points ---

func (c *HTTPClient) ListAPs(ctx context.Context) ([]json.RawMessage, error) {
	const method = "ap/list"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return arrayOf(method, res)
}

func (c *HTTPClient) GetAPInfo(ctx context.Context, apID string) (json.RawMessage, error) {
	method := "ap/" + apID + "/info"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okData(method, res)
}

func (c *HTTPClient) SetAPInfo(ctx context.Context, ap json.RawMessage) error {
	guid, err := GUID(ap)
	if err != nil {
		return err
	}
	method := "ap/" + guid + "/info"
	res, err := c.send(ctx, request{method: method, body: ap})
	if err != nil {
		return err
	}
	return expectOK(method, res)
}

func (c *HTTPClient) GetAPStatus(ctx context.Context, apID string) (json.RawMessage, error) {
	method := "ap/" + apID + "/status"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okReport(method, res)
}

func (c *HTTPClient) GetAPUpdate(ctx context.Context, apID string) (json.RawMessage, error) {
	method := "ap/" + apID + "/update"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okReport(method, res)
}

func (c *HTTPClient) ResetAP(ctx context.Context, apID string) error {
	method := "ap/" + apID + "/reset"
	res, err := c.send(ctx, request{method: method, body: map[string]string{"confirm": "yes"}})
	if err != nil {
		return err
	}
	return expectOK(method, res)
}

// --- Chutes ---

func (c *HTTPClient) ListChutes(ctx context.Context, apID string) ([]json.RawMessage, error) {
	method := "ap/" + apID + "/list"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	data, err := okData(method, res)
	if err != nil {
		return nil, err
	}
	return arrayOf(method, gjson.ParseBytes(data))
}

func (c *HTTPClient) CreateChute(ctx context.Context, apID string) (json.RawMessage, error) {
	method := "ap/" + apID + "/newchute"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okData(method, res)
}

func (c *HTTPClient) DeleteChute(ctx context.Context, chuteID string) error {
	method := "chute/" + chuteID + "/delete"
	res, err := c.send(ctx, request{method: method, body: map[string]string{"confirm": "yes"}})
	if err != nil {
		return err
	}
	return expectOK(method, res)
}

func (c *HTTPClient) GetChuteInfo(ctx context.Context, chuteID string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/info"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okData(method, res)
}

func (c *HTTPClient) GetChuteData(ctx context.Context, chuteID string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/data"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okData(method, res)
}

func (c *HTTPClient) SetChuteData(ctx context.Context, chute json.RawMessage) error {
	return c.postChute(ctx, chute, "data")
}

func (c *HTTPClient) SetChuteInfo(ctx context.Context, chute json.RawMessage) error {
	return c.postChute(ctx, chute, "info")
}

func (c *HTTPClient) postChute(ctx context.Context, chute json.RawMessage, what string) error {
	guid, err := GUID(chute)
	if err != nil {
		return err
	}
	method := "chute/" + guid + "/" + what
	res, err := c.send(ctx, request{method: method, body: chute})
	if err != nil {
		return err
	}
	return expectOK(method, res)
}

func (c *HTTPClient) EnableChute(ctx context.Context, chuteID string) error {
	return c.chuteAction(ctx, chuteID, "enable")
}

func (c *HTTPClient) DisableChute(ctx context.Context, chuteID string) error {
	return c.chuteAction(ctx, chuteID, "disable")
}

func (c *HTTPClient) FreezeChute(ctx context.Context, chuteID string) error {
	return c.chuteAction(ctx, chuteID, "freeze")
}

func (c *HTTPClient) UnfreezeChute(ctx context.Context, chuteID string) error {
	return c.chuteAction(ctx, chuteID, "unfreeze")
}

func (c *HTTPClient) chuteAction(ctx context.Context, chuteID, action string) error {
	method := "chute/" + chuteID + "/" + action
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return err
	}
	if !res.Get("response").Exists() {
		return fmt.Errorf("%s: API server error, malformed response", method)
	}
	return nil
}

func (c *HTTPClient) GetChuteStatus(ctx context.Context, chuteID string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/status"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okReport(method, res)
}

func (c *HTTPClient) GetChuteUpdate(ctx context.Context, chuteID string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/update"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	return okReport(method, res)
}

// --- Chute files ---

// PutChuteFile uploads the file at path, base64 encoded, under its base name.
func (c *HTTPClient) PutChuteFile(ctx context.Context, chuteID, path string) (json.RawMessage, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("put file: %w", err)
	}
	if fi.IsDir() {
		return nil, ErrIsDirectory
	}
	if fi.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("put file: %w", err)
	}

	name := filepath.Base(path)
	method := "chute/" + chuteID + "/file/" + name
	res, err := c.send(ctx, request{
		method:     method,
		httpMethod: http.MethodPut,
		body:       base64.StdEncoding.EncodeToString(content),
		header:     http.Header{"CSize": {strconv.FormatInt(fi.Size(), 10)}},
	})
	if err != nil {
		return nil, err
	}
	return responseRaw(method, res)
}

func (c *HTTPClient) DeleteChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/file/" + name
	res, err := c.send(ctx, request{method: method, httpMethod: http.MethodDelete})
	if err != nil {
		return nil, err
	}
	return responseRaw(method, res)
}

func (c *HTTPClient) StatChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/file/" + name
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("%s: API server error, malformed response", method)
	}
	return json.RawMessage(strings.TrimSpace(res.Raw)), nil
}

func (c *HTTPClient) ListChuteFiles(ctx context.Context, chuteID string) (json.RawMessage, error) {
	method := "chute/" + chuteID + "/files"
	res, err := c.send(ctx, request{method: method})
	if err != nil {
		return nil, err
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%s: API server error, expected a list", method)
	}
	return json.RawMessage(strings.TrimSpace(res.Raw)), nil
}

// responseRaw returns the whole body of a response carrying a "response" key.
func responseRaw(method string, res gjson.Result) (json.RawMessage, error) {
	if !res.Get("response").Exists() {
		return nil, fmt.Errorf("%s: API server error, malformed response", method)
	}
	return json.RawMessage(strings.TrimSpace(res.Raw)), nil
}
