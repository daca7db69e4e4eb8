// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Chute states tracked by MemoryClient.
const (
	ChuteStateNew      = "new"
	ChuteStateEnabled  = "enabled"
	ChuteStateDisabled = "disabled"
	ChuteStateFrozen   = "frozen"
)

type memoryChute struct {
	apID  string
	info  json.RawMessage
	data  json.RawMessage
	state string
	files map[string]int64
}

// MemoryClient is an in-process ParaDrop backend. It keeps access points,
// chutes and files in memory and enforces the same session and state rules
// as the API server, answering with *APIError where the server would.
type MemoryClient struct {
	mu sync.Mutex

	users    map[string]string
	devID    string
	loggedIn bool

	aps     []json.RawMessage
	resets  map[string]bool
	chutes  map[string]*memoryChute
	order   []string // chute guids in creation order
	updates map[string]json.RawMessage
	serial  int
}

// *MemoryClient implements Client
var _ Client = (*MemoryClient)(nil)

// NewMemoryClient returns an empty backend for the given developer id.
func NewMemoryClient(devID string) *MemoryClient {
	return &MemoryClient{
		users:   make(map[string]string),
		devID:   devID,
		resets:  make(map[string]bool),
		chutes:  make(map[string]*memoryChute),
		updates: make(map[string]json.RawMessage),
	}
}

// AddUser registers an account that Signin accepts.
func (c *MemoryClient) AddUser(username, password string) *MemoryClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[username] = password
	return c
}

// AddAP registers an access point owned by the developer.
func (c *MemoryClient) AddAP(guid, name string) *MemoryClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	desc, _ := json.Marshal(map[string]string{"guid": guid, "name": name, "devid": c.devID})
	c.aps = append(c.aps, desc)
	return c
}

// LoggedIn reports whether a session is open.
func (c *MemoryClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// ChuteState returns the lifecycle state of a chute.
func (c *MemoryClient) ChuteState(guid string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chutes[guid]
	if !ok {
		return "", false
	}
	return ch.state, true
}

func (c *MemoryClient) requireSession(method string) error {
	if !c.loggedIn {
		return &APIError{Code: ErrCodeTokenExpired, Method: method}
	}
	return nil
}

func (c *MemoryClient) findAP(method, apID string) (json.RawMessage, error) {
	for _, ap := range c.aps {
		if gjson.GetBytes(ap, "guid").String() == apID {
			return ap, nil
		}
	}
	return nil, &APIError{Code: ErrCodePathNotFound, Method: method, Detail: apID}
}

func (c *MemoryClient) findChute(method, chuteID string) (*memoryChute, error) {
	ch, ok := c.chutes[chuteID]
	if !ok {
		return nil, &APIError{Code: ErrCodePathNotFound, Method: method, Detail: chuteID}
	}
	return ch, nil
}

func (c *MemoryClient) recordUpdate(id, action string) {
	c.updates[id], _ = json.Marshal(map[string]string{"action": action, "result": "pending"})
}

// --- Session ---

func (c *MemoryClient) Signin(_ context.Context, username, password string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pw, ok := c.users[username]; !ok || pw != password {
		return false, nil
	}
	c.loggedIn = true
	return true, nil
}

func (c *MemoryClient) Signout(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = false
	return nil
}

// --- Access points ---

func (c *MemoryClient) ListAPs(_ context.Context) ([]json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireSession("ap/list"); err != nil {
		return nil, err
	}
	return slices.Clone(c.aps), nil
}

func (c *MemoryClient) GetAPInfo(_ context.Context, apID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/info"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	return c.findAP(method, apID)
}

func (c *MemoryClient) SetAPInfo(_ context.Context, ap json.RawMessage) error {
	guid, err := GUID(ap)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + guid + "/info"
	if err := c.requireSession(method); err != nil {
		return err
	}
	for i, cur := range c.aps {
		if gjson.GetBytes(cur, "guid").String() == guid {
			c.aps[i] = slices.Clone(ap)
			return nil
		}
	}
	return &APIError{Code: ErrCodePathNotFound, Method: method, Detail: guid}
}

func (c *MemoryClient) GetAPStatus(_ context.Context, apID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/status"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	if _, err := c.findAP(method, apID); err != nil {
		return nil, err
	}
	n := 0
	for _, ch := range c.chutes {
		if ch.apID == apID {
			n++
		}
	}
	return json.Marshal(map[string]any{"guid": apID, "chutes": n, "resetPending": c.resets[apID]})
}

func (c *MemoryClient) GetAPUpdate(_ context.Context, apID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/update"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	u, ok := c.updates[apID]
	if !ok {
		return nil, ErrNoData
	}
	return u, nil
}

func (c *MemoryClient) ResetAP(_ context.Context, apID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/reset"
	if err := c.requireSession(method); err != nil {
		return err
	}
	if _, err := c.findAP(method, apID); err != nil {
		return err
	}
	if c.resets[apID] {
		return &APIError{Code: ErrCodeResetPending, Method: method}
	}
	c.resets[apID] = true
	c.recordUpdate(apID, "reset")
	return nil
}

// --- Chutes ---

func (c *MemoryClient) ListChutes(_ context.Context, apID string) ([]json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/list"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	if _, err := c.findAP(method, apID); err != nil {
		return nil, err
	}
	out := []json.RawMessage{}
	for _, id := range c.order {
		if ch := c.chutes[id]; ch.apID == apID {
			out = append(out, slices.Clone(ch.info))
		}
	}
	return out, nil
}

func (c *MemoryClient) CreateChute(_ context.Context, apID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "ap/" + apID + "/newchute"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	if _, err := c.findAP(method, apID); err != nil {
		return nil, err
	}
	c.serial++
	guid := fmt.Sprintf("chute-%d", c.serial)
	info, _ := json.Marshal(map[string]any{
		"guid":       guid,
		"apid":       apID,
		"name":       "",
		"internalid": c.serial,
		"state":      ChuteStateNew,
	})
	data, _ := json.Marshal(map[string]any{"guid": guid, "struct": map[string]any{}, "resource": map[string]any{}})
	c.chutes[guid] = &memoryChute{apID: apID, info: info, data: data, state: ChuteStateNew, files: map[string]int64{}}
	c.order = append(c.order, guid)
	return slices.Clone(info), nil
}

func (c *MemoryClient) DeleteChute(_ context.Context, chuteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/delete"
	if err := c.requireSession(method); err != nil {
		return err
	}
	if _, err := c.findChute(method, chuteID); err != nil {
		return err
	}
	delete(c.chutes, chuteID)
	c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == chuteID })
	c.recordUpdate(chuteID, "delete")
	return nil
}

func (c *MemoryClient) GetChuteInfo(_ context.Context, chuteID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/info"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(slices.Clone(ch.info), "state", ch.state)
}

func (c *MemoryClient) GetChuteData(_ context.Context, chuteID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/data"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(ch.data), nil
}

func (c *MemoryClient) SetChuteData(_ context.Context, chute json.RawMessage) error {
	return c.storeChute(chute, "data")
}

func (c *MemoryClient) SetChuteInfo(_ context.Context, chute json.RawMessage) error {
	return c.storeChute(chute, "info")
}

func (c *MemoryClient) storeChute(chute json.RawMessage, what string) error {
	guid, err := GUID(chute)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + guid + "/" + what
	if err := c.requireSession(method); err != nil {
		return err
	}
	ch, err := c.findChute(method, guid)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(chute) || !gjson.ParseBytes(chute).IsObject() {
		return &APIError{Code: ErrCodeBadFormat, Method: method}
	}
	if what == "data" {
		ch.data = slices.Clone(chute)
		c.recordUpdate(guid, "data")
	} else {
		ch.info = slices.Clone(chute)
	}
	return nil
}

// transitions lists the states each chute action may start from.
var transitions = map[string]struct {
	from []string
	to   string
}{
	"enable":   {from: []string{ChuteStateNew, ChuteStateDisabled}, to: ChuteStateEnabled},
	"disable":  {from: []string{ChuteStateEnabled, ChuteStateFrozen}, to: ChuteStateDisabled},
	"freeze":   {from: []string{ChuteStateEnabled}, to: ChuteStateFrozen},
	"unfreeze": {from: []string{ChuteStateFrozen}, to: ChuteStateEnabled},
}

func (c *MemoryClient) transition(chuteID, action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/" + action
	if err := c.requireSession(method); err != nil {
		return err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return err
	}
	t := transitions[action]
	if !slices.Contains(t.from, ch.state) {
		return &APIError{Code: ErrCodeBadTransition, Method: method, Detail: ch.state + " -> " + t.to}
	}
	ch.state = t.to
	c.recordUpdate(chuteID, action)
	return nil
}

func (c *MemoryClient) EnableChute(_ context.Context, chuteID string) error {
	return c.transition(chuteID, "enable")
}

func (c *MemoryClient) DisableChute(_ context.Context, chuteID string) error {
	return c.transition(chuteID, "disable")
}

func (c *MemoryClient) FreezeChute(_ context.Context, chuteID string) error {
	return c.transition(chuteID, "freeze")
}

func (c *MemoryClient) UnfreezeChute(_ context.Context, chuteID string) error {
	return c.transition(chuteID, "unfreeze")
}

func (c *MemoryClient) GetChuteStatus(_ context.Context, chuteID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/status"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	if ch.state == ChuteStateNew {
		return nil, ErrNoData
	}
	return json.Marshal(map[string]string{"guid": chuteID, "state": ch.state})
}

func (c *MemoryClient) GetChuteUpdate(_ context.Context, chuteID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/update"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	u, ok := c.updates[chuteID]
	if !ok {
		return nil, ErrNoData
	}
	return u, nil
}

// --- Chute files ---

func (c *MemoryClient) PutChuteFile(_ context.Context, chuteID, path string) (json.RawMessage, error) {
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
	c.mu.Lock()
	defer c.mu.Unlock()
	name := filepath.Base(path)
	method := "chute/" + chuteID + "/file/" + name
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	ch.files[name] = fi.Size()
	return json.Marshal(map[string]any{"response": "OK", "data": map[string]any{"name": name, "size": fi.Size()}})
}

func (c *MemoryClient) DeleteChuteFile(_ context.Context, chuteID, name string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/file/" + name
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	if _, ok := ch.files[name]; !ok {
		return nil, &APIError{Code: ErrCodePathNotFound, Method: method, Detail: name}
	}
	delete(ch.files, name)
	return json.Marshal(map[string]string{"response": "OK"})
}

func (c *MemoryClient) StatChuteFile(_ context.Context, chuteID, name string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/file/" + name
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	size, ok := ch.files[name]
	if !ok {
		return nil, &APIError{Code: ErrCodePathNotFound, Method: method, Detail: name}
	}
	return json.Marshal(map[string]any{"name": name, "size": size})
}

func (c *MemoryClient) ListChuteFiles(_ context.Context, chuteID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	method := "chute/" + chuteID + "/files"
	if err := c.requireSession(method); err != nil {
		return nil, err
	}
	ch, err := c.findChute(method, chuteID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ch.files))
	for n := range ch.files {
		names = append(names, n)
	}
	slices.Sort(names)
	return json.Marshal(names)
}
