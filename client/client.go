// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrNoData means the server answered but had nothing to report, for
	// example no status for a chute that never ran.
	ErrNoData = errors.New("no data available")
	// ErrNoGUID means a descriptor carries no usable guid.
	ErrNoGUID = errors.New("descriptor has no guid")
	// ErrIsDirectory is returned when a directory is passed as a chute file.
	ErrIsDirectory = errors.New("is a directory, only files can be sent")
	// ErrFileTooLarge is returned for chute files above MaxFileSize.
	ErrFileTooLarge = errors.New("file size exceeded max limit (100MB)")
)

// MaxFileSize is the largest file PutChuteFile will transmit.
const MaxFileSize = 100 * 1024 * 1024

type Client interface {
	// --- Session ---

	// Signin authenticates the developer. A rejected login is (false, nil);
	// errors are reserved for transport and protocol failures.
	Signin(ctx context.Context, username, password string) (bool, error)

	Signout(ctx context.Context) error

	// --- Access points ---

	ListAPs(ctx context.Context) ([]json.RawMessage, error)

	GetAPInfo(ctx context.Context, apID string) (json.RawMessage, error)

	SetAPInfo(ctx context.Context, ap json.RawMessage) error

	GetAPStatus(ctx context.Context, apID string) (json.RawMessage, error)

	GetAPUpdate(ctx context.Context, apID string) (json.RawMessage, error)

	ResetAP(ctx context.Context, apID string) error

	// --- Chutes ---

	ListChutes(ctx context.Context, apID string) ([]json.RawMessage, error)

	CreateChute(ctx context.Context, apID string) (json.RawMessage, error)

	DeleteChute(ctx context.Context, chuteID string) error

	GetChuteInfo(ctx context.Context, chuteID string) (json.RawMessage, error)

	GetChuteData(ctx context.Context, chuteID string) (json.RawMessage, error)

	SetChuteData(ctx context.Context, chute json.RawMessage) error

	SetChuteInfo(ctx context.Context, chute json.RawMessage) error

	EnableChute(ctx context.Context, chuteID string) error

	DisableChute(ctx context.Context, chuteID string) error

	FreezeChute(ctx context.Context, chuteID string) error

	UnfreezeChute(ctx context.Context, chuteID string) error

	GetChuteStatus(ctx context.Context, chuteID string) (json.RawMessage, error)

	GetChuteUpdate(ctx context.Context, chuteID string) (json.RawMessage, error)

	// --- Chute files ---

	PutChuteFile(ctx context.Context, chuteID, path string) (json.RawMessage, error)

	DeleteChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error)

	StatChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error)

	ListChuteFiles(ctx context.Context, chuteID string) (json.RawMessage, error)
}

// GUID extracts the identifier from a descriptor. A JSON string is taken as
// the guid itself; an object must carry a non-empty "guid" field.
func GUID(desc json.RawMessage) (string, error) {
	res := gjson.ParseBytes(desc)
	switch {
	case res.Type == gjson.String && res.String() != "":
		return res.String(), nil
	case res.IsObject():
		if g := res.Get("guid"); g.Type == gjson.String && g.String() != "" {
			return g.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %.40s", ErrNoGUID, string(desc))
}
