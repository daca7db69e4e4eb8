// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"encoding/json"
)

type MockClient struct {
	BaseClient Client
	Overwrites MockClientOverwrites
}

type MockClientOverwrites struct {
	Signin          func(ctx context.Context, username, password string) (bool, error)
	Signout         func(ctx context.Context) error
	ListAPs         func(ctx context.Context) ([]json.RawMessage, error)
	GetAPInfo       func(ctx context.Context, apID string) (json.RawMessage, error)
	SetAPInfo       func(ctx context.Context, ap json.RawMessage) error
	GetAPStatus     func(ctx context.Context, apID string) (json.RawMessage, error)
	GetAPUpdate     func(ctx context.Context, apID string) (json.RawMessage, error)
	ResetAP         func(ctx context.Context, apID string) error
	ListChutes      func(ctx context.Context, apID string) ([]json.RawMessage, error)
	CreateChute     func(ctx context.Context, apID string) (json.RawMessage, error)
	DeleteChute     func(ctx context.Context, chuteID string) error
	GetChuteInfo    func(ctx context.Context, chuteID string) (json.RawMessage, error)
	GetChuteData    func(ctx context.Context, chuteID string) (json.RawMessage, error)
	SetChuteData    func(ctx context.Context, chute json.RawMessage) error
	SetChuteInfo    func(ctx context.Context, chute json.RawMessage) error
	EnableChute     func(ctx context.Context, chuteID string) error
	DisableChute    func(ctx context.Context, chuteID string) error
	FreezeChute     func(ctx context.Context, chuteID string) error
	UnfreezeChute   func(ctx context.Context, chuteID string) error
	GetChuteStatus  func(ctx context.Context, chuteID string) (json.RawMessage, error)
	GetChuteUpdate  func(ctx context.Context, chuteID string) (json.RawMessage, error)
	PutChuteFile    func(ctx context.Context, chuteID, path string) (json.RawMessage, error)
	DeleteChuteFile func(ctx context.Context, chuteID, name string) (json.RawMessage, error)
	StatChuteFile   func(ctx context.Context, chuteID, name string) (json.RawMessage, error)
	ListChuteFiles  func(ctx context.Context, chuteID string) (json.RawMessage, error)
}

var _ Client = (*MockClient)(nil)

// client := NewMockClient(NewMemoryClient("dev"), MockClientOverwrites{ /* overwrite Client methods here... */ })
func NewMockClient(base Client, overwrites MockClientOverwrites) *MockClient {
	return &MockClient{
		BaseClient: base,
		Overwrites: overwrites,
	}
}

// --- Client implementation ---

func (m *MockClient) Signin(ctx context.Context, username, password string) (bool, error) {
	if m.Overwrites.Signin != nil {
		return m.Overwrites.Signin(ctx, username, password)
	} else if m.BaseClient != nil {
		return m.BaseClient.Signin(ctx, username, password)
	}
	panic("MockClient.Signin not implemented")
}

func (m *MockClient) Signout(ctx context.Context) error {
	if m.Overwrites.Signout != nil {
		return m.Overwrites.Signout(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.Signout(ctx)
	}
	panic("MockClient.Signout not implemented")
}

func (m *MockClient) ListAPs(ctx context.Context) ([]json.RawMessage, error) {
	if m.Overwrites.ListAPs != nil {
		return m.Overwrites.ListAPs(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.ListAPs(ctx)
	}
	panic("MockClient.ListAPs not implemented")
}

func (m *MockClient) GetAPInfo(ctx context.Context, apID string) (json.RawMessage, error) {
	if m.Overwrites.GetAPInfo != nil {
		return m.Overwrites.GetAPInfo(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetAPInfo(ctx, apID)
	}
	panic("MockClient.GetAPInfo not implemented")
}

func (m *MockClient) SetAPInfo(ctx context.Context, ap json.RawMessage) error {
	if m.Overwrites.SetAPInfo != nil {
		return m.Overwrites.SetAPInfo(ctx, ap)
	} else if m.BaseClient != nil {
		return m.BaseClient.SetAPInfo(ctx, ap)
	}
	panic("MockClient.SetAPInfo not implemented")
}

func (m *MockClient) GetAPStatus(ctx context.Context, apID string) (json.RawMessage, error) {
	if m.Overwrites.GetAPStatus != nil {
		return m.Overwrites.GetAPStatus(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetAPStatus(ctx, apID)
	}
	panic("MockClient.GetAPStatus not implemented")
}

func (m *MockClient) GetAPUpdate(ctx context.Context, apID string) (json.RawMessage, error) {
	if m.Overwrites.GetAPUpdate != nil {
		return m.Overwrites.GetAPUpdate(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetAPUpdate(ctx, apID)
	}
	panic("MockClient.GetAPUpdate not implemented")
}

func (m *MockClient) ResetAP(ctx context.Context, apID string) error {
	if m.Overwrites.ResetAP != nil {
		return m.Overwrites.ResetAP(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.ResetAP(ctx, apID)
	}
	panic("MockClient.ResetAP not implemented")
}

func (m *MockClient) ListChutes(ctx context.Context, apID string) ([]json.RawMessage, error) {
	if m.Overwrites.ListChutes != nil {
		return m.Overwrites.ListChutes(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.ListChutes(ctx, apID)
	}
	panic("MockClient.ListChutes not implemented")
}

func (m *MockClient) CreateChute(ctx context.Context, apID string) (json.RawMessage, error) {
	if m.Overwrites.CreateChute != nil {
		return m.Overwrites.CreateChute(ctx, apID)
	} else if m.BaseClient != nil {
		return m.BaseClient.CreateChute(ctx, apID)
	}
	panic("MockClient.CreateChute not implemented")
}

func (m *MockClient) DeleteChute(ctx context.Context, chuteID string) error {
	if m.Overwrites.DeleteChute != nil {
		return m.Overwrites.DeleteChute(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.DeleteChute(ctx, chuteID)
	}
	panic("MockClient.DeleteChute not implemented")
}

func (m *MockClient) GetChuteInfo(ctx context.Context, chuteID string) (json.RawMessage, error) {
	if m.Overwrites.GetChuteInfo != nil {
		return m.Overwrites.GetChuteInfo(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetChuteInfo(ctx, chuteID)
	}
	panic("MockClient.GetChuteInfo not implemented")
}

func (m *MockClient) GetChuteData(ctx context.Context, chuteID string) (json.RawMessage, error) {
	if m.Overwrites.GetChuteData != nil {
		return m.Overwrites.GetChuteData(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetChuteData(ctx, chuteID)
	}
	panic("MockClient.GetChuteData not implemented")
}

func (m *MockClient) SetChuteData(ctx context.Context, chute json.RawMessage) error {
	if m.Overwrites.SetChuteData != nil {
		return m.Overwrites.SetChuteData(ctx, chute)
	} else if m.BaseClient != nil {
		return m.BaseClient.SetChuteData(ctx, chute)
	}
	panic("MockClient.SetChuteData not implemented")
}

func (m *MockClient) SetChuteInfo(ctx context.Context, chute json.RawMessage) error {
	if m.Overwrites.SetChuteInfo != nil {
		return m.Overwrites.SetChuteInfo(ctx, chute)
	} else if m.BaseClient != nil {
		return m.BaseClient.SetChuteInfo(ctx, chute)
	}
	panic("MockClient.SetChuteInfo not implemented")
}

func (m *MockClient) EnableChute(ctx context.Context, chuteID string) error {
	if m.Overwrites.EnableChute != nil {
		return m.Overwrites.EnableChute(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.EnableChute(ctx, chuteID)
	}
	panic("MockClient.EnableChute not implemented")
}

func (m *MockClient) DisableChute(ctx context.Context, chuteID string) error {
	if m.Overwrites.DisableChute != nil {
		return m.Overwrites.DisableChute(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.DisableChute(ctx, chuteID)
	}
	panic("MockClient.DisableChute not implemented")
}

func (m *MockClient) FreezeChute(ctx context.Context, chuteID string) error {
	if m.Overwrites.FreezeChute != nil {
		return m.Overwrites.FreezeChute(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.FreezeChute(ctx, chuteID)
	}
	panic("MockClient.FreezeChute not implemented")
}

func (m *MockClient) UnfreezeChute(ctx context.Context, chuteID string) error {
	if m.Overwrites.UnfreezeChute != nil {
		return m.Overwrites.UnfreezeChute(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.UnfreezeChute(ctx, chuteID)
	}
	panic("MockClient.UnfreezeChute not implemented")
}

func (m *MockClient) GetChuteStatus(ctx context.Context, chuteID string) (json.RawMessage, error) {
	if m.Overwrites.GetChuteStatus != nil {
		return m.Overwrites.GetChuteStatus(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetChuteStatus(ctx, chuteID)
	}
	panic("MockClient.GetChuteStatus not implemented")
}

func (m *MockClient) GetChuteUpdate(ctx context.Context, chuteID string) (json.RawMessage, error) {
	if m.Overwrites.GetChuteUpdate != nil {
		return m.Overwrites.GetChuteUpdate(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.GetChuteUpdate(ctx, chuteID)
	}
	panic("MockClient.GetChuteUpdate not implemented")
}

func (m *MockClient) PutChuteFile(ctx context.Context, chuteID, path string) (json.RawMessage, error) {
	if m.Overwrites.PutChuteFile != nil {
		return m.Overwrites.PutChuteFile(ctx, chuteID, path)
	} else if m.BaseClient != nil {
		return m.BaseClient.PutChuteFile(ctx, chuteID, path)
	}
	panic("MockClient.PutChuteFile not implemented")
}

func (m *MockClient) DeleteChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error) {
	if m.Overwrites.DeleteChuteFile != nil {
		return m.Overwrites.DeleteChuteFile(ctx, chuteID, name)
	} else if m.BaseClient != nil {
		return m.BaseClient.DeleteChuteFile(ctx, chuteID, name)
	}
	panic("MockClient.DeleteChuteFile not implemented")
}

func (m *MockClient) StatChuteFile(ctx context.Context, chuteID, name string) (json.RawMessage, error) {
	if m.Overwrites.StatChuteFile != nil {
		return m.Overwrites.StatChuteFile(ctx, chuteID, name)
	} else if m.BaseClient != nil {
		return m.BaseClient.StatChuteFile(ctx, chuteID, name)
	}
	panic("MockClient.StatChuteFile not implemented")
}

func (m *MockClient) ListChuteFiles(ctx context.Context, chuteID string) (json.RawMessage, error) {
	if m.Overwrites.ListChuteFiles != nil {
		return m.Overwrites.ListChuteFiles(ctx, chuteID)
	} else if m.BaseClient != nil {
		return m.BaseClient.ListChuteFiles(ctx, chuteID)
	}
	panic("MockClient.ListChuteFiles not implemented")
}
