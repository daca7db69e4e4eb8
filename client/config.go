// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

type Config struct {
	// Addr and Port locate the API server.
	Addr string
	Port int
	// DevID is the developer guid sent with every request.
	DevID string
	// Timeout bounds a single request. Zero means no limit.
	Timeout time.Duration
}

func NewDefaultConfig() Config {
	return Config{
		Addr:    "paradrop.org",
		Port:    10000,
		Timeout: 30 * time.Second,
	}
}

// BaseURL returns the root of the versioned API, ending in a slash.
func (c Config) BaseURL() string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(c.Addr, strconv.Itoa(c.Port)),
		Path:   "/v1/",
	}
	return u.String()
}
