// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package client talks to the ParaDrop API server on behalf of the shell.
//
// Access points and chutes are passed around as opaque JSON descriptors; the
// shell stores them in its variables and hands them back unchanged. HTTPClient
// is the real implementation, MemoryClient an in-process backend for tests and
// MockClient a per-method override wrapper.
package client
