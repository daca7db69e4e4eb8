// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the pdcli command line using Cobra. The root
// command resolves the configuration, builds the API client and hands the
// process streams to the interactive shell. CLI code stays thin: command
// semantics live in internal/shell and the client package.
package cli
