// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import "fmt"

// Status codes the ParaDrop API server uses on top of plain HTTP.
const (
	ErrCodeBadParam       = 400
	ErrCodeTokenExpired   = 401
	ErrCodeBadFormat      = 402
	ErrCodeBadAuth        = 403
	ErrCodeBadMethod      = 405
	ErrCodeBadIO          = 406
	ErrCodePathNotFound   = 407
	ErrCodeContact        = 501
	ErrCodeDatabase       = 502
	ErrCodeBadTransition  = 503
	ErrCodeChuteState     = 504
	ErrCodeChutePending   = 505
	ErrCodeNoStatus       = 506
	ErrCodeResetPending   = 507
	ErrCodeChuteInvalid   = 508
	ErrCodeNotImplemented = 599
)

var apiErrorText = map[int]string{
	ErrCodeBadParam:       "Bad parameter",
	ErrCodeTokenExpired:   "Token expired",
	ErrCodeBadFormat:      "Bad format",
	ErrCodeBadAuth:        "Bad authorization",
	ErrCodeBadMethod:      "Bad method type",
	ErrCodeBadIO:          "Bad IO",
	ErrCodePathNotFound:   "Path not found",
	ErrCodeContact:        "Contact Paradrop",
	ErrCodeDatabase:       "Issue with database",
	ErrCodeBadTransition:  "Bad state transition",
	ErrCodeChuteState:     "Cannot make change with chute in its current state",
	ErrCodeChutePending:   "Action already pending for Chute",
	ErrCodeNoStatus:       "No status data available",
	ErrCodeResetPending:   "Reset already pending for AP",
	ErrCodeChuteInvalid:   "Cannot make change, chute would become invalid",
	ErrCodeNotImplemented: "Function unimplemented yet",
}

// IsAPIErrorCode reports whether code is one of the ParaDrop status codes.
func IsAPIErrorCode(code int) bool {
	_, ok := apiErrorText[code]
	return ok
}

// APIError is a ParaDrop-specific failure reported by the server.
type APIError struct {
	Code   int
	Method string // API method, e.g. "ap/list"
	Detail string // body text sent by the server, if any
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("PDAPIError %d (%s) on %s", e.Code, apiErrorText[e.Code], e.Method)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Text returns the fixed description of the error code.
func (e *APIError) Text() string { return apiErrorText[e.Code] }
