// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	fakeUser     = "alice"
	fakePassword = "secret"
	fakeToken    = "tok-123"
	fakeDevID    = "dev-1"
)

// fakeServer serves the ParaDrop REST API on top of a MemoryClient.
type fakeServer struct {
	*httptest.Server
	mem *MemoryClient

	mu      sync.Mutex
	lastHdr http.Header
}

func (fs *fakeServer) record(h http.Header) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.lastHdr = h.Clone()
}

// header returns the headers of the last request.
func (fs *fakeServer) header() http.Header {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lastHdr
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		mem: NewMemoryClient(fakeDevID).AddUser(fakeUser, fakePassword).AddAP("ap-1", "home"),
	}
	uploads := t.TempDir()

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signin", func(w http.ResponseWriter, req *http.Request) {
			fs.record(req.Header)
			var body struct{ Username, Password string }
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				w.WriteHeader(ErrCodeBadFormat)
				return
			}
			if body.Username != fakeUser || body.Password != hashPassword(fakePassword) {
				w.WriteHeader(ErrCodeBadAuth)
				return
			}
			_, _ = fs.mem.Signin(req.Context(), fakeUser, fakePassword)
			writeJSON(w, map[string]string{"sessionToken": fakeToken, "devid": fakeDevID})
		})

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					fs.record(req.Header)
					if req.Header.Get("sessionToken") != fakeToken {
						w.WriteHeader(ErrCodeTokenExpired)
						return
					}
					next.ServeHTTP(w, req)
				})
			})

			r.Get("/auth/signout", func(w http.ResponseWriter, req *http.Request) {
				_ = fs.mem.Signout(req.Context())
				writeJSON(w, map[string]string{"response": "OK"})
			})
			r.Get("/ap/list", func(w http.ResponseWriter, req *http.Request) {
				aps, err := fs.mem.ListAPs(req.Context())
				reply(w, aps, err, false)
			})
			r.Get("/ap/{id}/info", getData(fs.mem.GetAPInfo))
			r.Post("/ap/{id}/info", postBody(fs.mem.SetAPInfo))
			r.Get("/ap/{id}/status", getData(fs.mem.GetAPStatus))
			r.Get("/ap/{id}/update", getData(fs.mem.GetAPUpdate))
			r.Post("/ap/{id}/reset", action(fs.mem.ResetAP))
			r.Get("/ap/{id}/list", func(w http.ResponseWriter, req *http.Request) {
				chutes, err := fs.mem.ListChutes(req.Context(), chi.URLParam(req, "id"))
				reply(w, chutes, err, true)
			})
			r.Get("/ap/{id}/newchute", getData(fs.mem.CreateChute))

			r.Post("/chute/{id}/delete", action(fs.mem.DeleteChute))
			r.Get("/chute/{id}/info", getData(fs.mem.GetChuteInfo))
			r.Post("/chute/{id}/info", postBody(fs.mem.SetChuteInfo))
			r.Get("/chute/{id}/data", getData(fs.mem.GetChuteData))
			r.Post("/chute/{id}/data", postBody(fs.mem.SetChuteData))
			r.Get("/chute/{id}/enable", action(fs.mem.EnableChute))
			r.Get("/chute/{id}/disable", action(fs.mem.DisableChute))
			r.Get("/chute/{id}/freeze", action(fs.mem.FreezeChute))
			r.Get("/chute/{id}/unfreeze", action(fs.mem.UnfreezeChute))
			r.Get("/chute/{id}/status", getData(fs.mem.GetChuteStatus))
			r.Get("/chute/{id}/update", getData(fs.mem.GetChuteUpdate))

			r.Put("/chute/{id}/file/{name}", func(w http.ResponseWriter, req *http.Request) {
				var enc string
				if err := json.NewDecoder(req.Body).Decode(&enc); err != nil {
					w.WriteHeader(ErrCodeBadFormat)
					return
				}
				content, err := base64.StdEncoding.DecodeString(enc)
				if err != nil {
					w.WriteHeader(ErrCodeBadFormat)
					return
				}
				path := filepath.Join(uploads, chi.URLParam(req, "name"))
				if err := os.WriteFile(path, content, 0o600); err != nil {
					w.WriteHeader(ErrCodeBadIO)
					return
				}
				raw, err := fs.mem.PutChuteFile(req.Context(), chi.URLParam(req, "id"), path)
				rawReply(w, raw, err)
			})
			r.Delete("/chute/{id}/file/{name}", func(w http.ResponseWriter, req *http.Request) {
				raw, err := fs.mem.DeleteChuteFile(req.Context(), chi.URLParam(req, "id"), chi.URLParam(req, "name"))
				rawReply(w, raw, err)
			})
			r.Get("/chute/{id}/file/{name}", func(w http.ResponseWriter, req *http.Request) {
				raw, err := fs.mem.StatChuteFile(req.Context(), chi.URLParam(req, "id"), chi.URLParam(req, "name"))
				rawReply(w, raw, err)
			})
			r.Get("/chute/{id}/files", func(w http.ResponseWriter, req *http.Request) {
				raw, err := fs.mem.ListChuteFiles(req.Context(), chi.URLParam(req, "id"))
				rawReply(w, raw, err)
			})
		})
	})

	fs.Server = httptest.NewServer(r)
	t.Cleanup(fs.Close)
	return fs
}

// client returns an HTTPClient pointed at the fake server.
func (fs *fakeServer) client() *HTTPClient {
	return NewHTTPClient(NewDefaultConfig()).
		WithHTTPClient(fs.Server.Client()).
		WithBaseURL(fs.URL + "/v1/")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		w.WriteHeader(apiErr.Code)
		_, _ = io.WriteString(w, apiErr.Detail)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func reply(w http.ResponseWriter, list []json.RawMessage, err error, envelope bool) {
	if err != nil {
		writeErr(w, err)
		return
	}
	if envelope {
		writeJSON(w, map[string]any{"response": "OK", "data": list})
		return
	}
	writeJSON(w, list)
}

func rawReply(w http.ResponseWriter, raw json.RawMessage, err error) {
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, raw)
}

func getData(fn func(context.Context, string) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := fn(req.Context(), chi.URLParam(req, "id"))
		if errors.Is(err, ErrNoData) {
			writeJSON(w, map[string]any{"response": "OK", "data": nil})
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"response": "OK", "data": data})
	}
}

func postBody(fn func(context.Context, json.RawMessage) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			w.WriteHeader(ErrCodeBadIO)
			return
		}
		if err := fn(req.Context(), body); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]string{"response": "OK"})
	}
}

func action(fn func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := fn(req.Context(), chi.URLParam(req, "id")); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]string{"response": "OK"})
	}
}
