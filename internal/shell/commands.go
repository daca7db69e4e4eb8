// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/paradrop/pdcli/client"
	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/logging"
	"github.com/paradrop/pdcli/internal/registry"
	"github.com/paradrop/pdcli/internal/vars"
)

// Variables the domain commands read and write.
const (
	varAPs         = "aps"
	varActiveAP    = "activeAP"
	varChutes      = "chutes"
	varActiveChute = "activeChute"
	varNewChute    = "newChute"
)

func (s *Shell) domainCommands(b *registry.Builder) {
	auth := registry.RequireAuth()
	help := func(name string) registry.Option { return registry.Help(i18n.T("help." + name)) }

	b.Register("apList", `apList`, s.apList, auth, help("apList"))
	b.Register("apGetInfo", `apGetInfo(.*)`, s.apGetInfo, auth, help("apGetInfo"))
	b.Register("apSetInfo", `apSetInfo(.*)`, s.apSetInfo, auth, help("apSetInfo"))
	b.Register("apGetStatus", `apGetStatus`, s.apGetStatus, auth, help("apGetStatus"))
	b.Register("apGetUpdate", `apGetUpdate`, s.apGetUpdate, auth, help("apGetUpdate"))
	b.Register("apReset", `apReset(.*)`, s.apReset, auth, help("apReset"))

	b.Register("chuteList", `chuteList`, s.chuteList, auth, help("chuteList"))
	b.Register("chuteCreate", `chuteCreate`, s.chuteCreate, auth, help("chuteCreate"))
	b.Register("chuteDelete", `chuteDelete(.*)`, s.chuteDelete, auth, help("chuteDelete"))
	b.Register("chuteGetInfo", `chuteGetInfo(.*)`, s.chuteGetInfo, auth, help("chuteGetInfo"))
	b.Register("chuteGetData", `chuteGetData`, s.chuteGetData, auth, help("chuteGetData"))
	b.Register("chuteSetData", `chuteSetData`, s.chuteSetData, auth, help("chuteSetData"))
	b.Register("chuteSetInfo", `chuteSetInfo`, s.chuteSetInfo, auth, help("chuteSetInfo"))
	b.Register("chuteEnable", `chuteEnable(.*)`, s.chuteAction(s.client.EnableChute, "enable"), auth, help("chuteEnable"))
	b.Register("chuteDisable", `chuteDisable(.*)`, s.chuteAction(s.client.DisableChute, "disable"), auth, help("chuteDisable"))
	b.Register("chuteFreeze", `chuteFreeze(.*)`, s.chuteAction(s.client.FreezeChute, "freeze"), auth, help("chuteFreeze"))
	b.Register("chuteUnfreeze", `chuteUnfreeze(.*)`, s.chuteAction(s.client.UnfreezeChute, "unfreeze"), auth, help("chuteUnfreeze"))
	b.Register("chuteGetStatus", `chuteGetStatus`, s.chuteGetStatus, auth, help("chuteGetStatus"))
	b.Register("chuteGetUpdate", `chuteGetUpdate`, s.chuteGetUpdate, auth, help("chuteGetUpdate"))

	b.Register("sendFile", `sendFile (.*)`, s.sendFile, auth, help("sendFile"))
	b.Register("delFile", `delFile (.*)`, s.delFile, auth, help("delFile"))
	b.Register("statFile", `statFile (.*)`, s.statFile, auth, help("statFile"))
	b.Register("listFile", `listFile`, s.listFile, auth, help("listFile"))
}

// target picks the descriptor a command works on: the argument when one was
// given, resolved if it is a reference, otherwise the fallback variable.
// ok is false when there is neither.
func (s *Shell) target(argText, fallback string) (desc json.RawMessage, ok bool, err error) {
	if t := strings.TrimSpace(argText); t != "" {
		v, err := s.vars.Value(t)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	v, ok := s.vars.Get(fallback)
	return v, ok, nil
}

// guidOf returns the guid of the descriptor stored in variable name.
func (s *Shell) guidOf(name string) (string, bool, error) {
	v, ok := s.vars.Get(name)
	if !ok {
		return "", false, nil
	}
	guid, err := client.GUID(v)
	return guid, true, err
}

// reportAPI prints okID on success and failID when the server refused the
// request. Other failures are returned to the dispatch boundary.
func (s *Shell) reportAPI(err error, okID, failID string) error {
	var apiErr *client.APIError
	switch {
	case err == nil:
		s.println(i18n.T(okID))
	case errors.As(err, &apiErr), errors.Is(err, client.ErrNoGUID):
		s.println(i18n.T(failID))
	default:
		return err
	}
	return nil
}

// noReport reports whether err means there was nothing to show.
func noReport(err error) bool {
	var apiErr *client.APIError
	return errors.Is(err, client.ErrNoData) || errors.As(err, &apiErr)
}

func (s *Shell) listInto(name string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	return s.vars.SetValue(name, items)
}

// --- Access points ---

func (s *Shell) apList(ctx context.Context, _ ...string) error {
	aps, err := s.client.ListAPs(ctx)
	if err != nil {
		return err
	}
	if err := s.listInto(varAPs, aps); err != nil {
		return err
	}
	s.println(i18n.T("ap.list_set"))
	for i, a := range aps {
		s.printf("[%3d] : %s\n", i, a)
	}
	return nil
}

func (s *Shell) apGetInfo(ctx context.Context, args ...string) error {
	desc, ok, err := s.target(arg(args, 0), varActiveAP)
	if err != nil {
		return err
	}
	if !ok {
		s.println(i18n.T("ap.no_ap_arg"))
		return nil
	}
	guid, err := client.GUID(desc)
	if err != nil {
		return err
	}
	info, err := s.client.GetAPInfo(ctx, guid)
	if err != nil {
		return err
	}
	s.println(vars.Display(info))
	return nil
}

func (s *Shell) apSetInfo(ctx context.Context, args ...string) error {
	desc, ok, err := s.target(arg(args, 0), varActiveAP)
	if err != nil {
		return err
	}
	if !ok {
		s.println(i18n.T("ap.no_ap_arg"))
		return nil
	}
	return s.reportAPI(s.client.SetAPInfo(ctx, desc), "ap.success", "ap.set_info_failed")
}

func (s *Shell) apGetStatus(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveAP)
	if !ok {
		s.println(i18n.T("ap.set_active_first"))
		return nil
	}
	if err != nil {
		return err
	}
	st, err := s.client.GetAPStatus(ctx, guid)
	if noReport(err) {
		s.println(i18n.T("ap.status_failed"))
		return nil
	}
	if err != nil {
		return err
	}
	s.println(vars.Display(st))
	return nil
}

func (s *Shell) apGetUpdate(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveAP)
	if !ok {
		s.println(i18n.T("ap.no_ap"))
		return nil
	}
	if err != nil {
		return err
	}
	u, err := s.client.GetAPUpdate(ctx, guid)
	if noReport(err) {
		s.println(i18n.T("ap.no_updates"))
		return nil
	}
	if err != nil {
		return err
	}
	s.println(vars.Display(u))
	return nil
}

// apReset only goes ahead when called as "apReset confirm".
func (s *Shell) apReset(ctx context.Context, args ...string) error {
	guid, ok, err := s.guidOf(varActiveAP)
	if !ok {
		s.println(i18n.T("ap.no_ap"))
		return nil
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(arg(args, 0)) != "confirm" {
		s.println(i18n.T("ap.reset_confirm"))
		return nil
	}
	return s.reportAPI(s.client.ResetAP(ctx, guid), "ap.reset_pending", "ap.reset_failed")
}

// --- Chutes ---

func (s *Shell) chuteList(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveAP)
	if !ok {
		s.println(i18n.T("ap.no_ap"))
		return nil
	}
	if err != nil {
		return err
	}
	chutes, err := s.client.ListChutes(ctx, guid)
	if err != nil {
		return err
	}
	if err := s.listInto(varChutes, chutes); err != nil {
		return err
	}
	s.println(i18n.T("chute.list_set"))
	for i, c := range chutes {
		s.printf("[%2d] : %s\n", i, c)
	}
	return nil
}

// chuteCreate stores the new chute as activeChute, or as newChute when an
// active chute is already set.
func (s *Shell) chuteCreate(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveAP)
	if !ok {
		s.println(i18n.T("ap.no_ap"))
		return nil
	}
	if err != nil {
		return err
	}
	ch, err := s.client.CreateChute(ctx, guid)
	if err != nil {
		return err
	}
	if s.vars.Has(varActiveChute) {
		s.println(i18n.T("chute.new_as_new"))
		return s.vars.Set(varNewChute, ch)
	}
	s.println(i18n.T("chute.new_as_active"))
	return s.vars.Set(varActiveChute, ch)
}

func (s *Shell) chuteDelete(ctx context.Context, args ...string) error {
	desc, ok, err := s.target(arg(args, 0), varActiveChute)
	if err != nil {
		return err
	}
	if !ok {
		s.println(i18n.T("chute.no_chute_arg"))
		return nil
	}
	guid, err := client.GUID(desc)
	if err != nil {
		return err
	}
	if err := s.client.DeleteChute(ctx, guid); err != nil {
		return s.reportAPI(err, "", "chute.delete_failed")
	}
	if err := s.forgetChute(guid); err != nil {
		logging.Warnf("could not update %s: %v", varChutes, err)
	}
	s.println(i18n.T("chute.delete_pending"))
	return nil
}

// forgetChute drops the chute with guid from the chutes list, if present.
func (s *Shell) forgetChute(guid string) error {
	list, ok := s.vars.Get(varChutes)
	if !ok || !gjson.ParseBytes(list).IsArray() {
		return nil
	}
	kept := []json.RawMessage{}
	gjson.ParseBytes(list).ForEach(func(_, c gjson.Result) bool {
		if g, err := client.GUID(json.RawMessage(c.Raw)); err != nil || g != guid {
			kept = append(kept, json.RawMessage(c.Raw))
		}
		return true
	})
	return s.vars.SetValue(varChutes, kept)
}

// chuteGetInfo prints the info of the given chute. Without an argument the
// info is merged into activeChute, keeping its internal id.
func (s *Shell) chuteGetInfo(ctx context.Context, args ...string) error {
	explicit := strings.TrimSpace(arg(args, 0)) != ""
	desc, ok, err := s.target(arg(args, 0), varActiveChute)
	if err != nil {
		return err
	}
	if !ok {
		s.println(i18n.T("chute.no_chute_arg"))
		return nil
	}
	guid, err := client.GUID(desc)
	if err != nil {
		return err
	}
	info, err := s.client.GetChuteInfo(ctx, guid)
	if err != nil {
		return err
	}
	if explicit {
		s.println(vars.Display(info))
		return nil
	}
	merged, err := vars.Merge(desc, info, "internalid")
	if err != nil {
		return err
	}
	if err := s.vars.Set(varActiveChute, merged); err != nil {
		return err
	}
	s.println(vars.Display(merged))
	return nil
}

func (s *Shell) chuteGetData(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute_arg"))
		return nil
	}
	if err != nil {
		return err
	}
	data, err := s.client.GetChuteData(ctx, guid)
	if err != nil {
		return err
	}
	s.println(i18n.T("chute.data_set_to", varActiveChute))
	if err := s.vars.Set(varActiveChute, data); err != nil {
		return err
	}
	s.println(vars.Display(data))
	return nil
}

func (s *Shell) chuteSetData(ctx context.Context, _ ...string) error {
	ch, ok := s.vars.Get(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute_arg"))
		return nil
	}
	return s.reportAPI(s.client.SetChuteData(ctx, ch), "chute.set_data_pending", "chute.set_data_failed")
}

func (s *Shell) chuteSetInfo(ctx context.Context, _ ...string) error {
	ch, ok := s.vars.Get(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute_arg"))
		return nil
	}
	return s.reportAPI(s.client.SetChuteInfo(ctx, ch), "chute.set_info_ok", "chute.set_info_failed")
}

// chuteAction builds the handler of a chute state change. name selects the
// chute.<name>_pending and chute.<name>_failed messages.
func (s *Shell) chuteAction(do func(context.Context, string) error, name string) registry.Handler {
	return func(ctx context.Context, args ...string) error {
		desc, ok, err := s.target(arg(args, 0), varActiveChute)
		if err != nil {
			return err
		}
		if !ok {
			s.println(i18n.T("chute.no_chute_arg"))
			return nil
		}
		guid, err := client.GUID(desc)
		if err != nil {
			return err
		}
		return s.reportAPI(do(ctx, guid), "chute."+name+"_pending", "chute."+name+"_failed")
	}
}

func (s *Shell) chuteGetStatus(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute"))
		return nil
	}
	if err != nil {
		return err
	}
	st, err := s.client.GetChuteStatus(ctx, guid)
	if noReport(err) {
		s.println(i18n.T("chute.no_status"))
		return nil
	}
	if err != nil {
		return err
	}
	s.println(vars.Display(st))
	return nil
}

func (s *Shell) chuteGetUpdate(ctx context.Context, _ ...string) error {
	guid, ok, err := s.guidOf(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute"))
		return nil
	}
	if err != nil {
		return err
	}
	u, err := s.client.GetChuteUpdate(ctx, guid)
	if noReport(err) {
		s.println(i18n.T("chute.no_updates"))
		return nil
	}
	if err != nil {
		return err
	}
	s.println(vars.Display(u))
	return nil
}

// --- Chute files ---

// fileCommand runs a file operation against the active chute. Any failure
// is reported with the fail message; the cause goes to the log.
func (s *Shell) fileCommand(fail func(guid string) string, do func(guid string) (json.RawMessage, error), show func(json.RawMessage)) error {
	guid, ok, err := s.guidOf(varActiveChute)
	if !ok {
		s.println(i18n.T("chute.no_chute"))
		return nil
	}
	if err != nil {
		return err
	}
	res, err := do(guid)
	if err != nil {
		logging.Warnf("%v", err)
		s.println(fail(guid))
		return nil
	}
	show(res)
	return nil
}

func fixed(id string) func(string) string {
	return func(string) string { return i18n.T(id) }
}

func (s *Shell) sendFile(ctx context.Context, args ...string) error {
	path := strings.TrimSpace(arg(args, 0))
	return s.fileCommand(fixed("file.send_failed"),
		func(guid string) (json.RawMessage, error) { return s.client.PutChuteFile(ctx, guid, path) },
		func(res json.RawMessage) { s.println(i18n.T("file.send_status", path, vars.Display(res))) })
}

func (s *Shell) delFile(ctx context.Context, args ...string) error {
	name := strings.TrimSpace(arg(args, 0))
	return s.fileCommand(fixed("file.delete_failed"),
		func(guid string) (json.RawMessage, error) { return s.client.DeleteChuteFile(ctx, guid, name) },
		func(res json.RawMessage) { s.println(i18n.T("file.delete_status", name, vars.Display(res))) })
}

func (s *Shell) statFile(ctx context.Context, args ...string) error {
	name := strings.TrimSpace(arg(args, 0))
	return s.fileCommand(fixed("file.stat_failed"),
		func(guid string) (json.RawMessage, error) { return s.client.StatChuteFile(ctx, guid, name) },
		func(res json.RawMessage) { s.println(i18n.T("file.stat", name, vars.Display(res))) })
}

func (s *Shell) listFile(ctx context.Context, _ ...string) error {
	return s.fileCommand(func(guid string) string { return i18n.T("file.list_failed", guid) },
		func(guid string) (json.RawMessage, error) { return s.client.ListChuteFiles(ctx, guid) },
		func(res json.RawMessage) { s.println(i18n.T("file.list", vars.Display(res))) })
}
