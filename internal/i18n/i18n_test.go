// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.
package i18n

import (
	"slices"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}

	av := AvailableLocales()
	for _, k := range []string{"en", "de"} {
		if !slices.Contains(av, k) {
			t.Fatalf("expected available locale %q in %v", k, av)
		}
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("editor.interrupt"); got != "Use ^D to exit" {
		t.Fatalf("expected interrupt notice, got %q", got)
	}
	if got := T("vars.not_defined", "foo"); got != "foo not defined" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	SetLang("de")
	defer Init("en")
	if GetLang() != "de" {
		t.Fatalf("expected lang 'de', got %q", GetLang())
	}
	if got := T("editor.interrupt"); got != "Zum Beenden ^D verwenden" {
		t.Fatalf("expected German notice, got %q", got)
	}
}

func TestT_UnknownIDReturnsID(t *testing.T) {
	Init("en")
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected id back, got %q", got)
	}
}

func TestInit_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	Init("xx")
	defer Init("en")
	if got := T("registry.auth_required"); got != "Must be logged in to use this function" {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestLocales_SameKeys(t *testing.T) {
	load := func(name string) map[string]string {
		t.Helper()
		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return m
	}
	en, de := load("active.en.yaml"), load("active.de.yaml")
	for k := range en {
		if _, ok := de[k]; !ok {
			t.Fatalf("active.de.yaml misses %s", k)
		}
	}
	for k := range de {
		if _, ok := en[k]; !ok {
			t.Fatalf("active.en.yaml misses %s", k)
		}
	}
}
