// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides the user-facing message catalogue for pdcli.
// It uses the go-i18n library to load the embedded YAML locale files; every
// fixed string the shell prints is looked up here by message id.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files from the 'locales' directory.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
)

// Init parses all embedded locale files and selects lang as the active
// language. Unknown languages fall back to English.
func Init(l string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = bundle.ParseMessageFileBytes(data, f.Name())
	}

	lang = l
	localizer = i18n.NewLocalizer(bundle, l, language.English.String())
}

// SetLang changes the active language of the localizer.
func SetLang(l string) {
	Init(l)
}

// GetLang returns the language passed to the last Init call.
func GetLang() string {
	return lang
}

// AvailableLocales lists the language tags that ship with the binary.
func AvailableLocales() []string {
	var tags []string
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(f.Name(), "active."), ".yaml")
		tags = append(tags, name)
	}
	return tags
}

// T translates messageID. When args are given the translation is used as a
// fmt format string. A missing id is returned unchanged.
func T(messageID string, args ...any) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
