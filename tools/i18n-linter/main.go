// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter is a tool to check for missing or orphaned translation keys.
// It scans the Go source code for i18n.T() calls and compares them against
// the YAML locale files to ensure consistency. Keys built at runtime from a
// literal prefix, such as "help." + name, mark every key under that prefix
// as used.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location stores the file and line number of a found string.
type Location struct {
	Filepath string
	Line     int
}

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.en.yaml"
	projectRoot   = "."
)

func main() {
	os.Exit(run(os.Stdout, projectRoot, localesDir))
}

// run lints the sources under root against the locale files in locales and
// returns the process exit code.
func run(w io.Writer, root, locales string) int {
	fmt.Fprintln(w, "🔍 Running i18n linter...")

	// 1. Find all keys used in the Go source code.
	used, err := findUsedKeys(root)
	if err != nil {
		fmt.Fprintf(w, "❌ Error finding used keys: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "✅ Found %d unique translation keys and %d key prefixes used in source code.\n", len(used.keys), len(used.prefixes))

	// 2. Load all locale files.
	localeFiles, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		fmt.Fprintf(w, "❌ Error finding locale files: %v\n", err)
		return 1
	}

	// 3. Load the primary locale as the source of truth.
	primaryKeys, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		fmt.Fprintf(w, "❌ Error loading primary locale '%s': %v\n", primaryLocale, err)
		return 1
	}
	fmt.Fprintf(w, "✅ Loaded %d keys from primary locale (%s).\n\n", len(primaryKeys), primaryLocale)

	// 4. Find potentially untranslated strings in the Go source code.
	untranslatedStrings, err := findUntranslatedStrings(root, used.keys, primaryKeys)
	if err != nil {
		fmt.Fprintf(w, "❌ Error finding untranslated strings: %v\n", err)
		return 1
	}

	hasMissingKeys := false

	// 5. Keys used in code but absent from the primary locale.
	fmt.Fprintln(w, "--- Checking for Undefined Keys (used in code but not in primary locale) ---")
	undefined := missingFrom(used.called, primaryKeys)
	for _, key := range undefined {
		fmt.Fprintf(w, "  - Undefined: %s\n", key)
		hasMissingKeys = true
	}
	if len(undefined) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	fmt.Fprintln(w)

	// 6. Check for orphaned keys in the primary locale.
	fmt.Fprintln(w, "--- Checking for Orphaned Keys (in primary locale but not used in code) ---")
	orphanedKeys := used.orphans(primaryKeys)
	for _, key := range orphanedKeys {
		fmt.Fprintf(w, "  - Orphaned: %s\n", key)
	}
	if len(orphanedKeys) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	fmt.Fprintln(w)

	// 7. Check other locales for missing keys.
	fmt.Fprintln(w, "--- Checking for Missing Keys (in primary locale but not in others) ---")
	for _, file := range localeFiles {
		if filepath.Base(file) == primaryLocale {
			continue
		}

		fmt.Fprintf(w, "Checking %s:\n", file)
		secondaryKeys, err := loadKeysFromLocale(file)
		if err != nil {
			fmt.Fprintf(w, "  - ❌ Error loading %s: %v\n", file, err)
			hasMissingKeys = true
			continue
		}

		missingKeys := missingFrom(primaryKeys, secondaryKeys)
		for _, key := range missingKeys {
			fmt.Fprintf(w, "  - Missing: %s\n", key)
			hasMissingKeys = true
		}
		if len(missingKeys) == 0 {
			fmt.Fprintln(w, "  ✨ All keys present.")
		}
	}

	// 8. Report potentially untranslated strings
	fmt.Fprintln(w, "\n--- Checking for Potentially Untranslated Strings ---")
	if len(untranslatedStrings) > 0 {
		var sortedLiterals []string
		for literal := range untranslatedStrings {
			sortedLiterals = append(sortedLiterals, literal)
		}
		sort.Strings(sortedLiterals)

		for _, literal := range sortedLiterals {
			paths := untranslatedStrings[literal]
			fmt.Fprintf(w, "  - Potential: \"%s\" (found in %s:%d)\n", literal, paths[0].Filepath, paths[0].Line)
		}
		// Reported as a warning only.
	} else {
		fmt.Fprintln(w, "  ✨ None found.")
	}

	fmt.Fprintln(w, "\n--- Linter Finished ---")
	switch {
	case hasMissingKeys:
		fmt.Fprintln(w, "❌ Found issues that need to be addressed.")
		return 1
	case len(orphanedKeys) > 0:
		fmt.Fprintln(w, "⚠️  Found orphaned keys. Please consider removing them.")
	default:
		fmt.Fprintln(w, "✅ All translation files are consistent!")
	}
	return 0
}

// usedKeys holds the message ids referenced from source code.
type usedKeys struct {
	keys     map[string]struct{} // every literal that looks like a key
	called   map[string]struct{} // literals passed to i18n.T directly
	prefixes map[string]struct{}
}

// covers reports whether key is referenced literally or through a prefix.
func (u usedKeys) covers(key string) bool {
	if _, ok := u.keys[key]; ok {
		return true
	}
	for p := range u.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// orphans lists the keys of locale that no source file refers to.
func (u usedKeys) orphans(locale map[string]struct{}) []string {
	var out []string
	for key := range locale {
		if !u.covers(key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// missingFrom lists the keys of want that are absent from have.
func missingFrom(want, have map[string]struct{}) []string {
	var out []string
	for key := range want {
		if _, ok := have[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// skipDir reports whether a directory is left out of the source scan.
func skipDir(root, path string, info os.FileInfo) bool {
	if !info.IsDir() || path == root {
		return false
	}
	name := info.Name()
	return name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// findUsedKeys scans all .go files for i18n.T("key") calls and for key
// prefixes such as "help." + name that build the key at runtime.
func findUsedKeys(root string) (usedKeys, error) {
	used := usedKeys{keys: make(map[string]struct{}), called: make(map[string]struct{}), prefixes: make(map[string]struct{})}
	// Regex to find:
	// 1. i18n.T("some.key")
	// 2. string literals that look like translation keys (e.g. passed to a helper)
	re := regexp.MustCompile(`i18n\.T\("([^"]+)"\s*[,)]|"([a-z]+\.[a-zA-Z\._]+)"`)
	prefixRe := regexp.MustCompile(`"([a-z]+(?:\.[a-zA-Z_]+)*\.)"\s*\+`)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skipDir(root, path, info) {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			for _, match := range re.FindAllStringSubmatch(string(content), -1) {
				// match[1] is from i18n.T(), match[2] is from the general string literal
				if match[1] != "" {
					used.keys[match[1]] = struct{}{}
					used.called[match[1]] = struct{}{}
				} else if match[2] != "" {
					used.keys[match[2]] = struct{}{}
				}
			}
			for _, match := range prefixRe.FindAllStringSubmatch(string(content), -1) {
				used.prefixes[match[1]] = struct{}{}
			}
		}
		return nil
	})

	return used, err
}

// findUntranslatedStrings scans for hardcoded strings that might need translation.
func findUntranslatedStrings(root string, used, allKeys map[string]struct{}) (map[string][]Location, error) {
	untranslated := make(map[string][]Location)
	// Regex to find string literals inside functions that are likely to produce user-facing output.
	re := regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	// Blacklist of function names to ignore.
	blacklist := map[string]struct{}{"Print": {}, "Println": {}, "Printf": {}, "Fatal": {}, "Fatalf": {}, "WriteString": {}}
	keyRe := regexp.MustCompile(`^[a-z_]+\.[a-zA-Z\._]+$`)

	// Precompile regexes used in the loop to avoid repeated compilation.
	reAllCaps := regexp.MustCompile(`^[A-Z_]+$`)
	reFormatString := regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skipDir(root, path, info) {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			// Split content into lines to check for log calls
			lines := strings.Split(string(content), "\n")
			for i, line := range lines {
				matches := re.FindAllStringSubmatch(line, -1)
				for _, match := range matches {
					if len(match) < 4 {
						continue
					}
					funcName := match[2]
					literal := match[3]

					if _, isBlacklisted := blacklist[funcName]; isBlacklisted {
						continue
					}

					// Heuristics to filter out false positives:
					// 1. Ignore if it's a known translation key.
					if _, exists := allKeys[literal]; exists {
						continue
					}
					// 2. Ignore if it looks like a translation key.
					if keyRe.MatchString(literal) {
						continue
					}
					// 3. Ignore short or non-text-like strings.
					if len(literal) < 4 {
						continue
					}
					// 4. Ignore if it's just a format specifier or other code artifact.
					if strings.HasPrefix(literal, "file:") || strings.HasPrefix(literal, "http") {
						continue
					}

					// 5. Ignore shell command patterns and escape sequences.
					if strings.ContainsAny(literal, "$\\") {
						continue
					}

					// 6. Ignore if it's a Go time layout string.
					if strings.HasPrefix(literal, "2006-") {
						continue
					}

					// 7. Ignore if it's an all-caps constant (e.g., PDPATH).
					if reAllCaps.MatchString(literal) {
						continue
					}

					// 8. Ignore if it's likely just a format string with no real text.
					if reFormatString.MatchString(literal) && !strings.Contains(literal, " ") {
						continue
					}

					untranslated[literal] = append(untranslated[literal], Location{Filepath: path, Line: i + 1})
				}
			}
		}
		return nil
	})

	return untranslated, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML is a recursive function to convert a nested map into a flat
// map with dot-separated keys.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	case []interface{}:
		// We don't expect arrays of keys in our structure, but handle it just in case.
		for i, val := range v {
			newPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			flattenYAML(newPrefix, val, keys)
		}
	default:
		// This is a leaf node, add the key.
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
