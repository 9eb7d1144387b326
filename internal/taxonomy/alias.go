// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliases []byte

// Alias is one entry of the legacy alias table. A single name maps a URL
// term onto one historical label; several names merge content across
// labels that were later split.
type Alias struct {
	Key   string   `json:"key"`
	Names []string `json:"names"`
}

// IsGroup reports whether the alias merges more than one legacy label.
func (a Alias) IsGroup() bool {
	return len(a.Names) > 1
}

// AliasTable is the immutable legacy alias table, loaded once at startup.
type AliasTable struct {
	entries map[string][]string
}

// aliasNames accepts either a scalar name or a sequence of names.
type aliasNames []string

func (n *aliasNames) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*n = aliasNames{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	}
	return fmt.Errorf("line %d: alias must be a name or a list of names", value.Line)
}

type aliasFile struct {
	Aliases map[string]aliasNames `yaml:"aliases"`
}

// LoadAliases parses a YAML alias table. Keys are case-folded; empty keys
// or entries without names are rejected.
func LoadAliases(data []byte) (*AliasTable, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse alias table: %w", err)
	}

	fold := cases.Fold()
	entries := make(map[string][]string, len(file.Aliases))
	for rawKey, rawNames := range file.Aliases {
		key := fold.String(strings.TrimSpace(rawKey))
		if key == "" {
			return nil, fmt.Errorf("alias table: empty key")
		}
		var names []string
		for _, n := range rawNames {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("alias table: %q has no names", rawKey)
		}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("alias table: %q defined twice", rawKey)
		}
		entries[key] = names
	}
	return &AliasTable{entries: entries}, nil
}

// DefaultAliasTable returns the table compiled into the binary.
func DefaultAliasTable() (*AliasTable, error) {
	return LoadAliases(defaultAliases)
}

// LoadAliasFile reads an alias table from disk. An empty path selects the
// compiled-in table.
func LoadAliasFile(path string) (*AliasTable, error) {
	if path == "" {
		return DefaultAliasTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table: %w", err)
	}
	return LoadAliases(data)
}

// Lookup returns the alias for a case-folded key.
func (t *AliasTable) Lookup(key string) (Alias, bool) {
	if t == nil {
		return Alias{}, false
	}
	names, ok := t.entries[key]
	if !ok {
		return Alias{}, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return Alias{Key: key, Names: out}, true
}

// Keys returns all alias keys in sorted order.
func (t *AliasTable) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// KeysContaining returns, in sorted order, the keys whose names include
// the given legacy label (compared case-insensitively).
func (t *AliasTable) KeysContaining(name string) []string {
	var keys []string
	for _, k := range t.Keys() {
		for _, n := range t.entries[k] {
			if strings.EqualFold(n, name) {
				keys = append(keys, k)
				break
			}
		}
	}
	return keys
}
