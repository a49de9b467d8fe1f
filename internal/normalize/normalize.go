// Package normalize canonicalizes free-text application and artifact names so
// the correlation engine recognizes the same program across sources that name
// it differently ("UserAssist: chrome.exe" vs "Chrome History").
package normalize

import (
	"strings"

	"retrace/internal/rules"
)

// Normalizer is a pure, deterministic name canonicalizer.
type Normalizer struct {
	aliases []rules.Alias
}

// New builds a Normalizer over the given alias table. Alias order is
// preserved: the first alias whose match is contained in the name wins.
func New(aliases []rules.Alias) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Normalize lowercases the raw name, strips executable and shortcut suffixes,
// and applies the alias table by substring containment.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	name := strings.ToLower(raw)
	name = strings.ReplaceAll(name, ".exe", "")
	name = strings.ReplaceAll(name, ".lnk", "")

	for _, alias := range n.aliases {
		if strings.Contains(name, alias.Match) {
			return alias.Canonical
		}
	}
	return name
}
