package config

import "strings"

var modifierOrder = []string{"shift", "lock", "control", "mod1", "mod2", "mod3", "mod4", "mod5"}

var modifierAliases = map[string]string{
	"ctrl":  "control",
	"alt":   "mod1",
	"super": "mod4",
	"win":   "mod4",
}

// CanonicalMods resolves a "-" separated modifier list to a fixed order,
// expanding "mod" to modKey. Unknown names are dropped.
func CanonicalMods(mods, modKey string) string {
	if strings.TrimSpace(mods) == "" {
		return ""
	}
	set := map[string]bool{}
	for _, part := range strings.Split(mods, "-") {
		set[canonicalModifier(part, modKey)] = true
	}
	out := make([]string, 0, len(set))
	for _, name := range modifierOrder {
		if set[name] {
			out = append(out, name)
		}
	}
	return strings.Join(out, "-")
}

// CanonicalChord normalizes "mod-shift-Return" style chords so that chords
// from the config and from the display compare equal.
func CanonicalChord(chord, modKey string) string {
	parts := strings.Split(strings.TrimSpace(chord), "-")
	keysym := parts[len(parts)-1]
	mods := CanonicalMods(strings.Join(parts[:len(parts)-1], "-"), modKey)
	if mods == "" {
		return keysym
	}
	return mods + "-" + keysym
}

// SplitChord returns the canonical modifiers and keysym of a chord.
func SplitChord(chord, modKey string) (mods, keysym string) {
	canon := CanonicalChord(chord, modKey)
	idx := strings.LastIndex(canon, "-")
	if idx < 0 {
		return "", canon
	}
	return canon[:idx], canon[idx+1:]
}

func canonicalModifier(name, modKey string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "mod" {
		lower = strings.ToLower(modKey)
	}
	if alias, ok := modifierAliases[lower]; ok {
		return alias
	}
	return lower
}
