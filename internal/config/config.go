package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tilewm/tilewm/internal/layout"
)

// Click targets a button binding may be attached to.
const (
	ClickClientWin = "client"
	ClickRootWin   = "root"
)

// Classification strategies.
const (
	ClassifyCumulative = "cumulative"
	ClassifyFirst      = "first"
)

// Config is the top-level configuration document.
type Config struct {
	BorderPx  int  `yaml:"borderpx"`
	GapPx     int  `yaml:"gappx"`
	Snap      int  `yaml:"snap"`
	BarHeight int  `yaml:"barHeight"`
	ShowBar   bool `yaml:"showbar"`
	TopBar    bool `yaml:"topbar"`

	MFact          float64 `yaml:"mfact"`
	NMaster        int     `yaml:"nmaster"`
	RMaster        bool    `yaml:"rmaster"`
	ResizeHints    bool    `yaml:"resizeHints"`
	LockFullscreen bool    `yaml:"lockFullscreen"`
	ViewOnTag      bool    `yaml:"viewOnTag"`

	AttachDirection     string `yaml:"attachDirection"`
	Classify            string `yaml:"classify"`
	PrimaryOnlyFloating bool   `yaml:"primaryOnlyFloating"`

	Lockfile string `yaml:"lockfile"`
	ModKey   string `yaml:"modkey"`

	NormBorder string `yaml:"normBorder"`
	SelBorder  string `yaml:"selBorder"`

	Tags    []string        `yaml:"tags"`
	Panels  []string        `yaml:"panels"`
	Layouts []LayoutConfig  `yaml:"layouts"`
	Rules   []RuleConfig    `yaml:"rules"`
	Keys    KeyBindings     `yaml:"keys"`
	Buttons []ButtonBinding `yaml:"buttons"`
}

// LayoutConfig names one entry of the layout cycle.
type LayoutConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// RuleConfig is a classification rule as written in the document.
type RuleConfig struct {
	Name      string    `yaml:"name"`
	Class     string    `yaml:"class"`
	Instance  string    `yaml:"instance"`
	Title     string    `yaml:"title"`
	Tags      TagSpec   `yaml:"tags"`
	Floating  bool      `yaml:"floating"`
	ForceTile bool      `yaml:"forceTile"`
	Monitor   int       `yaml:"monitor"`
	Factor    []float64 `yaml:"factor"`
	BorderPx  int       `yaml:"borderpx"`
	Position  string    `yaml:"position"`
	Warp      bool      `yaml:"warpPointer"`
}

// UnmarshalYAML fills the "unset" sentinels and accepts the legacy
// isfloating/ispreventtile spellings.
func (r *RuleConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawRule struct {
		Name           string    `yaml:"name"`
		Class          string    `yaml:"class"`
		Instance       string    `yaml:"instance"`
		Title          string    `yaml:"title"`
		Tags           TagSpec   `yaml:"tags"`
		Floating       *bool     `yaml:"floating"`
		LegacyFloating *bool     `yaml:"isfloating"`
		ForceTile      *bool     `yaml:"forceTile"`
		LegacyPrevent  *bool     `yaml:"ispreventtile"`
		Monitor        *int      `yaml:"monitor"`
		Factor         []float64 `yaml:"factor"`
		BorderPx       *int      `yaml:"borderpx"`
		Position       string    `yaml:"position"`
		Warp           *bool     `yaml:"warpPointer"`
	}
	var raw rawRule
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*r = RuleConfig{
		Name:     raw.Name,
		Class:    raw.Class,
		Instance: raw.Instance,
		Title:    raw.Title,
		Tags:     raw.Tags,
		Factor:   raw.Factor,
		Position: raw.Position,
		Monitor:  -1,
		BorderPx: -1,
		Warp:     true,
	}
	switch {
	case raw.Floating != nil:
		r.Floating = *raw.Floating
	case raw.LegacyFloating != nil:
		r.Floating = *raw.LegacyFloating
	}
	switch {
	case raw.ForceTile != nil:
		r.ForceTile = *raw.ForceTile
	case raw.LegacyPrevent != nil:
		r.ForceTile = *raw.LegacyPrevent
	}
	if raw.Monitor != nil {
		r.Monitor = *raw.Monitor
	}
	if raw.BorderPx != nil {
		r.BorderPx = *raw.BorderPx
	}
	if raw.Warp != nil {
		r.Warp = *raw.Warp
	}
	return nil
}

// Label returns the rule name, or a description derived from its patterns.
func (r RuleConfig) Label(index int) string {
	if r.Name != "" {
		return r.Name
	}
	var parts []string
	if r.Class != "" {
		parts = append(parts, "class="+r.Class)
	}
	if r.Instance != "" {
		parts = append(parts, "instance="+r.Instance)
	}
	if r.Title != "" {
		parts = append(parts, "title="+r.Title)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("rule#%d", index)
	}
	return strings.Join(parts, ",")
}

// TagSpec lists 1-based tag numbers, or every tag when All is set.
type TagSpec struct {
	All     bool
	Numbers []int
}

// UnmarshalYAML accepts "all", a single tag number, or a list of numbers.
func (t *TagSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if strings.EqualFold(value.Value, "all") {
			*t = TagSpec{All: true}
			return nil
		}
		n, err := strconv.Atoi(value.Value)
		if err != nil {
			return fmt.Errorf("tags: expected \"all\" or a tag number, got %q", value.Value)
		}
		*t = TagSpec{Numbers: []int{n}}
		return nil
	case yaml.SequenceNode:
		var nums []int
		if err := value.Decode(&nums); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = TagSpec{Numbers: nums}
		return nil
	default:
		return fmt.Errorf("tags must be a scalar or a list")
	}
}

// Mask converts the spec to a bitmask over ntags tags. An empty spec yields 0.
func (t TagSpec) Mask(ntags int) uint32 {
	all := uint32(1)<<uint(ntags) - 1
	if t.All {
		return all
	}
	var mask uint32
	for _, n := range t.Numbers {
		if n >= 1 && n <= ntags {
			mask |= 1 << uint(n-1)
		}
	}
	return mask
}

// KeyBinding maps a key chord such as "mod-shift-Return" to an action.
type KeyBinding struct {
	Key     string   `yaml:"key"`
	Action  string   `yaml:"action"`
	Arg     string   `yaml:"arg"`
	Command []string `yaml:"command"`
}

// KeyBindings is the ordered key table.
type KeyBindings []KeyBinding

// UnmarshalYAML rejects chords bound twice.
func (k *KeyBindings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("keys must be a list")
	}
	result := make([]KeyBinding, 0, len(value.Content))
	seen := map[string]struct{}{}
	for _, node := range value.Content {
		var kb KeyBinding
		if err := node.Decode(&kb); err != nil {
			return fmt.Errorf("key binding at line %d: %w", node.Line, err)
		}
		chord := NormalizeChord(kb.Key)
		if _, exists := seen[chord]; exists {
			return fmt.Errorf("duplicate key binding %q", kb.Key)
		}
		seen[chord] = struct{}{}
		result = append(result, kb)
	}
	*k = result
	return nil
}

// NormalizeChord lowercases the modifiers of a chord. The keysym keeps its
// case, so "Mod-Shift-j" and "mod-shift-j" compare equal.
func NormalizeChord(chord string) string {
	parts := strings.Split(strings.TrimSpace(chord), "-")
	for i := 0; i < len(parts)-1; i++ {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "-")
}

// ButtonBinding maps a pointer button on a click target to an action.
type ButtonBinding struct {
	Click  string `yaml:"click"`
	Mods   string `yaml:"mods"`
	Button int    `yaml:"button"`
	Action string `yaml:"action"`
	Arg    string `yaml:"arg"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BorderPx:            2,
		GapPx:               8,
		Snap:                32,
		BarHeight:           32,
		ShowBar:             true,
		TopBar:              true,
		MFact:               0.5,
		NMaster:             1,
		RMaster:             true,
		ResizeHints:         true,
		ViewOnTag:           true,
		AttachDirection:     "bottom",
		Classify:            ClassifyCumulative,
		PrimaryOnlyFloating: true,
		Lockfile:            "/tmp/tilewm.lock",
		ModKey:              "mod1",
		NormBorder:          "#444444",
		SelBorder:           "#005577",
		Tags:                []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Panels:              []string{"xfce4-panel", "Xfce4-panel", "xfce4-notifyd", "Xfce4-notifyd"},
		Layouts:             defaultLayouts(),
		Keys:                defaultKeys(),
		Buttons:             defaultButtons(),
	}
}

func defaultLayouts() []LayoutConfig {
	return []LayoutConfig{
		{Name: "tile"},
		{Name: "monocle"},
		{Name: "grid"},
		{Name: "spiral"},
		{Name: "dwindle"},
	}
}

func defaultKeys() KeyBindings {
	keys := KeyBindings{
		{Key: "mod-shift-Return", Action: "spawn", Command: []string{"st"}},
		{Key: "mod-p", Action: "spawn", Command: []string{"rofi", "-show", "drun"}},
		{Key: "mod-b", Action: "togglebar"},
		{Key: "mod-shift-h", Action: "rotatestack", Arg: "+1"},
		{Key: "mod-shift-l", Action: "rotatestack", Arg: "-1"},
		{Key: "mod-j", Action: "focusstack", Arg: "+1"},
		{Key: "mod-k", Action: "focusstack", Arg: "-1"},
		{Key: "mod-shift-Prior", Action: "focusstackhid", Arg: "+1"},
		{Key: "mod-shift-Next", Action: "focusstackhid", Arg: "-1"},
		{Key: "mod-i", Action: "incnmaster", Arg: "+1"},
		{Key: "mod-d", Action: "incnmaster", Arg: "-1"},
		{Key: "mod-m", Action: "resetnmaster"},
		{Key: "mod-h", Action: "setmfact", Arg: "-0.05"},
		{Key: "mod-l", Action: "setmfact", Arg: "+0.05"},
		{Key: "mod-shift-j", Action: "movestack", Arg: "+1"},
		{Key: "mod-shift-k", Action: "movestack", Arg: "-1"},
		{Key: "mod-Return", Action: "zoom"},
		{Key: "mod-Tab", Action: "view"},
		{Key: "mod-shift-c", Action: "killclient"},
		{Key: "mod-space", Action: "cyclelayout", Arg: "+1"},
		{Key: "mod-shift-space", Action: "togglefloating"},
		{Key: "mod-z", Action: "togglebehide"},
		{Key: "mod-r", Action: "togglermaster"},
		{Key: "mod-s", Action: "show"},
		{Key: "mod-shift-s", Action: "showall"},
		{Key: "mod-o", Action: "hide"},
		{Key: "mod-shift-o", Action: "hideall"},
		{Key: "mod-0", Action: "view", Arg: "all"},
		{Key: "mod-shift-0", Action: "tag", Arg: "all"},
		{Key: "mod-comma", Action: "focusmon", Arg: "-1"},
		{Key: "mod-period", Action: "focusmon", Arg: "+1"},
		{Key: "mod-shift-comma", Action: "tagmon", Arg: "-1"},
		{Key: "mod-shift-period", Action: "tagmon", Arg: "+1"},
		{Key: "mod-minus", Action: "setgaps", Arg: "-1"},
		{Key: "mod-equal", Action: "setgaps", Arg: "+1"},
		{Key: "mod-shift-equal", Action: "setgaps", Arg: "0"},
		{Key: "mod-shift-Up", Action: "movethrow", Arg: "n"},
		{Key: "mod-shift-Down", Action: "movethrow", Arg: "s"},
		{Key: "mod-shift-Left", Action: "movethrow", Arg: "w"},
		{Key: "mod-shift-Right", Action: "movethrow", Arg: "e"},
		{Key: "mod-shift-m", Action: "movethrow", Arg: "center"},
		{Key: "mod-shift-q", Action: "quit"},
	}
	for i := 1; i <= 9; i++ {
		n := strconv.Itoa(i)
		keys = append(keys,
			KeyBinding{Key: "mod-" + n, Action: "view", Arg: n},
			KeyBinding{Key: "mod-control-" + n, Action: "toggleview", Arg: n},
			KeyBinding{Key: "mod-shift-" + n, Action: "tag", Arg: n},
			KeyBinding{Key: "mod-control-shift-" + n, Action: "toggletag", Arg: n},
		)
	}
	return keys
}

func defaultButtons() []ButtonBinding {
	return []ButtonBinding{
		{Click: ClickClientWin, Mods: "mod", Button: 1, Action: "movemouse"},
		{Click: ClickClientWin, Mods: "mod", Button: 2, Action: "togglefloating"},
		{Click: ClickClientWin, Mods: "mod", Button: 3, Action: "resizemouse"},
	}
}

// Parse decodes a configuration document on top of the defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func (c *Config) applyDefaults() {
	if c.BarHeight <= 0 {
		c.BarHeight = 32
	}
	if c.MFact == 0 {
		c.MFact = 0.5
	}
	if len(c.Tags) == 0 {
		c.Tags = Default().Tags
	}
	if len(c.Layouts) == 0 {
		c.Layouts = defaultLayouts()
	}
	c.AttachDirection = strings.ToLower(strings.TrimSpace(c.AttachDirection))
	if c.AttachDirection == "" {
		c.AttachDirection = "bottom"
	}
	c.Classify = strings.ToLower(strings.TrimSpace(c.Classify))
	if c.Classify == "" {
		c.Classify = ClassifyCumulative
	}
	if c.ModKey == "" {
		c.ModKey = "mod1"
	}
	if c.NormBorder == "" {
		c.NormBorder = "#444444"
	}
	if c.SelBorder == "" {
		c.SelBorder = "#005577"
	}
	for i := range c.Layouts {
		if c.Layouts[i].Symbol != "" {
			continue
		}
		if kind, err := layout.ParseKind(c.Layouts[i].Name); err == nil {
			c.Layouts[i].Symbol = kind.DefaultSymbol()
		}
	}
}

var attachDirections = map[string]struct{}{
	"prepend": {},
	"above":   {},
	"aside":   {},
	"below":   {},
	"bottom":  {},
	"top":     {},
}

// IsAttachDirection reports whether name is a known insertion policy.
func IsAttachDirection(name string) bool {
	_, ok := attachDirections[name]
	return ok
}

// Validate performs sanity checks.
func (c *Config) Validate() error {
	if c.BorderPx < 0 {
		return fmt.Errorf("borderpx cannot be negative")
	}
	if c.GapPx < 0 {
		return fmt.Errorf("gappx cannot be negative")
	}
	if c.Snap < 0 {
		return fmt.Errorf("snap cannot be negative")
	}
	if c.MFact < 0.05 || c.MFact > 0.95 {
		return fmt.Errorf("mfact must be within [0.05, 0.95], got %.2f", c.MFact)
	}
	if c.NMaster < 0 {
		return fmt.Errorf("nmaster cannot be negative")
	}
	if len(c.Tags) > 31 {
		return fmt.Errorf("at most 31 tags are supported, got %d", len(c.Tags))
	}
	if !IsAttachDirection(c.AttachDirection) {
		return fmt.Errorf("unknown attachDirection %q", c.AttachDirection)
	}
	if c.Classify != ClassifyCumulative && c.Classify != ClassifyFirst {
		return fmt.Errorf("classify must be %q or %q, got %q", ClassifyCumulative, ClassifyFirst, c.Classify)
	}
	for name, value := range map[string]string{"normBorder": c.NormBorder, "selBorder": c.SelBorder} {
		if _, err := ParseColor(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	layouts := map[string]struct{}{}
	for _, l := range c.Layouts {
		kind, err := layout.ParseKind(l.Name)
		if err != nil {
			return fmt.Errorf("layouts: %w", err)
		}
		if _, exists := layouts[kind.String()]; exists {
			return fmt.Errorf("duplicate layout %q", l.Name)
		}
		layouts[kind.String()] = struct{}{}
	}
	for i, r := range c.Rules {
		if err := r.validate(len(c.Tags)); err != nil {
			return fmt.Errorf("rule %q: %w", r.Label(i), err)
		}
	}
	for _, k := range c.Keys {
		if strings.TrimSpace(k.Key) == "" {
			return fmt.Errorf("key binding for %q has no key", k.Action)
		}
		if k.Action == "" {
			return fmt.Errorf("key %q has no action", k.Key)
		}
		if k.Action == "spawn" && len(k.Command) == 0 {
			return fmt.Errorf("key %q: spawn requires a command", k.Key)
		}
	}
	for _, b := range c.Buttons {
		if b.Click != ClickClientWin && b.Click != ClickRootWin {
			return fmt.Errorf("button %d: click must be %q or %q, got %q", b.Button, ClickClientWin, ClickRootWin, b.Click)
		}
		if b.Button < 1 || b.Button > 5 {
			return fmt.Errorf("button must be within 1..5, got %d", b.Button)
		}
		if b.Action == "" {
			return fmt.Errorf("button %d has no action", b.Button)
		}
	}
	return nil
}

func (r RuleConfig) validate(ntags int) error {
	if r.Class == "" && r.Instance == "" && r.Title == "" {
		return fmt.Errorf("must define class, instance, or title")
	}
	if len(r.Factor) != 0 && len(r.Factor) != 4 {
		return fmt.Errorf("factor needs four values [x, y, w, h], got %d", len(r.Factor))
	}
	for _, f := range r.Factor {
		if f < 0 || f > 1 {
			return fmt.Errorf("factor values must be within [0, 1], got %v", f)
		}
	}
	for _, n := range r.Tags.Numbers {
		if n < 1 || n > ntags {
			return fmt.Errorf("tag %d out of range 1..%d", n, ntags)
		}
	}
	if r.Title != "" {
		if _, err := regexp.Compile(r.Title); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if _, err := layout.ParsePosition(r.Position); err != nil {
		return err
	}
	return nil
}

// ParseColor converts a "#rrggbb" color into a 24-bit pixel value.
func ParseColor(value string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must have the form #rrggbb", value)
	}
	pixel, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", value, err)
	}
	return uint32(pixel), nil
}
