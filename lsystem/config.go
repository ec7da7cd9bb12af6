// Package lsystem expands stochastic L-system grammars and interprets the
// resulting symbol strings with a 3D turtle.
package lsystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"meadow/core"

	"gopkg.in/yaml.v3"
)

// MaxIterations bounds rewriting depth; string length grows geometrically.
const MaxIterations = 16

var (
	ErrEmptyAxiom       = errors.New("axiom is empty")
	ErrIterations       = errors.New("iterations out of range")
	ErrStep             = errors.New("step must be positive")
	ErrRuleKey          = errors.New("rule key must be a single symbol")
	ErrNoAlternatives   = errors.New("rule has no alternatives")
	ErrWeight           = errors.New("weight must be positive")
	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrUnbalancedBranch = errors.New("unbalanced branch brackets")
	ErrUnknownAction    = errors.New("unknown action kind")
	ErrUnknownKey       = errors.New("unknown config key")
)

// Production is one weighted alternative of a rewrite rule.
type Production struct {
	Weight float32 `json:"weight"`
	Out    string  `json:"out"`
}

// Config is a loaded grammar. It is read-only once validated and safe to
// share between concurrent generations.
type Config struct {
	Axiom      string
	Iterations int
	// Angle is the default turn angle in degrees.
	Angle float32
	Step  float32
	Width float32
	Color core.Color

	Rules   map[rune][]Production
	Actions map[rune]Action
}

// NewConfig returns a config with the default action table and no rules.
func NewConfig(axiom string, iterations int) *Config {
	return &Config{
		Axiom:      axiom,
		Iterations: iterations,
		Angle:      25,
		Step:       1,
		Width:      1,
		Color:      core.ColorBark,
		Rules:      make(map[rune][]Production),
		Actions:    DefaultActions(),
	}
}

// AddRule appends alternatives for sym.
func (c *Config) AddRule(sym rune, alts ...Production) {
	c.Rules[sym] = append(c.Rules[sym], alts...)
}

type configJSON struct {
	Axiom      *string                    `json:"axiom"`
	Iterations *int                       `json:"iterations"`
	Angle      *float32                   `json:"angle"`
	Step       *float32                   `json:"step"`
	Width      *float32                   `json:"width"`
	Color      *core.Color                `json:"color"`
	Rules      map[string][]Production    `json:"rules"`
	Actions    map[string]json.RawMessage `json:"actions"`
}

var knownKeys = map[string]bool{
	"axiom": true, "iterations": true, "angle": true, "step": true,
	"width": true, "color": true, "rules": true, "actions": true,
}

// ParseJSON decodes and validates a grammar. Besides the "rules" object,
// single-symbol top-level keys holding a production list are read as rules.
func ParseJSON(data []byte) (*Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	var doc configJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	cfg := NewConfig("", 0)
	if doc.Axiom != nil {
		cfg.Axiom = *doc.Axiom
	}
	if doc.Iterations != nil {
		cfg.Iterations = *doc.Iterations
	}
	if doc.Angle != nil {
		cfg.Angle = *doc.Angle
	}
	if doc.Step != nil {
		cfg.Step = *doc.Step
	}
	if doc.Width != nil {
		cfg.Width = *doc.Width
	}
	if doc.Color != nil {
		cfg.Color = *doc.Color
	}

	for key, alts := range doc.Rules {
		sym, err := symbolKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse grammar: rules: %w", err)
		}
		cfg.AddRule(sym, alts...)
	}
	for key, msg := range raw {
		if knownKeys[key] {
			continue
		}
		sym, err := symbolKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse grammar: %w: %q", ErrUnknownKey, key)
		}
		var alts []Production
		if err := json.Unmarshal(msg, &alts); err != nil {
			return nil, fmt.Errorf("parse grammar: rule %q: %w", key, err)
		}
		cfg.AddRule(sym, alts...)
	}
	for key, msg := range doc.Actions {
		sym, err := symbolKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse grammar: actions: %w", err)
		}
		var a Action
		if err := json.Unmarshal(msg, &a); err != nil {
			return nil, fmt.Errorf("parse grammar: action %q: %w", key, err)
		}
		cfg.Actions[sym] = a
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate grammar: %w", err)
	}
	return cfg, nil
}

// ParseYAML accepts the same document shape as ParseJSON.
func ParseYAML(data []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return ParseJSON(js)
}

// Load reads a grammar file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

func symbolKey(key string) (rune, error) {
	if utf8.RuneCountInString(key) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrRuleKey, key)
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func (c *Config) normalize() {
	c.Axiom = stripSpace(c.Axiom)
	for sym, alts := range c.Rules {
		for i := range alts {
			alts[i].Out = stripSpace(alts[i].Out)
		}
		c.Rules[sym] = alts
	}
}

// Validate rejects grammars that cannot be interpreted faithfully: unknown
// symbols, non-positive weights and unbalanced branches in the axiom or any
// production.
func (c *Config) Validate() error {
	if c.Axiom == "" {
		return ErrEmptyAxiom
	}
	if c.Iterations < 0 || c.Iterations > MaxIterations {
		return fmt.Errorf("%w: %d", ErrIterations, c.Iterations)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: %v", ErrStep, c.Step)
	}
	for sym, a := range c.Actions {
		if a.Kind < ActionNone || a.Kind > ActionLeaf {
			return fmt.Errorf("action %q: %w", sym, ErrUnknownAction)
		}
	}
	if err := c.checkSymbols("axiom", c.Axiom); err != nil {
		return err
	}

	syms := make([]rune, 0, len(c.Rules))
	for sym := range c.Rules {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	for _, sym := range syms {
		alts := c.Rules[sym]
		if len(alts) == 0 {
			return fmt.Errorf("rule %q: %w", sym, ErrNoAlternatives)
		}
		for i, p := range alts {
			if p.Weight <= 0 {
				return fmt.Errorf("rule %q alternative %d: %w", sym, i, ErrWeight)
			}
			if err := c.checkSymbols(fmt.Sprintf("rule %q alternative %d", sym, i), p.Out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) checkSymbols(where, s string) error {
	depth := 0
	for _, r := range s {
		_, isRule := c.Rules[r]
		a, isAction := c.Actions[r]
		if !isRule && !isAction {
			return fmt.Errorf("%s: %w %q", where, ErrUnknownSymbol, r)
		}
		if !isAction {
			continue
		}
		switch a.Kind {
		case ActionPush:
			depth++
		case ActionPop:
			depth--
			if depth < 0 {
				return fmt.Errorf("%s: %w", where, ErrUnbalancedBranch)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%s: %w", where, ErrUnbalancedBranch)
	}
	return nil
}
