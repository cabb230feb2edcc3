// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     loader
// Description: YAML manifest types for macro commands
// Author:      Mike Stoffels
// Created:     2025-03-11
// License:     MIT
// ============================================================================

package loader

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Manifest is one YAML file declaring macro commands:
//
//	commands:
//	  - name: twice
//	    description: Greets someone twice
//	    params:
//	      - name: who
//	        position: 1
//	      - flag: -loud
//	        type: bool
//	    steps:
//	      - greet {{quote .who}} -times 2{{if .loud}} -loud{{end}}
type Manifest struct {
	Commands []CommandSpec `yaml:"commands"`

	// Internal tracking (not persisted)
	SourceFile string    `yaml:"-"`
	LoadedAt   time.Time `yaml:"-"`
}

// CommandSpec declares one macro command. Each step is a command line
// template rendered with the bound parameters and dispatched in order.
type CommandSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Params      []ParamSpec `yaml:"params"`
	Steps       []string    `yaml:"steps"`
}

// ParamSpec declares a macro parameter. A position makes it positional,
// a flag makes it named. Name is the key the step templates use.
type ParamSpec struct {
	Name        string `yaml:"name"`
	Position    int    `yaml:"position"`
	Flag        string `yaml:"flag"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Mandatory   bool   `yaml:"mandatory"`
	Default     string `yaml:"default"`
}

// Supported parameter types
var paramTypes = map[string]bool{
	"string":   true,
	"int":      true,
	"long":     true,
	"double":   true,
	"bool":     true,
	"string[]": true,
	"int[]":    true,
}

// Defaults fills in missing optional fields
func (m *Manifest) Defaults() {
	for i := range m.Commands {
		m.Commands[i].Defaults()
	}
}

// Validate checks every command of the manifest
func (m *Manifest) Validate() error {
	for i := range m.Commands {
		if err := m.Commands[i].Validate(); err != nil {
			name := m.Commands[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return fmt.Errorf("command %s: %w", name, err)
		}
	}
	return nil
}

// Defaults fills in missing optional fields
func (c *CommandSpec) Defaults() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Description == "" {
		c.Description = "Macro of " + pluralSteps(len(c.Steps))
	}
	for i := range c.Params {
		p := &c.Params[i]
		p.Type = strings.ToLower(strings.TrimSpace(p.Type))
		if p.Type == "" {
			p.Type = "string"
		}
		if p.Flag != "" && !strings.HasPrefix(p.Flag, "-") {
			p.Flag = "-" + p.Flag
		}
		if p.Name == "" && p.Flag != "" {
			p.Name = strings.TrimLeft(p.Flag, "-")
		}
	}
}

// Validate checks the command declaration
func (c *CommandSpec) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if len(c.Steps) == 0 {
		return ErrMissingSteps
	}

	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if (p.Position > 0) == (p.Flag != "") {
			return fmt.Errorf("%w: %q", ErrParamKind, p.Name)
		}
		if p.Name == "" {
			return ErrParamName
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateParam, p.Name)
		}
		seen[p.Name] = true
		if !paramTypes[p.Type] {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, p.Type)
		}
	}

	for i, step := range c.Steps {
		if _, err := parseStep(c.Name, i, step); err != nil {
			return err
		}
	}
	return nil
}

func parseStep(command string, index int, step string) (*template.Template, error) {
	if strings.TrimSpace(step) == "" {
		return nil, fmt.Errorf("%w: step %d is empty", ErrInvalidTemplate, index+1)
	}
	tmpl, err := template.New(fmt.Sprintf("%s#%d", command, index+1)).
		Option("missingkey=error").
		Funcs(stepFuncs).
		Parse(step)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return tmpl, nil
}

func pluralSteps(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}
