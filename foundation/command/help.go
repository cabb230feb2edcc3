// File: help.go
// Title: Declaration Help Rendering
// Description: Renders a command's declarations as plain text.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-05
// Modified: 2025-03-05

package command

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Usage returns the one-line argument grammar of the command
func (d *Declarations) Usage() string {
	parts := []string{d.name}
	for _, p := range d.positional {
		parts = append(parts, "<"+p.name+">")
	}
	for _, p := range d.ordered {
		switch {
		case p.kind == DynamicParam:
			parts = append(parts, "["+p.flag+" <var>]")
		case p.kind != NamedParam:
		case p.arity == 1:
			parts = append(parts, "["+p.flag+"]")
		case p.mandatory:
			parts = append(parts, p.flag+" <"+p.TypeName()+">")
		default:
			parts = append(parts, "["+p.flag+" <"+p.TypeName()+">]")
		}
	}
	return strings.Join(parts, " ")
}

// Help renders the declarations of d
func (d *Declarations) Help() string {
	var b strings.Builder
	b.WriteString(d.name)
	if d.description != "" {
		b.WriteString(" - " + d.description)
	}
	b.WriteString("\n\nUsage: " + d.Usage() + "\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	if len(d.positional) > 0 {
		fmt.Fprint(tw, "\nPositional parameters:\n")
		for _, p := range d.positional {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", p.position, p.name, p.TypeName(), p.description)
		}
	}

	var named, dynamic []*Param
	for _, p := range d.ordered {
		switch p.kind {
		case NamedParam:
			named = append(named, p)
		case DynamicParam:
			dynamic = append(dynamic, p)
		}
	}
	if len(named) > 0 {
		fmt.Fprint(tw, "\nNamed parameters:\n")
		for _, p := range named {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.flag, p.TypeName(), requirement(p), p.description)
		}
	}
	if len(dynamic) > 0 {
		fmt.Fprint(tw, "\nDynamic parameters:\n")
		for _, p := range dynamic {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.flag, p.TypeName(), p.description)
		}
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

func requirement(p *Param) string {
	switch {
	case p.mandatory:
		return "mandatory"
	case p.defaultVal != "":
		return "default: " + p.defaultVal
	default:
		return "optional"
	}
}
