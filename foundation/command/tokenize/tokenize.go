// File: tokenize.go
// Title: Command Line Tokenizer
// Description: Splits one console line into argument tokens with shell
//              quoting rules. Variables are kept as literal "$name" tokens,
//              a leading ~ resolves to the home directory and every other
//              expansion is rejected.
// Author: msto63
// Version: v0.1.1
// Created: 2025-03-07
// Modified: 2025-03-18

// Package tokenize splits command lines into tokens using shell quoting.
package tokenize

import (
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Split tokenizes one line. Blank lines and comment-only lines yield no
// tokens. Pipelines, lists, redirections and assignments are rejected.
func Split(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)
	file, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, derror.Wrap(err, "cannot tokenize line").
			WithCode(derror.CodeInvalidInput).
			WithDetail("line", line)
	}

	switch len(file.Stmts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, invalid(line, "only one command per line")
	}

	stmt := file.Stmts[0]
	if stmt.Negated || stmt.Background || stmt.Coprocess || len(stmt.Redirs) > 0 {
		return nil, invalid(line, "operators are not supported")
	}
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok {
		return nil, invalid(line, "only simple commands are supported")
	}
	if len(call.Assigns) > 0 {
		return nil, invalid(line, "assignments are not supported")
	}

	tokens := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		word, err := literalWord(line, word)
		if err != nil {
			return nil, err
		}
		token, err := expand.Literal(literalConfig, word)
		if err != nil {
			return nil, derror.Wrap(err, "cannot tokenize line").
				WithCode(derror.CodeInvalidInput).
				WithDetail("line", line)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// literalConfig removes quotes and escapes but leaves $name references as
// they were written
var literalConfig = &expand.Config{
	Env: expand.FuncEnviron(func(name string) string { return "$" + name }),
}

// literalWord rejects expansions whose result would differ from the text as
// written and resolves an unquoted leading ~ or ~/ to the home directory
func literalWord(line string, word *syntax.Word) (*syntax.Word, error) {
	var reason string
	syntax.Walk(word, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			if !plainParam(n) {
				reason = "parameter expansion is not supported"
			}
		case *syntax.CmdSubst, *syntax.ProcSubst:
			reason = "command substitution is not supported"
		case *syntax.ArithmExp:
			reason = "arithmetic expansion is not supported"
		case *syntax.ExtGlob:
			reason = "extended globs are not supported"
		}
		return reason == ""
	})
	if reason != "" {
		return nil, invalid(line, reason)
	}

	lit, ok := word.Parts[0].(*syntax.Lit)
	if !ok || !strings.HasPrefix(lit.Value, "~") {
		return word, nil
	}
	rest := lit.Value[1:]
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return nil, invalid(line, "only ~ and ~/ are expanded")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, derror.Wrap(err, "cannot expand ~").
			WithCode(derror.CodeInvalidInput).
			WithDetail("line", line)
	}
	parts := make([]syntax.WordPart, 0, len(word.Parts))
	parts = append(parts, &syntax.Lit{Value: home + rest})
	parts = append(parts, word.Parts[1:]...)
	return &syntax.Word{Parts: parts}, nil
}

// plainParam reports whether p is $name or ${name}
func plainParam(p *syntax.ParamExp) bool {
	return p.Param != nil && isName(p.Param.Value) &&
		!p.Excl && !p.Length && !p.Width &&
		p.Index == nil && p.Slice == nil && p.Repl == nil && p.Exp == nil &&
		p.Names == 0
}

func invalid(line, reason string) *derror.Error {
	return derror.New(reason).
		WithCode(derror.CodeInvalidInput).
		WithDetail("line", line)
}

// Join renders tokens as a line that Split turns back into the same tokens
func Join(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = quote(t)
	}
	return strings.Join(parts, " ")
}

func quote(token string) string {
	if token == "" {
		return "''"
	}
	if strings.HasPrefix(token, "$") && isName(token[1:]) {
		return token
	}
	if !strings.ContainsFunc(token, unsafe) {
		return token
	}
	q, err := syntax.Quote(token, syntax.LangBash)
	if err != nil {
		return "'" + strings.ReplaceAll(token, "'", `'"'"'`) + "'"
	}
	return q
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func unsafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_.,/:=@+%", r)
}
