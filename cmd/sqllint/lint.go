package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlStatementPattern = regexp.MustCompile(`(?im)^\s*(select|insert|update|delete|with)\s`)
	uuidMarkerPattern   = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type violation struct {
	file    string
	name    string
	line    int
	message string
}

type position struct {
	file string
	line int
	name string
}

// linter collects violations across files so duplicate markers can be
// reported even when they live in different packages.
type linter struct {
	seen       map[string]position
	violations []violation
}

func newLinter() *linter {
	return &linter{seen: map[string]position{}}
}

func (l *linter) lintFile(path string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	l.lintAST(path, fset, file)
	return nil
}

func (l *linter) lintSource(path, src string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return err
	}
	l.lintAST(path, fset, file)
	return nil
}

func (l *linter) lintAST(path string, fset *token.FileSet, file *ast.File) {
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil {
				continue
			}
			if !sqlStatementPattern.MatchString(raw) {
				continue
			}
			pos := position{file: path, line: fset.Position(bl.Pos()).Line, name: joinNames(vs.Names)}
			marker := firstLine(raw)
			if !uuidMarkerPattern.MatchString(marker) {
				l.add(pos, "missing or invalid --sql <uuid> marker")
				continue
			}
			if prev, dup := l.seen[marker]; dup {
				l.add(pos, "duplicate marker, first used by "+prev.name+" at "+prev.file+":"+strconv.Itoa(prev.line))
				continue
			}
			l.seen[marker] = pos
		}
		return true
	})
}

func (l *linter) add(pos position, message string) {
	l.violations = append(l.violations, violation{file: pos.file, line: pos.line, name: pos.name, message: message})
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
