package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// script is one migration file with its statements already split.
type script struct {
	name       string
	statements []string
}

// load reads every .sql file under dir in lexical order.
// When split is false each file is returned as a single statement.
func load(fsys embed.FS, dir string, split bool) ([]script, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	scripts := make([]script, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		body := string(data)
		if strings.TrimSpace(body) == "" {
			continue
		}

		s := script{name: name}
		if split {
			if err := checkSplittable(body); err != nil {
				return nil, fmt.Errorf("validate migration %s: %w", name, err)
			}
			s.statements = splitStatements(body)
		} else {
			s.statements = []string{body}
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// splitStatements drops "--" comment lines and splits on semicolons.
//
// The splitter does not understand string literals, block comments or
// dollar quoting, so migrations run through it must not put semicolons
// inside any of those. checkSplittable enforces the string-literal case.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// checkSplittable rejects semicolons inside single-quoted literals.
func checkSplittable(sql string) error {
	quoted := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if quoted && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			quoted = !quoted
		case ';':
			if quoted {
				return fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
		}
	}
	return nil
}
