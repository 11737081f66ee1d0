package schema

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavour a type string is written in
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect normalises a dialect name
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", name)
	}
}

var mysqlAliases = map[string]string{
	"INT":     "INTEGER",
	"BOOL":    "TINYINT(1)",
	"BOOLEAN": "TINYINT(1)",
	"DEC":     "DECIMAL",
	"NUMERIC": "DECIMAL",
}

var postgresAliases = map[string]string{
	"INT":    "INTEGER",
	"INT4":   "INTEGER",
	"INT2":   "SMALLINT",
	"INT8":   "BIGINT",
	"BOOL":   "BOOLEAN",
	"FLOAT4": "REAL",
	"FLOAT8": "DOUBLE PRECISION",
}

// RenderType turns a raw type signature into the canonical form used for
// comparison. Declared and live types must go through the same dialect so
// that equal logical types produce equal strings.
func (d Dialect) RenderType(raw string) string {
	tokens := TypeTokens(raw)
	if len(tokens) == 0 {
		return ""
	}

	out := make([]string, 0, len(tokens))
	lowerNext := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if lowerNext {
			out = append(out, strings.ToLower(tok))
			lowerNext = false
			continue
		}

		upper := upperOutsideQuotes(tok)
		switch upper {
		case "CHARSET":
			out = append(out, "CHARACTER", "SET")
			lowerNext = true
			continue
		case "SET":
			if len(out) > 0 && out[len(out)-1] == "CHARACTER" {
				lowerNext = true
			}
		case "COLLATE":
			lowerNext = true
		}
		out = append(out, upper)
	}

	switch d {
	case DialectMySQL:
		out[0] = applyAlias(out[0], mysqlAliases)
	case DialectPostgres:
		out = renderPostgres(out)
	}

	return strings.Join(out, " ")
}

func renderPostgres(tokens []string) []string {
	if len(tokens) >= 2 && tokens[0] == "CHARACTER" && strings.HasPrefix(tokens[1], "VARYING") {
		merged := "VARCHAR" + strings.TrimPrefix(tokens[1], "VARYING")
		tokens = append([]string{merged}, tokens[2:]...)
	} else if tokens[0] == "CHARACTER" || strings.HasPrefix(tokens[0], "CHARACTER(") {
		tokens[0] = "CHAR" + strings.TrimPrefix(tokens[0], "CHARACTER")
	}

	if len(tokens) >= 4 && tokens[1] == "WITHOUT" && tokens[2] == "TIME" && tokens[3] == "ZONE" {
		tokens = append([]string{tokens[0]}, tokens[4:]...)
	}

	tokens[0] = applyAlias(tokens[0], postgresAliases)
	return tokens
}

// NormalizeAction maps a referential action to its canonical spelling.
// RESTRICT and NO ACTION behave identically for the warehouse and are
// reported as the empty "no policy" value.
func NormalizeAction(action string) string {
	a := strings.Join(strings.Fields(strings.ToUpper(action)), " ")
	switch a {
	case "", "NO ACTION", "RESTRICT":
		return ""
	default:
		return a
	}
}

func applyAlias(token string, aliases map[string]string) string {
	base, suffix := token, ""
	if idx := strings.Index(token, "("); idx >= 0 {
		base, suffix = token[:idx], token[idx:]
	}
	alias, ok := aliases[base]
	if !ok {
		return token
	}
	// Aliases that carry their own width (BOOL -> TINYINT(1)) only apply
	// to the bare keyword.
	if strings.Contains(alias, "(") {
		if suffix != "" {
			return token
		}
		return alias
	}
	return alias + suffix
}

// TypeTokens splits a type signature on whitespace that is outside quotes
// and parentheses, so "enum('a b','c')" stays a single token.
func TypeTokens(raw string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inQuote:
			cur.WriteByte(c)
			if c == '\'' {
				if i+1 < len(raw) && raw[i+1] == '\'' {
					cur.WriteByte(raw[i+1])
					i++
				} else {
					inQuote = false
				}
			}
		case c == '\'':
			inQuote = true
			cur.WriteByte(c)
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if depth > 0 {
				continue
			}
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

func upperOutsideQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' {
			inQuote = !inQuote
			b.WriteByte(c)
			continue
		}
		if !inQuote && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
