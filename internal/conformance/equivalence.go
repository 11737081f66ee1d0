package conformance

import (
	"strings"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// Equivalence names a rule under which two lexically different type
// renderings describe the same column type.
type Equivalence string

const (
	UnsignedQualifierDiffers   Equivalence = "UnsignedQualifierDiffers"
	CollationQualifierDiffers  Equivalence = "CollationQualifierDiffers"
	EnumLengthTokenDiffers     Equivalence = "EnumLengthTokenDiffers"
	CharLengthTokenDiffers     Equivalence = "CharLengthTokenDiffers"
	FloatPrecisionOmitted      Equivalence = "FloatPrecisionOmitted"
	IntegerDisplayWidthOmitted Equivalence = "IntegerDisplayWidthOmitted"
)

type equivalenceRule struct {
	tag   Equivalence
	match func(declared, live string) bool
}

// Rules are tried in this order; the first match wins.
var equivalenceRules = []equivalenceRule{
	{UnsignedQualifierDiffers, unsignedQualifierDiffers},
	{CollationQualifierDiffers, collationQualifierDiffers},
	{EnumLengthTokenDiffers, enumLengthTokenDiffers},
	{CharLengthTokenDiffers, charLengthTokenDiffers},
	{FloatPrecisionOmitted, floatPrecisionOmitted},
	{IntegerDisplayWidthOmitted, integerDisplayWidthOmitted},
}

// Equivalences lists every known rule
func Equivalences() []Equivalence {
	out := make([]Equivalence, len(equivalenceRules))
	for i, r := range equivalenceRules {
		out[i] = r.tag
	}
	return out
}

// Match reports whether the rule accepts the pair of rendered types
func (e Equivalence) Match(declared, live string) bool {
	for _, r := range equivalenceRules {
		if r.tag == e {
			return r.match(declared, live)
		}
	}
	return false
}

// Equivalent returns the first rule that accepts the pair of rendered
// types. Identical strings are not considered here; callers compare for
// equality first.
func Equivalent(declared, live string) (Equivalence, bool) {
	for _, r := range equivalenceRules {
		if r.match(declared, live) {
			return r.tag, true
		}
	}
	return "", false
}

func unsignedQualifierDiffers(declared, live string) bool {
	if declared == live {
		return false
	}
	strip := func(s string) string {
		return joinTokens(dropTokens(schema.TypeTokens(s), func(tok string) bool {
			return tok == "UNSIGNED"
		}))
	}
	return strip(declared) == strip(live)
}

func collationQualifierDiffers(declared, live string) bool {
	if declared == live {
		return false
	}
	return stripCollation(declared) == stripCollation(live)
}

func stripCollation(s string) string {
	tokens := schema.TypeTokens(s)
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		switch {
		case tokens[i] == "CHARACTER" && i+1 < len(tokens) && tokens[i+1] == "SET":
			i += 2
		case tokens[i] == "COLLATE":
			i++
		default:
			out = append(out, tokens[i])
		}
	}
	return joinTokens(out)
}

func enumLengthTokenDiffers(declared, live string) bool {
	if declared == live || !strings.HasPrefix(declared, "ENUM(") || !strings.HasPrefix(live, "ENUM(") {
		return false
	}
	return trimEnumLength(declared) == trimEnumLength(live)
}

// trimEnumLength removes a "(n)" length token following the member list
func trimEnumLength(s string) string {
	tokens := schema.TypeTokens(s)
	if len(tokens) == 0 {
		return s
	}
	head := tokens[0]
	if !strings.HasSuffix(head, ")") {
		return s
	}
	open := strings.LastIndex(head, "(")
	if open <= 0 || head[open-1] != ')' || !isDigits(head[open+1:len(head)-1]) {
		return s
	}
	tokens[0] = head[:open]
	return joinTokens(tokens)
}

// charLengthTokenDiffers accepts a live CHAR-family rendering whose text up
// to its closing paren equals the declared rendering without its final
// character, e.g. declared "CHAR(32)" against live
// "CHAR(32) CHARACTER SET latin1".
func charLengthTokenDiffers(declared, live string) bool {
	if declared == live || !strings.Contains(declared, "CHAR") || !strings.Contains(live, "CHAR") {
		return false
	}
	if !strings.HasSuffix(declared, ")") {
		return false
	}
	closing := strings.Index(live, ")")
	if closing < 0 {
		return false
	}
	return live[:closing] == declared[:len(declared)-1]
}

var floatBases = map[string]bool{
	"FLOAT":  true,
	"DOUBLE": true,
	"REAL":   true,
}

func floatPrecisionOmitted(declared, live string) bool {
	if declared == live {
		return false
	}
	d := schema.TypeTokens(declared)
	l := schema.TypeTokens(live)
	if len(d) == 0 || len(l) == 0 || len(d) != len(l) {
		return false
	}

	base, args, ok := splitArgs(d[0])
	if !ok || !floatBases[base] || !strings.Contains(args, ",") {
		return false
	}
	if l[0] != base {
		return false
	}
	return joinTokens(d[1:]) == joinTokens(l[1:])
}

var integerBases = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"INTEGER":   true,
	"INT":       true,
	"BIGINT":    true,
}

func integerDisplayWidthOmitted(declared, live string) bool {
	if declared == live {
		return false
	}
	d := schema.TypeTokens(declared)
	l := schema.TypeTokens(live)
	if len(d) == 0 || len(l) == 0 || len(d) != len(l) {
		return false
	}

	dBase, dArgs, dHasArgs := splitArgs(d[0])
	lBase, lArgs, lHasArgs := splitArgs(l[0])
	if !integerBases[dBase] || dBase != lBase {
		return false
	}
	// Exactly one side carries the width.
	if dHasArgs == lHasArgs {
		return false
	}
	if (dHasArgs && !isDigits(dArgs)) || (lHasArgs && !isDigits(lArgs)) {
		return false
	}
	return joinTokens(d[1:]) == joinTokens(l[1:])
}

// splitArgs splits "NAME(args)" into its parts
func splitArgs(token string) (base, args string, ok bool) {
	open := strings.Index(token, "(")
	if open < 0 || !strings.HasSuffix(token, ")") {
		return token, "", false
	}
	return token[:open], token[open+1 : len(token)-1], true
}

func dropTokens(tokens []string, drop func(string) bool) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !drop(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
