package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalencePredicates(t *testing.T) {
	tests := []struct {
		name     string
		rule     Equivalence
		declared string
		live     string
		want     bool
	}{
		{name: "unsigned on live only", rule: UnsignedQualifierDiffers, declared: "INTEGER(10)", live: "INTEGER(10) UNSIGNED", want: true},
		{name: "unsigned on declared only", rule: UnsignedQualifierDiffers, declared: "BIGINT(20) UNSIGNED", live: "BIGINT(20)", want: true},
		{name: "unsigned with different width", rule: UnsignedQualifierDiffers, declared: "INTEGER(10)", live: "INTEGER(11) UNSIGNED", want: false},
		{name: "unsigned identical strings", rule: UnsignedQualifierDiffers, declared: "INTEGER(10)", live: "INTEGER(10)", want: false},

		{name: "charset on live", rule: CollationQualifierDiffers, declared: "VARCHAR(255)", live: "VARCHAR(255) CHARACTER SET utf8mb4", want: true},
		{name: "collate on declared", rule: CollationQualifierDiffers, declared: "VARCHAR(255) COLLATE utf8_unicode_ci", live: "VARCHAR(255)", want: true},
		{name: "charset and collate", rule: CollationQualifierDiffers, declared: "CHAR(32)", live: "CHAR(32) CHARACTER SET latin1 COLLATE latin1_bin", want: true},
		{name: "charset hides length change", rule: CollationQualifierDiffers, declared: "VARCHAR(255)", live: "VARCHAR(64) CHARACTER SET utf8mb4", want: false},

		{name: "enum trailing length", rule: EnumLengthTokenDiffers, declared: "ENUM('a','b')(1)", live: "ENUM('a','b')", want: true},
		{name: "enum trailing length on live", rule: EnumLengthTokenDiffers, declared: "ENUM('on','off')", live: "ENUM('on','off')(3)", want: true},
		{name: "enum members differ", rule: EnumLengthTokenDiffers, declared: "ENUM('a','b')(1)", live: "ENUM('a','c')", want: false},
		{name: "enum against varchar", rule: EnumLengthTokenDiffers, declared: "ENUM('a')", live: "VARCHAR(1)", want: false},

		{name: "char length token", rule: CharLengthTokenDiffers, declared: "CHAR(32)", live: "CHAR(32) CHARACTER SET latin1", want: true},
		{name: "varchar length token", rule: CharLengthTokenDiffers, declared: "VARCHAR(40)", live: "VARCHAR(40) BINARY", want: true},
		{name: "char length differs", rule: CharLengthTokenDiffers, declared: "CHAR(32)", live: "CHAR(64)", want: false},
		{name: "char declared without paren", rule: CharLengthTokenDiffers, declared: "CHAR", live: "CHAR(1)", want: false},
		{name: "char against integer", rule: CharLengthTokenDiffers, declared: "INTEGER(10)", live: "INTEGER(10) UNSIGNED", want: false},

		{name: "float precision omitted", rule: FloatPrecisionOmitted, declared: "FLOAT(5,2)", live: "FLOAT", want: true},
		{name: "double precision omitted", rule: FloatPrecisionOmitted, declared: "DOUBLE(12,3) UNSIGNED", live: "DOUBLE UNSIGNED", want: true},
		{name: "float base differs", rule: FloatPrecisionOmitted, declared: "FLOAT(5,2)", live: "DOUBLE", want: false},
		{name: "float single precision arg", rule: FloatPrecisionOmitted, declared: "FLOAT(24)", live: "FLOAT", want: false},
		{name: "float precision on live", rule: FloatPrecisionOmitted, declared: "FLOAT", live: "FLOAT(5,2)", want: false},

		{name: "display width omitted live", rule: IntegerDisplayWidthOmitted, declared: "INTEGER(10) UNSIGNED", live: "INTEGER UNSIGNED", want: true},
		{name: "display width omitted declared", rule: IntegerDisplayWidthOmitted, declared: "BIGINT", live: "BIGINT(20)", want: true},
		{name: "display width different base", rule: IntegerDisplayWidthOmitted, declared: "INTEGER(10)", live: "BIGINT", want: false},
		{name: "display width both present", rule: IntegerDisplayWidthOmitted, declared: "INTEGER(10)", live: "INTEGER(11)", want: false},
		{name: "display width on non integer", rule: IntegerDisplayWidthOmitted, declared: "VARCHAR(10)", live: "VARCHAR", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Match(tt.declared, tt.live))
		})
	}
}

func TestEquivalentIsNarrow(t *testing.T) {
	realDifferences := [][2]string{
		{"INTEGER(10)", "BIGINT(20)"},
		{"VARCHAR(255)", "TEXT"},
		{"VARCHAR(255)", "VARCHAR(128)"},
		{"DATETIME", "TIMESTAMP"},
		{"TINYINT(1)", "SMALLINT(1)"},
		{"ENUM('a','b')", "ENUM('a','b','c')"},
		{"DECIMAL(10,2)", "DECIMAL(12,2)"},
		{"FLOAT(5,2)", "FLOAT(7,2)"},
	}

	for _, pair := range realDifferences {
		t.Run(pair[0]+" vs "+pair[1], func(t *testing.T) {
			rule, ok := Equivalent(pair[0], pair[1])
			assert.False(t, ok, "unexpected rule %s", rule)
		})
	}
}

func TestEquivalentFirstMatchWins(t *testing.T) {
	rule, ok := Equivalent("VARCHAR(255)", "VARCHAR(255) CHARACTER SET utf8mb4")
	assert.True(t, ok)
	assert.Equal(t, CollationQualifierDiffers, rule)

	rule, ok = Equivalent("INTEGER(10)", "INTEGER(10) UNSIGNED")
	assert.True(t, ok)
	assert.Equal(t, UnsignedQualifierDiffers, rule)
}

func TestEquivalences(t *testing.T) {
	assert.Equal(t, []Equivalence{
		UnsignedQualifierDiffers,
		CollationQualifierDiffers,
		EnumLengthTokenDiffers,
		CharLengthTokenDiffers,
		FloatPrecisionOmitted,
		IntegerDisplayWidthOmitted,
	}, Equivalences())

	assert.False(t, Equivalence("Unknown").Match("A", "B"))
}
