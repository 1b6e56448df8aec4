package l10ncache

import (
	"strconv"
	"strings"

	"github.com/leonelquinteros/gotext/plurals"
)

// PluralRule maps a count to the index of the plural form to use.
type PluralRule func(n int) int

// DefaultPluralRule is the two-form rule used when a catalog has no usable
// Plural-Forms header.
func DefaultPluralRule(n int) int {
	if n == 1 {
		return 0
	}
	return 1
}

// ParsePluralForms reads a header such as
// "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
// and returns the number of forms and the compiled rule. An empty or
// malformed header yields (2, DefaultPluralRule).
func ParsePluralForms(header string) (int, PluralRule) {
	count, expression := splitPluralForms(header)
	if count < 1 || expression == "" {
		return 2, DefaultPluralRule
	}

	expr, err := plurals.Compile(expression)
	if err != nil {
		return 2, DefaultPluralRule
	}

	return count, func(n int) int {
		if n < 0 {
			n = -n
		}
		return expr.Eval(uint32(n))
	}
}

func splitPluralForms(header string) (int, string) {
	count := 0
	expression := ""

	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(name) {
		case "nplurals":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil {
				count = n
			}
		case "plural":
			expression = strings.TrimSpace(value)
		}
	}

	return count, expression
}
