// SPDX-License-Identifier: MPL-2.0

package bindgen

import "strings"

// Name shaping for generated identifiers. Interface definitions declare
// members in lower_snake_case and types in UpperCamelCase; each host
// language gets the casing its style guide expects, with reserved words
// escaped the way that language escapes them.

// camelCase converts lower_snake_case to lowerCamelCase.
func camelCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// pascalCase converts lower_snake_case to UpperCamelCase.
func pascalCase(s string) string {
	c := camelCase(s)
	if c == "" {
		return c
	}
	return strings.ToUpper(c[:1]) + c[1:]
}

// screamingCase converts lower_snake_case to SCREAMING_SNAKE_CASE.
func screamingCase(s string) string {
	return strings.ToUpper(s)
}

// kotlinKeywords are the Kotlin hard keywords that cannot name a
// declaration without backtick escaping.
var kotlinKeywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true,
	"do": true, "else": true, "false": true, "for": true,
	"fun": true, "if": true, "in": true, "interface": true,
	"is": true, "null": true, "object": true, "package": true,
	"return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true,
	"val": true, "var": true, "when": true, "while": true,
}

// swiftKeywords are the Swift keywords needing backtick escaping in
// declaration position.
var swiftKeywords = map[string]bool{
	"as": true, "break": true, "case": true, "catch": true,
	"class": true, "continue": true, "default": true, "defer": true,
	"deinit": true, "do": true, "else": true, "enum": true,
	"extension": true, "false": true, "for": true, "func": true,
	"guard": true, "if": true, "import": true, "in": true,
	"init": true, "internal": true, "is": true, "let": true,
	"nil": true, "operator": true, "private": true, "protocol": true,
	"public": true, "repeat": true, "return": true, "self": true,
	"static": true, "struct": true, "subscript": true, "switch": true,
	"throw": true, "throws": true, "true": true, "try": true,
	"typealias": true, "var": true, "where": true, "while": true,
}

// pythonKeywords are the Python keywords that cannot be identifiers.
var pythonKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// kotlinName converts a declared member name to a Kotlin identifier,
// escaping keywords with backticks.
func kotlinName(s string) string {
	n := camelCase(s)
	if kotlinKeywords[n] {
		return "`" + n + "`"
	}
	return n
}

// swiftName converts a declared member name to a Swift identifier,
// escaping keywords with backticks.
func swiftName(s string) string {
	n := camelCase(s)
	if swiftKeywords[n] {
		return "`" + n + "`"
	}
	return n
}

// pythonName keeps the declared snake_case, suffixing keywords with an
// underscore per PEP 8.
func pythonName(s string) string {
	if pythonKeywords[s] {
		return s + "_"
	}
	return s
}
