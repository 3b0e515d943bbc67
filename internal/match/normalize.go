package match

import (
	"slices"
	"strings"
	"unicode"
)

// identifierTokens are the trailing tokens that mark a field as a key that can
// correlate elements of two different arrays.
var identifierTokens = []string{"id", "key", "no", "nbr", "number", "ref"}

// NormalizeIdent normalizes an identifier for comparison.
// The normalization pipeline:
// 1. Tokenize CamelCase and separators.
// 2. Case-fold to lower.
// 3. Join tokens without separators.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// TokenizeIdent splits an identifier into normalized lowercase tokens.
//   - "registrantId" -> ["registrant", "id"]
//   - "VIN_NUMBER" -> ["vin", "number"]
//   - "policyHTTPRef" -> ["policy", "http", "ref"]
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// IsIdentifier reports whether name looks like an identifier field, judged by
// its last token ("registrantId", "vehicle_key", "policyNumber").
func IsIdentifier(name string) bool {
	tokens := TokenizeIdent(name)
	if len(tokens) == 0 {
		return false
	}

	return slices.Contains(identifierTokens, tokens[len(tokens)-1])
}

func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && startsToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken splits on lower->upper ("orderID" -> order|ID) and at the end of
// an acronym ("XMLParser" -> XML|Parser).
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if isSeparator(prev) || !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
