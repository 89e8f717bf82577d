package latch

import (
	"strings"

	"github.com/isometry-app/isometry/pkg/types"
)

type tokenKind int

const (
	tokenLParen tokenKind = iota
	tokenRParen
	tokenAnd
	tokenOr
	tokenNot
	tokenField
	tokenIdent
)

type token struct {
	kind  tokenKind
	text  string // raw word, for diagnostics
	field string // set for tokenField
	value string // set for tokenField
}

// tokenize splits the expression into tokens. Parentheses are standalone,
// quoted runs (single or double) are taken verbatim with the quote characters
// dropped (the quote char itself cannot be escaped), AND/OR/NOT match
// case-insensitively, and any remaining word containing a colon becomes a
// field:value pair split on the first colon.
func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")"})
			i++
		default:
			word, next, err := scanWord(runes, i)
			if err != nil {
				return nil, err
			}
			i = next
			tokens = append(tokens, classify(word))
		}
	}
	for _, t := range tokens {
		if t.kind == tokenField && t.field == "" {
			return nil, types.Invalidf("malformed field:value pair %q", t.text)
		}
	}
	return tokens, nil
}

// scanWord reads one word starting at position i, consuming quoted runs
// atomically so whitespace and parentheses inside quotes do not split it.
func scanWord(runes []rune, i int) (string, int, error) {
	var b strings.Builder
	for i < len(runes) {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' || r == ')' {
			// A '(' directly following the word body belongs to a
			// contains(...) call, not to grouping.
			if r == '(' && strings.HasSuffix(strings.ToLower(b.String()), "contains") {
				close := indexRune(runes, i+1, ')')
				if close < 0 {
					return "", 0, types.Invalidf("unterminated contains() in expression")
				}
				inner := string(runes[i+1 : close])
				inner = stripQuotes(inner)
				b.WriteRune('(')
				b.WriteString(inner)
				b.WriteRune(')')
				i = close + 1
				continue
			}
			break
		}
		if r == '\'' || r == '"' {
			close := indexRune(runes, i+1, r)
			if close < 0 {
				return "", 0, types.Invalidf("unterminated quoted string")
			}
			b.WriteString(string(runes[i+1 : close]))
			i = close + 1
			continue
		}
		b.WriteRune(r)
		i++
	}
	return b.String(), i, nil
}

func indexRune(runes []rune, from int, want rune) int {
	for j := from; j < len(runes); j++ {
		if runes[j] == want {
			return j
		}
	}
	return -1
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func classify(word string) token {
	switch {
	case strings.EqualFold(word, "AND"):
		return token{kind: tokenAnd, text: word}
	case strings.EqualFold(word, "OR"):
		return token{kind: tokenOr, text: word}
	case strings.EqualFold(word, "NOT"):
		return token{kind: tokenNot, text: word}
	}
	if idx := strings.Index(word, ":"); idx >= 0 {
		return token{kind: tokenField, text: word, field: word[:idx], value: word[idx+1:]}
	}
	return token{kind: tokenIdent, text: word}
}
