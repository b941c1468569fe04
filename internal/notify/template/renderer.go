// Package template renders notification subjects and bodies containing {token} placeholders.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Supported tokens. Anything else in braces is left untouched.
const (
	TokenCustomerName = "customerName"
	TokenOperatorName = "operatorName"
	TokenServiceName  = "serviceName"
	TokenZipCode      = "zipCode"
	TokenEarnings     = "earnings"
	TokenOrderID      = "orderId"
	TokenOrderNumber  = "orderNumber"
	TokenExpressBadge = "expressBadge"
	TokenExpressText  = "expressText"
	TokenMessage      = "message"
	TokenStatus       = "status"
	TokenStatusLabel  = "statusLabel"
)

var whitelist = map[string]struct{}{
	TokenCustomerName: {},
	TokenOperatorName: {},
	TokenServiceName:  {},
	TokenZipCode:      {},
	TokenEarnings:     {},
	TokenOrderID:      {},
	TokenOrderNumber:  {},
	TokenExpressBadge: {},
	TokenExpressText:  {},
	TokenMessage:      {},
	TokenStatus:       {},
	TokenStatusLabel:  {},
}

var tokenPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// Values maps token names to their rendered values.
type Values map[string]string

// IsSupported reports whether name is a whitelisted token.
func IsSupported(name string) bool {
	_, ok := whitelist[name]
	return ok
}

// SupportedTokens returns the whitelist in sorted order.
func SupportedTokens() []string {
	out := make([]string, 0, len(whitelist))
	for k := range whitelist {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Render substitutes whitelisted tokens. A whitelisted token missing from values renders as
// the empty string; an unknown token such as {foo} is left verbatim. Values are inserted
// literally and are never re-scanned for tokens.
func Render(text string, values Values) string {
	if !strings.Contains(text, "{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if !IsSupported(name) {
			return match
		}
		return values[name]
	})
}

// Validate returns the unknown tokens used in text, in order of first appearance.
func Validate(text string) []string {
	var unknown []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if IsSupported(name) || seen[name] {
			continue
		}
		seen[name] = true
		unknown = append(unknown, name)
	}
	return unknown
}

// FormatCents renders integer cents as dollars, e.g. 1250 -> "$12.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// ExpressBadge is the short marker prepended to express order subjects.
func ExpressBadge(isExpress bool) string {
	if isExpress {
		return "⚡ EXPRESS"
	}
	return ""
}

// ExpressText is the sentence appended to express order bodies.
func ExpressText(isExpress bool) string {
	if isExpress {
		return "This is an express order and must be completed within 24 hours."
	}
	return ""
}
