package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		values   Values
		expected string
	}{
		{
			name:     "all tokens present",
			text:     "Hi {customerName}, order {orderNumber} is {statusLabel}",
			values:   Values{TokenCustomerName: "Jane", TokenOrderNumber: "A-100", TokenStatusLabel: "Picked Up"},
			expected: "Hi Jane, order A-100 is Picked Up",
		},
		{
			name:     "missing whitelisted token renders empty",
			text:     "New order in {zipCode}{expressBadge}",
			values:   Values{TokenZipCode: "94107"},
			expected: "New order in 94107",
		},
		{
			name:     "unknown token left verbatim",
			text:     "Hello {foo} and {customerName}",
			values:   Values{TokenCustomerName: "Sam", "foo": "ignored"},
			expected: "Hello {foo} and Sam",
		},
		{
			name:     "repeated token",
			text:     "{earnings} now, {earnings} later",
			values:   Values{TokenEarnings: "$12.50"},
			expected: "$12.50 now, $12.50 later",
		},
		{
			name:     "no placeholders",
			text:     "Plain text",
			values:   nil,
			expected: "Plain text",
		},
		{
			name:     "nil values",
			text:     "Hi {customerName}!",
			values:   nil,
			expected: "Hi !",
		},
		{
			name:     "braces that are not tokens",
			text:     "JSON-ish {\"a\": 1} and { spaced } and {}",
			values:   Values{},
			expected: "JSON-ish {\"a\": 1} and { spaced } and {}",
		},
		{
			name:     "value containing a token is not re-expanded",
			text:     "{message}",
			values:   Values{TokenMessage: "use {customerName}", TokenCustomerName: "X"},
			expected: "use {customerName}",
		},
		{
			name:     "case sensitive",
			text:     "{CustomerName}",
			values:   Values{TokenCustomerName: "Jane"},
			expected: "{CustomerName}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.text, tt.values))
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	text := "{expressBadge} New {serviceName} order near {zipCode}: earn {earnings}. {unknown}"
	values := Values{
		TokenExpressBadge: ExpressBadge(true),
		TokenServiceName:  "Wash & Fold",
		TokenZipCode:      "10001",
		TokenEarnings:     FormatCents(2450),
	}

	first := Render(text, values)
	second := Render(text, values)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "{unknown}")
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate("Hi {customerName}, your {serviceName} order"))
	assert.Equal(t, []string{"foo", "bar"}, Validate("{foo} {customerName} {bar} {foo}"))
	assert.Empty(t, Validate("no tokens"))
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{
		0:      "$0.00",
		5:      "$0.05",
		1250:   "$12.50",
		100000: "$1000.00",
		-399:   "-$3.99",
	}
	for cents, expected := range tests {
		assert.Equal(t, expected, FormatCents(cents))
	}
}

func TestExpress(t *testing.T) {
	assert.NotEmpty(t, ExpressBadge(true))
	assert.Empty(t, ExpressBadge(false))
	assert.NotEmpty(t, ExpressText(true))
	assert.Empty(t, ExpressText(false))
}

func TestSupportedTokens(t *testing.T) {
	tokens := SupportedTokens()
	assert.Len(t, tokens, 12)
	assert.Contains(t, tokens, TokenCustomerName)
	assert.True(t, IsSupported(TokenStatusLabel))
	assert.False(t, IsSupported("foo"))
}
