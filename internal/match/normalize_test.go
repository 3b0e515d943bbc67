package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"registrantId", "registrantid"},
		{"registrant_id", "registrantid"},
		{"REGISTRANT-ID", "registrantid"},
		{"RegistrantID", "registrantid"},
		{"vehicleVIN", "vehiclevin"},
		{"XMLParser", "xmlparser"},
		{"", ""},
		{"a", "a"},
		{"ID", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"registrantId", []string{"registrant", "id"}},
		{"VIN_NUMBER", []string{"vin", "number"}},
		{"policyHTTPRef", []string{"policy", "http", "ref"}},
		{"orderID", []string{"order", "id"}},
		{"simple", []string{"simple"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := TokenizeIdent(tt.input)
			if tt.expected == nil {
				assert.Empty(t, tokens)
				return
			}

			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"registrantId", true},
		{"REGISTRANT_ID", true},
		{"vehicleKey", true},
		{"policyNumber", true},
		{"claimRef", true},
		{"vin", false},
		{"addressLine1", false},
		{"idea", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIdentifier(tt.input))
		})
	}
}
