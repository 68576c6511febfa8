package messaging_test

import (
	"testing"

	"github.com/cris-tech/gestao-api/internal/messaging"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted mobile", "(11) 99888-7766", "5511998887766"},
		{"already prefixed", "5511998887766", "5511998887766"},
		{"bare digits", "11987654321", "5511987654321"},
		{"with country code formatting", "+55 11 98765-4321", "5511987654321"},
		{"empty", "", ""},
		{"no digits", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messaging.NormalizeNumber(tt.in))
		})
	}
}
