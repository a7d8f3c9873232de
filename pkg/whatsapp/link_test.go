package whatsapp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"formatted local number", "(11) 98765-4321", "5511987654321"},
		{"already has country code", "5511987654321", "5511987654321"},
		{"plain digits", "11987654321", "5511987654321"},
		{"with plus prefix", "+55 11 98765-4321", "5511987654321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.phone))
		})
	}
}

func TestBuildLink(t *testing.T) {
	link := BuildLink("(11) 98765-4321", "hello world & more")

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511987654321?text="), link)
	assert.Contains(t, link, "hello+world+%26+more")
}

func TestParentApprovalMessageContainsLink(t *testing.T) {
	msg := ParentApprovalMessage("Ana Souza", "2026-09-05", "14:00", "Family visit", "https://example.com/parent-approval/PA-x-y")

	assert.Contains(t, msg, "Ana Souza")
	assert.Contains(t, msg, "2026-09-05")
	assert.Contains(t, msg, "https://example.com/parent-approval/PA-x-y")
}
