package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Client{FirstName: "Ada", LastName: "Lovelace", Company: "Engines"}.DisplayName())
	assert.Equal(t, "Lovelace", Client{LastName: " Lovelace "}.DisplayName())
	assert.Equal(t, "Engines", Client{Company: "Engines"}.DisplayName())
	assert.Equal(t, "Unnamed Client", Client{}.DisplayName())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusLead.Valid())
	assert.False(t, Status("archived").Valid())
}
