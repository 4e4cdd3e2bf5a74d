package postal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{
			name: "full",
			addr: Address{Street: "1 Main St", Street2: "Suite 4", City: "Springfield", State: "IL", Zip: "62701", Country: "USA"},
			want: "1 Main St\nSuite 4\nSpringfield, IL 62701\nUSA",
		},
		{
			name: "city only",
			addr: Address{City: "Berlin", Country: "Germany"},
			want: "Berlin\nGermany",
		},
		{
			name: "state and zip without city",
			addr: Address{Street: "1 Main St", State: "IL", Zip: "62701"},
			want: "1 Main St\nIL 62701",
		},
		{
			name: "empty",
			addr: Address{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.Compose())
		})
	}
}

func TestHasStreetOrCity(t *testing.T) {
	assert.False(t, Address{Country: "USA", Zip: "1"}.HasStreetOrCity())
	assert.True(t, Address{City: "Paris"}.HasStreetOrCity())
	assert.True(t, Address{Street: "x"}.HasStreetOrCity())
}
