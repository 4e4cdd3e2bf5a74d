package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[InvoiceStatus][]InvoiceStatus{
		InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusCancelled},
		InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
		InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
	}
	all := []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestEditable(t *testing.T) {
	assert.True(t, InvoiceStatusDraft.Editable())
	assert.True(t, InvoiceStatusSent.Editable())
	assert.False(t, InvoiceStatusPaid.Editable())
	assert.False(t, InvoiceStatusOverdue.Editable())
	assert.False(t, InvoiceStatusCancelled.Editable())
	assert.False(t, InvoiceStatus("void").Valid())
}
