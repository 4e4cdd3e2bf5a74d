package render_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend string

func (s stubBackend) Name() string        { return string(s) }
func (s stubBackend) ContentType() string { return render.ContentTypePDF }
func (s stubBackend) Extension() string   { return "pdf" }
func (s stubBackend) Render(context.Context, render.Layout) ([]byte, error) {
	return []byte(s), nil
}

func TestRegistryLookup(t *testing.T) {
	reg := render.NewRegistry(stubBackend(render.BackendCanvas), stubBackend(render.BackendFlow), nil)
	reg.Disable(render.BackendBrowser)

	b, err := reg.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, render.BackendCanvas, b.Name())

	b, err = reg.Lookup(" FLOW ")
	require.NoError(t, err)
	assert.Equal(t, render.BackendFlow, b.Name())

	_, err = reg.Lookup(render.BackendBrowser)
	assert.ErrorIs(t, err, render.ErrBackendDisabled)

	_, err = reg.Lookup("latex")
	assert.ErrorIs(t, err, render.ErrUnknownBackend)
}
