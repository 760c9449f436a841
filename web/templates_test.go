package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticFS_ServesOnlyAssets(t *testing.T) {
	static := StaticFS()

	_, err := fs.Stat(static, "app.css")
	require.NoError(t, err)

	for _, name := range []string{"layout.html", "overview.html", "financials.html"} {
		_, err := fs.Stat(static, name)
		assert.ErrorIs(t, err, fs.ErrNotExist, name)
	}
}

func TestTemplates_ParsesEveryPage(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"layout.html", "overview.html", "campaigns.html", "influencers.html", "content.html", "financials.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}
