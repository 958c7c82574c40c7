package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEsc_EscapesMarkupAndQuotes(t *testing.T) {
	assert.Equal(t, "Jane &lt;b&gt;", esc("Jane <b>"))
	assert.Equal(t, "&#34;a&#34; &amp; &#39;b&#39;", esc(`"a" & 'b'`))
	assert.Empty(t, esc(""))
}
