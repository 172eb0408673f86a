package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<html><head><title>Sample</title></head><body>
<h2>First</h2>
<table><tr><td class="label">IMO / MMSI</td><td>9123456 / 538001234</td></tr></table>
<p>Pacific&nbsp;Breeze   LNG   Tanker</p>
</body></html>`

func TestParseAndWalk(t *testing.T) {
	root, err := ParseString(sample)
	require.NoError(t, err)

	var tags []string
	Walk(root, func(n Node) {
		tags = append(tags, n.Tag())
	})

	assert.Contains(t, tags, "h2")
	assert.Contains(t, tags, "tr")
	assert.Less(t, indexOf(tags, "h2"), indexOf(tags, "tr"))
	assert.Less(t, indexOf(tags, "tr"), indexOf(tags, "p"))
}

func TestNodeNavigation(t *testing.T) {
	root, err := ParseString(sample)
	require.NoError(t, err)

	label := First(root, "td.label")
	require.NotNil(t, label)
	assert.Equal(t, "IMO / MMSI", label.Text())

	value := label.NextSibling()
	require.NotNil(t, value)
	assert.Equal(t, "9123456 / 538001234", value.Text())
	assert.Nil(t, value.NextSibling())

	cls, ok := label.Attr("class")
	assert.True(t, ok)
	assert.Equal(t, "label", cls)

	parent := label.Parent()
	require.NotNil(t, parent)
	assert.Equal(t, "tr", parent.Tag())
	assert.Len(t, parent.Children(), 2)

	assert.Nil(t, First(root, "span.missing"))
}

func TestCleanText(t *testing.T) {
	root, err := ParseString(sample)
	require.NoError(t, err)

	p := First(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, "Pacific Breeze LNG Tanker", p.Text())
	assert.Equal(t, "a b", CleanText("  a \n\t b "))
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}
