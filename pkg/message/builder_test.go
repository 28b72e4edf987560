package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	m, err := NewBuilder().
		Quote(10).
		At(7).
		Plain(" pong ").
		Face(1).
		Image(ImageRef{URL: "https://example.com/x.png"}).
		FlashImage(ImageRef{ImageID: "{X}.png"}).
		AtAll().
		Build()
	require.NoError(t, err)

	q, ok := m.Quote()
	require.True(t, ok)
	assert.Equal(t, MessageID(10), q.ID)

	_, ok = m.Source()
	assert.False(t, ok)

	assert.Equal(t, 6, m.Len())
	assert.Equal(t, "[at:7@] pong [ce:1][image][flash_image][atall]", m.String())
}

func TestBuilder_Empty(t *testing.T) {
	_, err := NewBuilder().Quote(1).Build()

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, ErrEmptyChain)
	assert.Contains(t, err.Error(), "message building error")
}

func TestBuilder_RejectsMetadataAndUnresolvable(t *testing.T) {
	_, err := NewBuilder().Plain("x").Append(Source{ID: 1}).Build()
	assert.ErrorIs(t, err, ErrMetaInContent)

	_, err = NewBuilder().Image(ImageRef{}).Build()
	assert.ErrorIs(t, err, ErrImageUnresolved)

	_, err = NewBuilder().Append(Face{}).Build()
	assert.ErrorIs(t, err, ErrFaceUnresolved)
}

func TestBuilder_Reuse(t *testing.T) {
	b := NewBuilder().Plain("a")
	first, err := b.Build()
	require.NoError(t, err)

	b.Plain("b")
	second, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "a", first.Text())
	assert.Equal(t, "ab", second.Text())
}
