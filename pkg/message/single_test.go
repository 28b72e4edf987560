package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KnownVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SingleMessage
	}{
		{"plain", `{"type":"Plain","text":"hello"}`, Plain{Text: "hello"}},
		{"at", `{"type":"At","target":10001,"display":"@alice"}`, At{Target: 10001, Display: "@alice"}},
		{"atall", `{"type":"AtAll"}`, AtAll{}},
		{"face by name", `{"type":"Face","name":"smile"}`, Face{Name: "smile"}},
		{"image by url", `{"type":"Image","url":"https://example.com/a.png"}`, Image{ImageRef{URL: "https://example.com/a.png"}}},
		{"flash image", `{"type":"FlashImage","imageId":"{ABC}.png"}`, FlashImage{ImageRef{ImageID: "{ABC}.png"}}},
		{"xml", `{"type":"Xml","xml":"<a/>"}`, XML{XML: "<a/>"}},
		{"json", `{"type":"Json","json":"{}"}`, JSON{JSON: "{}"}},
		{"app", `{"type":"App","content":"card"}`, App{Content: "card"}},
		{"poke", `{"type":"Poke","name":"ShowLove"}`, Poke{Name: "ShowLove"}},
		{"source", `{"type":"Source","id":123,"time":1600000000}`, Source{ID: 123, Time: 1600000000}},
		{"quote", `{"type":"Quote","id":7,"groupId":42}`, Quote{ID: 7, GroupID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_FaceByID(t *testing.T) {
	got, err := Decode([]byte(`{"type":"Face","faceId":0}`))
	require.NoError(t, err)

	face, ok := got.(Face)
	require.True(t, ok)
	require.NotNil(t, face.FaceID)
	assert.Equal(t, int32(0), *face.FaceID)
	assert.Equal(t, "[ce:0]", face.String())
}

func TestDecode_UnknownTag(t *testing.T) {
	in := `{"type":"MusicShare","kind":"NeteaseCloudMusic","title":"song"}`

	got, err := Decode([]byte(in))
	require.NoError(t, err)

	u, ok := got.(Unsupported)
	require.True(t, ok)
	assert.Equal(t, "MusicShare", u.Kind)
	assert.JSONEq(t, in, string(u.Raw))
	assert.Equal(t, "[unsupported:MusicShare]", u.String())

	out, err := Encode(u)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDecode_MissingTag(t *testing.T) {
	got, err := Decode([]byte(`{"text":"no tag"}`))
	require.NoError(t, err)
	assert.IsType(t, Unsupported{}, got)
}

func TestDecode_MalformedKnownTag(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Plain","text":42}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestEncode_TagAndOmittedFields(t *testing.T) {
	out, err := Encode(Image{ImageRef{URL: "https://example.com/a.png"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Image","url":"https://example.com/a.png"}`, string(out))

	out, err = Encode(AtAll{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"AtAll"}`, string(out))

	out, err = Encode(FaceByID(14))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Face","faceId":14}`, string(out))

	out, err = Encode(Quote{ID: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Quote","id":9}`, string(out))

	_, err = Encode(nil)
	assert.Error(t, err)
}

func TestEncodeDecode_PreservesKnownFields(t *testing.T) {
	elems := []SingleMessage{
		Plain{Text: "hi"},
		At{Target: 1, Display: "bob"},
		FaceByID(3),
		FlashImage{ImageRef{ImageID: "id", URL: "u", Path: "p"}},
		Quote{ID: 5, GroupID: 6, SenderID: 7, TargetID: 8, Origin: Chain{Plain{Text: "orig"}}},
	}

	for _, elem := range elems {
		out, err := Encode(elem)
		require.NoError(t, err)

		back, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, elem, back)
	}
}

func TestSingleMessage_String(t *testing.T) {
	assert.Equal(t, "text", Plain{Text: "text"}.String())
	assert.Equal(t, "[at:10001@alice]", At{Target: 10001, Display: "alice"}.String())
	assert.Equal(t, "[atall]", AtAll{}.String())
	assert.Equal(t, "[ce:smile]", Face{Name: "smile"}.String())
	assert.Equal(t, "[image]", Image{}.String())
	assert.Equal(t, "[flash_image]", FlashImage{}.String())
	assert.Equal(t, "[xml:<a/>]", XML{XML: "<a/>"}.String())
	assert.Equal(t, "[json:{}]", JSON{JSON: "{}"}.String())
	assert.Equal(t, "[app:x]", App{Content: "x"}.String())
	assert.Equal(t, "[poke:Poke]", Poke{Name: "Poke"}.String())
	assert.Equal(t, "[source:1]", Source{ID: 1}.String())
	assert.Equal(t, "[quote:2]", Quote{ID: 2}.String())
}

func TestImageRef_Locator(t *testing.T) {
	kind, value, ok := ImageRef{ImageID: "id", URL: "u", Path: "p"}.Locator()
	require.True(t, ok)
	assert.Equal(t, LocatorImageID, kind)
	assert.Equal(t, "id", value)

	kind, value, ok = ImageRef{URL: "u", Path: "p"}.Locator()
	require.True(t, ok)
	assert.Equal(t, LocatorURL, kind)
	assert.Equal(t, "u", value)

	kind, _, ok = ImageRef{Path: "p"}.Locator()
	require.True(t, ok)
	assert.Equal(t, LocatorPath, kind)

	_, _, ok = ImageRef{}.Locator()
	assert.False(t, ok)
}

func TestChain_JSON(t *testing.T) {
	var c Chain
	require.NoError(t, json.Unmarshal([]byte(`[{"type":"Plain","text":"a"},{"type":"Dice","value":3},{"type":"Plain","text":"b"}]`), &c))
	require.Len(t, c, 3)
	assert.Equal(t, "ab", c.Text())
	assert.Equal(t, "a[unsupported:Dice]b", c.String())

	out, err := json.Marshal(Chain(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	err = json.Unmarshal([]byte(`[{"type":"At","target":"x"}]`), &c)
	assert.Error(t, err)
}

func TestChain_Validate(t *testing.T) {
	var buildErr *BuildError

	err := Chain{}.Validate()
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, ErrEmptyChain)
	assert.Equal(t, -1, buildErr.Index)

	err = Chain{Plain{Text: "x"}, Source{ID: 1}}.Validate()
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, ErrMetaInContent)
	assert.Equal(t, 1, buildErr.Index)

	assert.ErrorIs(t, Chain{Image{}}.Validate(), ErrImageUnresolved)
	assert.ErrorIs(t, Chain{Face{}}.Validate(), ErrFaceUnresolved)
	assert.ErrorIs(t, Chain{nil}.Validate(), ErrNilElement)
	assert.NoError(t, Chain{Plain{Text: "ok"}, Image{ImageRef{Path: "/tmp/a.png"}}}.Validate())
}
