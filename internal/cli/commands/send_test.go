package commands

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	test "github.com/liteclaw/mirai/test/helpers"
)

func TestAboutCommand(t *testing.T) {
	ms, _ := newGateway(t)
	ms.HandleJSON(http.MethodGet, "/about", http.StatusOK, `{"code":0,"data":{"version":"1.8.4"}}`)

	out, err := execute(NewAboutCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Version: 1.8.4")
	assert.Contains(t, out, "Gateway: "+ms.URL)
}

func TestSendCommand_Group(t *testing.T) {
	ms, _ := newGateway(t)
	ms.HandleJSON(http.MethodPost, "/sendGroupMessage", http.StatusOK, `{"code":0,"msg":"success","messageId":7}`)

	out, err := execute(NewSendCommand(), "group:9", "--at", "42", "--quote", "5", "--face", "1", "see", "above")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent message 7 to group:9")

	req, ok := ms.LastRequest("/sendGroupMessage")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"sessionKey": "SESSION",
		"group": 9,
		"quote": 5,
		"messageChain": [
			{"type": "At", "target": 42, "display": ""},
			{"type": "Plain", "text": " see above"},
			{"type": "Face", "faceId": 1}
		]
	}`, string(req.Body))

	release, ok := ms.LastRequest("/release")
	require.True(t, ok)
	assert.JSONEq(t, `{"sessionKey":"SESSION","qq":10001}`, string(release.Body))
}

func TestSendCommand_ImageURL(t *testing.T) {
	ms, _ := newGateway(t)
	ms.HandleJSON(http.MethodPost, "/sendFriendMessage", http.StatusOK, `{"code":0,"msg":"success","messageId":8}`)

	_, err := execute(NewSendCommand(), "friend:3", "--image", "https://example.com/a.png", "--flash")
	require.NoError(t, err)

	req, ok := ms.LastRequest("/sendFriendMessage")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"sessionKey": "SESSION",
		"qq": 3,
		"messageChain": [{"type": "FlashImage", "url": "https://example.com/a.png"}]
	}`, string(req.Body))
}

func TestSendCommand_UploadsLocalImage(t *testing.T) {
	ms, home := newGateway(t)
	ms.HandleJSON(http.MethodPost, "/uploadImage", http.StatusOK, `{"imageId":"{ABC}.png","url":"http://img/abc","path":""}`)
	ms.HandleJSON(http.MethodPost, "/sendTempMessage", http.StatusOK, `{"code":0,"msg":"success","messageId":9}`)

	img := filepath.Join(home.Dir, "cat.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0644))

	_, err := execute(NewSendCommand(), "temp:3@9", "--image", img)
	require.NoError(t, err)

	upload, ok := ms.LastRequest("/uploadImage")
	require.True(t, ok)
	assert.Contains(t, string(upload.Body), "temp")
	assert.Contains(t, string(upload.Body), "cat.png")

	req, ok := ms.LastRequest("/sendTempMessage")
	require.True(t, ok)
	assert.JSONEq(t, `{
		"sessionKey": "SESSION",
		"qq": 3,
		"group": 9,
		"messageChain": [{"type": "Image", "imageId": "{ABC}.png", "url": "http://img/abc"}]
	}`, string(req.Body))
}

func TestSendCommand_Errors(t *testing.T) {
	ms, _ := newGateway(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad channel", []string{"room:1", "hi"}},
		{"empty message", []string{"group:9"}},
		{"mention outside group", []string{"friend:3", "--at-all", "hi"}},
		{"missing image", []string{"group:9", "--image", "/does/not/exist.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewSendCommand(), tt.args...)
			assert.Error(t, err)
		})
	}

	for _, r := range ms.Requests() {
		assert.NotContains(t, r.Path, "/send")
	}
}

func TestSendCommand_RequiresBot(t *testing.T) {
	home := test.NewTempHome(t)
	home.WriteConfig(t, `{"gateway": {"url": "http://127.0.0.1:1", "authKey": "AUTH"}}`)

	_, err := execute(NewSendCommand(), "group:9", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot.qq is required")
}
