package mirai

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_GroupAdministration(t *testing.T) {
	ms, session := newTestSession(t)
	for _, path := range []string{"/muteAll", "/unmuteAll", "/mute", "/unmute", "/recall"} {
		ms.HandleOK(http.MethodPost, path)
	}
	ctx := context.Background()

	require.NoError(t, session.MuteAll(ctx, 42))
	req, _ := ms.LastRequest("/muteAll")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":42}`, string(req.Body))

	require.NoError(t, session.UnmuteAll(ctx, 42))
	req, _ = ms.LastRequest("/unmuteAll")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":42}`, string(req.Body))

	require.NoError(t, session.Mute(ctx, 42, 10001, 10*time.Minute+500*time.Millisecond))
	req, _ = ms.LastRequest("/mute")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":42,"memberId":10001,"time":600}`, string(req.Body))

	require.NoError(t, session.Unmute(ctx, 42, 10001))
	req, _ = ms.LastRequest("/unmute")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":42,"memberId":10001}`, string(req.Body))

	require.NoError(t, session.Recall(ctx, 1234))
	req, _ = ms.LastRequest("/recall")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":1234}`, string(req.Body))
}

func TestSession_Mute_DurationBounds(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleOK(http.MethodPost, "/mute")
	ctx := context.Background()

	assert.True(t, IsClient(session.Mute(ctx, 1, 2, 0)))
	assert.True(t, IsClient(session.Mute(ctx, 1, 2, 500*time.Millisecond)))
	assert.True(t, IsClient(session.Mute(ctx, 1, 2, MaxMuteDuration+time.Second)))
	assert.NoError(t, session.Mute(ctx, 1, 2, MaxMuteDuration))

	req, _ := ms.LastRequest("/mute")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","target":1,"memberId":2,"time":2592000}`, string(req.Body))
	assert.Len(t, ms.Requests(), 1)
}

func TestSession_Mute_PermissionDenied(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleCode(http.MethodPost, "/mute", 10)

	err := session.Mute(context.Background(), 1, 2, time.Minute)
	assert.True(t, IsCode(err, CodePermissionDenied))
}
