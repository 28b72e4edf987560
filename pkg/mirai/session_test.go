package mirai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteclaw/mirai/pkg/message"
)

func TestSession_VerifyAndRelease(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleOK(http.MethodPost, "/verify")
	ms.HandleOK(http.MethodPost, "/release")
	ctx := context.Background()

	require.NoError(t, session.Verify(ctx, 10001))
	qq, ok := session.Bound()
	require.True(t, ok)
	assert.Equal(t, message.Target(10001), qq)

	req, _ := ms.LastRequest("/verify")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","qq":10001}`, string(req.Body))

	require.NoError(t, session.Release(ctx))
	_, ok = session.Bound()
	assert.False(t, ok)

	req, _ = ms.LastRequest("/release")
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","qq":10001}`, string(req.Body))
}

func TestSession_VerifyFailureLeavesUnbound(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleCode(http.MethodPost, "/verify", 2)

	err := session.Verify(context.Background(), 10001)
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeNoSuchBot))

	_, ok := session.Bound()
	assert.False(t, ok)
}

func TestSession_ReleaseUnboundIsNoop(t *testing.T) {
	ms, session := newTestSession(t)

	require.NoError(t, session.Release(context.Background()))
	require.NoError(t, session.Close(context.Background()))
	assert.Empty(t, ms.Requests())
}

func TestSession_ReleaseQQ(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleOK(http.MethodPost, "/release")

	require.NoError(t, session.ReleaseQQ(context.Background(), 20002))

	req, ok := ms.LastRequest("/release")
	require.True(t, ok)
	assert.JSONEq(t, `{"sessionKey":"SESSION-KEY","qq":20002}`, string(req.Body))
}

func TestSession_CloseReportsFailure(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleOK(http.MethodPost, "/verify")
	ms.HandleCode(http.MethodPost, "/release", 3)

	require.NoError(t, session.Verify(context.Background(), 1))

	err := session.Close(context.Background())
	assert.True(t, IsCode(err, CodeWrongSession))
}
