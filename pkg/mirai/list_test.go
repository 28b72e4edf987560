package mirai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteclaw/mirai/pkg/message"
)

func TestSession_Lists(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleJSON(http.MethodGet, "/friendList", http.StatusOK,
		`[{"id":1,"nickname":"alice","remark":"ally"},{"id":2,"nickname":"bob","remark":""}]`)
	ms.HandleJSON(http.MethodGet, "/groupList", http.StatusOK,
		`[{"id":42,"name":"test group","permission":"OWNER"}]`)
	ms.HandleJSON(http.MethodGet, "/memberList", http.StatusOK,
		`[{"id":1,"memberName":"alice","permission":"MEMBER","group":{"id":42,"name":"test group","permission":"OWNER"}}]`)
	ctx := context.Background()

	friends, err := session.FriendList(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "ally", friends[0].DisplayName())

	groups, err := session.GroupList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []message.Group{{ID: 42, Name: "test group", Permission: message.PermissionOwner}}, groups)

	members, err := session.MemberList(ctx, 42)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, message.Target(42), members[0].Group.ID)

	req, _ := ms.LastRequest("/memberList")
	assert.Equal(t, "42", req.Query.Get("target"))
	assert.Equal(t, testSessionKey, req.Query.Get("sessionKey"))
}

func TestSession_Lists_StatusEnvelope(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleCode(http.MethodGet, "/groupList", 3)

	_, err := session.GroupList(context.Background())
	assert.True(t, IsCode(err, CodeWrongSession))
}
