package mirai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liteclaw/mirai/pkg/message"
)

func TestCheckCode(t *testing.T) {
	assert.NoError(t, checkCode(CodeSuccess, "Sending", ""))

	tests := []struct {
		code Code
		want string
	}{
		{CodeWrongAuthKey, "Wrong auth key"},
		{CodeNoSuchBot, "No such bot"},
		{CodeWrongSession, "Wrong session"},
		{CodeUnauthorized, "Session wasn't authorized"},
		{CodeNoSuchTarget, "No such target"},
		{CodeNoSuchFile, "No such file"},
		{CodePermissionDenied, "Bot permission denied"},
		{CodeMuted, "Bot was muted"},
		{CodeMessageTooLong, "Message is too long"},
		{CodeBadRequest, "Bad request"},
		{Code(7), "Unknown code"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			err := checkCode(tt.code, "Action", "")
			assert.True(t, IsCode(err, tt.code))
			assert.True(t, IsServer(err))
			assert.Contains(t, err.Error(), fmt.Sprintf("[%d] [Action] %s", int(tt.code), tt.want))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindServer, KindOf(serverError("op", errors.New("x"))))
	assert.Equal(t, KindClient, KindOf(clientErrorf("op", "x")))
	assert.Equal(t, KindMessageBuilding, KindOf(&message.BuildError{Index: -1, Err: message.ErrEmptyChain}))

	_, err := message.GroupChannel(1).Friend()
	assert.Equal(t, KindClient, KindOf(err))

	assert.Equal(t, ErrorKind(0), KindOf(errors.New("other")))
	assert.False(t, IsCode(errors.New("other"), CodeMuted))
}
