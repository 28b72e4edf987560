package mirai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteclaw/mirai/pkg/message"
)

func TestStream_URL(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://bot.example.com/api"})
	require.NoError(t, err)

	st := client.Resume("KEY").Stream(StreamMessage)
	assert.Equal(t, "wss://bot.example.com/api/message?sessionKey=KEY", st.URL())

	client, err = NewClient(Config{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/all?sessionKey=KEY", client.Resume("KEY").Stream("").URL())
}

func TestStream_Listen(t *testing.T) {
	ms, session := newTestSession(t)
	ms.HandleWebSocket("/all",
		`{"type":"GroupMessage","messageChain":[{"type":"Source","id":1,"time":1},{"type":"Plain","text":"hi"}],"sender":{"id":1,"memberName":"a","permission":"MEMBER","group":{"id":2,"name":"g","permission":"MEMBER"}}}`,
		`not json`,
		`{"type":"BotMuteEvent","durationSeconds":60,"operator":{"id":3,"memberName":"op","permission":"OWNER","group":{"id":2,"name":"g","permission":"MEMBER"}}}`,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan message.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- session.Stream(StreamAll).Listen(ctx, func(ev message.Event) { events <- ev })
	}()

	var got []message.Event
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-ctx.Done():
			t.Fatal("timed out waiting for events")
		}
	}

	gm, ok := got[0].(message.GroupMessage)
	require.True(t, ok)
	assert.Equal(t, "hi", gm.Content().Text())
	assert.IsType(t, message.BotMuteEvent{}, got[1])

	cancel()
	assert.NoError(t, <-done)

	req, ok := ms.LastRequest("/all")
	require.True(t, ok)
	assert.Equal(t, testSessionKey, req.Query.Get("sessionKey"))
}
