// Package fixtures provides gateway payloads and configs for mirai tests.
package fixtures

// SampleConfig is a complete config file pointing at a local gateway.
const SampleConfig = `{
  "gateway": {
    "url": "http://127.0.0.1:8080",
    "authKey": "${MIRAI_AUTH_KEY}",
    "timeout": "5s"
  },
  "bot": {
    "qq": 10001
  },
  "events": {
    "mode": "polling",
    "pollInterval": "200ms",
    "batch": 10
  },
  "replies": [
    {"match": "ping", "reply": "pong", "quote": true}
  ],
  "schedule": {
    "enabled": true
  }
}`

// Events holds single gateway event objects.
var Events = struct {
	GroupMessage  string
	FriendMessage string
	TempMessage   string
	GroupRecall   string
	BotMute       string
	Nudge         string
}{
	GroupMessage:  `{"type":"GroupMessage","messageChain":[{"type":"Source","id":77,"time":1},{"type":"Plain","text":"hello"}],"sender":{"id":42,"memberName":"alice","permission":"MEMBER","group":{"id":9,"name":"devs","permission":"MEMBER"}}}`,
	FriendMessage: `{"type":"FriendMessage","messageChain":[{"type":"Source","id":78,"time":2},{"type":"Plain","text":"ping"}],"sender":{"id":3,"nickname":"bob","remark":"Bobby"}}`,
	TempMessage:   `{"type":"TempMessage","messageChain":[{"type":"Source","id":79,"time":3},{"type":"Plain","text":"psst"}],"sender":{"id":42,"memberName":"alice","permission":"MEMBER","group":{"id":9,"name":"devs","permission":"MEMBER"}}}`,
	GroupRecall:   `{"type":"GroupRecallEvent","authorId":42,"messageId":77,"time":4,"group":{"id":9,"name":"devs","permission":"MEMBER"},"operator":null}`,
	BotMute:       `{"type":"BotMuteEvent","durationSeconds":600,"operator":{"id":5,"memberName":"root","permission":"OWNER","group":{"id":9,"name":"devs","permission":"MEMBER"}}}`,
	Nudge:         `{"type":"NudgeEvent","fromId":1}`,
}

// GroupPing is a group message whose text is "ping".
const GroupPing = `{"type":"GroupMessage","messageChain":[{"type":"Source","id":77,"time":1},{"type":"Plain","text":"ping"}],"sender":{"id":42,"memberName":"alice","permission":"MEMBER","group":{"id":9,"name":"g","permission":"MEMBER"}}}`

// EventBatch wraps events in a successful fetch/peek response.
func EventBatch(events ...string) string {
	body := `{"code":0,"data":[`
	for i, ev := range events {
		if i > 0 {
			body += ","
		}
		body += ev
	}
	return body + `]}`
}
