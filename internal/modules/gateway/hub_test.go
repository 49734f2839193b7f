package gateway

import (
	"encoding/json"
	"testing"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, "logs:user:u1", UserRoom("u1"))
	assert.Equal(t, "logs:token:t1", TokenRoom("t1"))
}

func testHub() *Hub {
	return &Hub{
		sidUser:   make(map[string]string),
		roomCount: make(map[string]int),
		subs:      make(map[uint64]localSub),
	}
}

func TestSubscribeLocalDispatch(t *testing.T) {
	h := testHub()

	var userRoomGot, tokenRoomGot []string
	cancelUser := h.SubscribeLocal(UserRoom("u1"), func(log models.WebhookLogModel) {
		userRoomGot = append(userRoomGot, log.ID)
	})
	h.SubscribeLocal(TokenRoom("t1"), func(log models.WebhookLogModel) {
		tokenRoomGot = append(tokenRoomGot, log.ID)
	})

	log := models.WebhookLogModel{}
	log.ID = "rec-1"
	h.dispatchLocal([]string{UserRoom("u1"), TokenRoom("t9")}, log)

	assert.Equal(t, []string{"rec-1"}, userRoomGot)
	assert.Empty(t, tokenRoomGot, "token room t1 was not addressed")

	cancelUser()
	h.dispatchLocal([]string{UserRoom("u1")}, log)
	assert.Len(t, userRoomGot, 1, "cancelled subscription receives nothing")
}

func TestLogFromPayloadRoundTrip(t *testing.T) {
	uid := "u1"
	log := models.WebhookLogModel{Method: "POST", UserID: &uid}
	log.ID = "rec-1"

	direct, ok := logFromPayload(log)
	require.True(t, ok)
	assert.Equal(t, "rec-1", direct.ID)

	ptr, ok := logFromPayload(&log)
	require.True(t, ok)
	assert.Equal(t, "rec-1", ptr.ID)

	// simulate the Redis path: marshal to JSON, decode into a generic map
	data, err := json.Marshal(log)
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))

	fromRedis, ok := logFromPayload(generic)
	require.True(t, ok)
	assert.Equal(t, "rec-1", fromRedis.ID)
	assert.Equal(t, "POST", fromRedis.Method)
	require.NotNil(t, fromRedis.UserID)
	assert.Equal(t, "u1", *fromRedis.UserID)
}

func TestLogFromPayloadRejectsJunk(t *testing.T) {
	_, ok := logFromPayload(map[string]interface{}{"unrelated": true})
	assert.False(t, ok, "payload without an id is not a record")

	_, ok = logFromPayload(make(chan int))
	assert.False(t, ok)

	_, ok = logFromPayload((*models.WebhookLogModel)(nil))
	assert.False(t, ok)
}

func TestRegisterUnregisterCounts(t *testing.T) {
	h := testHub()

	h.registerClient(clientMeta{sid: "s1", userID: "u1"})
	h.registerClient(clientMeta{sid: "s2", userID: "u1"})
	h.registerClient(clientMeta{sid: "s1", userID: "u1"}) // duplicate register is a no-op

	assert.Equal(t, 2, h.ClientCount(""))
	assert.Equal(t, 2, h.ClientCount(UserRoom("u1")))

	h.unregisterClient(clientMeta{sid: "s1", userID: "u1"})
	h.unregisterClient(clientMeta{sid: "s1", userID: "u1"})

	assert.Equal(t, 1, h.ClientCount(""))
	assert.Equal(t, 1, h.ClientCount(UserRoom("u1")))
}

func TestParseInboundMessage(t *testing.T) {
	msg, ok := parseInboundMessage(map[string]interface{}{
		"type":    "filter",
		"payload": map[string]interface{}{"tokenId": "t1"},
	})
	require.True(t, ok)
	assert.Equal(t, "filter", msg.Type)
	assert.Equal(t, "t1", msg.Payload["tokenId"])

	msg, ok = parseInboundMessage(`{"type":"fetch","payload":{"page":2}}`)
	require.True(t, ok)
	assert.Equal(t, "fetch", msg.Type)
	assert.Equal(t, 2, intFromAny(msg.Payload["page"], 0))

	_, ok = parseInboundMessage(map[string]interface{}{"payload": map[string]interface{}{}})
	assert.False(t, ok, "missing type is dropped")

	_, ok = parseInboundMessage()
	assert.False(t, ok)
}
