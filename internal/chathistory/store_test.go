package chathistory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKeyRoundTrip(t *testing.T) {
	id := NewSessionID()
	key := sessionKey(id)
	assert.Equal(t, "chat_history/"+id+".json", key)
	assert.Equal(t, id, sessionIDFromKey(key))
}

func TestNewSessionIDUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestMessageSerialization(t *testing.T) {
	msgs := []Message{
		{Type: "human", Content: "show me last week's spend"},
		{Type: "ai", Content: "total spend was $120.50"},
	}
	data, err := json.Marshal(msgs)
	require.NoError(t, err)

	var decoded []Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msgs, decoded)

	// Field names are part of the stored format.
	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "human", raw[0]["type"])
	assert.Equal(t, "show me last week's spend", raw[0]["content"])
}
