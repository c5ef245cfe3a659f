package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrivateRefOrderIndependent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PrivateRef("a", "b"), PrivateRef("b", "a"))
	assert.Equal(t, "private:a:b", PrivateRef("b", "a"))
}

func TestMessageRef(t *testing.T) {
	t.Parallel()
	receiver := "b"
	groupID := "g1"

	private := &Message{SenderID: "a", ReceiverID: &receiver}
	assert.Equal(t, "private:a:b", private.Ref())
	assert.True(t, private.IsPrivate())
	assert.True(t, private.AddressingValid())

	group := &Message{SenderID: "a", GroupID: &groupID}
	assert.Equal(t, "group:g1", group.Ref())
	assert.False(t, group.IsPrivate())

	invalid := &Message{SenderID: "a", ReceiverID: &receiver, GroupID: &groupID}
	assert.False(t, invalid.AddressingValid())
	assert.False(t, (&Message{SenderID: "a"}).AddressingValid())
}
