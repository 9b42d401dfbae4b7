package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(nil)
	require.NoError(t, err)
	clientB, err := hub.Register(nil)
	require.NoError(t, err)
	assert.NotEqual(t, clientA.ID, clientB.ID)
	assert.Equal(t, 2, hub.Len())

	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.Len())

	// Unregistering twice is harmless.
	hub.UnregisterClient(clientA)
	assert.Equal(t, 1, hub.Len())

	hub.UnregisterClient(clientB)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_SendReachesOnlyTarget(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(nil)
	require.NoError(t, err)
	clientB, err := hub.Register(nil)
	require.NoError(t, err)

	ok := hub.Send(clientA.ID, []byte("hello"))
	assert.True(t, ok)

	select {
	case msg := <-clientA.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("expected message buffered for client A")
	}

	select {
	case <-clientB.Send:
		t.Fatal("client B should not receive a targeted send")
	default:
	}

	hub.UnregisterClient(clientA)
	assert.False(t, hub.Send(clientA.ID, []byte("gone")))
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(nil)
	require.NoError(t, err)
	clientB, err := hub.Register(nil)
	require.NoError(t, err)

	hub.BroadcastAll([]byte("fanout"))

	for _, c := range []*Client{clientA, clientB} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "fanout", string(msg))
		default:
			t.Fatal("expected broadcast message buffered")
		}
	}
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(nil)
	require.NoError(t, err)

	// Fill the outbound buffer; the overflow message must be dropped
	// without blocking.
	for i := 0; i < cap(client.Send); i++ {
		client.TrySend([]byte("x"))
	}
	done := make(chan struct{})
	go func() {
		client.TrySend([]byte("overflow"))
		close(done)
	}()
	<-done
	assert.Len(t, client.Send, cap(client.Send))
}

func TestHub_ShutdownClearsConnections(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(nil)
	require.NoError(t, err)
	_, err = hub.Register(nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Len())
}
