package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSender_StampsToken(t *testing.T) {
	ch := make(Channel, 8)
	s := NewSender(42, ch)

	require.NoError(t, s.Send(Text("hi")))
	require.NoError(t, s.Broadcast(Binary([]byte{1, 2})))
	require.NoError(t, s.CloseWithReason(CloseAway, "bye"))
	require.NoError(t, s.Ping([]byte("p")))
	require.NoError(t, s.Shutdown())

	want := []Command{
		{Token: 42, Kind: CommandSend, Message: Text("hi")},
		{Token: 42, Kind: CommandBroadcast, Message: Binary([]byte{1, 2})},
		{Token: 42, Kind: CommandClose, Code: CloseAway, Reason: "bye"},
		{Token: 42, Kind: CommandPing, Data: []byte("p")},
		{Token: 42, Kind: CommandShutdown},
	}
	close(ch)
	var got []Command
	for cmd := range ch {
		got = append(got, cmd)
	}
	require.Equal(t, want, got)
}

func TestSender_Close(t *testing.T) {
	ch := make(Channel, 1)
	require.NoError(t, NewSender(1, ch).Close(CloseNormal))

	cmd := <-ch
	require.Equal(t, CommandClose, cmd.Kind)
	require.Equal(t, CloseNormal, cmd.Code)
	require.Empty(t, cmd.Reason)
}

func TestSender_QueueFull(t *testing.T) {
	s := NewSender(0, make(Channel, 1))

	require.NoError(t, s.Send(Text("first")))
	err := s.Send(Text("second"))

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrQueueFull))
	require.Equal(t, KindCapacity, KindOf(err))
}

func TestSender_ZeroValue(t *testing.T) {
	var s Sender

	err := s.Send(Text("x"))
	require.True(t, errors.Is(err, ErrNoOutbound))
	require.Equal(t, Token(0), s.Token())
}

func TestSender_CopiesShareTheConnection(t *testing.T) {
	ch := make(Channel, 100)
	s := NewSender(5, ch)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(out Sender) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = out.Send(Text("x"))
			}
		}(s)
	}
	wg.Wait()

	require.Len(t, ch, 100)
	for len(ch) > 0 {
		require.Equal(t, Token(5), (<-ch).Token)
	}
}

func TestToken_String(t *testing.T) {
	require.Equal(t, "#12", Token(12).String())
}
