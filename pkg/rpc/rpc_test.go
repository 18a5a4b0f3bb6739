package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoParams struct {
	Text string `json:"text"`
}

func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.ServeListener(ln)
	t.Cleanup(s.Stop)
	return ln.Addr().String()
}

func TestCallRoundTrip(t *testing.T) {
	s := NewServer(time.Second)
	s.Register("Echo.Upper", func(ctx context.Context, req json.RawMessage) (any, error) {
		var p echoParams
		if err := json.Unmarshal(req, &p); err != nil {
			return nil, err
		}
		return echoParams{Text: p.Text + "!"}, nil
	})
	s.Register("Echo.Fail", func(ctx context.Context, req json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})
	addr := startServer(t, s)
	assert.Equal(t, 2, s.MethodCount())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	var out echoParams
	require.NoError(t, c.Call(ctx, "Echo.Upper", echoParams{Text: "hi"}, &out))
	assert.Equal(t, "hi!", out.Text)

	err = c.Call(ctx, "Echo.Fail", nil, nil)
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "boom")

	err = c.Call(ctx, "Echo.Missing", nil, nil)
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "unknown method")
}

func TestConcurrentCallsShareConnection(t *testing.T) {
	s := NewServer(0)
	s.Register("Echo.Same", func(ctx context.Context, req json.RawMessage) (any, error) {
		return json.RawMessage(req), nil
	})
	addr := startServer(t, s)

	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var out int
			assert.NoError(t, c.Call(context.Background(), "Echo.Same", n, &out))
			assert.Equal(t, n, out)
		}(i)
	}
	wg.Wait()
}

func TestStopClosesIdleConnections(t *testing.T) {
	s := NewServer(0)
	addr := startServer(t, s)

	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an idle connection")
	}
}

// lateListener hands out one connection only after Stop has started, the
// window where a conn is accepted while the server shuts down.
type lateListener struct {
	s      *Server
	conn   net.Conn
	handed bool
}

func (l *lateListener) Accept() (net.Conn, error) {
	if l.handed {
		return nil, net.ErrClosed
	}
	<-l.s.done
	l.handed = true
	return l.conn, nil
}

func (l *lateListener) Close() error   { return nil }
func (l *lateListener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func TestConnAcceptedDuringStopIsClosed(t *testing.T) {
	s := NewServer(0)
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	served := make(chan error, 1)
	go func() { served <- s.ServeListener(&lateListener{s: s, conn: serverSide}) }()

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.listener != nil
	}, time.Second, time.Millisecond)

	s.Stop()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeListener did not return after Stop")
	}

	s.mu.RLock()
	assert.Empty(t, s.conns)
	s.mu.RUnlock()

	clientSide.SetReadDeadline(time.Now().Add(time.Second))
	_, err := clientSide.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
