package postgres

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novocode/novocode-api/pkg/db"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledServer accepts TCP connections and hands each one to serve. Accepted
// connections stay open until the test ends.
func stalledServer(t *testing.T, serve func(conn net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
			go serve(conn)
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
		}
	})

	return ln.Addr().String()
}

// neverAnswer reads whatever the client sends and never replies.
func neverAnswer(conn net.Conn) {
	buf := make([]byte, 1024)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// answerStartupOnly completes the startup handshake, then swallows every
// query without replying.
func answerStartupOnly(conn net.Conn) {
	backend := pgproto3.NewBackend(conn, conn)
	if _, err := backend.ReceiveStartupMessage(); err != nil {
		return
	}
	backend.Send(&pgproto3.AuthenticationOk{})
	backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
	if err := backend.Flush(); err != nil {
		return
	}
	for {
		if _, err := backend.Receive(); err != nil {
			return
		}
	}
}

func newTimeoutTestClient(t *testing.T, addr string, attempts int) *Client {
	t.Helper()

	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:            "postgres://novocode:secret@" + addr + "/novocode?sslmode=disable",
		MaxConns:       2,
		ConnectTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	c := NewClient(pool, Config{
		ConnectAttempts:   attempts,
		ConnectRetryDelay: 10 * time.Millisecond,
		ConnectTimeout:    300 * time.Millisecond,
		OperationTimeout:  300 * time.Millisecond,
		ProbeTimeout:      300 * time.Millisecond,
	})
	t.Cleanup(c.Close)
	return c
}

func TestClient_ServerThatNeverAnswersFailsWithinConnectTimeout(t *testing.T) {
	c := newTimeoutTestClient(t, stalledServer(t, neverAnswer), 2)

	start := time.Now()
	_, err := c.GetTestimonialByToken(context.Background(), "tok-123")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.False(t, apperrors.IsDefinitive(err))
	assert.Less(t, elapsed, 3*time.Second)
}

func TestClient_StalledQueryFailsWithinOperationTimeout(t *testing.T) {
	c := newTimeoutTestClient(t, stalledServer(t, answerStartupOnly), 1)

	start := time.Now()
	_, err := c.GetTestimonialByToken(context.Background(), "tok-123")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.False(t, apperrors.IsDefinitive(err))
	assert.Less(t, elapsed, 3*time.Second)
}

func TestClient_ProbeFailsOnServerThatNeverAnswers(t *testing.T) {
	c := newTimeoutTestClient(t, stalledServer(t, neverAnswer), 1)

	start := time.Now()
	err := c.Probe(context.Background())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestNewClient_FillsMissingTimeouts(t *testing.T) {
	c := NewClient((*pgxpool.Pool)(nil), Config{ConnectAttempts: 3})

	defaults := DefaultConfig()
	assert.Equal(t, defaults.ConnectTimeout, c.connectTimeout)
	assert.Equal(t, defaults.OperationTimeout, c.operationTimeout)
	assert.Equal(t, defaults.ProbeTimeout, c.probeTimeout)
	assert.Equal(t, 2, c.connectRetry.MaxRetries)
}
