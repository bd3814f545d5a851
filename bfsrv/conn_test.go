package bfsrv_test

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/advdv/bframe/bfsrv"
	"github.com/advdv/bframe/bfsrv/bfsrvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestServerPipelining(t *testing.T) {
	bfsrvtest.SetBaseEnv(t).ReadChunkSize(7)
	app := startApp(t)

	conn := app.Dial(t)
	rd := bfsrvtest.NewReader(conn)

	stream := "GET /items/1 HTTP/1.1\r\n\r\n" +
		"POST /echo HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello" +
		"GET /items/2 HTTP/1.1\r\nHost: localhost\r\n\r\n"

	for _, part := range []string{stream[:3], stream[3:30], stream[30:31], stream[31:]} {
		_, err := conn.Write([]byte(part))
		require.NoError(t, err)
	}

	resp := next(t, conn, rd)
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(resp))
	assert.JSONEq(t, `{"id":"1","self":"/items/1","service":"test"}`, string(resp.Body()))

	resp = next(t, conn, rd)
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(resp))
	assert.Equal(t, "hello", string(resp.Body()))

	resp = next(t, conn, rd)
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(resp))
	assert.JSONEq(t, `{"id":"2","self":"/items/2","service":"test"}`, string(resp.Body()))

	t.Run("connection stays open", func(t *testing.T) {
		resp := exchange(t, conn, rd, "GET /items/3 HTTP/1.1\r\n\r\n")
		assert.Equal(t, "HTTP/1.1 200 OK", statusLine(resp))
	})
}

func TestServerRejectsUnframeableStreams(t *testing.T) {
	bfsrvtest.SetBaseEnv(t).MaxBufferedBytes(64)
	app := startApp(t)

	for _, tt := range []struct {
		name    string
		payload string
		expLine string
	}{
		{
			name:    "missing content length",
			payload: "POST /echo HTTP/1.1\r\nHost: localhost\r\n\r\n",
			expLine: "HTTP/1.1 411 Length Required",
		},
		{
			name:    "malformed content length",
			payload: "POST /echo HTTP/1.1\r\nContent-Length: abc\r\n\r\n",
			expLine: "HTTP/1.1 400 Bad Request",
		},
		{
			name:    "unrecognized method",
			payload: "PUT /items/1 HTTP/1.1\r\n\r\n",
			expLine: "HTTP/1.1 501 Not Implemented",
		},
		{
			name:    "buffer full",
			payload: "GET /" + string(make([]byte, 100)),
			expLine: "HTTP/1.1 413 Request Entity Too Large",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			conn := app.Dial(t)
			rd := bfsrvtest.NewReader(conn)

			resp := exchange(t, conn, rd, tt.payload)
			assert.Equal(t, tt.expLine, statusLine(resp))

			require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
			_, err := rd.Next()
			require.Error(t, err)
		})
	}

	t.Run("messages before the failure are served", func(t *testing.T) {
		conn := app.Dial(t)
		rd := bfsrvtest.NewReader(conn)

		_, err := conn.Write([]byte("GET /items/1 HTTP/1.1\r\n\r\nPOST /echo HTTP/1.1\r\n\r\n"))
		require.NoError(t, err)

		assert.Equal(t, "HTTP/1.1 200 OK", statusLine(next(t, conn, rd)))
		assert.Equal(t, "HTTP/1.1 411 Length Required", statusLine(next(t, conn, rd)))
	})
}

func TestServerIdleTimeout(t *testing.T) {
	bfsrvtest.SetBaseEnv(t).IdleTimeout(50 * time.Millisecond)
	app := startApp(t)

	conn := app.Dial(t)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, err := conn.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
}

func TestServerMaxConnections(t *testing.T) {
	bfsrvtest.SetBaseEnv(t).MaxConnections(1)
	app := startApp(t)

	conn1 := app.Dial(t)
	rd1 := bfsrvtest.NewReader(conn1)
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(exchange(t, conn1, rd1, "GET /items/1 HTTP/1.1\r\n\r\n")))

	conn2 := app.Dial(t)
	rd2 := bfsrvtest.NewReader(conn2)

	_, err := conn2.Write([]byte("GET /items/2 HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	require.NoError(t, conn2.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, err = rd2.Next()

	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	require.True(t, nerr.Timeout())

	require.NoError(t, conn1.Close())
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(next(t, conn2, rd2)))
}

func TestServerShutdown(t *testing.T) {
	bfsrvtest.SetBaseEnv(t)

	app := bfsrvtest.New[TestEnv](t, routing, bfsrv.WithFx(fx.Provide(newHandlers)))
	app.RequireStart()

	conn := app.Dial(t)
	rd := bfsrvtest.NewReader(conn)
	assert.Equal(t, "HTTP/1.1 200 OK", statusLine(exchange(t, conn, rd, "GET /items/1 HTTP/1.1\r\n\r\n")))

	app.RequireStop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err := conn.Read(make([]byte, 1))
	require.Error(t, err)

	_, err = net.DialTimeout("tcp", app.Addr(), time.Second)
	require.Error(t, err)
}
