package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntoineB0/CrabKV/engine"
)

func startTestServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()

	e, err := engine.Open(engine.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	s := New(e, Config{Addr: "127.0.0.1:0"})

	started := make(chan struct{})
	go func() {
		// Start blocks; poll Addr() until the listener is bound.
		go func() {
			for s.Addr() == "" {
				time.Sleep(time.Millisecond)
			}
			close(started)
		}()
		s.Start()
	}()
	<-started
	t.Cleanup(func() { s.Close() })

	conn, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return s, conn
}

func sendLine(t *testing.T, conn net.Conn, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return reply[:len(reply)-1]
}

func TestPutGetRoundTripOverWire(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "OK", sendLine(t, conn, "PUT greeting hello"))
	require.Equal(t, "VALUE hello", sendLine(t, conn, "GET greeting"))
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "NOT_FOUND", sendLine(t, conn, "GET nope"))
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "OK", sendLine(t, conn, "PUT k v"))
	require.Equal(t, "OK", sendLine(t, conn, "DELETE k"))
	require.Equal(t, "NOT_FOUND", sendLine(t, conn, "GET k"))
}

func TestDeleteMissingKeyIsNotFound(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "NOT_FOUND", sendLine(t, conn, "DELETE nope"))
}

func TestPutWithTTLExpires(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "OK", sendLine(t, conn, "PUT k v ttl=1"))
	require.Equal(t, "VALUE v", sendLine(t, conn, "GET k"))
	time.Sleep(1100 * time.Millisecond)
	require.Equal(t, "NOT_FOUND", sendLine(t, conn, "GET k"))
}

func TestCompactCommandReturnsOK(t *testing.T) {
	_, conn := startTestServer(t)

	require.Equal(t, "OK", sendLine(t, conn, "PUT k v"))
	require.Equal(t, "OK", sendLine(t, conn, "COMPACT"))
	require.Equal(t, "VALUE v", sendLine(t, conn, "GET k"))
}

func TestUnknownCommandIsError(t *testing.T) {
	_, conn := startTestServer(t)

	reply := sendLine(t, conn, "FROBNICATE x")
	require.Contains(t, reply, "ERR")
}

func TestHelpListsCommands(t *testing.T) {
	_, conn := startTestServer(t)

	reply := sendLine(t, conn, "HELP")
	for _, want := range []string{"PUT", "GET", "DELETE", "COMPACT"} {
		require.Contains(t, reply, want)
	}
}

func TestCloseDrainsInFlightConnections(t *testing.T) {
	s, conn := startTestServer(t)

	require.Equal(t, "OK", sendLine(t, conn, "PUT k v"))
	// Close waits for every handler to return; the client hangs up so its
	// handler finishes.
	conn.Close()
	require.NoError(t, s.Close())
}
