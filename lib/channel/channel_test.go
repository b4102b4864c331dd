package channel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen starts a loopback listener and returns the accepted connections.
func listen(t *testing.T) (*Config, <-chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		accepted []net.Conn
	)
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range accepted {
			c.Close()
		}
	})

	conns := make(chan net.Conn, 4)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			accepted = append(accepted, c)
			mu.Unlock()
			conns <- c
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return &Config{Host: "127.0.0.1", Port: addr.Port, DialTimeout: time.Second}, conns
}

func dial(t *testing.T) (*Channel, net.Conn) {
	t.Helper()
	cfg, conns := listen(t)
	ch, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { ch.Close() })

	select {
	case peer := <-conns:
		return ch, peer
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not accept")
		return nil, nil
	}
}

func readN(t *testing.T, conn net.Conn, n int) string {
	t.Helper()
	buf := make([]byte, n)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := io.ReadFull(conn, buf)
	require.NoError(t, err)
	return string(buf)
}

func TestSendCommandExactBytes(t *testing.T) {
	ch, peer := dial(t)

	require.NoError(t, ch.SendCommand("armor_detector", "binary_thres", 100))

	want := "armor_detector binary_thres 100\n"
	assert.Equal(t, want, readN(t, peer, len(want)))
}

func TestSendCommandFormatsArguments(t *testing.T) {
	ch, peer := dial(t)

	require.NoError(t, ch.SendCommand("armor_tracker", "max_match_distance", 0.15))
	require.NoError(t, ch.SendCommand("armor_tracker", "gain", stringer("1.500000")))
	require.NoError(t, ch.Show("armor_tracker"))

	want := "armor_tracker max_match_distance 0.15\n" +
		"armor_tracker gain 1.500000\n" +
		"armor_tracker show\n"
	assert.Equal(t, want, readN(t, peer, len(want)))
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestEncodeLineRejectsBadTokens(t *testing.T) {
	for _, tokens := range [][]string{
		{"", "show"},
		{"armor detector", "show"},
		{"armor_detector", "binary\nthres"},
		{"armor_detector", ""},
	} {
		_, err := EncodeLine(tokens[0], tokens[1])
		assert.True(t, errors.Is(err, ErrInvalidToken), "%q", tokens)
	}

	_, err := EncodeLine("armor_detector", "x", "1 2")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestInvalidTokenWritesNothing(t *testing.T) {
	ch, peer := dial(t)

	err := ch.SendCommand("armor_detector", "binary thres", 1)
	require.True(t, errors.Is(err, ErrInvalidToken))
	require.NoError(t, ch.SendCommand("armor_detector", "ok", 1))

	want := "armor_detector ok 1\n"
	assert.Equal(t, want, readN(t, peer, len(want)))
	assert.True(t, ch.Connected())
}

func TestDialFailureIsConnectionError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	start := time.Now()
	ch, err := Dial(context.Background(), &Config{Host: "127.0.0.1", Port: port, DialTimeout: 500 * time.Millisecond})
	assert.Nil(t, ch)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), connErr.Address)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDialRespectsContext(t *testing.T) {
	cfg, _ := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, cfg)
	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestWriteFailureDisconnectsSilently(t *testing.T) {
	local, remote := net.Pipe()
	ch := New(local)
	require.NoError(t, remote.Close())

	assert.True(t, ch.Connected())
	assert.NoError(t, ch.SendCommand("armor_detector", "binary_thres", 1))
	assert.False(t, ch.Connected())

	// Later sends are no-ops and still do not report errors.
	assert.NoError(t, ch.SendCommand("armor_detector", "binary_thres", 2))
	assert.NoError(t, ch.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	ch, _ := dial(t)

	assert.NoError(t, ch.Close())
	assert.False(t, ch.Connected())
	assert.NoError(t, ch.Close())
	assert.NoError(t, ch.Close())
	assert.NoError(t, ch.SendCommand("armor_detector", "binary_thres", 1))
}

func TestConcurrentSendsNeverInterleave(t *testing.T) {
	ch, peer := dial(t)

	const senders, perSender = 16, 50
	expected := make(map[string]int)
	for s := 0; s < senders; s++ {
		for i := 0; i < perSender; i++ {
			expected[fmt.Sprintf("armor_detector p%d %d", s, i)]++
		}
	}

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				assert.NoError(t, ch.SendCommand("armor_detector", fmt.Sprintf("p%d", s), i))
			}
		}(s)
	}

	done := make(chan struct{})
	var got []string
	go func() {
		defer close(done)
		sc := bufio.NewScanner(peer)
		for len(got) < senders*perSender && sc.Scan() {
			got = append(got, sc.Text())
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out reading lines")
	}

	require.Len(t, got, senders*perSender)
	for _, line := range got {
		expected[line]--
	}
	for line, n := range expected {
		assert.Zero(t, n, "line %q", line)
	}
}

func TestSendDoesNotWaitForReply(t *testing.T) {
	ch, peer := dial(t)

	// The peer talks back but the channel never reads it.
	_, err := peer.Write([]byte("unsolicited reply\n"))
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, ch.SendCommand("armor_detector", "binary_thres", i))
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, ch.Connected())

	want := "armor_detector binary_thres 0\narmor_detector binary_thres 1\narmor_detector binary_thres 2\n"
	assert.Equal(t, want, readN(t, peer, len(want)))
}

func TestModuleClients(t *testing.T) {
	ch, peer := dial(t)

	det := NewArmorDetector(ch)
	trk := NewArmorTracker(ch)
	require.NoError(t, det.Send("binary_thres", 120))
	require.NoError(t, trk.Show())

	want := "armor_detector binary_thres 120\narmor_tracker show\n"
	assert.Equal(t, want, readN(t, peer, len(want)))
	assert.Same(t, ch, det.Channel())

	require.NoError(t, det.Close())
	assert.False(t, trk.Channel().Connected())
}

func TestFailedChannelLeavesOthersWorking(t *testing.T) {
	local, remote := net.Pipe()
	broken := NewArmorDetector(New(local))
	require.NoError(t, remote.Close())

	ch, peer := dial(t)
	tracker := NewArmorTracker(ch)

	assert.NoError(t, broken.Send("binary_thres", 1))
	assert.False(t, broken.Channel().Connected())

	require.NoError(t, tracker.Send("tracking_thres", 4))
	assert.True(t, ch.Connected())
	assert.Equal(t, "armor_tracker tracking_thres 4\n", readN(t, peer, len("armor_tracker tracking_thres 4\n")))
}
