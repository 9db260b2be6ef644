// Package fakestatsd runs a UDP listener that records statsd datagrams for assertions.
package fakestatsd

import (
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
)

type FakeStatsd struct {
	conn *net.UDPConn

	mu      sync.RWMutex
	metrics []Metric
}

type Metric struct {
	Name  string
	Value string
	Tags  []string
}

// New starts a listener on a free localhost port, closed when the test ends.
func New(t testing.TB) *FakeStatsd {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.Assert(t, err)

	s := &FakeStatsd{conn: conn}
	go s.listen()
	t.Cleanup(func() {
		_ = s.conn.Close()
	})
	return s
}

func (s *FakeStatsd) Addr() string {
	return s.conn.LocalAddr().String()
}

// Metrics returns a copy of everything received so far.
func (s *FakeStatsd) Metrics() []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Metric(nil), s.metrics...)
}

func (s *FakeStatsd) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = nil
}

func (s *FakeStatsd) listen() {
	buf := make([]byte, 65535)
	for {
		n, err := s.conn.Read(buf)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		for _, line := range strings.Split(string(buf[:n]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			s.mu.Lock()
			s.metrics = append(s.metrics, parse(line))
			s.mu.Unlock()
		}
	}
}

// parse reads the dogstatsd line format name:value|type|#tag1,tag2
func parse(raw string) Metric {
	name, rest, _ := strings.Cut(raw, ":")
	value, tags, found := strings.Cut(rest, "#")
	m := Metric{Name: name, Value: value}
	if found {
		m.Tags = strings.Split(tags, ",")
	}
	return m
}
