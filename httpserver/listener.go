package httpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/zetteln/server/system"
)

// trackedListener counts the connections it has accepted and that are still open.
type trackedListener struct {
	net.Listener
	name string

	active   int64
	accepted int64
}

func (l *trackedListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&l.active, 1)
	atomic.AddInt64(&l.accepted, 1)
	return &trackedConn{Conn: c, listener: l}, nil
}

func (l *trackedListener) GaugeName() string {
	return "http_server"
}

func (l *trackedListener) Gauges(context.Context) map[string][]system.TaggedValue {
	tags := []string{"server_name:" + l.name}
	return map[string][]system.TaggedValue{
		"active_connections":   {{Val: float64(atomic.LoadInt64(&l.active)), Tags: tags}},
		"accepted_connections": {{Val: float64(atomic.LoadInt64(&l.accepted)), Tags: tags}},
	}
}

type trackedConn struct {
	net.Conn
	listener *trackedListener
	once     sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() {
		atomic.AddInt64(&c.listener.active, -1)
	})
	return c.Conn.Close()
}
