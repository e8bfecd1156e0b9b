package link

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// ErrBridgeClosed is returned once the bridge connection is gone.
var ErrBridgeClosed = errors.New("link: bridge closed")

// Bridge is a serial link tunnelled through a WebSocket, each binary
// message carrying raw bytes. Reads never block: data is buffered by a
// background receiver.
type Bridge struct {
	conn io.ReadWriteCloser

	lock   sync.Mutex
	buf    []byte
	err    error
	closed chan struct{}
}

// DialBridge connects to a WebSocket serial bridge.
func DialBridge(url, origin string) (*Bridge, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	glog.Infof("link: bridge %s connected", url)
	return NewBridge(conn), nil
}

// NewBridge starts receiving from conn. conn delivers a whole message
// per Read, as websocket.Conn does.
func NewBridge(conn io.ReadWriteCloser) *Bridge {
	b := &Bridge{conn: conn, closed: make(chan struct{})}
	go b.receive()
	return b
}

func (b *Bridge) receive() {
	defer close(b.closed)
	chunk := make([]byte, 4096)
	for {
		n, err := b.conn.Read(chunk)
		b.lock.Lock()
		b.buf = append(b.buf, chunk[:n]...)
		if err != nil {
			if err == io.EOF {
				err = ErrBridgeClosed
			}
			b.err = err
		}
		b.lock.Unlock()
		if err != nil {
			glog.Warningf("link: bridge receive: %v", err)
			return
		}
	}
}

// Read returns buffered bytes, or (0, nil) when none are available.
// The receive error is reported once the buffer is drained.
func (b *Bridge) Read(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.buf) == 0 {
		return 0, b.err
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// Write implements io.Writer.
func (b *Bridge) Write(p []byte) (int, error) {
	return b.conn.Write(p)
}

// Close implements io.Closer.
func (b *Bridge) Close() error {
	err := b.conn.Close()
	<-b.closed
	return err
}
