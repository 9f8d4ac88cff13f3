//go:build linux || darwin

package utils

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type CANReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

type SocketCANReader struct {
	conn   net.Conn
	recv   *socketcan.Receiver
	frames chan can.Frame
	done   chan struct{}
	err    error // set before done is closed
}

func NewSocketCANReader(ctx context.Context, iface string) (*SocketCANReader, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return newSocketCANReader(conn), nil
}

func newSocketCANReader(conn net.Conn) *SocketCANReader {
	r := &SocketCANReader{
		conn:   conn,
		recv:   socketcan.NewReceiver(conn),
		frames: make(chan can.Frame, 16),
		done:   make(chan struct{}),
	}
	go r.pump()
	return r
}

// pump owns the receiver so a cancelled ReadFrame never leaks a goroutine
// blocked on the socket.
func (r *SocketCANReader) pump() {
	defer close(r.done)
	for r.recv.Receive() {
		if r.recv.HasErrorFrame() {
			continue
		}
		r.frames <- r.recv.Frame()
	}
	r.err = r.recv.Err()
	if r.err == nil {
		r.err = errors.New("can receiver closed")
	}
}

// ReadFrame blocks until a data frame arrives or ctx is done. Once the
// receiver has stopped every call returns its terminal error.
func (r *SocketCANReader) ReadFrame(ctx context.Context) (can.Frame, error) {
	select {
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case f := <-r.frames:
		return f, nil
	case <-r.done:
		select {
		case f := <-r.frames:
			return f, nil
		default:
			return can.Frame{}, r.err
		}
	}
}

func (r *SocketCANReader) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
