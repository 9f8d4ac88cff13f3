package utils

import (
	"context"
	"fmt"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

type SocketCANWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

func NewSocketCANWriter(ctx context.Context, iface string) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketCANWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	return w.tx.TransmitFrame(ctx, frame)
}

func (w *SocketCANWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

// FrameSink is a CANWriter that keeps every frame in memory, used by the
// bench and tests in place of a socket.
type FrameSink struct {
	Frames []can.Frame
}

func (s *FrameSink) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Frames = append(s.Frames, frame)
	return nil
}

func (s *FrameSink) Close() error { return nil }

// Last returns the most recent frame with the given id.
func (s *FrameSink) Last(id uint32) (can.Frame, bool) {
	for i := len(s.Frames) - 1; i >= 0; i-- {
		if s.Frames[i].ID == id {
			return s.Frames[i], true
		}
	}
	return can.Frame{}, false
}
