package tracker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/cenkalti/backoff"
)

// protocolID is the magic connection id of a connect request.
const protocolID uint64 = 0x41727101980

const (
	// BEP 15: wait 15 * 2^n seconds, n up to 8.
	defaultTimeout = 15 * time.Second
	defaultRetries = 8

	// A connection id is valid for one minute after it was received.
	connectionIDTTL = time.Minute
)

type connectionPacket struct {
	ConnectionID  uint64
	Action        uint32
	TransactionID uint32
}

// AnnounceResponse is the fixed part of an announce reply plus its compact
// IPv4 peers.
type AnnounceResponse struct {
	Interval time.Duration
	Leechers uint32
	Seeders  uint32
	Peers    []Peer
}

// TrackerError is the message of an error action sent by the tracker.
type TrackerError string

func (e TrackerError) Error() string { return "tracker: " + string(e) }

var errTimeout = errors.New("tracker: no response")

// UDPTracker speaks the UDP tracker protocol to a single tracker. It is not
// safe for concurrent use.
type UDPTracker struct {
	Tracker Tracker
	Timeout time.Duration // first response timeout, doubled on each retry
	Retries int           // retransmissions after the first send

	conn         net.Conn
	connectionID uint64
	connectedAt  time.Time
}

// NewUDPTracker returns a client for t with the BEP 15 timeouts.
func NewUDPTracker(t Tracker) (*UDPTracker, error) {
	if t.Protocol != UDP || t.URL == nil {
		return nil, fmt.Errorf("tracker: %s is not a udp tracker", t.Raw)
	}
	return &UDPTracker{Tracker: t, Timeout: defaultTimeout, Retries: defaultRetries}, nil
}

func (t *UDPTracker) dial(ctx context.Context) error {
	if t.conn != nil {
		return nil
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, "udp", t.Tracker.URL.Host)
	if err != nil {
		return err
	}
	t.conn = c
	if addr, ok := c.RemoteAddr().(*net.UDPAddr); ok {
		t.Tracker.Endpoint = addr
	}
	return nil
}

// Connect obtains a connection id from the tracker.
func (t *UDPTracker) Connect(ctx context.Context) error {
	if err := t.dial(ctx); err != nil {
		return err
	}
	log.Printf("Handshaking UDP tracker %s (%s)\n", t.Tracker.URL.Host, t.conn.RemoteAddr())

	txID := RandomUint32()
	packet, err := marshalPacket(connectionPacket{
		ConnectionID:  protocolID,
		Action:        actionConnect,
		TransactionID: txID,
	})
	if err != nil {
		return err
	}

	resp, err := t.roundTrip(ctx, packet, actionConnect, txID, 16)
	if err != nil {
		return err
	}
	t.connectionID = binary.BigEndian.Uint64(resp[8:16])
	t.connectedAt = time.Now()
	return nil
}

// Announce fills in the connection and transaction ids of b, sends it and
// decodes the reply. It connects first when there is no valid connection id.
func (t *UDPTracker) Announce(ctx context.Context, b *AnnounceBuilder) (*AnnounceResponse, error) {
	if t.conn == nil || time.Since(t.connectedAt) > connectionIDTTL {
		if err := t.Connect(ctx); err != nil {
			return nil, err
		}
	}

	txID := RandomUint32()
	packet, err := b.ConnectionID(t.connectionID).TransactionID(txID).Serialize()
	if err != nil {
		return nil, err
	}

	resp, err := t.roundTrip(ctx, packet[:], actionAnnounce, txID, 20)
	if err != nil {
		return nil, err
	}
	r := unmarshalAnnounce(resp)
	log.Printf("Tracker %s answered with %d peers\n", t.Tracker.URL.Host, len(r.Peers))
	return r, nil
}

// Close releases the socket.
func (t *UDPTracker) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// roundTrip sends packet until a reply with the expected action and
// transaction id arrives. The read timeout starts at t.Timeout and doubles on
// every retransmission.
func (t *UDPTracker) roundTrip(ctx context.Context, packet []byte, action, txID uint32, minLen int) ([]byte, error) {
	policy := &backoff.ExponentialBackOff{
		InitialInterval:     t.Timeout,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         t.Timeout << uint(t.Retries),
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
	policy.Reset()
	schedule := backoff.WithMaxRetries(policy, uint64(t.Retries)+1)

	buf := make([]byte, 2048)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			return nil, errTimeout
		}

		if _, err := t.conn.Write(packet); err != nil {
			return nil, err
		}
		deadline := time.Now().Add(wait)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}

		resp, err := t.readReply(buf, action, txID, minLen)
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// readReply reads until a datagram for txID arrives or the deadline passes.
// Datagrams for other transactions are dropped.
func (t *UDPTracker) readReply(buf []byte, action, txID uint32, minLen int) ([]byte, error) {
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			return nil, err
		}
		if n < 8 || binary.BigEndian.Uint32(buf[4:8]) != txID {
			continue
		}

		switch got := binary.BigEndian.Uint32(buf[0:4]); {
		case got == actionError:
			return nil, TrackerError(buf[8:n])
		case got != action:
			return nil, fmt.Errorf("tracker: expected action %d, got %d", action, got)
		case n < minLen:
			return nil, fmt.Errorf("tracker: short reply of %d bytes", n)
		}
		resp := make([]byte, n)
		copy(resp, buf[:n])
		return resp, nil
	}
}

func unmarshalAnnounce(buffer []byte) *AnnounceResponse {
	response := AnnounceResponse{
		Interval: time.Duration(binary.BigEndian.Uint32(buffer[8:12])) * time.Second,
		Leechers: binary.BigEndian.Uint32(buffer[12:16]),
		Seeders:  binary.BigEndian.Uint32(buffer[16:20]),
	}

	for i := 20; i+6 <= len(buffer); i += 6 {
		response.Peers = append(response.Peers, Peer{
			IP:   net.IP(append([]byte(nil), buffer[i:i+4]...)),
			Port: binary.BigEndian.Uint16(buffer[i+4 : i+6]),
		})
	}
	return &response
}
