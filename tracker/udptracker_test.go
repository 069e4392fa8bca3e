package tracker

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"
)

// fakeTracker answers connect and announce requests on a loopback socket.
type fakeTracker struct {
	conn         net.PacketConn
	dropConnects int
	announces    chan []byte
	errorMessage string
}

func newFakeTracker(t *testing.T) *fakeTracker {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %s", err)
	}
	f := &fakeTracker{conn: conn, announces: make(chan []byte, 4)}
	t.Cleanup(func() { conn.Close() })
	return f
}

func (f *fakeTracker) tracker(t *testing.T) Tracker {
	r := Build("udp://"+f.conn.LocalAddr().String()+"/announce", nil, FirstPerTier)
	if len(r.Trackers) != 1 {
		t.Fatalf("Expected one tracker, got %v", r.Skipped)
	}
	return r.Trackers[0]
}

func (f *fakeTracker) serve() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := f.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		action := binary.BigEndian.Uint32(buf[8:12])
		txID := buf[12:16]

		reply := &bytes.Buffer{}
		switch {
		case f.errorMessage != "":
			binary.Write(reply, binary.BigEndian, actionError)
			reply.Write(txID)
			reply.WriteString(f.errorMessage)
		case action == actionConnect && n == 16:
			if f.dropConnects > 0 {
				f.dropConnects--
				continue
			}
			binary.Write(reply, binary.BigEndian, actionConnect)
			reply.Write(txID)
			binary.Write(reply, binary.BigEndian, uint64(0xabcdef))
		case action == actionAnnounce && n == AnnounceSize:
			f.announces <- append([]byte(nil), buf[:n]...)
			binary.Write(reply, binary.BigEndian, actionAnnounce)
			reply.Write(txID)
			binary.Write(reply, binary.BigEndian, []uint32{1800, 3, 7})
			reply.Write([]byte{10, 0, 0, 1, 0x1a, 0xe1})
			reply.Write([]byte{192, 168, 1, 2, 0, 80})
		default:
			continue
		}
		f.conn.WriteTo(reply.Bytes(), addr)
	}
}

func announceBuilder() *AnnounceBuilder {
	return NewAnnounceBuilder().
		InfoHash(testInfoHash).
		PeerID(NewPeerID()).
		Downloaded(0).
		Left(1024).
		Uploaded(0).
		Event(EventStarted).
		IP(IPInferred).
		Key(RandomUint32()).
		NumWant(NumWantDefault).
		Port(6881)
}

func Test_UDPTrackerAnnounce(t *testing.T) {
	f := newFakeTracker(t)
	go f.serve()

	ut, err := NewUDPTracker(f.tracker(t))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	ut.Timeout = time.Second
	defer ut.Close()

	resp, err := ut.Announce(context.Background(), announceBuilder())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if resp.Interval != 30*time.Minute || resp.Leechers != 3 || resp.Seeders != 7 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(resp.Peers) != 2 {
		t.Fatalf("Expected 2 peers, got %d", len(resp.Peers))
	}
	if !resp.Peers[0].IP.Equal(net.IPv4(10, 0, 0, 1)) || resp.Peers[0].Port != 6881 {
		t.Errorf("Unexpected first peer: %v", resp.Peers[0])
	}
	if !resp.Peers[1].IP.Equal(net.IPv4(192, 168, 1, 2)) || resp.Peers[1].Port != 80 {
		t.Errorf("Unexpected second peer: %v", resp.Peers[1])
	}

	packet := <-f.announces
	if binary.BigEndian.Uint64(packet[0:8]) != 0xabcdef {
		t.Errorf("Expected connection id from connect reply, got %x", packet[0:8])
	}
	if !bytes.Equal(packet[16:36], testInfoHash[:]) {
		t.Errorf("Expected info hash in packet")
	}
	if ut.Tracker.Endpoint == nil {
		t.Errorf("Expected endpoint to be resolved by the transport")
	}
}

func Test_UDPTrackerRetransmits(t *testing.T) {
	f := newFakeTracker(t)
	f.dropConnects = 1
	go f.serve()

	ut, _ := NewUDPTracker(f.tracker(t))
	ut.Timeout = 50 * time.Millisecond
	defer ut.Close()

	if err := ut.Connect(context.Background()); err != nil {
		t.Fatalf("Expected connect to succeed after a retransmission, got %s", err)
	}
	if ut.connectionID != 0xabcdef {
		t.Errorf("Expected connection id, got %x", ut.connectionID)
	}
}

func Test_UDPTrackerGivesUp(t *testing.T) {
	f := newFakeTracker(t)
	f.dropConnects = 100
	go f.serve()

	ut, _ := NewUDPTracker(f.tracker(t))
	ut.Timeout = 10 * time.Millisecond
	ut.Retries = 2
	defer ut.Close()

	if err := ut.Connect(context.Background()); !errors.Is(err, errTimeout) {
		t.Errorf("Expected timeout, got %v", err)
	}
}

func Test_UDPTrackerContextCancel(t *testing.T) {
	f := newFakeTracker(t)
	f.dropConnects = 100
	go f.serve()

	ut, _ := NewUDPTracker(f.tracker(t))
	ut.Timeout = time.Second
	defer ut.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := ut.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func Test_UDPTrackerErrorAction(t *testing.T) {
	f := newFakeTracker(t)
	f.errorMessage = "torrent not registered"
	go f.serve()

	ut, _ := NewUDPTracker(f.tracker(t))
	ut.Timeout = time.Second
	defer ut.Close()

	err := ut.Connect(context.Background())
	var trackerErr TrackerError
	if !errors.As(err, &trackerErr) || string(trackerErr) != "torrent not registered" {
		t.Errorf("Expected tracker error, got %v", err)
	}
}

func Test_NewUDPTrackerRejectsHTTP(t *testing.T) {
	r := Build("http://tracker.example/announce", nil, FirstPerTier)
	if _, err := NewUDPTracker(r.Trackers[0]); err == nil {
		t.Errorf("Expected error for http tracker")
	}
}
