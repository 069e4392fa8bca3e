package tracker

import (
	"bytes"
	"encoding/binary"
	"net"
	"net/url"
)

// Protocol is the transport a tracker is reached over.
type Protocol int

const (
	HTTP Protocol = iota
	UDP
)

func (p Protocol) String() string {
	if p == UDP {
		return "udp"
	}
	return "http"
}

// Tracker is one entry of the announce list.
type Tracker struct {
	Raw      string // URL text as found in the descriptor
	URL      *url.URL
	Protocol Protocol
	Tier     int // -1 for the primary announce URL

	// Endpoint is left nil here; transports resolve it lazily.
	Endpoint *net.UDPAddr
}

// Peer is a compact IPv4 peer returned by a tracker.
type Peer struct {
	IP   net.IP
	Port uint16
}

// marshalPacket packs a struct of fixed-size fields in network byte order.
func marshalPacket(st interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.BigEndian, st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
