package tracker

import (
	"fmt"
	"strings"
)

// AnnounceSize is the length of a BEP 15 IPv4 announce request.
const AnnounceSize = 98

const (
	actionConnect  uint32 = 0
	actionAnnounce uint32 = 1
	actionError    uint32 = 3
)

const (
	// IPInferred asks the tracker to use the packet's source address.
	IPInferred uint32 = 0
	// NumWantDefault lets the tracker choose how many peers to return.
	NumWantDefault int32 = -1
)

// Event is the announce event. Values match the UDP tracker protocol.
type Event int32

const (
	EventNone Event = iota
	EventCompleted
	EventStarted
	EventStopped
)

var eventNames = [...]string{"", "completed", "started", "stopped"}

// String returns the event as written in an HTTP announce query.
func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return ""
	}
	return eventNames[e]
}

// announcePacket is marshalled as-is, so field order and widths are the wire
// layout.
type announcePacket struct {
	ConnectionID  uint64
	Action        uint32
	TransactionID uint32
	InfoHash      [20]byte
	PeerID        [20]byte
	Downloaded    int64
	Left          int64
	Uploaded      int64
	Event         int32
	IP            uint32
	Key           uint32
	NumWant       int32
	Port          uint16
}

// AnnounceRecord is a complete announce request. It can only be obtained
// from AnnounceBuilder.Build, so every field is known to be set.
type AnnounceRecord struct {
	p announcePacket
}

func (r *AnnounceRecord) ConnectionID() uint64  { return r.p.ConnectionID }
func (r *AnnounceRecord) TransactionID() uint32 { return r.p.TransactionID }
func (r *AnnounceRecord) InfoHash() [20]byte    { return r.p.InfoHash }
func (r *AnnounceRecord) Event() Event          { return Event(r.p.Event) }

// MarshalBinary returns the 98-byte wire form.
func (r *AnnounceRecord) MarshalBinary() ([]byte, error) {
	return marshalPacket(r.p)
}

// Bytes returns the 98-byte wire form.
func (r *AnnounceRecord) Bytes() [AnnounceSize]byte {
	buf, err := r.MarshalBinary()
	if err != nil || len(buf) != AnnounceSize {
		panic(fmt.Sprintf("tracker: announce packet is %d bytes: %v", len(buf), err))
	}
	var out [AnnounceSize]byte
	copy(out[:], buf)
	return out
}

// MissingFieldsError lists every announce field that was never set.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "tracker: announce missing fields: " + strings.Join(e.Fields, ", ")
}

type announceField uint16

const (
	fieldConnectionID announceField = 1 << iota
	fieldTransactionID
	fieldInfoHash
	fieldPeerID
	fieldDownloaded
	fieldLeft
	fieldUploaded
	fieldEvent
	fieldIP
	fieldKey
	fieldNumWant
	fieldPort
)

// Wire order, used for MissingFieldsError.
var announceFields = []struct {
	f    announceField
	name string
}{
	{fieldConnectionID, "connection_id"},
	{fieldTransactionID, "transaction_id"},
	{fieldInfoHash, "info_hash"},
	{fieldPeerID, "peer_id"},
	{fieldDownloaded, "downloaded"},
	{fieldLeft, "left"},
	{fieldUploaded, "uploaded"},
	{fieldEvent, "event"},
	{fieldIP, "ip_address"},
	{fieldKey, "key"},
	{fieldNumWant, "num_want"},
	{fieldPort, "port"},
}

// AnnounceBuilder collects announce fields. Nothing is defaulted: Build
// fails until every setter has been called. The action is always announce.
type AnnounceBuilder struct {
	p   announcePacket
	set announceField
}

func NewAnnounceBuilder() *AnnounceBuilder {
	return &AnnounceBuilder{p: announcePacket{Action: actionAnnounce}}
}

func (b *AnnounceBuilder) ConnectionID(v uint64) *AnnounceBuilder {
	b.p.ConnectionID = v
	b.set |= fieldConnectionID
	return b
}

func (b *AnnounceBuilder) TransactionID(v uint32) *AnnounceBuilder {
	b.p.TransactionID = v
	b.set |= fieldTransactionID
	return b
}

func (b *AnnounceBuilder) InfoHash(v [20]byte) *AnnounceBuilder {
	b.p.InfoHash = v
	b.set |= fieldInfoHash
	return b
}

func (b *AnnounceBuilder) PeerID(v PeerID) *AnnounceBuilder {
	b.p.PeerID = v
	b.set |= fieldPeerID
	return b
}

func (b *AnnounceBuilder) Downloaded(v int64) *AnnounceBuilder {
	b.p.Downloaded = v
	b.set |= fieldDownloaded
	return b
}

func (b *AnnounceBuilder) Left(v int64) *AnnounceBuilder {
	b.p.Left = v
	b.set |= fieldLeft
	return b
}

func (b *AnnounceBuilder) Uploaded(v int64) *AnnounceBuilder {
	b.p.Uploaded = v
	b.set |= fieldUploaded
	return b
}

func (b *AnnounceBuilder) Event(v Event) *AnnounceBuilder {
	b.p.Event = int32(v)
	b.set |= fieldEvent
	return b
}

func (b *AnnounceBuilder) IP(v uint32) *AnnounceBuilder {
	b.p.IP = v
	b.set |= fieldIP
	return b
}

func (b *AnnounceBuilder) Key(v uint32) *AnnounceBuilder {
	b.p.Key = v
	b.set |= fieldKey
	return b
}

func (b *AnnounceBuilder) NumWant(v int32) *AnnounceBuilder {
	b.p.NumWant = v
	b.set |= fieldNumWant
	return b
}

func (b *AnnounceBuilder) Port(v uint16) *AnnounceBuilder {
	b.p.Port = v
	b.set |= fieldPort
	return b
}

// Build returns the record, or a *MissingFieldsError naming every unset
// field.
func (b *AnnounceBuilder) Build() (*AnnounceRecord, error) {
	var missing []string
	for _, f := range announceFields {
		if b.set&f.f == 0 {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if e := Event(b.p.Event); e < EventNone || e > EventStopped {
		return nil, fmt.Errorf("tracker: invalid announce event %d", e)
	}
	return &AnnounceRecord{p: b.p}, nil
}

// Serialize builds the record and returns its wire form.
func (b *AnnounceBuilder) Serialize() ([AnnounceSize]byte, error) {
	r, err := b.Build()
	if err != nil {
		return [AnnounceSize]byte{}, err
	}
	return r.Bytes(), nil
}
