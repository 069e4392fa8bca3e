package tracker

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// peerIDPrefix follows the Azureus-style convention: client code and version.
const peerIDPrefix = "-MT0100-"

// PeerID identifies this client to trackers and peers.
type PeerID [20]byte

// NewPeerID returns the prefix followed by 12 random bytes. Generate it once
// per client instance and reuse it for every announce.
func NewPeerID() PeerID {
	var id PeerID
	copy(id[:], peerIDPrefix)
	if _, err := rand.Read(id[len(peerIDPrefix):]); err != nil {
		panic("tracker: reading random peer id: " + err.Error())
	}
	return id
}

func (id PeerID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// RandomUint32 returns an unpredictable value for transaction ids and keys.
func RandomUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("tracker: reading random bytes: " + err.Error())
	}
	return binary.BigEndian.Uint32(b[:])
}
