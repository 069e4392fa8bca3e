package tracker

import (
	"net/url"
	"strings"
	"testing"
)

func Test_HTTPAnnounceURL(t *testing.T) {
	r := Build("http://tracker.example/announce?passkey=abc", nil, FirstPerTier)
	var peerID PeerID
	copy(peerID[:], "-MT0100-abcdefghijkl")

	hash := [20]byte{0x12, 0x34, 'A', ' ', 0xff}
	raw, err := HTTPAnnounceURL(r.Trackers[0], HTTPParams{
		InfoHash: hash,
		PeerID:   peerID,
		Port:     6881,
		Left:     1024,
		Event:    EventStarted,
		NumWant:  NumWantDefault,
		Key:      0xbeef,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.HasPrefix(raw, "http://tracker.example/announce?passkey=abc&info_hash=%124A%20%FF%00") {
		t.Errorf("Unexpected url prefix: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	q := u.Query()
	if q.Get("info_hash") != string(hash[:]) {
		t.Errorf("Expected info hash to round trip, got %q", q.Get("info_hash"))
	}
	if q.Get("peer_id") != "-MT0100-abcdefghijkl" {
		t.Errorf("Expected peer id, got %q", q.Get("peer_id"))
	}
	if q.Get("event") != "started" || q.Get("left") != "1024" || q.Get("port") != "6881" {
		t.Errorf("Unexpected query: %v", q)
	}
	if q.Get("key") != "0000beef" {
		t.Errorf("Expected key 0000beef, got %s", q.Get("key"))
	}
	if _, ok := q["numwant"]; ok {
		t.Errorf("Expected numwant to be omitted")
	}
}

func Test_HTTPAnnounceURLRejectsUDP(t *testing.T) {
	r := Build("udp://tracker.example:80", nil, FirstPerTier)
	if _, err := HTTPAnnounceURL(r.Trackers[0], HTTPParams{}); err == nil {
		t.Errorf("Expected error for udp tracker")
	}
}
