package tracker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// HTTPParams are the announce values placed in an HTTP tracker query.
type HTTPParams struct {
	InfoHash   [20]byte
	PeerID     PeerID
	Port       uint16
	Uploaded   int64
	Downloaded int64
	Left       int64
	Event      Event
	NumWant    int32 // negative omits numwant
	Key        uint32
}

// HTTPAnnounceURL returns the announce URL for an HTTP tracker. Only the URL
// is built; sending it is up to the caller.
func HTTPAnnounceURL(t Tracker, p HTTPParams) (string, error) {
	if t.Protocol != HTTP || t.URL == nil {
		return "", fmt.Errorf("tracker: %s is not an http tracker", t.Raw)
	}

	q := url.Values{}
	q.Set("port", strconv.Itoa(int(p.Port)))
	q.Set("uploaded", strconv.FormatInt(p.Uploaded, 10))
	q.Set("downloaded", strconv.FormatInt(p.Downloaded, 10))
	q.Set("left", strconv.FormatInt(p.Left, 10))
	q.Set("compact", "1")
	q.Set("key", fmt.Sprintf("%08x", p.Key))
	if p.Event != EventNone {
		q.Set("event", p.Event.String())
	}
	if p.NumWant >= 0 {
		q.Set("numwant", strconv.Itoa(int(p.NumWant)))
	}

	// url.Values would turn the binary hash into '+' and mixed escapes.
	query := "info_hash=" + percentEncode(p.InfoHash[:]) +
		"&peer_id=" + percentEncode(p.PeerID[:]) +
		"&" + q.Encode()

	u := *t.URL
	if u.RawQuery != "" {
		query = u.RawQuery + "&" + query
	}
	u.RawQuery = query
	return u.String(), nil
}

func percentEncode(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_' ||
			c == '.' || c == '~' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
