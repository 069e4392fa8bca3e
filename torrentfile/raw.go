package torrentfile

import (
	"crypto/sha1"
	"fmt"

	"github.com/zeebo/bencode"
)

// RawInfoHash hashes the info dictionary exactly as it appears in data,
// without canonicalising it. For a well-formed descriptor it equals
// DeriveInfoHash of the decoded section.
func RawInfoHash(data []byte) (InfoHash, error) {
	var metainfo struct {
		Info bencode.RawMessage `bencode:"info"`
	}
	if err := bencode.DecodeBytes(data, &metainfo); err != nil {
		return InfoHash{}, fmt.Errorf("torrentfile: extracting raw info: %w", err)
	}
	if len(metainfo.Info) == 0 {
		return InfoHash{}, &MissingFieldError{Field: "info"}
	}
	return sha1.Sum(metainfo.Info), nil
}
