package torrentfile

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	bencode "github.com/jackpal/bencode-go"
)

// InfoHash is the SHA1 digest of the canonically encoded info dictionary.
type InfoHash [20]byte

func (h InfoHash) String() string {
	return hex.EncodeToString(h[:])
}

// DeriveInfoHash re-encodes info canonically and hashes the result. Two equal
// sections always yield the same hash, whatever key order the source
// descriptor used.
func DeriveInfoHash(info InfoSection) InfoHash {
	return sha1.Sum(EncodeInfo(info))
}

// EncodeInfo returns the canonical bencoding of info: keys sorted bytewise,
// lists in order, absent optional fields omitted.
func EncodeInfo(info InfoSection) []byte {
	buf := bytes.Buffer{}
	if err := bencode.Marshal(&buf, info.canonical()); err != nil {
		// Only reachable if a decoded section was mutated into an unencodable shape.
		panic(fmt.Sprintf("torrentfile: encoding info section: %v", err))
	}
	return buf.Bytes()
}

func (i *InfoSection) canonical() map[string]interface{} {
	m := make(map[string]interface{}, len(i.Extra)+5)
	for k, v := range i.Extra {
		m[k] = v
	}
	if i.Name != nil {
		m["name"] = *i.Name
	}
	if i.Length != nil {
		m["length"] = *i.Length
	}
	if i.Files != nil {
		files := make([]interface{}, len(i.Files))
		for n := range i.Files {
			files[n] = i.Files[n].canonical()
		}
		m["files"] = files
	}
	m["piece length"] = i.PieceLength
	m["pieces"] = i.Pieces
	return m
}

func (f *FileEntry) canonical() map[string]interface{} {
	m := make(map[string]interface{}, len(f.Extra)+3)
	for k, v := range f.Extra {
		m[k] = v
	}
	path := make([]interface{}, len(f.Path))
	for n, seg := range f.Path {
		path[n] = seg
	}
	m["length"] = f.Length
	m["path"] = path
	if f.MD5Sum != nil {
		m["md5sum"] = *f.MD5Sum
	}
	return m
}
