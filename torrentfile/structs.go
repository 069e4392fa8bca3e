package torrentfile

import "time"

// FileEntry is one file of a multi-file torrent.
type FileEntry struct {
	Length int64
	Path   []string // order is part of the hashed content
	MD5Sum *string

	// Extra holds keys of the file dictionary this package does not model.
	// They take part in the info hash.
	Extra map[string]interface{}
}

// InfoSection is the decoded "info" dictionary. Exactly one of Length and
// Files is set. Callers must treat it as read-only: the info hash is derived
// from its contents.
type InfoSection struct {
	Name        *string
	Length      *int64      // single-file mode
	Files       []FileEntry // multi-file mode
	PieceLength int64
	Pieces      string // concatenated 20-byte SHA1 digests

	// Extra holds info keys this package does not model ("private",
	// "source", a single-file "md5sum", ...).
	Extra map[string]interface{}
}

// Metadata represents a decoded .torrent descriptor.
type Metadata struct {
	Announce     string
	AnnounceList [][]string
	Info         InfoSection
	CreationDate *time.Time
	Comment      *string
	Encoding     *string
	CreatedBy    *string
}

// IsMultiFile reports whether the torrent lists its files individually.
func (i *InfoSection) IsMultiFile() bool {
	return i.Length == nil
}

// TotalLength returns the sum of all file lengths.
func (i *InfoSection) TotalLength() int64 {
	if i.Length != nil {
		return *i.Length
	}
	var total int64
	for _, f := range i.Files {
		total += f.Length
	}
	return total
}

// NumPieces returns the number of piece digests.
func (i *InfoSection) NumPieces() int {
	return len(i.Pieces) / sha1Len
}

// PieceHashes splits Pieces into individual digests.
func (i *InfoSection) PieceHashes() [][20]byte {
	hashes := make([][20]byte, i.NumPieces())
	for n := range hashes {
		copy(hashes[n][:], i.Pieces[n*sha1Len:(n+1)*sha1Len])
	}
	return hashes
}
