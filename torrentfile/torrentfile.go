package torrentfile

import (
	"fmt"
	"time"
)

const sha1Len = 20

// Decode parses the raw bytes of a .torrent descriptor. It has no side
// effects and is safe for concurrent use on independent inputs.
func Decode(data []byte) (*Metadata, error) {
	root, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	top, ok := root.(map[string]interface{})
	if !ok {
		return nil, &InvalidFieldError{Field: "(root)", Reason: "not a dictionary"}
	}

	meta := &Metadata{}

	announce, err := stringField(top, "announce", "announce")
	if err != nil {
		return nil, err
	}
	if announce == nil {
		return nil, &MissingFieldError{Field: "announce"}
	}
	meta.Announce = *announce

	if meta.AnnounceList, err = announceList(top); err != nil {
		return nil, err
	}

	rawInfo, ok := top["info"]
	if !ok {
		return nil, &MissingFieldError{Field: "info"}
	}
	infoMap, ok := rawInfo.(map[string]interface{})
	if !ok {
		return nil, &InvalidFieldError{Field: "info", Reason: "not a dictionary"}
	}
	info, err := newInfo(infoMap)
	if err != nil {
		return nil, err
	}
	meta.Info = *info

	created, err := intField(top, "creation date", "creation date")
	if err != nil {
		return nil, err
	}
	if created != nil {
		t := time.Unix(*created, 0).UTC()
		meta.CreationDate = &t
	}
	if meta.Comment, err = stringField(top, "comment", "comment"); err != nil {
		return nil, err
	}
	if meta.Encoding, err = stringField(top, "encoding", "encoding"); err != nil {
		return nil, err
	}
	if meta.CreatedBy, err = stringField(top, "created by", "created by"); err != nil {
		return nil, err
	}

	return meta, nil
}

func announceList(top map[string]interface{}) ([][]string, error) {
	raw, ok := top["announce-list"]
	if !ok {
		return nil, nil
	}
	tiers, ok := raw.([]interface{})
	if !ok {
		return nil, &InvalidFieldError{Field: "announce-list", Reason: "not a list"}
	}
	list := make([][]string, 0, len(tiers))
	for i, rawTier := range tiers {
		tier, ok := rawTier.([]interface{})
		if !ok {
			return nil, &InvalidFieldError{Field: fmt.Sprintf("announce-list[%d]", i), Reason: "not a list"}
		}
		urls := make([]string, 0, len(tier))
		for j, rawURL := range tier {
			u, ok := rawURL.(string)
			if !ok {
				return nil, &InvalidFieldError{Field: fmt.Sprintf("announce-list[%d][%d]", i, j), Reason: "not a string"}
			}
			urls = append(urls, u)
		}
		list = append(list, urls)
	}
	return list, nil
}

var infoKeys = map[string]bool{
	"name":         true,
	"length":       true,
	"files":        true,
	"piece length": true,
	"pieces":       true,
}

func newInfo(m map[string]interface{}) (*InfoSection, error) {
	info := &InfoSection{}

	pieces, err := stringField(m, "pieces", "info.pieces")
	if err != nil {
		return nil, err
	}
	if pieces == nil {
		return nil, &MissingFieldError{Field: "info.pieces"}
	}
	if len(*pieces)%sha1Len != 0 {
		return nil, ErrMalformedPieces
	}
	info.Pieces = *pieces

	pieceLength, err := intField(m, "piece length", "info.piece length")
	if err != nil {
		return nil, err
	}
	if pieceLength == nil {
		return nil, &MissingFieldError{Field: "info.piece length"}
	}
	if *pieceLength <= 0 {
		return nil, &InvalidFieldError{Field: "info.piece length", Reason: "must be positive"}
	}
	info.PieceLength = *pieceLength

	if info.Name, err = stringField(m, "name", "info.name"); err != nil {
		return nil, err
	}

	_, hasLength := m["length"]
	_, hasFiles := m["files"]
	if hasLength == hasFiles {
		return nil, ErrAmbiguousMode
	}
	if hasLength {
		if info.Length, err = intField(m, "length", "info.length"); err != nil {
			return nil, err
		}
		if *info.Length < 0 {
			return nil, &InvalidFieldError{Field: "info.length", Reason: "negative"}
		}
	} else if info.Files, err = fileEntries(m["files"]); err != nil {
		return nil, err
	}

	info.Extra = extraKeys(m, infoKeys)
	return info, nil
}

var fileKeys = map[string]bool{
	"length": true,
	"path":   true,
	"md5sum": true,
}

func fileEntries(raw interface{}) ([]FileEntry, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, &InvalidFieldError{Field: "info.files", Reason: "not a list"}
	}
	if len(list) == 0 {
		return nil, &InvalidFieldError{Field: "info.files", Reason: "empty"}
	}

	files := make([]FileEntry, 0, len(list))
	for i, rawFile := range list {
		prefix := fmt.Sprintf("info.files[%d]", i)
		m, ok := rawFile.(map[string]interface{})
		if !ok {
			return nil, &InvalidFieldError{Field: prefix, Reason: "not a dictionary"}
		}

		var f FileEntry
		length, err := intField(m, "length", prefix+".length")
		if err != nil {
			return nil, err
		}
		if length == nil {
			return nil, &MissingFieldError{Field: prefix + ".length"}
		}
		if *length < 0 {
			return nil, &InvalidFieldError{Field: prefix + ".length", Reason: "negative"}
		}
		f.Length = *length

		rawPath, ok := m["path"]
		if !ok {
			return nil, &MissingFieldError{Field: prefix + ".path"}
		}
		segments, ok := rawPath.([]interface{})
		if !ok {
			return nil, &InvalidFieldError{Field: prefix + ".path", Reason: "not a list"}
		}
		f.Path = make([]string, 0, len(segments))
		for j, seg := range segments {
			s, ok := seg.(string)
			if !ok {
				return nil, &InvalidFieldError{Field: fmt.Sprintf("%s.path[%d]", prefix, j), Reason: "not a string"}
			}
			f.Path = append(f.Path, s)
		}

		if f.MD5Sum, err = stringField(m, "md5sum", prefix+".md5sum"); err != nil {
			return nil, err
		}
		f.Extra = extraKeys(m, fileKeys)
		files = append(files, f)
	}
	return files, nil
}

// stringField returns nil when key is absent.
func stringField(m map[string]interface{}, key, name string) (*string, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &InvalidFieldError{Field: name, Reason: "not a byte string"}
	}
	return &s, nil
}

// intField returns nil when key is absent.
func intField(m map[string]interface{}, key, name string) (*int64, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	n, ok := raw.(int64)
	if !ok {
		return nil, &InvalidFieldError{Field: name, Reason: "not an integer"}
	}
	return &n, nil
}

func extraKeys(m map[string]interface{}, known map[string]bool) map[string]interface{} {
	var extra map[string]interface{}
	for k, v := range m {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]interface{})
		}
		extra[k] = v
	}
	return extra
}
