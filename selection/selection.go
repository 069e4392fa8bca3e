// Package selection models the file table a display layer shows for a
// torrent: which files exist, which of them are wanted, and which window of
// rows is visible. State is a plain value; every event returns a new State.
package selection

import (
	"strings"

	"github.com/vaguilera/torrentmeta/torrentfile"
)

const unnamed = "(unnamed)"

// Row is one file of the torrent.
type Row struct {
	Path     []string
	Length   int64
	Download bool
}

// Name joins the path segments with "/".
func (r Row) Name() string {
	return strings.Join(r.Path, "/")
}

// State is the file table. Top is the first visible row and Height the
// number of visible rows.
type State struct {
	Root   string
	Rows   []Row
	Top    int
	Height int
}

// New lists the files of info, all selected for download.
func New(info torrentfile.InfoSection, height int) State {
	root := unnamed
	if info.Name != nil && *info.Name != "" {
		root = *info.Name
	}

	s := State{Root: root, Height: max(height, 0)}
	if !info.IsMultiFile() {
		s.Rows = []Row{{Path: []string{root}, Length: *info.Length, Download: true}}
		return s
	}
	s.Rows = make([]Row, len(info.Files))
	for i, f := range info.Files {
		path := append([]string(nil), f.Path...)
		s.Rows[i] = Row{Path: path, Length: f.Length, Download: true}
	}
	return s
}

// Visible returns the rows inside the window.
func (s State) Visible() []Row {
	end := min(s.Top+s.Height, len(s.Rows))
	if s.Top >= end {
		return nil
	}
	return s.Rows[s.Top:end]
}

// ScrollDown moves the window one row down unless the last row is visible.
func ScrollDown(s State) State {
	if s.Top+s.Height < len(s.Rows) {
		s.Top++
	}
	return s
}

// ScrollUp moves the window one row up unless it is at the top.
func ScrollUp(s State) State {
	if s.Top > 0 {
		s.Top--
	}
	return s
}

// Resize changes the window height, pulling Top back so the window stays
// filled when possible.
func Resize(s State, height int) State {
	s.Height = max(height, 0)
	if over := s.Top + s.Height - len(s.Rows); over > 0 {
		s.Top = max(s.Top-over, 0)
	}
	return s
}

// Toggle flips the download flag of row i. Out of range indexes are ignored.
func Toggle(s State, i int) State {
	if i < 0 || i >= len(s.Rows) {
		return s
	}
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	rows[i].Download = !rows[i].Download
	s.Rows = rows
	return s
}

// ToggleVisible flips the row at offset within the visible window, as a
// click on the table would.
func ToggleVisible(s State, offset int) State {
	if offset < 0 || offset >= s.Height {
		return s
	}
	return Toggle(s, s.Top+offset)
}

// SelectedLength is the number of bytes in rows marked for download.
func (s State) SelectedLength() int64 {
	var total int64
	for _, r := range s.Rows {
		if r.Download {
			total += r.Length
		}
	}
	return total
}
