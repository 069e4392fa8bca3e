package torrentfile

import "fmt"

const (
	testPieces = "0123456789abcdefghij"

	singleInfo       = "d6:lengthi1024e4:name10:sample.txt12:piece lengthi262144e6:pieces20:" + testPieces + "e"
	singleInfoHash   = "7c2dc5be49cf02cf65344767b0404cd698157ae0"
	unsortedInfo     = "d4:name10:sample.txt6:lengthi1024e6:pieces20:" + testPieces + "12:piece lengthi262144ee"
	unsortedInfoHash = "19f0df222748549dc3968fc1e7f78b0d46980d0d"
	privateInfo      = "d6:lengthi1024e4:name10:sample.txt12:piece lengthi262144e6:pieces20:" + testPieces + "7:privatei1ee"
	privateInfoHash  = "a6b77ab29ff9bb56572099af7ba7759888d2cff8"

	multiInfo = "d5:filesl" +
		"d6:lengthi100e4:pathl1:a5:x.txtee" +
		"d6:lengthi200e4:pathl1:beee" +
		"4:name3:dir12:piece lengthi16384e6:pieces40:" + testPieces + testPieces + "e"
	multiInfoHash = "c1d21695184f8d3f05eb373a989be6e039426c7a"
	swappedInfo   = "d5:filesl" +
		"d6:lengthi200e4:pathl1:bee" +
		"d6:lengthi100e4:pathl1:a5:x.txteee" +
		"4:name3:dir12:piece lengthi16384e6:pieces40:" + testPieces + testPieces + "e"
	swappedInfoHash = "cb251422b7c68b82df7be52e0568969ea68dd2b5"
)

func bstr(s string) string {
	return fmt.Sprintf("%d:%s", len(s), s)
}

// descriptor wraps an info dictionary in a minimal torrent with a primary
// tracker only.
func descriptor(info string) []byte {
	return []byte("d8:announce" + bstr("udp://tracker.example:80/announce") + "4:info" + info + "e")
}

// fullDescriptor carries every optional top-level key.
func fullDescriptor(info string) []byte {
	return []byte("d" +
		"8:announce" + bstr("udp://tracker.example:80/announce") +
		"13:announce-list" + "l" +
		"l" + bstr("udp://tracker.example:80/announce") + bstr("udp://mirror.example:80/announce") + "e" +
		"l" + bstr("http://backup.example/announce") + "e" +
		"e" +
		"7:comment" + bstr("a test torrent") +
		"10:created by" + bstr("mktorrent 1.1") +
		"13:creation datei1700000000e" +
		"8:encoding" + bstr("UTF-8") +
		"4:info" + info +
		"e")
}
