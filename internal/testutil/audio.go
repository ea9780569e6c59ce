package testutil

import "bytes"

// MP3 returns size bytes that sniff as audio/mpeg (an ID3v2 header followed
// by padding). Not playable, only recognisable.
func MP3(size int) []byte {
	header := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if size <= len(header) {
		return header[:size]
	}
	return append(header, bytes.Repeat([]byte{0}, size-len(header))...)
}

// PNG returns bytes that sniff as image/png
func PNG() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
}
