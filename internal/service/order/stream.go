package order

import "strings"

// StreamFilter hides order blocks from text that arrives in chunks,
// mirroring Extract. Text that might be the start of a marker is
// held back until the next chunk decides it.
type StreamFilter struct {
	pending string
	inBlock bool
}

// Write feeds a chunk and returns the part that is safe to show now.
func (f *StreamFilter) Write(chunk string) string {
	f.pending += chunk

	var out strings.Builder
	for {
		if !f.inBlock {
			if idx := strings.Index(f.pending, StartMarker); idx >= 0 {
				out.WriteString(f.pending[:idx])
				f.pending = f.pending[idx+len(StartMarker):]
				f.inBlock = true
				continue
			}
			keep := partialSuffix(f.pending, StartMarker)
			out.WriteString(f.pending[:len(f.pending)-keep])
			f.pending = f.pending[len(f.pending)-keep:]
			return out.String()
		}

		if idx := strings.Index(f.pending, EndMarker); idx >= 0 {
			f.pending = f.pending[idx+len(EndMarker):]
			f.inBlock = false
			continue
		}
		f.pending = f.pending[len(f.pending)-partialSuffix(f.pending, EndMarker):]
		return out.String()
	}
}

// Flush returns held-back text once the stream ends. An unterminated block
// is dropped; the final turn text is authoritative.
func (f *StreamFilter) Flush() string {
	if f.inBlock {
		f.pending = ""
		return ""
	}
	rest := f.pending
	f.pending = ""
	return rest
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of marker.
func partialSuffix(s, marker string) int {
	limit := len(marker) - 1
	if len(s) < limit {
		limit = len(s)
	}
	for n := limit; n > 0; n-- {
		if strings.HasSuffix(s, marker[:n]) {
			return n
		}
	}
	return 0
}
