// Package stream decodes the incremental search event stream: a sequence of
// frames delimited by a blank line, each carrying "data:" payload lines that
// decode to typed protocol events.
package stream

import "bytes"

// Frame is one delimited unit of the raw stream.
type Frame struct {
	Lines []string
}

// Decoder splits an incoming chunk sequence into frames.
//
// A Decoder serves a single session and is not restartable. Chunks may split
// a frame (or a single line) at any byte offset; the unconsumed tail is
// carried in an internal buffer with an explicit cursor, so already-consumed
// bytes are never rescanned.
type Decoder struct {
	buf []byte
	pos int
	cur []string
}

// NewDecoder creates a frame decoder for one session.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns every frame completed by it, in arrival
// order. A frame is complete when a blank line is seen.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.buf = append(d.buf, chunk...)

	var frames []Frame
	for {
		nl := bytes.IndexByte(d.buf[d.pos:], '\n')
		if nl < 0 {
			break
		}
		line := d.buf[d.pos : d.pos+nl]
		d.pos += nl + 1
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if len(line) == 0 {
			if len(d.cur) > 0 {
				frames = append(frames, Frame{Lines: d.cur})
				d.cur = nil
			}
			continue
		}
		d.cur = append(d.cur, string(line))
	}

	// Drop the consumed prefix, keeping only the trailing fragment.
	if d.pos > 0 {
		d.buf = append(d.buf[:0], d.buf[d.pos:]...)
		d.pos = 0
	}
	return frames
}

// Flush returns the frame assembled from any trailing lines once the stream
// has ended. A final unterminated line counts toward the frame.
func (d *Decoder) Flush() (Frame, bool) {
	if len(d.buf) > 0 {
		line := bytes.TrimSuffix(d.buf, []byte{'\r'})
		if len(line) > 0 {
			d.cur = append(d.cur, string(line))
		}
		d.buf = nil
	}
	if len(d.cur) == 0 {
		return Frame{}, false
	}
	f := Frame{Lines: d.cur}
	d.cur = nil
	return f, true
}
