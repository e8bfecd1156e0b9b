package wifi

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/golang/glog"
)

const (
	lineEnd    = "\r\n"
	sendPrompt = "> "
	// frameMarker starts an inbound frame: +IPD,<len>:<payload>
	frameMarker = "+IPD,"
	// maxFrameHeader is the longest header accepted before the colon.
	maxFrameHeader = len(frameMarker) + 6
	readChunk      = 256
)

// fill appends whatever the port has available to rx.
func (d *Driver) fill() int {
	if d.linkErr != nil {
		return 0
	}
	if d.readBuf == nil {
		d.readBuf = make([]byte, readChunk)
	}
	n, err := d.Port.Read(d.readBuf)
	if n > 0 {
		d.rx = append(d.rx, d.readBuf[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			err = ErrLinkClosed
		}
		glog.Errorf("wifi: read: %v", err)
		d.linkErr = err
	}
	return n
}

// readUntil returns the next chunk of input terminated by delim, waiting
// at most wait. Inbound frames found on the way are processed. A zero
// wait makes a single attempt.
func (d *Driver) readUntil(delim string, wait time.Duration) (string, bool) {
	start := time.Now()
	for {
		d.fill()
		for {
			marker := bytes.Index(d.rx, []byte(frameMarker))
			pos := bytes.Index(d.rx, []byte(delim))
			if marker >= 0 && (pos < 0 || marker < pos) {
				if marker > 0 {
					glog.V(3).Infof("wifi: discard %q", d.rx[:marker])
					d.rx = d.rx[marker:]
				}
				if !d.receiveFrame() {
					return "", false
				}
				continue
			}
			if pos >= 0 {
				line := string(d.rx[:pos])
				d.rx = d.rx[pos+len(delim):]
				if delim == lineEnd {
					glog.V(2).Infof("RX %q", line)
				}
				return line, true
			}
			break
		}
		if d.linkErr != nil {
			return "", false
		}
		elapsed := time.Since(start)
		if elapsed >= wait {
			return "", false
		}
		time.Sleep(d.pollInterval(wait - elapsed))
	}
}

// waitResponse reads lines until one matches a success or fail token.
func (d *Driver) waitResponse(wait time.Duration) error {
	start := time.Now()
	for {
		remaining := wait - time.Since(start)
		if remaining < 0 {
			remaining = 0
		}
		line, ok := d.readUntil(lineEnd, remaining)
		if !ok {
			switch {
			case d.rxErr != nil:
				return d.rxErr
			case d.linkErr != nil:
				return d.linkErr
			}
			return ErrNoResponse
		}
		if matched, success := Classify(line); matched {
			if !success {
				return ErrRejected
			}
			return nil
		}
	}
}

// receiveFrame consumes a frame at the start of rx. It returns false on
// failure, after which rx is discarded and the link is degraded.
func (d *Driver) receiveFrame() bool {
	start := time.Now()
	for {
		colon := bytes.IndexByte(d.rx, ':')
		if colon < 0 && len(d.rx) > maxFrameHeader || colon > maxFrameHeader {
			return d.failReceive(ErrMalformedFrame)
		}
		if colon >= 0 {
			size, err := strconv.Atoi(string(d.rx[len(frameMarker):colon]))
			if err != nil || size < 0 {
				return d.failReceive(ErrMalformedFrame)
			}
			if end := colon + 1 + size; len(d.rx) >= end {
				payload := append([]byte(nil), d.rx[colon+1:end]...)
				d.rx = d.rx[end:]
				d.deliver(payload)
				return true
			}
		}
		if d.linkErr != nil {
			return false
		}
		elapsed := time.Since(start)
		if elapsed >= d.FrameTimeout {
			return d.failReceive(ErrFrameTimeout)
		}
		time.Sleep(d.pollInterval(d.FrameTimeout - elapsed))
		d.fill()
	}
}

func (d *Driver) failReceive(err error) bool {
	d.rxErr = &Error{Kind: ReceiveError, Err: err}
	d.degraded = true
	d.rx = nil
	d.lines.Reset()
	return false
}

func (d *Driver) deliver(payload []byte) {
	glog.V(2).Infof("RX frame %q", payload)
	onFrame, onMessage := d.dataHandlers()
	if onFrame != nil {
		onFrame(payload)
	}
	for _, msg := range d.lines.Feed(payload) {
		if onMessage != nil {
			onMessage(msg)
		}
	}
}
