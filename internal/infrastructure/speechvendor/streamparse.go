package speechvendor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// audioStreamParser incrementally parses the synthesis response: a stream of
// newline-delimited frames, each either a bare JSON object or JSON text
// behind a "data:" marker. Chunk boundaries fall anywhere, so a rolling
// buffer holds the trailing incomplete line between feeds.
type audioStreamParser struct {
	pending    string
	chunks     [][]byte
	lastObject map[string]any
}

func newAudioStreamParser() *audioStreamParser {
	return &audioStreamParser{}
}

// Feed appends a received chunk and processes every complete line.
func (p *audioStreamParser) Feed(chunk []byte) {
	p.pending += string(chunk)
	lines := strings.Split(p.pending, "\n")
	for _, line := range lines[:len(lines)-1] {
		p.consumeLine(line)
	}
	p.pending = lines[len(lines)-1]
}

// Flush runs any remaining buffered fragment through the line logic. Call
// once after stream end.
func (p *audioStreamParser) Flush() {
	if p.pending != "" {
		p.consumeLine(p.pending)
		p.pending = ""
	}
}

// Audio returns the concatenation of every decoded audio chunk, in arrival
// order.
func (p *audioStreamParser) Audio() []byte {
	return bytes.Join(p.chunks, nil)
}

// LastObject returns the most recently parsed JSON object, whether or not it
// carried audio. Used for error diagnostics after an empty stream.
func (p *audioStreamParser) LastObject() map[string]any {
	return p.lastObject
}

func (p *audioStreamParser) consumeLine(line string) {
	line = strings.TrimSpace(line)
	line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if line == "" {
		return
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		// Comment or control frame; never abort the stream over one line.
		return
	}
	p.lastObject = obj

	encoded := extractAudioField(obj)
	if encoded == "" {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(decoded) == 0 {
		return
	}
	p.chunks = append(p.chunks, decoded)
}

// extractAudioField finds the base64 audio payload in a parsed frame. The
// vendor has shipped it under several names across API versions; the first
// non-empty string wins, in this order.
func extractAudioField(obj map[string]any) string {
	if s := stringField(obj, "audio"); s != "" {
		return s
	}
	if s := stringField(obj, "audio_data"); s != "" {
		return s
	}
	if s := stringField(obj, "data"); s != "" {
		return s
	}
	for _, parent := range []string{"data", "result"} {
		nested, ok := obj[parent].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"audio", "audio_data", "data"} {
			if s := stringField(nested, key); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
