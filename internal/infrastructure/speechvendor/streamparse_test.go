package speechvendor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamParserReassemblesAcrossChunkBoundaries(t *testing.T) {
	parser := newAudioStreamParser()

	// "QQ==" is "A", "Qg==" is "B"; the second line is split across chunks.
	parser.Feed([]byte("{\"audio\":\"QQ==\"}\n{\"au"))
	parser.Feed([]byte("dio\":\"Qg==\"}\n"))
	parser.Flush()

	assert.Equal(t, []byte("AB"), parser.Audio())
}

func TestStreamParserFlushConsumesUnterminatedTail(t *testing.T) {
	parser := newAudioStreamParser()

	parser.Feed([]byte("{\"audio\":\"QQ==\"}"))
	assert.Empty(t, parser.Audio())

	parser.Flush()
	assert.Equal(t, []byte("A"), parser.Audio())
}

func TestStreamParserSkipsMalformedLines(t *testing.T) {
	parser := newAudioStreamParser()

	parser.Feed([]byte("{\"audio\":\"QQ==\"}\n"))
	parser.Feed([]byte("not json at all\n"))
	parser.Feed([]byte("{\"audio\":\"???\"}\n")) // invalid base64
	parser.Feed([]byte("{\"audio\":\"Qg==\"}\n"))
	parser.Flush()

	assert.Equal(t, []byte("AB"), parser.Audio())
}

func TestStreamParserStripsDataPrefix(t *testing.T) {
	parser := newAudioStreamParser()

	parser.Feed([]byte("data: {\"audio\":\"QQ==\"}\n"))
	parser.Feed([]byte("data:{\"audio\":\"Qg==\"}\n"))
	parser.Flush()

	assert.Equal(t, []byte("AB"), parser.Audio())
}

func TestStreamParserNestedAudioFields(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"top level audio_data", `{"audio_data":"QQ=="}`},
		{"data as string", `{"data":"QQ=="}`},
		{"data dot audio", `{"data":{"audio":"QQ=="}}`},
		{"data dot audio_data", `{"data":{"audio_data":"QQ=="}}`},
		{"data dot data", `{"data":{"data":"QQ=="}}`},
		{"result dot audio", `{"result":{"audio":"QQ=="}}`},
		{"result dot data", `{"result":{"data":"QQ=="}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parser := newAudioStreamParser()
			parser.Feed([]byte(tc.line + "\n"))
			assert.Equal(t, []byte("A"), parser.Audio())
		})
	}
}

func TestStreamParserPrefersTopLevelAudio(t *testing.T) {
	parser := newAudioStreamParser()
	parser.Feed([]byte(`{"audio":"QQ==","data":{"audio":"Qg=="}}` + "\n"))

	assert.Equal(t, []byte("A"), parser.Audio())
}

func TestStreamParserTracksLastObject(t *testing.T) {
	parser := newAudioStreamParser()

	parser.Feed([]byte(`{"code":55000001,"message":"resource mismatch"}` + "\n"))
	parser.Flush()

	assert.Empty(t, parser.Audio())
	last := parser.LastObject()
	assert.NotNil(t, last)
	assert.Equal(t, "resource mismatch", last["message"])
}
