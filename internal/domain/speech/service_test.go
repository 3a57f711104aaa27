package speech

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareboard/internal/domain/content"
	"shareboard/internal/infrastructure/speechvendor"
	"shareboard/internal/utils/platformerrors"
)

type fakeContents struct {
	published []*content.ContentRecord
}

func (f *fakeContents) Publish(ctx context.Context, rec *content.ContentRecord) error {
	rec.ID = "rec-1"
	f.published = append(f.published, rec)
	return nil
}

type fakeStorage struct {
	saved []byte
}

func (f *fakeStorage) Save(originalFilename string, body io.Reader) (string, int64, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", 0, err
	}
	f.saved = data
	return "/uploads/" + originalFilename, int64(len(data)), nil
}

type fakeVendor struct {
	audio       []byte
	synthErr    error
	synthReqs   []speechvendor.SynthesizeRequest
	recognized  []speechvendor.RecognitionRequest
	uploaded    []speechvendor.CloneRequest
	trainStatus speechvendor.CloneStatus
}

func (f *fakeVendor) Synthesize(ctx context.Context, req speechvendor.SynthesizeRequest) ([]byte, error) {
	f.synthReqs = append(f.synthReqs, req)
	return f.audio, f.synthErr
}

func (f *fakeVendor) SubmitRecognition(ctx context.Context, req speechvendor.RecognitionRequest) (string, error) {
	f.recognized = append(f.recognized, req)
	return "task-1", nil
}

func (f *fakeVendor) QueryRecognition(ctx context.Context, jobID string) (speechvendor.JobStatus, error) {
	return speechvendor.JobStatus{Code: "20000000", Text: "hello"}, nil
}

func (f *fakeVendor) Recognize(ctx context.Context, req speechvendor.RecognitionRequest) (string, error) {
	f.recognized = append(f.recognized, req)
	return "hello", nil
}

func (f *fakeVendor) UploadVoice(ctx context.Context, req speechvendor.CloneRequest) error {
	f.uploaded = append(f.uploaded, req)
	return nil
}

func (f *fakeVendor) QueryVoiceStatus(ctx context.Context, speakerID string) (speechvendor.CloneStatus, error) {
	return f.trainStatus, nil
}

func (f *fakeVendor) WaitForTraining(ctx context.Context, speakerID string) (speechvendor.CloneStatus, error) {
	return f.trainStatus, nil
}

func newSpeechFixture(audio []byte) (*Service, *fakeContents, *fakeStorage, *fakeVendor) {
	contents := &fakeContents{}
	storage := &fakeStorage{}
	vendor := &fakeVendor{audio: audio}
	return NewService(contents, storage, vendor, zerolog.Nop()), contents, storage, vendor
}

func TestSynthesizePublishesAudioRecord(t *testing.T) {
	svc, contents, storage, vendor := newSpeechFixture([]byte("mp3-bytes"))

	rec, err := svc.Synthesize(context.Background(), SynthesizeInput{
		Text:       "  hello world  ",
		VoiceType:  "zh_male_tough",
		SpeedRatio: 1.2,
	})
	require.NoError(t, err)

	require.Len(t, vendor.synthReqs, 1)
	assert.Equal(t, "hello world", vendor.synthReqs[0].Text)
	assert.Equal(t, "zh_male_tough", vendor.synthReqs[0].Speaker)
	assert.Equal(t, "mp3", vendor.synthReqs[0].Encoding)

	assert.True(t, bytes.Equal([]byte("mp3-bytes"), storage.saved))

	require.Len(t, contents.published, 1)
	assert.Equal(t, content.TypeAudio, rec.Type)
	assert.Equal(t, "hello world", rec.Text)
	assert.Equal(t, "audio/mpeg", rec.Mimetype)
	assert.Equal(t, int64(len("mp3-bytes")), rec.Size)
}

func TestSynthesizeDefaultsVoice(t *testing.T) {
	svc, _, _, vendor := newSpeechFixture([]byte("x"))

	_, err := svc.Synthesize(context.Background(), SynthesizeInput{Text: "hi"})
	require.NoError(t, err)
	require.Len(t, vendor.synthReqs, 1)
	assert.Equal(t, defaultVoice, vendor.synthReqs[0].Speaker)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	svc, contents, _, _ := newSpeechFixture([]byte("x"))

	_, err := svc.Synthesize(context.Background(), SynthesizeInput{Text: "   "})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, contents.published)
}

func TestSynthesizeVendorErrorPublishesNothing(t *testing.T) {
	svc, contents, storage, vendor := newSpeechFixture(nil)
	vendor.synthErr = platformerrors.NewError(platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeEmptyAudio, "no audio", nil)

	_, err := svc.Synthesize(context.Background(), SynthesizeInput{Text: "hi"})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeEmptyAudio))
	assert.Empty(t, contents.published)
	assert.Empty(t, storage.saved)
}

func TestCloneVoiceUploadsThenWaits(t *testing.T) {
	svc, _, _, vendor := newSpeechFixture(nil)
	vendor.trainStatus = speechvendor.CloneStatus{SpeakerID: "S_abc", State: 2}

	status, err := svc.CloneVoice(context.Background(), "S_abc", []byte("sample"), "wav")
	require.NoError(t, err)
	assert.True(t, status.Ready())
	require.Len(t, vendor.uploaded, 1)
	assert.Equal(t, "S_abc", vendor.uploaded[0].SpeakerID)
}

func TestRecognitionForwardsLanguageHint(t *testing.T) {
	svc, _, _, vendor := newSpeechFixture(nil)

	_, err := svc.SubmitRecognition(context.Background(), "https://host/a.mp3", "mp3", "zh-CN")
	require.NoError(t, err)

	_, err = svc.Transcribe(context.Background(), "https://host/b.wav", "wav", "en-US")
	require.NoError(t, err)

	require.Len(t, vendor.recognized, 2)
	assert.Equal(t, "zh-CN", vendor.recognized[0].Language)
	assert.Equal(t, "en-US", vendor.recognized[1].Language)
}

func TestQueryRecognitionRequiresTaskID(t *testing.T) {
	svc, _, _, _ := newSpeechFixture(nil)

	_, err := svc.QueryRecognition(context.Background(), "")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}
