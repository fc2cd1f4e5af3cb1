package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicetrace/internal/analysis"
	"voicetrace/internal/model"
	"voicetrace/internal/repository"
	"voicetrace/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var wavHeader = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x80\x3e\x00\x00\x00\x7d\x00\x00\x02\x00\x10\x00data\x00\x00\x00\x00")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// stubConverter writes a fixed payload instead of running ffmpeg
type stubConverter struct {
	calls int
}

func (s *stubConverter) ToWAV(_ context.Context, _, out string) error {
	s.calls++
	return os.WriteFile(out, []byte("converted"), 0o644)
}

type testServer struct {
	router      *gin.Engine
	records     repository.AudioRecordRepository
	transcripts repository.TranscriptRepository
	recognizer  *stt.MockRecognizer
	converter   *stubConverter
	uploadDir   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	recognizer := stt.NewMockRecognizer(ctrl)
	recognizer.EXPECT().Name().Return("mock").AnyTimes()

	converter := &stubConverter{}
	records, transcripts := repository.NewMemoryRepositories()
	uploadDir := filepath.Join(t.TempDir(), "uploads")

	h := NewHandler(HandlerConfig{
		Records:        records,
		Transcripts:    transcripts,
		Transcriber:    stt.NewTranscriber(recognizer, converter, "en-US"),
		Extractor:      analysis.NewExtractorWithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
		UploadDir:      uploadDir,
		MaxUploadBytes: 1 << 20,
	})
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }

	r := gin.New()
	h.RegisterRoutes(r)

	return &testServer{
		router:      r,
		records:     records,
		transcripts: transcripts,
		recognizer:  recognizer,
		converter:   converter,
		uploadDir:   uploadDir,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func uploadRequest(t *testing.T, fileName string, content []byte, userID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if userID != "" {
		require.NoError(t, mw.WriteField("userId", userID))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/record", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *testServer) seedRecord(t *testing.T, name string) *model.AudioRecord {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	rec := model.NewAudioRecord(7, path, "")
	require.NoError(t, s.records.Create(context.Background(), rec))
	return rec
}

func (s *testServer) seedTranscript(t *testing.T, recordID, text string) *model.SpeechTranscript {
	t.Helper()
	tr := model.NewSpeechTranscript(recordID, text, 0.8)
	require.NoError(t, s.transcripts.Create(context.Background(), tr))
	return tr
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","service":"voicetrace"}`, string(env.Data))
}

func TestUploadRecord(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, uploadRequest(t, "clip.wav", wavHeader, "42"))
	require.Equal(t, http.StatusOK, code, env.Error)

	var data struct {
		Message  string `json:"message"`
		FilePath string `json:"filePath"`
		RecordID string `json:"recordId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "File uploaded successfully", data.Message)
	assert.Equal(t, filepath.Join(s.uploadDir, "1700000000000_clip.wav"), data.FilePath)

	rec, err := s.records.GetByID(context.Background(), data.RecordID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.UserID)
	assert.Equal(t, data.FilePath, rec.FilePath)
	assert.FileExists(t, rec.FilePath)
	assert.True(t, strings.HasPrefix(rec.ContentType, "audio/"), rec.ContentType)
}

func TestUploadRecordValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		req     *http.Request
		wantErr string
	}{
		{"missing file", uploadRequest(t, "", nil, "1"), "file is required"},
		{"empty file", uploadRequest(t, "empty.wav", nil, "1"), "file is empty"},
		{"missing userId", uploadRequest(t, "clip.wav", wavHeader, ""), "userId must be an integer"},
		{"non-integer userId", uploadRequest(t, "clip.wav", wavHeader, "abc"), "userId must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.req)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestTranscribeConvertsWebm(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedRecord(t, "note.webm")

	s.recognizer.EXPECT().
		Recognize(gomock.Any(), []byte("converted"), stt.RecognitionConfig{
			Encoding:     stt.EncodingUnspecified,
			LanguageCode: "en-US",
			FileName:     "note_converted.wav",
		}).
		Return(&stt.Response{Segments: []stt.Segment{
			{Alternatives: []stt.Alternative{{Transcript: "check my ", Confidence: 0.5}}},
			{Alternatives: []stt.Alternative{{Transcript: "balance", Confidence: 0.9}}},
		}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcribe?recordId="+rec.ID, nil)
	code, env := s.do(t, req)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 1, s.converter.calls)

	var data struct {
		RecordID     string  `json:"recordId"`
		TranscriptID string  `json:"transcriptId"`
		Text         string  `json:"text"`
		Confidence   float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, rec.ID, data.RecordID)
	assert.Equal(t, "check my balance", data.Text)
	assert.Equal(t, 0.9, data.Confidence)

	stored, err := s.transcripts.GetByID(context.Background(), data.TranscriptID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.AudioRecordID)
	assert.Equal(t, "check my balance", stored.Text)
}

func TestTranscribeWavSkipsConversion(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedRecord(t, "note.wav")

	s.recognizer.EXPECT().
		Recognize(gomock.Any(), []byte("original"), stt.RecognitionConfig{
			Encoding:        stt.EncodingLinear16,
			SampleRateHertz: 16000,
			LanguageCode:    "en-US",
			FileName:        "note.wav",
		}).
		Return(&stt.Response{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcribe?recordId="+rec.ID, nil)
	code, env := s.do(t, req)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Zero(t, s.converter.calls)
	assert.JSONEq(t, `""`, string(mustField(t, env.Data, "text")))
}

func TestTranscribeErrors(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedRecord(t, "note.mp3")

	code, env := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcribe", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "recordId is required", env.Error)

	code, env = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcribe?recordId=missing", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "record not found", env.Error)

	s.recognizer.EXPECT().
		Recognize(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("quota exceeded"))

	code, env = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcribe?recordId="+rec.ID, nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Error, "quota exceeded")

	items, err := s.transcripts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	tr := s.seedTranscript(t, "rec-1", "Hi my name is John Smith, my email is john@test.com, transfer 500 rupees")

	code, env := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/voice/analyze/"+tr.ID, nil))
	require.Equal(t, http.StatusOK, code, env.Error)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Equal(t, "money_transfer", fields["intent"])
	assert.Equal(t, "john smith", fields["name"])
	assert.Equal(t, "john@test.com", fields["email"])
	assert.Equal(t, "500", fields["amount"])
	assert.Equal(t, "2026-01-02T03:04:05Z", fields["timestamp"])

	code, env = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/voice/analyze/unknown", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "transcript not found", env.Error)
}

func TestListTranscripts(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/transcripts", nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"items":[],"count":0}`, string(env.Data))

	first := s.seedTranscript(t, "rec-1", "one")
	second := s.seedTranscript(t, "rec-2", "two")

	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/transcripts", nil))
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Items []model.SpeechTranscript `json:"items"`
		Count int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Count)
	assert.Equal(t, []string{first.ID, second.ID}, []string{data.Items[0].ID, data.Items[1].ID})
}

func TestUpdateTranscript(t *testing.T) {
	s := newTestServer(t)
	tr := s.seedTranscript(t, "rec-1", "helo wrld")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/voice/transcripts/"+tr.ID, strings.NewReader(`{"text":"hello world"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := s.do(t, req)
	require.Equal(t, http.StatusOK, code, env.Error)

	var updated model.SpeechTranscript
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, tr.ID, updated.ID)
	assert.Equal(t, "hello world", updated.Text)
	assert.Equal(t, tr.Confidence, updated.Confidence)
	assert.Equal(t, "rec-1", updated.AudioRecordID)
}

func TestUpdateTranscriptErrors(t *testing.T) {
	s := newTestServer(t)
	tr := s.seedTranscript(t, "rec-1", "unchanged")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/voice/transcripts/"+tr.ID, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "text is required", env.Error)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/voice/transcripts/unknown", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env = s.do(t, req)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "transcript not found", env.Error)

	items, err := s.transcripts.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "unchanged", items[0].Text)
}

func TestRecordQueries(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedRecord(t, "a.flac")
	s.seedTranscript(t, rec.ID, "first pass")
	s.seedTranscript(t, rec.ID, "second pass")
	s.seedTranscript(t, "other", "elsewhere")

	code, env := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/records?userId=7", nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `1`, string(mustField(t, env.Data, "count")))

	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/records?userId=x", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/records/"+rec.ID, nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"`+rec.ID+`"`, string(mustField(t, env.Data, "id")))

	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/records/"+rec.ID+"/transcripts", nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `2`, string(mustField(t, env.Data, "count")))

	code, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/voice/records/missing/transcripts", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "record not found", env.Error)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.PUT("/api/v1/voice/transcripts/:id", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/voice/transcripts/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func mustField(t *testing.T, data json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	v, ok := m[key]
	require.True(t, ok, key)
	return v
}
