package videos

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manoranjanhere/EDUUB/internal/models"
	"github.com/Manoranjanhere/EDUUB/internal/transcriber"
)

func newTestRouter(t *testing.T, repo *fakeRepo, media *fakeMediaStore, stt *fakeTranscriber) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tempDir := t.TempDir()
	svc := NewService(repo, media, &fakeExtractor{}, stt, tempDir, nil)
	h := NewHandler(svc, tempDir, nil)

	r := gin.New()
	r.POST("/upload", h.Upload)
	r.GET("/videos", h.List)
	r.DELETE("/videos/:id", h.Delete)
	return r
}

func multipartVideo(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake mp4 bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func TestHandler_Upload(t *testing.T) {
	t.Run("returns public fields only", func(t *testing.T) {
		repo := &fakeRepo{}
		r := newTestRouter(t, repo, &fakeMediaStore{}, &fakeTranscriber{result: &transcriber.Result{Text: "hello world", Language: "en"}})

		body, contentType := multipartVideo(t, "video", "lecture.mp4")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		var data map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "hello world", data["transcript"])
		assert.Equal(t, "en", data["language"])
		assert.NotEmpty(t, data["videoUrl"])
		assert.NotEmpty(t, data["audioUrl"])
		assert.NotContains(t, data, "storageVideoId")
		assert.NotContains(t, data, "storageAudioId")
	})

	t.Run("degraded transcription still succeeds", func(t *testing.T) {
		repo := &fakeRepo{}
		r := newTestRouter(t, repo, &fakeMediaStore{}, &fakeTranscriber{err: transcriber.ErrTranscription})

		body, contentType := multipartVideo(t, "video", "lecture.mp4")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		var data map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "", data["transcript"])
	})

	t.Run("missing file field", func(t *testing.T) {
		r := newTestRouter(t, &fakeRepo{}, &fakeMediaStore{}, &fakeTranscriber{})

		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pipeline failure is a 500 envelope", func(t *testing.T) {
		r := newTestRouter(t, &fakeRepo{}, &fakeMediaStore{uploadVideoErr: errors.New("s3 down")}, &fakeTranscriber{})

		body, contentType := multipartVideo(t, "video", "lecture.mp4")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		repo := &fakeRepo{record: &models.Video{ID: id}}
		r := newTestRouter(t, repo, &fakeMediaStore{}, &fakeTranscriber{})

		req := httptest.NewRequest(http.MethodDelete, "/videos/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "video deleted", resp.Message)
	})

	t.Run("unknown id", func(t *testing.T) {
		r := newTestRouter(t, &fakeRepo{}, &fakeMediaStore{}, &fakeTranscriber{})

		req := httptest.NewRequest(http.MethodDelete, "/videos/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		r := newTestRouter(t, &fakeRepo{}, &fakeMediaStore{}, &fakeTranscriber{})

		req := httptest.NewRequest(http.MethodDelete, "/videos/not-a-uuid", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remote deletion failure", func(t *testing.T) {
		id := uuid.New()
		key := "videos/v1.mp4"
		audio := "audio/a1.mp3"
		repo := &fakeRepo{record: &models.Video{ID: id, Transcript: "x", StorageVideoID: &key, StorageAudioID: &audio}}
		media := &fakeMediaStore{deleteErr: map[string]error{key: errors.New("denied")}}
		r := newTestRouter(t, repo, media, &fakeTranscriber{})

		req := httptest.NewRequest(http.MethodDelete, "/videos/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Nil(t, repo.deletedID)
	})
}

func TestHandler_List(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, &fakeMediaStore{}, &fakeTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}
