package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUploadAudio(t *testing.T) {
	s := testServer(t, WithUploadDir(t.TempDir()))
	router := s.HttpRouter()

	t.Run("stores the file and serves it back", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("audio", "tema.mp3")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake mp3 bytes"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload-audio", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, strings.HasPrefix(resp["url"], "/uploads/"), resp["url"])
		assert.True(t, strings.HasSuffix(resp["url"], ".mp3"), "the original extension is kept")

		get := httptest.NewRequest(http.MethodGet, resp["url"], nil)
		getRec := httptest.NewRecorder()
		router.ServeHTTP(getRec, get)

		require.Equal(t, http.StatusOK, getRec.Code)
		served, err := io.ReadAll(getRec.Body)
		require.NoError(t, err)
		assert.Equal(t, "fake mp3 bytes", string(served))
	})

	t.Run("rejects a request without a file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload-audio", strings.NewReader("nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a form without the audio field", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("video", "tema.mp4")
		require.NoError(t, err)
		_, err = part.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload-audio", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
