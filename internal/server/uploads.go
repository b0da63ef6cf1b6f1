package server

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
)

// maxUploadSize limits a single audio upload to 12 MiB.
const maxUploadSize = 12 << 20

// HandleUploadAudio stores an uploaded audio file and returns the URL the
// game master sends out as an audio cue.
func (s *Server) HandleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apiError(w, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		apiError(w, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.Config.UploadDir, 0o755); err != nil {
		slog.Error("Could not create the upload directory", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro ao processar upload")
		return
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.Config.UploadDir, name))
	if err != nil {
		slog.Error("Could not store the upload", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro ao processar upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("Could not store the upload", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro ao processar upload")
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"url": "/uploads/" + name})
}
