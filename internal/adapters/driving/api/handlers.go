package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
)

// uploadField is the multipart field carrying the PDF files.
const uploadField = "files"

type errorResponse struct {
	Detail string `json:"detail"`
}

type uploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type uploadResponse struct {
	Message  string          `json:"message"`
	StoreIDs []string        `json:"store_ids"`
	NumFiles int             `json:"num_files"`
	Failed   []uploadFailure `json:"failed"`
}

type chatRequest struct {
	Question    string        `json:"question"`
	StoreIDs    []string      `json:"store_ids"`
	ChatHistory []domain.Turn `json:"chat_history"`
	Mode        domain.Mode   `json:"mode"`
}

type chatResponse struct {
	Response    string                      `json:"response"`
	Context     string                      `json:"context"`
	Timestamp   time.Time                   `json:"timestamp"`
	Diagnostics domain.RetrievalDiagnostics `json:"diagnostics"`
}

type storesResponse struct {
	Stores []domain.StoreManifest `json:"stores"`
	Count  int                    `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/v1/pdf/upload (multipart, field "files")
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			logger.Warn("Reading upload %s: %v", fh.Filename, err)
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read %s", fh.Filename))
			return
		}
		uploads = append(uploads, upload)
	}

	result, err := s.ports.Ingest.Ingest(r.Context(), uploads)
	resp := uploadResponse{
		StoreIDs: result.StoreIDs,
		NumFiles: len(uploads),
		Failed:   failures(result),
	}
	if resp.StoreIDs == nil {
		resp.StoreIDs = []string{}
	}

	switch {
	case errors.Is(err, domain.ErrIngestFailed):
		resp.Message = "No PDFs could be processed"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, detail(err))
	case err != nil:
		logger.Error("Processing uploads: %v", err)
		writeError(w, http.StatusInternalServerError, "Error processing PDFs")
	default:
		resp.Message = "PDFs processed successfully"
		if len(resp.Failed) > 0 {
			resp.Message = fmt.Sprintf("Processed %d of %d PDFs", result.Count, len(uploads))
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// POST /api/v1/chat/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req := domain.ChatRequest{
		Question: body.Question,
		StoreIDs: body.StoreIDs,
		History:  body.ChatHistory,
		Mode:     body.Mode,
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, detail(err))
		return
	}

	resp := s.ports.Chat.Respond(r.Context(), req)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:    resp.Answer,
		Context:     resp.Context,
		Timestamp:   resp.Timestamp,
		Diagnostics: resp.Diagnostics,
	})
}

// GET /api/v1/stores
func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	manifests, err := s.ports.Stores.List(r.Context())
	if err != nil {
		logger.Error("Listing stores: %v", err)
		writeError(w, http.StatusInternalServerError, "Error listing stores")
		return
	}
	if manifests == nil {
		manifests = []domain.StoreManifest{}
	}
	writeJSON(w, http.StatusOK, storesResponse{Stores: manifests, Count: len(manifests)})
}

// GET /api/v1/stores/{id}
func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	manifest, err := s.ports.Stores.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Store %s not found", id))
			return
		}
		logger.Error("Loading store %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Error loading store")
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Filename: fh.Filename, Content: data}, nil
}

func failures(result domain.IngestResult) []uploadFailure {
	out := []uploadFailure{}
	for _, item := range result.Failed() {
		out = append(out, uploadFailure{Filename: item.Filename, Error: item.Err.Error()})
	}
	return out
}

// detail strips the sentinel prefix from validation errors.
func detail(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}
