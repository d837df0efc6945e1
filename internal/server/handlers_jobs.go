package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"xeroq/internal/api"
	"xeroq/internal/models"
)

const uploadBodySlack = 1 << 20 // form overhead on top of the file limit

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBody := s.limits.Max() + uploadBodySlack
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(s.multipartMemory); err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(classifyMultipartError(err)), classifyMultipartError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired))
		return
	}
	defer file.Close()

	printOptions, err := parsePrintOptions(r.FormValue("printOptions"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	buffered := bufio.NewReader(file)
	mediaType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mediaType == "" {
		peek, _ := buffered.Peek(512)
		mediaType = http.DetectContentType(peek)
	}

	job, err := s.service.Create(r.Context(), CreateJobInput{
		Filename:     header.Filename,
		MediaType:    mediaType,
		SizeBytes:    header.Size,
		PrintOptions: printOptions,
	}, buffered)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Success: true,
		OTP:     job.OTP,
		Message: "file uploaded successfully",
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	code, ok := s.queryOTPOrBadRequest(w, r)
	if !ok {
		return
	}

	job, err := s.service.Lookup(r.Context(), code)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, jobResponse(job))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	code, ok := s.queryOTPOrBadRequest(w, r)
	if !ok {
		return
	}

	content, err := s.service.OpenContent(r.Context(), code)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer content.Reader.Close()

	w.Header().Set("Content-Type", content.MediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content.Reader); err != nil {
		s.log().Error("stream job file", "otp", code, "error", err)
	}
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req api.CompleteRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.OTP) == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("otp is required"), ErrCodeMissingRequired))
		return
	}

	if err := s.service.Complete(r.Context(), req.OTP); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.CompleteResponse{
		Success: true,
		Message: "job marked as completed",
	})
}

func jobResponse(job *models.PrintJob) api.JobResponse {
	options := job.PrintOptions
	if options == nil {
		options = map[string]any{}
	}
	return api.JobResponse{
		OTP:          job.OTP,
		Filename:     job.Filename,
		PrintOptions: options,
		UploadTime:   job.UploadTime,
		Status:       job.Status,
		FileURL:      "/api/admin/download?otp=" + job.OTP,
	}
}

func parsePrintOptions(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	options := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, badRequestCode(fmt.Errorf("invalid printOptions JSON"), ErrCodeInvalidOptions)
	}
	return options, nil
}
