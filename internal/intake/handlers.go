package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/submission"
)

// maxBodySize caps a submission body.
const maxBodySize = 1 << 20

// SubmitResponse is the JSON body answered to a form POST.
type SubmitResponse struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type modeRequest struct {
	Reject bool `json:"reject"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, SubmitResponse{OK: false, Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"form_id":   s.config.FormID,
		"rejecting": s.Rejecting(),
		"leads":     s.store.Len(),
		"watchers":  s.feed.Count(),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "form") != s.config.FormID {
		writeError(w, http.StatusNotFound, "form not found")
		return
	}
	if s.Rejecting() {
		writeError(w, http.StatusServiceUnavailable, "intake unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	fields, err := readFields(r)
	if err != nil {
		logging.Warn("Rejected malformed submission",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "empty submission")
		return
	}

	lead := Lead{
		ID:         submission.NewID("lead"),
		FormID:     s.config.FormID,
		ReceivedAt: time.Now().UTC(),
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
		Fields:     fields,
	}
	s.store.Add(lead)
	s.feed.Publish(lead)

	logging.Info("Lead received",
		zap.String("lead_id", lead.ID),
		zap.Int("fields", len(fields)),
	)
	writeJSON(w, http.StatusOK, SubmitResponse{OK: true, ID: lead.ID})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mode request")
		return
	}
	s.SetRejecting(req.Reject)
	writeJSON(w, http.StatusOK, modeRequest{Reject: s.Rejecting()})
}

// readFields decodes a multipart or urlencoded body. Multipart keeps the
// sender's field order; urlencoded fields are sorted by name.
func readFields(r *http.Request) ([]LeadField, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	switch {
	case mediaType == "multipart/form-data":
		return readMultipart(r)
	case mediaType == "application/x-www-form-urlencoded":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid form encoding: %w", err)
		}
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		var fields []LeadField
		for _, name := range names {
			for _, v := range values[name] {
				fields = append(fields, LeadField{Name: name, Value: v})
			}
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func readMultipart(r *http.Request) ([]LeadField, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	var fields []LeadField
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		name := part.FormName()
		if name == "" || part.FileName() != "" {
			_ = part.Close()
			continue
		}
		var sb strings.Builder
		if _, err := io.Copy(&sb, part); err != nil {
			_ = part.Close()
			return nil, fmt.Errorf("failed to read field %s: %w", name, err)
		}
		_ = part.Close()
		fields = append(fields, LeadField{Name: name, Value: sb.String()})
	}
}
