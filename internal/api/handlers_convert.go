package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/parser"
	"github.com/dgallion1/md2docx/internal/style"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	defaultDocName  = "document.docx"
	formOverhead    = 1024 * 1024
)

// requestError is a client error with the status it maps to.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// convertInput is a decoded conversion request.
type convertInput struct {
	Markdown string
	Fields   style.Fields
	// DocName is the download file name.
	DocName string
}

type convertBody struct {
	Markdown     string     `json:"markdown"`
	StyleOptions *styleBody `json:"styleOptions"`
}

type styleBody struct {
	FontFamily string     `json:"fontFamily"`
	FontSize   flexString `json:"fontSize"`
	PageSize   string     `json:"pageSize"`
	MarginSize string     `json:"marginSize"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// readConvertInput decodes Markdown and style fields from a form post,
// a JSON body, or a raw text/markdown body.
func (s *Server) readConvertInput(w http.ResponseWriter, r *http.Request) (*convertInput, error) {
	limit := s.cfg.MaxMarkdownBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	in := &convertInput{DocName: defaultDocName}

	switch mediaType {
	case "application/json":
		var body convertBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if tooLarge(err) {
				return nil, errTooLarge(limit)
			}
			return nil, badRequest("invalid JSON body: %v", err)
		}
		in.Markdown = body.Markdown
		if so := body.StyleOptions; so != nil {
			in.Fields = style.Fields{
				FontFamily: so.FontFamily,
				FontSize:   string(so.FontSize),
				PageSize:   so.PageSize,
				MarginSize: so.MarginSize,
			}
		}

	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if tooLarge(err) {
				return nil, errTooLarge(limit)
			}
			return nil, badRequest("invalid multipart form: %v", err)
		}
		defer r.MultipartForm.RemoveAll()
		in.Fields = formFields(r)
		in.Markdown = r.FormValue("markdown")
		if in.Markdown == "" {
			if err := readUploadedFile(r, in, limit); err != nil {
				return nil, err
			}
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			if tooLarge(err) {
				return nil, errTooLarge(limit)
			}
			return nil, badRequest("invalid form: %v", err)
		}
		in.Fields = formFields(r)
		in.Markdown = r.PostFormValue("markdown")

	case "text/markdown", "text/plain", "text/x-markdown":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			if tooLarge(err) {
				return nil, errTooLarge(limit)
			}
			return nil, badRequest("failed to read body")
		}
		in.Markdown = string(data)
		in.Fields = queryFields(r)

	default:
		return nil, &requestError{
			status: http.StatusUnsupportedMediaType,
			msg:    fmt.Sprintf("unsupported content type %q", mediaType),
		}
	}

	if int64(len(in.Markdown)) > limit {
		return nil, errTooLarge(limit)
	}
	return in, nil
}

func readUploadedFile(r *http.Request, in *convertInput, limit int64) error {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return badRequest("invalid file: %v", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return badRequest("unsupported file type: %s", filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return &requestError{status: http.StatusInternalServerError, msg: "failed to read file"}
	}
	if int64(len(data)) > limit {
		return errTooLarge(limit)
	}
	in.Markdown = string(data)
	in.DocName = parser.DocumentName(filename)
	return nil
}

func formFields(r *http.Request) style.Fields {
	return style.Fields{
		FontFamily: r.FormValue("fontFamily"),
		FontSize:   r.FormValue("fontSize"),
		PageSize:   r.FormValue("pageSize"),
		MarginSize: r.FormValue("marginSize"),
	}
}

func queryFields(r *http.Request) style.Fields {
	q := r.URL.Query()
	return style.Fields{
		FontFamily: q.Get("fontFamily"),
		FontSize:   q.Get("fontSize"),
		PageSize:   q.Get("pageSize"),
		MarginSize: q.Get("marginSize"),
	}
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func errTooLarge(limit int64) error {
	return &requestError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("markdown exceeds max size (%d bytes)", limit),
	}
}

// handleConvert converts Markdown synchronously and streams the DOCX back.
// Errors are plain text to match what browser form posts expect.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	in, err := s.readConvertInput(w, r)
	if err != nil {
		var re *requestError
		if errors.As(err, &re) {
			http.Error(w, re.msg, re.status)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Markdown == "" {
		http.Error(w, "No markdown content received", http.StatusBadRequest)
		return
	}

	opts, err := s.defaults.Apply(in.Fields)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.converter.Convert(r.Context(), convert.Request{Markdown: in.Markdown, Options: opts})
	if err != nil {
		switch {
		case errors.Is(err, convert.ErrEmptyMarkdown):
			http.Error(w, "No markdown content received", http.StatusBadRequest)
		case convert.IsInvalidInput(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			s.log.Error("conversion failed", "error", err)
			http.Error(w, "Error converting markdown to DOCX", http.StatusInternalServerError)
		}
		return
	}

	writeDocument(w, out.Document, out.Hash, in.DocName)
}

func writeDocument(w http.ResponseWriter, doc []byte, hash, name string) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	if hash != "" {
		w.Header().Set("ETag", `"`+hash+`"`)
	}
	w.Write(doc)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
