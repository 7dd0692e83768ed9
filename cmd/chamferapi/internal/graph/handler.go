package graph

import (
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
)

// MaxUploadSize bounds a multipart request body.
const MaxUploadSize int64 = 100 << 20

// maxMemory is how much of a multipart body is kept in memory before spilling to disk.
const maxMemory int64 = 32 << 20

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ErrorRecorder counts error codes returned to clients.
type ErrorRecorder interface {
	RecordError(code string)
}

// Handler serves GraphQL over GET, JSON POST and multipart POST.
type Handler struct {
	schema   *graphql.Schema
	recorder ErrorRecorder
}

// NewHandler wraps schema. recorder may be nil.
func NewHandler(schema *graphql.Schema, recorder ErrorRecorder) *Handler {
	return &Handler{schema: schema, recorder: recorder}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		req request
		err error
	)

	switch r.Method {
	case http.MethodGet:
		req, err = decodeQueryString(r)
		if err == nil && isMutation(req.Query) {
			writeJSONError(w, http.StatusMethodNotAllowed, "mutations require POST")
			return
		}
	case http.MethodPost:
		req, err = decodeBody(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		writeJSONError(w, http.StatusBadRequest, "query must provided")
		return
	}

	resp := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	h.record(resp)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: write graphql response: %v", err)
	}
}

func (h *Handler) record(resp *graphql.Response) {
	if h.recorder == nil {
		return
	}
	for _, qerr := range resp.Errors {
		code, _ := qerr.Extensions["code"].(string)
		if code == "" {
			code = "GRAPHQL_VALIDATION"
		}
		h.recorder.RecordError(code)
	}
}

func decodeQueryString(r *http.Request) (request, error) {
	q := r.URL.Query()
	req := request{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if vars := q.Get("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
			return req, fmt.Errorf("decode variables: %w", err)
		}
	}
	return req, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request) (request, error) {
	var req request

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/json"
	}

	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode request: %w", err)
		}
		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return req, fmt.Errorf("parse multipart request: %w", err)
	}

	if err := json.Unmarshal([]byte(r.FormValue("operations")), &req); err != nil {
		return req, fmt.Errorf("decode operations: %w", err)
	}

	var fileMap map[string][]string
	if raw := r.FormValue("map"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fileMap); err != nil {
			return req, fmt.Errorf("decode map: %w", err)
		}
	}

	for field, paths := range fileMap {
		files := r.MultipartForm.File[field]
		if len(files) == 0 {
			return req, fmt.Errorf("file %q missing from request", field)
		}
		for _, path := range paths {
			if err := injectFile(&req, path, files[0]); err != nil {
				return req, err
			}
		}
	}
	return req, nil
}

// injectFile places value at an object path such as "variables.files.0".
func injectFile(req *request, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "variables" {
		return fmt.Errorf("unsupported file path %q", path)
	}
	if req.Variables == nil {
		req.Variables = map[string]interface{}{}
	}

	var parent interface{} = req.Variables
	for i, key := range parts[1:] {
		last := i == len(parts)-2
		switch node := parent.(type) {
		case map[string]interface{}:
			if last {
				node[key] = value
				return nil
			}
			parent = node[key]
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("invalid file path %q", path)
			}
			if last {
				node[idx] = value
				return nil
			}
			parent = node[idx]
		default:
			return fmt.Errorf("invalid file path %q", path)
		}
	}
	return nil
}

// isMutation reports whether any top-level operation in query is a mutation or
// subscription. Strings, comments and selection sets are skipped.
func isMutation(query string) bool {
	depth := 0
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '#':
			for i < len(query) && query[i] != '\n' && query[i] != '\r' {
				i++
			}
		case strings.HasPrefix(query[i:], `"""`):
			end := strings.Index(query[i+3:], `"""`)
			if end < 0 {
				return false
			}
			i += end + 6
		case c == '"':
			i++
			for i < len(query) && query[i] != '"' && query[i] != '\n' {
				if query[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case c == '{' || c == '(' || c == '[':
			depth++
			i++
		case c == '}' || c == ')' || c == ']':
			depth--
			i++
		case c == '$' || c == '@':
			// variable and directive names are never operation keywords
			i++
			for i < len(query) && isNameChar(query[i]) {
				i++
			}
		case isNameStart(c):
			start := i
			for i < len(query) && isNameChar(query[i]) {
				i++
			}
			if depth <= 0 {
				switch query[start:i] {
				case "mutation", "subscription":
					return true
				}
			}
		default:
			i++
		}
	}
	return false
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}
