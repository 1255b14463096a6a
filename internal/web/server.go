// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"system-atlas/internal/analyzer"
	"system-atlas/internal/apperrors"
	"system-atlas/internal/config"
	"system-atlas/internal/core"
	"system-atlas/internal/extract"
	"system-atlas/internal/formatters"
	"system-atlas/internal/observability"
	"system-atlas/internal/report"
	"system-atlas/internal/rules"
	"system-atlas/internal/security"
	"system-atlas/internal/version"

	// Import formatters to register them
	_ "system-atlas/internal/formatters/csv"
	_ "system-atlas/internal/formatters/json"
	_ "system-atlas/internal/formatters/text"
	_ "system-atlas/internal/formatters/yaml"
)

// Client-facing error messages. Internal details are logged, never returned.
const (
	ErrInvalidText     = "Kein gültiger Text übergeben"
	ErrAnalysisFailed  = "Fehler bei der Analyse"
	ErrUnsupportedFile = "Dateiformat nicht unterstützt"
	ErrUnreadableFile  = "Datei konnte nicht gelesen werden"
	ErrMissingFile     = "Keine Datei übergeben"
	ErrUnknownFormat   = "Exportformat nicht unterstützt"
	ErrTooLarge        = "Anfrage zu groß"
	ErrNotAllowed      = "Methode nicht erlaubt"
)

// portAttempts is how many consecutive ports Start tries.
const portAttempts = 10

const maxPort = 65535

// multipartOverhead is the allowance for multipart framing on top of the
// configured file size limit.
const multipartOverhead = 64 << 10

//go:embed template.html
var pageTemplate string

// AuditFunc runs one audit. It is core.Audit outside of tests.
type AuditFunc func(core.AuditConfig) (*core.AuditResult, error)

// WebServer represents the web server instance
type WebServer struct {
	port     int
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	observer *observability.StandardObserver
	audit    AuditFunc
	out      io.Writer

	mux    *http.ServeMux
	mu     sync.Mutex
	server *http.Server
}

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Error string `json:"error"`
}

// RulesResponse lists what the server can check and export
type RulesResponse struct {
	Rules          []rules.Entry           `json:"rules"`
	Formats        []formatters.FormatInfo `json:"formats"`
	FileExtensions []string                `json:"file_extensions"`
}

type requestIDKey struct{}

// NewWebServer creates a new web server instance. A nil cfg selects the
// built-in defaults; a nil observer disables operation logging. Configured
// check IDs the catalogue does not know are an error.
func NewWebServer(cfg *config.Config, observer *observability.StandardObserver) (*WebServer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}

	checks := core.ResolveChecks("", cfg, nil)
	if err := core.ValidateChecks(checks, nil); err != nil {
		return nil, fmt.Errorf("defaults.checks: %w", err)
	}

	ws := &WebServer{
		port:     cfg.Server.Port,
		cfg:      cfg,
		analyzer: core.BuildAnalyzer(checks, nil),
		observer: observer,
		audit:    core.Audit,
		out:      os.Stdout,
		mux:      http.NewServeMux(),
	}
	ws.setupRoutes()
	return ws, nil
}

// SetPort overrides the configured port
func (ws *WebServer) SetPort(port int) {
	ws.port = port
}

// Handler returns the routed handler, for embedding and tests
func (ws *WebServer) Handler() http.Handler {
	return ws.mux
}

func (ws *WebServer) setupRoutes() {
	ws.mux.HandleFunc("/", ws.wrap("home", ws.serveHome))
	ws.mux.HandleFunc("/health", ws.wrap("health", ws.handleHealth))
	ws.mux.HandleFunc("/api/analyze", ws.wrap("analyze", ws.handleAnalyze))
	ws.mux.HandleFunc("/api/analyze/file", ws.wrap("analyze_file", ws.handleAnalyzeFile))
	ws.mux.HandleFunc("/api/export", ws.wrap("export", ws.handleExport))
	ws.mux.HandleFunc("/api/rules", ws.wrap("rules", ws.handleRules))
}

// Start listens on the configured port, or the next free one of
// portAttempts, and serves until Shutdown or Stop.
func (ws *WebServer) Start() error {
	listener, err := ws.listen()
	if err != nil {
		return err
	}

	server := ws.createSecureServer()
	ws.mu.Lock()
	ws.server = server
	ws.mu.Unlock()
	port := listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(ws.out, "%s Web-Oberfläche gestartet auf Port %d\n", report.Name, port)
	fmt.Fprintf(ws.out, "Lokal: http://localhost:%d\n", port)

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on port %d failed: %w", port, err)
	}
	return nil
}

func (ws *WebServer) listen() (net.Listener, error) {
	ports, err := candidatePorts(ws.port)
	if err != nil {
		return nil, err
	}

	var lastError error
	for i, port := range ports {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			return listener, nil
		}
		lastError = err
		if i == 0 {
			fmt.Fprintf(ws.out, "Port %d ist belegt, versuche alternative Ports...\n", port)
		}
	}

	return nil, fmt.Errorf("could not find an available port in range %d-%d\n"+
		"Last error: %v\n"+
		"Troubleshooting:\n"+
		"  1. Check if other services are using these ports\n"+
		"  2. Try a specific port with -port <number>\n"+
		"  3. Ensure you have permission to bind to the requested port",
		ports[0], ports[len(ports)-1], lastError)
}

// candidatePorts returns port and up to portAttempts-1 following ports,
// stopping at maxPort.
func candidatePorts(port int) ([]int, error) {
	if port < 1 || port > maxPort {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and %d", port, maxPort)
	}
	ports := make([]int, 0, portAttempts)
	for p := port; p < port+portAttempts && p <= maxPort; p++ {
		ports = append(ports, p)
	}
	return ports, nil
}

// Shutdown stops accepting connections and waits for active requests
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.mu.Lock()
	server := ws.server
	ws.mu.Unlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// Stop closes the server immediately
func (ws *WebServer) Stop() error {
	ws.mu.Lock()
	server := ws.server
	ws.mu.Unlock()
	if server != nil {
		return server.Close()
	}
	return nil
}

func (ws *WebServer) createSecureServer() *http.Server {
	return &http.Server{
		Handler: ws.mux,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: ws.cfg.Server.ReadTimeout,
		ReadTimeout:       ws.cfg.Server.ReadTimeout,
		WriteTimeout:      ws.cfg.Server.WriteTimeout,
		IdleTimeout:       ws.cfg.Server.IdleTimeout,
	}
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// wrap assigns a request ID, recovers handler panics as 500 and logs one
// operation record per request.
func (ws *WebServer) wrap(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, request *http.Request) {
		requestID := observability.NewRequestID()
		responseWriter.Header().Set("X-Request-ID", requestID)
		recorder := &statusRecorder{ResponseWriter: responseWriter, status: http.StatusOK}
		finish := ws.observer.StartTiming("web", route, requestID, request.Method+" "+request.URL.Path)

		defer func() {
			var errMessage string
			if rec := recover(); rec != nil {
				ws.sendErrorWithStatus(recorder, ErrAnalysisFailed, http.StatusInternalServerError)
				errMessage = fmt.Sprintf("panic: %v", rec)
			}
			finish(recorder.status < http.StatusInternalServerError, errMessage,
				map[string]interface{}{"status": recorder.status})
		}()

		handler(recorder, request.WithContext(context.WithValue(request.Context(), requestIDKey{}, requestID)))
	}
}

func requestIDFrom(request *http.Request) string {
	id, _ := request.Context().Value(requestIDKey{}).(string)
	return id
}

// serveHome serves the main HTML page
func (ws *WebServer) serveHome(responseWriter http.ResponseWriter, request *http.Request) {
	if request.URL.Path != "/" {
		http.NotFound(responseWriter, request)
		return
	}
	if request.Method != http.MethodGet {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	responseWriter.Header().Set("Content-Type", "text/html; charset=utf-8")
	responseWriter.WriteHeader(http.StatusOK)
	io.WriteString(responseWriter, pageTemplate)
}

// handleHealth provides a health check endpoint with version information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()
	ws.sendJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "system-atlas-web",
		"version":   versionInfo["version"],
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	})
}

// handleAnalyze accepts {"text": "..."} and returns the analysis result
func (ws *WebServer) handleAnalyze(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	text, ok := ws.decodeText(responseWriter, request, nil)
	if !ok {
		return
	}

	result, err := ws.runAudit(request, text, "/api/analyze")
	if err != nil {
		ws.sendAuditError(responseWriter, err)
		return
	}
	ws.sendJSON(responseWriter, http.StatusOK, result.Result)
}

// handleAnalyzeFile accepts a multipart upload in field "file", extracts its
// text in memory and analyzes it.
func (ws *WebServer) handleAnalyzeFile(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	maxFileBytes := ws.cfg.Extraction.MaxFileBytes
	request.Body = http.MaxBytesReader(responseWriter, request.Body, maxFileBytes+multipartOverhead)

	upload, err := readUpload(request, maxFileBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			ws.sendErrorWithStatus(responseWriter, ErrTooLarge, http.StatusRequestEntityTooLarge)
		case errors.Is(err, errNoFile):
			ws.sendError(responseWriter, ErrMissingFile)
		default:
			ws.sendError(responseWriter, ErrUnreadableFile)
		}
		return
	}
	defer upload.Clear()
	filename := upload.Name()

	if int64(upload.Len()) > maxFileBytes {
		ws.sendErrorWithStatus(responseWriter, ErrTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	if !extract.IsSupported(filename) {
		ws.sendError(responseWriter, ErrUnsupportedFile)
		return
	}

	doc, err := extract.FromBytes(filename, upload.Bytes(), extract.Options{
		MaxPDFPages: ws.cfg.Extraction.MaxPDFPages,
		MaxBytes:    maxFileBytes,
	})
	if err != nil {
		ws.observer.LogOperation(observability.StandardObservabilityData{
			Component: "extract",
			Operation: "extract",
			RequestID: requestIDFrom(request),
			Target:    filename,
			Error:     err.Error(),
		})
		switch apperrors.TypeOf(err) {
		case apperrors.ErrorTypeUnsupportedFormat:
			ws.sendError(responseWriter, ErrUnsupportedFile)
		case apperrors.ErrorTypeInvalidInput:
			ws.sendError(responseWriter, ErrInvalidText)
		default:
			ws.sendError(responseWriter, ErrUnreadableFile)
		}
		return
	}

	result, err := ws.runAudit(request, doc.Text, filename)
	if err != nil {
		ws.sendAuditError(responseWriter, err)
		return
	}
	ws.sendJSON(responseWriter, http.StatusOK, result.Result)
}

var errNoFile = errors.New("no file part in request")

// readUpload streams the multipart body and returns the first part named
// "file". Parts are read into memory, never spooled to disk.
func readUpload(request *http.Request, maxBytes int64) (*security.UploadBuffer, error) {
	reader, err := request.MultipartReader()
	if err != nil {
		return nil, errNoFile
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		part.Close()
		if err != nil {
			clear(data)
			return nil, err
		}
		return security.NewUploadBuffer(filepath.Base(part.FileName()), data), nil
	}
}

// handleExport analyzes {"text", "format", "verbose"} and returns the
// formatted report as a download.
func (ws *WebServer) handleExport(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	var options struct {
		Format  string `json:"format"`
		Verbose bool   `json:"verbose"`
	}
	text, ok := ws.decodeText(responseWriter, request, &options)
	if !ok {
		return
	}

	if _, exists := formatters.Get(options.Format); !exists {
		ws.sendError(responseWriter, ErrUnknownFormat)
		return
	}

	result, err := ws.runAudit(request, text, "/api/export")
	if err != nil {
		ws.sendAuditError(responseWriter, err)
		return
	}

	content, contentType, filename, err := formatters.ExportForWeb(options.Format, result.Result, formatters.FormatterOptions{
		Verbose: options.Verbose,
		NoColor: true, // Always disable color for exports
	})
	if err != nil {
		ws.observer.LogOperation(observability.StandardObservabilityData{
			Component: "formatters",
			Operation: "export",
			RequestID: requestIDFrom(request),
			Target:    options.Format,
			Error:     err.Error(),
		})
		ws.sendErrorWithStatus(responseWriter, ErrAnalysisFailed, http.StatusInternalServerError)
		return
	}

	responseWriter.Header().Set("Content-Type", contentType)
	responseWriter.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	responseWriter.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	responseWriter.Header().Set("Pragma", "no-cache")
	responseWriter.Header().Set("Expires", "0")
	responseWriter.WriteHeader(http.StatusOK)
	io.WriteString(responseWriter, content)
}

// handleRules lists the catalogue, the export formats and the accepted
// upload extensions.
func (ws *WebServer) handleRules(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		ws.sendErrorWithStatus(responseWriter, ErrNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	ws.sendJSON(responseWriter, http.StatusOK, RulesResponse{
		Rules:          ws.analyzer.Catalogue().Describe(),
		Formats:        formatters.GetSupportedFormats(),
		FileExtensions: extract.SupportedExtensions(),
	})
}

// decodeText reads a JSON body whose "text" member must be a non-empty
// string. Other members are decoded into extra when it is non-nil. It
// writes the error response itself and reports whether to continue.
func (ws *WebServer) decodeText(responseWriter http.ResponseWriter, request *http.Request, extra interface{}) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(responseWriter, request.Body, ws.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ws.sendErrorWithStatus(responseWriter, ErrTooLarge, http.StatusRequestEntityTooLarge)
			return "", false
		}
		ws.sendError(responseWriter, ErrInvalidText)
		return "", false
	}

	var envelope struct {
		Text json.RawMessage `json:"text"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		ws.sendError(responseWriter, ErrInvalidText)
		return "", false
	}

	var text string
	if len(envelope.Text) == 0 || json.Unmarshal(envelope.Text, &text) != nil || text == "" {
		ws.sendError(responseWriter, ErrInvalidText)
		return "", false
	}

	if extra != nil {
		if err := json.Unmarshal(body, extra); err != nil {
			ws.sendError(responseWriter, ErrInvalidText)
			return "", false
		}
	}
	return text, true
}

func (ws *WebServer) runAudit(request *http.Request, text, source string) (*core.AuditResult, error) {
	return ws.audit(core.AuditConfig{
		Text:      text,
		Source:    source,
		Analyzer:  ws.analyzer,
		Observer:  ws.observer,
		RequestID: requestIDFrom(request),
	})
}

// sendAuditError maps a failed audit to its fixed client message
func (ws *WebServer) sendAuditError(responseWriter http.ResponseWriter, err error) {
	if apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		ws.sendError(responseWriter, ErrInvalidText)
		return
	}
	ws.sendErrorWithStatus(responseWriter, ErrAnalysisFailed, http.StatusInternalServerError)
}

// sendError sends a 400 error response
func (ws *WebServer) sendError(responseWriter http.ResponseWriter, message string) {
	ws.sendErrorWithStatus(responseWriter, message, http.StatusBadRequest)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	ws.sendJSON(responseWriter, statusCode, ErrorResponse{Error: message})
}

func (ws *WebServer) sendJSON(responseWriter http.ResponseWriter, statusCode int, body interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(body)
}
