package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/apierr"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/config"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/fetcher"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/models"
)

// mockAnalyzer substitutes the Mistral gateway in handler tests.
type mockAnalyzer struct {
	textResult  models.AnalysisResult
	textErr     error
	imageResult models.AnalysisResult
	imageErr    error

	textCalls  int
	imageCalls int
	gotContent string
	gotKind    string
	gotImage   models.EncodedImage
}

func (m *mockAnalyzer) AnalyzeText(ctx context.Context, content, contentKind string) (models.AnalysisResult, error) {
	m.textCalls++
	m.gotContent = content
	m.gotKind = contentKind
	if m.textErr != nil {
		return models.AnalysisResult{}, m.textErr
	}
	return m.textResult, nil
}

func (m *mockAnalyzer) AnalyzeImage(ctx context.Context, img models.EncodedImage) (models.AnalysisResult, error) {
	m.imageCalls++
	m.gotImage = img
	if m.imageErr != nil {
		return models.AnalysisResult{}, m.imageErr
	}
	return m.imageResult, nil
}

func ptr[T any](v T) *T { return &v }

func testConfig() config.Config {
	return config.Config{
		APITitle:              "Mistral Fact Checker API",
		APIVersion:            "1.0.0",
		CORSOrigins:           []string{"http://localhost:3000"},
		MaxTextLength:         10000,
		MaxURLContentLength:   10000,
		MaxImageSizeMB:        10,
		URLTimeoutSeconds:     2,
		MistralTimeoutSeconds: 5,
	}
}

func newTestHandler(analyzer Analyzer, cfg config.Config) http.Handler {
	return New(cfg, analyzer, fetcher.New(cfg)).handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func multipartUpload(t *testing.T, fieldName, filename, mimeType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		h := newTestHandler(&mockAnalyzer{}, testConfig())

		for _, path := range []string{"/", "/health"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, path)

			var resp models.HealthResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "healthy", resp.Status)
			assert.Equal(t, "Mistral Fact Checker API", resp.Service)
			assert.Equal(t, "1.0.0", resp.Version)
			assert.Equal(t, "connected", resp.MistralConnection)
		}
	})

	t.Run("disconnected", func(t *testing.T) {
		h := newTestHandler(nil, testConfig())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp models.HealthResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "disconnected", resp.MistralConnection)

		// Root stays "healthy" but still reports the connection state.
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		decodeBody(t, rec, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "disconnected", resp.MistralConnection)
	})
}

func TestFactCheckText(t *testing.T) {
	mock := &mockAnalyzer{textResult: models.AnalysisResult{
		Rating:     ptr(8.5),
		Confidence: ptr(0.85),
	}}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "The Earth is round and orbits the Sun."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.FactCheckResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 8.5, resp.Rating)
	assert.Equal(t, 0.85, resp.Confidence)
	assert.Equal(t, "text", resp.InputType)
	assert.NotEmpty(t, resp.Timestamp)

	assert.Equal(t, 1, mock.textCalls)
	assert.Equal(t, "text", mock.gotKind)
	assert.Equal(t, "The Earth is round and orbits the Sun.", mock.gotContent)
}

func TestFactCheckTextWithContext(t *testing.T) {
	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "It rained frogs.", "context": "a viral tweet"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Context: a viral tweet\n\nContent: It rained frogs.", mock.gotContent)
}

func TestFactCheckTextDefaultsApplied(t *testing.T) {
	// Model replied with an empty JSON object; all defaults apply.
	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "claim"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FactCheckResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 5.0, resp.Rating)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Equal(t, "No explanation provided", resp.Explanation)
	assert.Equal(t, "No analysis available", resp.Analysis)
	assert.Equal(t, []models.Source{}, resp.Sources)
}

func TestFactCheckTextValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"text": ""}`},
		{"whitespace text", `{"text": "   \n  "}`},
		{"malformed body", `{"text": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAnalyzer{}
			h := newTestHandler(mock, testConfig())

			rec := postJSON(t, h, "/api/fact-check/text", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp map[string]string
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp["detail"])

			// Rejected before any provider call
			assert.Equal(t, 0, mock.textCalls)
		})
	}
}

func TestFactCheckTextProviderError(t *testing.T) {
	mock := &mockAnalyzer{textErr: apierr.Provider("rate limited")}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "claim"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Mistral AI analysis failed: rate limited", resp["detail"])
}

func TestFactCheckTextMalformedSources(t *testing.T) {
	mock := &mockAnalyzer{textResult: models.AnalysisResult{
		Sources: []models.RawSource{{Title: ptr("only a title")}},
	}}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "claim"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["detail"], "missing a required field")
}

func TestFactCheckURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("An article claiming the Moon is made of cheese."))
	}))
	defer upstream.Close()

	mock := &mockAnalyzer{textResult: models.AnalysisResult{Rating: ptr(1.0)}}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/url", `{"url": "`+upstream.URL+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.FactCheckResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "url", resp.InputType)
	assert.Equal(t, 1.0, resp.Rating)

	assert.Equal(t, "webpage", mock.gotKind)
	assert.Equal(t, "An article claiming the Moon is made of cheese.", mock.gotContent)
}

func TestFactCheckURLInvalid(t *testing.T) {
	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/url", `{"url": "not a url"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, mock.textCalls)
}

func TestFactCheckURLFetchFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/url", `{"url": "`+upstream.URL+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["detail"], "HTTP 404")

	// Acquisition failure aborts before any provider call
	assert.Equal(t, 0, mock.textCalls)
}

func TestFactCheckImage(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	body, contentType := multipartUpload(t, "file", "claim.png", "image/png", imageBytes)

	mock := &mockAnalyzer{imageResult: models.AnalysisResult{Rating: ptr(6.0)}}
	h := newTestHandler(mock, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/fact-check/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.FactCheckResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "image", resp.InputType)
	assert.Equal(t, 6.0, resp.Rating)

	assert.Equal(t, 1, mock.imageCalls)
	assert.Equal(t, "image/png", mock.gotImage.MIME)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageBytes), mock.gotImage.Base64)
}

func TestFactCheckImageMissingFile(t *testing.T) {
	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	rec := postJSON(t, h, "/api/fact-check/image", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Image file is required", resp["detail"])
	assert.Equal(t, 0, mock.imageCalls)
}

func TestFactCheckImageWrongType(t *testing.T) {
	body, contentType := multipartUpload(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))

	mock := &mockAnalyzer{}
	h := newTestHandler(mock, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/fact-check/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "File must be an image", resp["detail"])
	assert.Equal(t, 0, mock.imageCalls)
}

func TestFactCheckImageTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxImageSizeMB = 1

	body, contentType := multipartUpload(t, "file", "big.jpg", "image/jpeg", make([]byte, 2*1024*1024))

	mock := &mockAnalyzer{}
	h := newTestHandler(mock, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/fact-check/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Image size (2.00MB) exceeds maximum allowed size (1MB)", resp["detail"])
	assert.Equal(t, 0, mock.imageCalls)
}

func TestFactCheckWithoutClient(t *testing.T) {
	h := newTestHandler(nil, testConfig())

	rec := postJSON(t, h, "/api/fact-check/text", `{"text": "claim"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["detail"], "not initialized")
}

func TestCORS(t *testing.T) {
	h := newTestHandler(&mockAnalyzer{}, testConfig())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/fact-check/text", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(&mockAnalyzer{}, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-ID"))
}
