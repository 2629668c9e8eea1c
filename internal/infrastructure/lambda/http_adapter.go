// Package lambda runs an http.Handler behind API Gateway HTTP APIs
// (payload format 2.0).
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ToHTTPRequest rebuilds the original HTTP request from an API Gateway event.
func ToHTTPRequest(ctx context.Context, req events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: req.RawQueryString}
	if req.RawPath != "" {
		if p, err := url.PathUnescape(req.RawPath); err == nil {
			u.Path = p
			u.RawPath = req.RawPath
		}
	}

	method := req.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	r, err := http.NewRequestWithContext(ctx, method, u.RequestURI(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	r.RequestURI = u.RequestURI()

	for k, v := range req.Headers {
		for _, part := range splitHeader(k, v) {
			r.Header.Add(k, part)
		}
	}
	if len(req.Cookies) > 0 {
		r.Header.Set("Cookie", strings.Join(req.Cookies, "; "))
	}

	r.Host = r.Header.Get("Host")
	if r.Host == "" {
		r.Host = req.RequestContext.DomainName
	}
	r.Header.Del("Host")
	r.ContentLength = int64(len(body))
	if ip := req.RequestContext.HTTP.SourceIP; ip != "" {
		r.RemoteAddr = ip + ":0"
	}
	if rid := req.RequestContext.RequestID; rid != "" && r.Header.Get("X-Request-Id") == "" {
		r.Header.Set("X-Request-Id", rid)
	}
	if r.Header.Get("X-Forwarded-Proto") == "" {
		r.Header.Set("X-Forwarded-Proto", "https")
	}

	return r, nil
}

// API Gateway joins repeated headers with commas. Only headers that are
// plain lists are split back.
func splitHeader(name, value string) []string {
	switch http.CanonicalHeaderKey(name) {
	case "Accept", "Accept-Encoding", "Accept-Language", "X-Forwarded-For":
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return []string{value}
	}
}

// ResponseWriter buffers a handler's response for API Gateway.
type ResponseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{header: make(http.Header)}
}

func (w *ResponseWriter) Header() http.Header { return w.header }

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *ResponseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
}

// Response converts the buffered response. Non-text bodies are base64
// encoded.
func (w *ResponseWriter) Response() events.APIGatewayV2HTTPResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}

	resp := events.APIGatewayV2HTTPResponse{
		StatusCode:        status,
		Headers:           make(map[string]string, len(w.header)),
		MultiValueHeaders: make(map[string][]string),
		Cookies:           w.header.Values("Set-Cookie"),
	}

	for k, vs := range w.header {
		if k == "Set-Cookie" || len(vs) == 0 {
			continue
		}
		resp.Headers[k] = strings.Join(vs, ",")
		if len(vs) > 1 {
			resp.MultiValueHeaders[k] = vs
		}
	}

	if w.body.Len() == 0 {
		return resp
	}
	if isText(w.header.Get("Content-Type")) {
		resp.Body = w.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(w.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/json" ||
		strings.HasSuffix(mediaType, "+json") ||
		mediaType == "application/xml" ||
		mediaType == "application/javascript"
}

// Handler adapts h into a Lambda handler function.
func Handler(h http.Handler) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		r, err := ToHTTPRequest(ctx, req)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
				Body:       err.Error(),
			}, nil
		}

		w := NewResponseWriter()
		h.ServeHTTP(w, r)
		return w.Response(), nil
	}
}
