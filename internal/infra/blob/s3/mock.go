package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns a Store whose HTTP transport is an in-memory fake.
// It answers just the S3 calls the blob store interface issues.
func NewMockForTests() *Store {
	ft := &fakeTransport{objects: make(map[string]fakeObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: ft}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, bucket: "mock-bucket", presign: s3.NewPresignClient(client)}
}

type fakeObject struct {
	body        []byte
	contentType string
}

type fakeTransport struct {
	objects map[string]fakeObject
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Path-style addressing puts the bucket first: /<bucket>/<key>.
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	var key string
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return t.handleList(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodHead:
		return t.handleHead(key), nil
	case http.MethodPut:
		return t.handlePut(key, req), nil
	case http.MethodGet:
		return t.handleGet(key), nil
	case http.MethodDelete:
		delete(t.objects, key)
		return emptyResponse(http.StatusNoContent, nil), nil
	}
	return emptyResponse(http.StatusNotImplemented, nil), nil
}

func (t *fakeTransport) handleList(prefix string) *http.Response {
	var keys []string
	for k := range t.objects {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(t.objects[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(b.String())),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

func (t *fakeTransport) handleHead(key string) *http.Response {
	obj, ok := t.objects[key]
	if !ok {
		return emptyResponse(http.StatusNotFound, nil)
	}
	return emptyResponse(http.StatusOK, http.Header{
		"Content-Length": {strconv.Itoa(len(obj.body))},
		"Content-Type":   {obj.contentType},
		"ETag":           {`"fake-etag"`},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	})
}

func (t *fakeTransport) handlePut(key string, req *http.Request) *http.Response {
	body, _ := io.ReadAll(req.Body)
	if dec, ok := decodeAWSChunked(body); ok {
		body = dec
	}
	// Create-only is enforced by the Store via Head, so overwrite protection
	// here only guards against racy duplicate uploads in tests.
	if _, exists := t.objects[key]; !exists {
		t.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
	}
	return emptyResponse(http.StatusOK, http.Header{"ETag": {`"fake-etag"`}})
}

func (t *fakeTransport) handleGet(key string) *http.Response {
	obj, ok := t.objects[key]
	if !ok {
		return emptyResponse(http.StatusNotFound, nil)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(obj.body)),
		Header: http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"ETag":           {`"fake-etag"`},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		},
	}
}

func emptyResponse(status int, h http.Header) *http.Response {
	if h == nil {
		h = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil)), Header: h}
}

// decodeAWSChunked unwraps a minimal single-chunk aws-chunked payload:
// "<hex-size>[;sig]\r\n<body>\r\n0\r\n...". Anything else passes through raw.
func decodeAWSChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	sizeField := strings.SplitN(parts[0], ";", 2)[0]
	size, err := strconv.ParseInt(sizeField, 16, 64)
	if err != nil || int64(len(parts[1])) != size || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}
