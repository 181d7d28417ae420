package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Object struct {
	body        []byte
	contentType string
}

// s3RoundTripper fakes the S3 wire protocol in memory: Head/Get/Put/Delete
// plus ListObjectsV2 with continuation tokens when pageSize > 0.
type s3RoundTripper struct {
	state    map[string]s3Object
	pageSize int
}

func (m *s3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.list(req)
	}
	switch req.Method {
	case http.MethodHead:
		if obj, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(obj.body))},
				"Content-Type":   {obj.contentType},
				"Etag":           {"\"etag123\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok { // handle aws-chunked encoding
			body = dec
		}
		if _, exists := m.state[key]; !exists {
			m.state[key] = s3Object{body: body, contentType: req.Header.Get("Content-Type")}
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"Etag": {"\"etag123\""}}}, nil
	case http.MethodGet:
		if obj, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(obj.body)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(obj.body))},
				"Content-Type":   {obj.contentType},
				"Etag":           {"\"etag123\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	case http.MethodDelete:
		delete(m.state, key)
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func (m *s3RoundTripper) list(req *http.Request) (*http.Response, error) {
	prefix := req.URL.Query().Get("prefix")
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if tok := req.URL.Query().Get("continuation-token"); tok != "" {
		start, _ = strconv.Atoi(strings.TrimPrefix(tok, "page-"))
	}
	end := len(keys)
	truncated := false
	if m.pageSize > 0 && start+m.pageSize < len(keys) {
		end = start + m.pageSize
		truncated = true
	}
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?><ListBucketResult>")
	fmt.Fprintf(&b, "<IsTruncated>%t</IsTruncated>", truncated)
	if truncated {
		fmt.Fprintf(&b, "<NextContinuationToken>page-%d</NextContinuationToken>", end)
	}
	for _, k := range keys[start:end] {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(m.state[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(b.String())), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
}

// decodeChunked decodes a minimal single-chunk aws-chunked payload:
// <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	sizeHex, _, _ := strings.Cut(parts[0], ";")
	sz, err := strconv.ParseInt(sizeHex, 16, 64)
	if err != nil || int64(len(parts[1])) != sz || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockS3(t *testing.T, pageSize int) *S3 {
	t.Helper()
	rt := &s3RoundTripper{state: make(map[string]s3Object), pageSize: pageSize}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("aws config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &S3{client: client, presign: s3.NewPresignClient(client), bucket: "mock-bucket"}
}

func TestS3RoundTrip(t *testing.T) {
	store := newMockS3(t, 0)
	ctx := context.Background()
	if store.Driver() != DriverS3 {
		t.Fatalf("expected driver %q, got %q", DriverS3, store.Driver())
	}
	key := "exports/zswim6/one.tsv"
	payload := []byte("PMID\ttitle\nPMID:29198722\tA recurrent de novo variant\n")
	info, err := store.Put(ctx, key, bytes.NewReader(payload), PutOptions{ContentType: "text/tab-separated-values"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ContentType != "text/tab-separated-values" {
		t.Fatalf("unexpected info after put: %+v", info)
	}
	if info.ETag != "etag123" {
		t.Fatalf("etag quotes not trimmed: %q", info.ETag)
	}
	got, rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body round trip changed content: %q", body)
	}
	if got.Size != int64(len(payload)) {
		t.Fatalf("unexpected size from get: %d", got.Size)
	}
	if _, err := store.Put(ctx, key, bytes.NewReader(payload), PutOptions{}); err == nil {
		t.Fatalf("second put of the same key must fail")
	}
	if _, err := store.Head(ctx, key); err != nil {
		t.Fatalf("head: %v", err)
	}
	if _, err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Head(ctx, key); err == nil {
		t.Fatalf("expected error heading deleted key")
	}
}

func TestS3ListPaginates(t *testing.T) {
	store := newMockS3(t, 2)
	ctx := context.Background()
	keys := []string{"exports/a/1.tsv", "exports/a/2.tsv", "exports/a/3.tsv", "exports/b/1.tsv", "other/x.bin"}
	for _, k := range keys {
		if _, err := store.Put(ctx, k, strings.NewReader("x"), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(infos))
	}
	for i, want := range keys[:4] {
		if infos[i].Key != want {
			t.Fatalf("object %d: expected %q, got %q", i, want, infos[i].Key)
		}
	}
}

func TestS3PresignURL(t *testing.T) {
	store := newMockS3(t, 0)
	ctx := context.Background()
	url, err := store.PresignURL(ctx, "exports/zswim6/one.tsv", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "exports/zswim6/one.tsv") || !strings.Contains(url, "X-Amz-Signature") {
		t.Fatalf("unexpected presigned url: %q", url)
	}
	if _, err := store.PresignURL(ctx, "exports/zswim6/one.tsv", SignedURLOptions{Method: "PUT"}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported for non-GET method, got %v", err)
	}
}
