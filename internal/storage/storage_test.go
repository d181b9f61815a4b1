package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
)

// AccountKey must be valid base64; "a2V5" decodes to "key".
const testAzureConnectionString = "DefaultEndpointsProtocol=https;AccountName=tailwind;AccountKey=a2V5;EndpointSuffix=core.windows.net"

func TestNewAzureBlobService_InvalidConnectionString(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a connection string",
		"AccountName=tailwind;AccountKey",
	}

	for _, input := range inputs {
		service, err := NewAzureBlobService(input, UploadContainer)
		if err == nil {
			t.Errorf("NewAzureBlobService(%q): expected error, got nil", input)
			continue
		}
		if service != nil {
			t.Errorf("NewAzureBlobService(%q): expected nil service on error", input)
		}
		if !errors.Is(err, predictErrors.ErrConfiguration) {
			t.Errorf("NewAzureBlobService(%q): expected ErrConfiguration, got %v", input, err)
		}
		if !strings.Contains(err.Error(), predictErrors.MissingConnectionStringMsg) {
			t.Errorf("NewAzureBlobService(%q): expected descriptive message, got %v", input, err)
		}
	}
}

func TestNewAzureBlobService_ObjectURL(t *testing.T) {
	service, err := NewAzureBlobService(testAzureConnectionString, UploadContainer)
	if err != nil {
		t.Fatalf("NewAzureBlobService failed: %v", err)
	}

	got := service.ObjectURL("3f1c.jpg")
	expected := "https://tailwind.blob.core.windows.net/website-uploads/3f1c.jpg"
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestNew_Dispatch(t *testing.T) {
	ctx := context.Background()

	azure, err := New(ctx, testAzureConnectionString, UploadContainer)
	if err != nil {
		t.Fatalf("New(azure) failed: %v", err)
	}
	if _, ok := azure.(*AzureBlobService); !ok {
		t.Errorf("Expected *AzureBlobService, got %T", azure)
	}

	s3Service, err := New(ctx, "s3://eu-central-1?endpoint=http://localhost:9000", UploadContainer)
	if err != nil {
		t.Fatalf("New(s3) failed: %v", err)
	}
	if _, ok := s3Service.(*S3Service); !ok {
		t.Errorf("Expected *S3Service, got %T", s3Service)
	}

	if _, err := New(ctx, "", UploadContainer); !errors.Is(err, predictErrors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for empty string, got %v", err)
	}
	if _, err := New(ctx, "s3://", UploadContainer); !errors.Is(err, predictErrors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for s3 without region, got %v", err)
	}
}

func TestParseS3ConnectionString(t *testing.T) {
	tests := []struct {
		input    string
		expected s3Location
	}{
		{"s3://us-east-1", s3Location{Region: "us-east-1"}},
		{"s3://eu-west-1?endpoint=http://minio:9000/", s3Location{Region: "eu-west-1", Endpoint: "http://minio:9000"}},
		{"s3://eu-west-1?presign=15m", s3Location{Region: "eu-west-1", PresignExpiry: 15 * time.Minute}},
	}

	for _, tt := range tests {
		got, err := parseS3ConnectionString(tt.input)
		if err != nil {
			t.Errorf("parseS3ConnectionString(%q) failed: %v", tt.input, err)
			continue
		}
		if *got != tt.expected {
			t.Errorf("parseS3ConnectionString(%q) = %+v, expected %+v", tt.input, *got, tt.expected)
		}
	}
}

func TestParseS3ConnectionString_Invalid(t *testing.T) {
	inputs := []string{
		"s3://",
		"s3://eu-west-1?endpoint=minio",
		"s3://eu-west-1?presign=soon",
		"s3://eu-west-1?presign=-1m",
		"https://eu-west-1",
	}

	for _, input := range inputs {
		if _, err := parseS3ConnectionString(input); err == nil {
			t.Errorf("parseS3ConnectionString(%q): expected error, got nil", input)
		}
	}
}

func TestS3Service_ObjectURL(t *testing.T) {
	withEndpoint := &S3Service{bucketName: UploadContainer, location: &s3Location{Region: "eu-west-1", Endpoint: "http://minio:9000"}}
	if got := withEndpoint.ObjectURL("a.jpg"); got != "http://minio:9000/website-uploads/a.jpg" {
		t.Errorf("Unexpected path-style URL %s", got)
	}

	aws := &S3Service{bucketName: UploadContainer, location: &s3Location{Region: "eu-west-1"}}
	if got := aws.ObjectURL("a.jpg"); got != "https://website-uploads.s3.eu-west-1.amazonaws.com/a.jpg" {
		t.Errorf("Unexpected virtual-hosted URL %s", got)
	}
}

// ========================================
// Upload Tests
// ========================================

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// setupStorageServer answers every request with status and records what it received.
func setupStorageServer(t *testing.T, status int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func azureConnectionStringFor(srv *httptest.Server) string {
	return "DefaultEndpointsProtocol=http;AccountName=tailwind;AccountKey=a2V5;BlobEndpoint=" + srv.URL + "/tailwind"
}

// setS3TestEnv gives the default AWS chain static credentials and hides any shared config.
func setS3TestEnv(t *testing.T) {
	t.Helper()

	missing := filepath.Join(t.TempDir(), "missing")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDTAILWIND")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_MAX_ATTEMPTS", "")
	t.Setenv("AWS_CONFIG_FILE", missing)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", missing)
}

func TestAzureBlobService_Upload(t *testing.T) {
	srv, requests := setupStorageServer(t, http.StatusCreated)

	service, err := NewAzureBlobService(azureConnectionStringFor(srv), UploadContainer)
	if err != nil {
		t.Fatalf("NewAzureBlobService failed: %v", err)
	}

	data := []byte("jpeg bytes")
	got, err := service.Upload(context.Background(), "a.jpg", data)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	expectedURL := srv.URL + "/tailwind/website-uploads/a.jpg"
	if got != expectedURL {
		t.Errorf("Expected %s, got %s", expectedURL, got)
	}

	received := requests()
	if len(received) != 1 {
		t.Fatalf("Expected exactly one request, got %d", len(received))
	}
	req := received[0]
	if req.Method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", req.Method)
	}
	if req.Path != "/tailwind/website-uploads/a.jpg" {
		t.Errorf("Unexpected blob path %s", req.Path)
	}
	if ctype := req.Header.Get("x-ms-blob-content-type"); ctype != "image/jpeg" {
		t.Errorf("Expected blob content type image/jpeg, got %q", ctype)
	}
	if string(req.Body) != string(data) {
		t.Errorf("Expected body %q, got %q", data, req.Body)
	}
}

func TestAzureBlobService_UploadFailsOnce(t *testing.T) {
	srv, requests := setupStorageServer(t, http.StatusServiceUnavailable)

	service, err := NewAzureBlobService(azureConnectionStringFor(srv), UploadContainer)
	if err != nil {
		t.Fatalf("NewAzureBlobService failed: %v", err)
	}

	got, err := service.Upload(context.Background(), "a.jpg", []byte("jpeg bytes"))
	if !errors.Is(err, predictErrors.ErrStorage) {
		t.Fatalf("Expected ErrStorage, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected no URL on failure, got %s", got)
	}
	if n := len(requests()); n != 1 {
		t.Errorf("Expected a single upload attempt, got %d", n)
	}
}

func TestS3Service_Upload(t *testing.T) {
	setS3TestEnv(t)
	srv, requests := setupStorageServer(t, http.StatusOK)

	service, err := NewS3Service(context.Background(), "s3://eu-west-1?endpoint="+srv.URL, UploadContainer)
	if err != nil {
		t.Fatalf("NewS3Service failed: %v", err)
	}

	got, err := service.Upload(context.Background(), "a.jpg", []byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	expectedURL := srv.URL + "/website-uploads/a.jpg"
	if got != expectedURL {
		t.Errorf("Expected %s, got %s", expectedURL, got)
	}

	received := requests()
	if len(received) != 1 {
		t.Fatalf("Expected exactly one request, got %d", len(received))
	}
	req := received[0]
	if req.Method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", req.Method)
	}
	if req.Path != "/website-uploads/a.jpg" {
		t.Errorf("Unexpected object path %s", req.Path)
	}
	if ctype := req.Header.Get("Content-Type"); ctype != "image/jpeg" {
		t.Errorf("Expected content type image/jpeg, got %q", ctype)
	}
}

func TestS3Service_UploadPresigned(t *testing.T) {
	setS3TestEnv(t)
	srv, requests := setupStorageServer(t, http.StatusOK)

	service, err := NewS3Service(context.Background(), "s3://eu-west-1?presign=15m&endpoint="+srv.URL, UploadContainer)
	if err != nil {
		t.Fatalf("NewS3Service failed: %v", err)
	}

	got, err := service.Upload(context.Background(), "a.jpg", []byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !strings.HasPrefix(got, srv.URL+"/website-uploads/a.jpg?") || !strings.Contains(got, "X-Amz-Signature=") {
		t.Errorf("Expected a presigned object URL, got %s", got)
	}
	if n := len(requests()); n != 1 {
		t.Errorf("Presigning should not reach the server, got %d requests", n)
	}
}

func TestS3Service_UploadFailsOnce(t *testing.T) {
	setS3TestEnv(t)
	srv, requests := setupStorageServer(t, http.StatusServiceUnavailable)

	service, err := NewS3Service(context.Background(), "s3://eu-west-1?endpoint="+srv.URL, UploadContainer)
	if err != nil {
		t.Fatalf("NewS3Service failed: %v", err)
	}

	got, err := service.Upload(context.Background(), "a.jpg", []byte("jpeg bytes"))
	if !errors.Is(err, predictErrors.ErrStorage) {
		t.Fatalf("Expected ErrStorage, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected no URL on failure, got %s", got)
	}
	if n := len(requests()); n != 1 {
		t.Errorf("Expected a single upload attempt, got %d", n)
	}
}
