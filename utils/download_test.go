package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`

func TestUtils_ShouldDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleSVG))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := DownloadFile(context.Background(), srv.URL+"/icons/gear.svg", dir, "image/svg+xml")
	if err != nil {
		t.Fatalf("couldn't download test file: %v", err)
	}
	if filepath.Base(path) != "gear.svg" {
		t.Errorf("The downloaded file should keep the url base name, got: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("couldn't read the downloaded file: %v", err)
	}
	if string(data) != sampleSVG {
		t.Errorf("The downloaded content differs from the served one")
	}
}

func TestUtils_ShouldRejectUnexpectedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("just some text"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := DownloadFile(context.Background(), srv.URL+"/gear.svg", dir, "image/svg+xml")
	if err == nil {
		t.Fatalf("A text file should have been rejected")
	}
	if _, err := os.Stat(filepath.Join(dir, "gear.svg")); !os.IsNotExist(err) {
		t.Errorf("The rejected file should have been removed")
	}
}

func TestUtils_ShouldFailOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DownloadFile(context.Background(), srv.URL+"/gear.svg", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected a 404 error, got: %v", err)
	}
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	if !IsValidUrl("https://github.com/esimov/iconvault/") {
		t.Errorf("A valid URL should have been provided")
	}
	if IsValidUrl("assets/icons/gear.svg") {
		t.Errorf("A relative path should not be a valid URL")
	}
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gear.svg")
	if err := os.WriteFile(path, []byte(sampleSVG), 0644); err != nil {
		t.Fatal(err)
	}

	ftype, err := DetectContentType(path)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}
	if ftype != "image/svg+xml" {
		t.Errorf("Content type expected to be image/svg+xml, got: %v", ftype)
	}
}
