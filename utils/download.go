package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DownloadFile downloads the file found at uri into dir, keeping the base name
// of the url path. When accept is not empty, the downloaded content type must
// match one of the listed mime types, otherwise the file is removed.
func DownloadFile(ctx context.Context, uri, dir string, accept ...string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", uri, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("unable to derive a file name from %s", uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to download file from URI: %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to download file from URI: %s, status %v", uri, res.Status)
	}

	dst := filepath.Join(dir, name)
	file, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("unable to create destination file: %w", err)
	}
	if _, err := io.Copy(file, res.Body); err != nil {
		file.Close()
		os.Remove(dst)
		return "", fmt.Errorf("unable to copy the source URI into the destination file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	if len(accept) > 0 {
		ctype, err := DetectContentType(dst)
		if err != nil {
			os.Remove(dst)
			return "", err
		}
		if !mimetype.EqualsAny(ctype, accept...) {
			os.Remove(dst)
			return "", fmt.Errorf("the downloaded file has unexpected content type %s", ctype)
		}
	}
	return dst, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// DetectContentType detects the file type by reading MIME type information of the file content.
// Parameters such as the charset are stripped from the result.
func DetectContentType(fname string) (string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("could not close the opened file: %v", err)
		}
	}()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	ctype, _, _ := strings.Cut(mtype.String(), ";")
	return ctype, nil
}
