package iconvault

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/esimov/iconvault/storage"
)

func TestUpload_RemoteKey(t *testing.T) {
	root := t.TempDir()
	local := filepath.Join(root, "assets", "icons", "gear", "gear.svg")

	key, err := RemoteKey("/icons/", root, local)
	if err != nil {
		t.Fatal(err)
	}
	if key != "icons/assets/icons/gear/gear.svg" {
		t.Errorf("unexpected key %q", key)
	}

	if _, err := RemoteKey("icons", filepath.Join(root, "assets"), filepath.Join(root, "other", "x.svg")); err == nil {
		t.Errorf("A file outside of the project root should be rejected")
	}
}

func TestUpload_ShouldFailOnMissingFile(t *testing.T) {
	root := t.TempDir()
	makeAsset(t, filepath.Join(root, "assets", "icons"), "gear", sampleSVG)
	bucket := storage.NewMemoryBucket()
	p, _, _ := newTestPipeline(t, root, bucket)

	uploaded, err := p.Upload(context.Background(), p.Catalog().ListAll())
	if err == nil {
		t.Fatal("Uploading without the png renditions should fail")
	}
	// The svg comes first and is uploaded before the first missing png.
	if len(uploaded) != 1 || len(bucket.Keys()) != 1 {
		t.Errorf("Expected the svg to be uploaded before the failure, got %v", bucket.Keys())
	}
}
