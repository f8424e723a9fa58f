package iconvault

import (
	"fmt"
	"os"
	"strings"
)

const indexHeader = "# Icon List"

// BuildIndex renders the markdown listing of the catalog. Every asset with a
// description file gets one bullet holding the first line of that file;
// assets without one are left out.
func BuildIndex(assets []IconAsset) (string, error) {
	var b strings.Builder
	b.WriteString(indexHeader + "\n\n")
	for _, asset := range assets {
		desc, ok, err := asset.Description()
		if err != nil {
			return "", fmt.Errorf("reading description of %s: %w", asset.Name, err)
		}
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", asset.Name, desc)
	}
	return b.String(), nil
}

// WriteIndex regenerates the markdown index at path.
func WriteIndex(path string, assets []IconAsset) error {
	content, err := BuildIndex(assets)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
