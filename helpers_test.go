package iconvault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24">` +
	`<circle cx="12" cy="12" r="10" fill="#336699"/>` +
	`<path d="M4 4 L20 20" stroke="#000000" stroke-width="2"/>` +
	`</svg>`

// fakeSvgo strips xml comments from the input, the way svgo drops them.
const fakeSvgo = `#!/bin/sh
in=""; out=""
while [ $# -gt 0 ]; do
	case "$1" in
		--input) in="$2"; shift 2;;
		--output) out="$2"; shift 2;;
		--precision) shift 2;;
		*) shift;;
	esac
done
echo "$in" >> "%s"
sed -e 's/<!--[^>]*-->//g' "$in" > "$out.tmp" && mv "$out.tmp" "$out"
`

// fakePngquant copies the source to the output path. In-place runs leave the file as is.
const fakePngquant = `#!/bin/sh
out=""; src=""
while [ $# -gt 0 ]; do
	case "$1" in
		--quality|--speed|--ext) shift 2;;
		--output) out="$2"; shift 2;;
		--force) shift;;
		*) src="$1"; shift;;
	esac
done
echo "$src" >> "%s"
if [ -n "$out" ] && [ "$out" != "$src" ]; then cp "$src" "$out"; fi
`

const failingTool = `#!/bin/sh
echo "%s" >&2
exit %d
`

// writeTool writes an executable shell script into dir and returns its path
// together with the path of the file the script appends its input to.
func writeTool(t *testing.T, dir, name, script string) (string, string) {
	t.Helper()
	calls := filepath.Join(dir, name+".calls")
	path := filepath.Join(dir, name)
	body := script
	if strings.Contains(script, "%s") {
		body = strings.Replace(script, "%s", calls, 1)
	}
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("could not write fake %s: %v", name, err)
	}
	return path, calls
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatal(err)
	}
	return len(strings.Split(strings.TrimSpace(string(data)), "\n"))
}

// makeAsset creates <root>/<name>/<name>.svg with the given content.
func makeAsset(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".svg")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// funcJob is an in-process job used to exercise the batch runner.
type funcJob struct {
	src, dst string
	fn       func(ctx context.Context) error
}

func (f funcJob) Run(ctx context.Context) error { return f.fn(ctx) }
func (f funcJob) Source() string                { return f.src }
func (f funcJob) Dest() string                  { return f.dst }
