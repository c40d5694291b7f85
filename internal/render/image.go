package render

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/photonhq/photon/internal/gateway"
)

// Image describes one figure produced by a run.
type Image struct {
	Index     int
	Filename  string
	MediaType string
	// Size is the decoded payload size in bytes, or 0 when the payload
	// could not be decoded.
	Size int
	Data string
}

// ErrNotDataURI is returned by DecodeImage for payloads that are not
// base64 data URIs.
var ErrNotDataURI = errors.New("image payload is not a base64 data URI")

func describeImage(i int, img gateway.Image) Image {
	out := Image{Index: i, Filename: img.Filename, Data: img.Data}
	if out.Filename == "" {
		out.Filename = fmt.Sprintf("figure-%d.png", i+1)
	}
	if b, mt, err := DecodeImage(img.Data); err == nil {
		out.Size = len(b)
		out.MediaType = mt
	}
	return out
}

// DecodeImage decodes a data URI of the form data:<type>;base64,<payload>.
func DecodeImage(data string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return nil, "", ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrNotDataURI
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", ErrNotDataURI
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image payload: %w", err)
	}
	return b, mediaType, nil
}

// SaveImages writes every decodable image into dir and returns the written
// paths. Images that cannot be decoded are skipped. Names repeated within one
// call get a numeric suffix, so plot.png, plot.png becomes plot.png, plot-2.png.
func SaveImages(dir string, imgs []Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	var paths []string
	taken := make(map[string]bool, len(imgs))
	for i, img := range imgs {
		b, _, err := DecodeImage(img.Data)
		if err != nil {
			continue
		}
		name := uniqueName(imageFileName(img.Filename, i), taken)
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, b, 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// imageFileName reduces name to a plain file name inside the target
// directory, falling back to figure-N.png.
func imageFileName(name string, i int) string {
	base := filepath.Base(name)
	switch base {
	case ".", "..", string(filepath.Separator), "":
		return fmt.Sprintf("figure-%d.png", i+1)
	}
	return base
}

func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	taken[candidate] = true
	return candidate
}
