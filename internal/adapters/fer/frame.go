package fer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

// prepareFrame spools raw snapshot bytes to a request-unique file, decodes
// them, downscales so the longest edge does not exceed maxEdge, and re-encodes
// as JPEG for the model. The spool file is removed on every path.
//
// Downscaling only bounds inference cost; it never changes which labels are
// possible.
func prepareFrame(imageBytes []byte, maxEdge int, spoolDir string) ([]byte, error) {
	if spoolDir == "" {
		spoolDir = os.TempDir()
	}
	spoolPath := filepath.Join(spoolDir, "snapshot-"+uuid.New().String()+".img")
	if err := os.WriteFile(spoolPath, imageBytes, 0o600); err != nil {
		return nil, fmt.Errorf("fer: spool snapshot: %w", err)
	}
	defer os.Remove(spoolPath)

	f, err := os.Open(spoolPath)
	if err != nil {
		return nil, fmt.Errorf("fer: open spool: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("fer: %w: %v", ports.ErrImageDecode, err)
	}

	img = downscale(img, maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("fer: encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale shrinks img so its longest edge is at most maxEdge, preserving
// aspect ratio. Images already within bounds pass through unchanged.
func downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
