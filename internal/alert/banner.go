package alert

// Banner image generation. The alert photo is a static branded card; when no
// banner file ships with the deployment, a simple one is rendered once at
// startup so alerts still go out as photos.

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	logging "highbuy-monitor/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	bannerWidth  = 1200
	bannerHeight = 400

	bannerTitle    = "HIGH BUY ALERT"
	bannerSubtitle = "ZigChain swap monitor"
)

// EnsureBanner makes sure a banner image exists at path, rendering a default
// one when the file is missing. An empty path disables the banner entirely.
func EnsureBanner(path string) error {
	if path == "" {
		return nil
	}
	if fileExists(path) {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create banner directory: %w", err)
		}
	}

	if err := renderBanner(path); err != nil {
		return fmt.Errorf("failed to render banner: %w", err)
	}

	logging.LogInfo("Generated default alert banner", zap.String("file", path))
	return nil
}

func renderBanner(path string) error {
	dc := gg.NewContext(bannerWidth, bannerHeight)

	// dark vertical gradient
	grad := gg.NewLinearGradient(0, 0, 0, bannerHeight)
	grad.AddColorStop(0, color.RGBA{R: 18, G: 23, B: 41, A: 255})
	grad.AddColorStop(1, color.RGBA{R: 31, G: 18, B: 56, A: 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, bannerWidth, bannerHeight)
	dc.Fill()

	// accent bar along the bottom
	dc.SetRGB(0.31, 0.79, 0.47)
	dc.DrawRectangle(0, bannerHeight-12, bannerWidth, 12)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(bannerTitle, bannerWidth/2, bannerHeight/2-20, 0.5, 0.5)

	dc.SetRGB(0.65, 0.67, 0.75)
	dc.DrawStringAnchored(bannerSubtitle, bannerWidth/2, bannerHeight/2+25, 0.5, 0.5)

	return dc.SavePNG(path)
}
