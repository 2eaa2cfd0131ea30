package app

import (
	"io"

	"github.com/vk/mediagrid/internal/registry"
	"github.com/vk/mediagrid/modules/gemini"
	"github.com/vk/mediagrid/modules/http_client"
	"github.com/vk/mediagrid/modules/imageops"
	"github.com/vk/mediagrid/modules/localfs"
	"github.com/vk/mediagrid/modules/print"
	"github.com/vk/mediagrid/modules/qrcode"
	"github.com/vk/mediagrid/modules/s3"
	"github.com/vk/mediagrid/modules/shape"
)

// coreModules returns every module compiled into the mediagrid binary,
// configured from cfg.
func coreModules(cfg *Config, outW io.Writer) []registry.Module {
	return []registry.Module{
		&shape.Module{},
		&qrcode.Module{},
		&gemini.Module{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		&http_client.Module{Timeout: cfg.HTTPTimeout},
		&imageops.Module{},
		&localfs.Module{Root: cfg.OutputDir},
		&s3.Module{Config: cfg.S3},
		&print.Module{Out: outW},
	}
}
