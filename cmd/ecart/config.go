package main

import (
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// config is the storefront configuration, loadable from ECART_ environment
// variables, flags, or YAML config files.
type config struct {
	DataDir     string `usage:"Directory holding the cart and session (defaults to the user config dir)" flag:"data-dir"`
	APIURL      string `default:"http://localhost:8080" usage:"Account and catalog API base URL" flag:"api-url"`
	CatalogFile string `usage:"Read products from a local feed instead of the API" flag:"catalog-file"`
	Phone       string `default:"1234567890" usage:"WhatsApp number receiving orders"`
	Debug       bool   `default:"false" usage:"Log debug output to stderr"`
}

func loadConfig() (*config, error) {
	files := []string{"ecart.yaml"}
	userDir, err := os.UserConfigDir()
	if err == nil {
		files = append(files, filepath.Join(userDir, "ecart", "config.yaml"))
	}

	var cfg config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ECART",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.DataDir == "" {
		if userDir == "" {
			return nil, errors.New("data dir is required: set --data-dir or ECART_DATA_DIR")
		}
		cfg.DataDir = filepath.Join(userDir, "ecart")
	}
	if cfg.Phone == "" {
		return nil, errors.New("phone is required: set --phone or ECART_PHONE")
	}
	return &cfg, nil
}
