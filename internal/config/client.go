package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ClientConfig holds settings for the terminal client.
//
// Fields:
//   - APIURL: base URL of the API, including the /api prefix.
//   - TokenFile: where the session token is persisted between runs.
type ClientConfig struct {
	APIURL    string
	TokenFile string
}

// LoadDefaults populates c with defaults matching a locally running server.
func (c *ClientConfig) LoadDefaults() {
	c.APIURL = "http://localhost:5000/api"
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c.TokenFile = filepath.Join(dir, "blog-client", "token")
}

// LoadClient builds a ClientConfig from defaults, then BLOG_API_URL and
// BLOG_TOKEN_FILE, then the -api and -token-file flags.
func LoadClient(args []string) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	cfg.LoadDefaults()

	if v := os.Getenv("BLOG_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("BLOG_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}

	fs := flag.NewFlagSet("blog-client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	fs.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "file holding the session token")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("config: API URL must not be empty")
	}
	return cfg, nil
}
