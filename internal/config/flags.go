package config

import (
	"flag"
	"fmt"
	"io"
)

// serverFlags holds the command-line values. port and db only override the
// config when they were actually passed.
type serverFlags struct {
	configFile string
	envFile    string
	port       int
	db         string
	set        map[string]bool
}

// parseFlags reads the server's command-line flags.
//
// Supported flags:
//
//	-config string   YAML config file
//	-env-file string .env file to load (default ".env")
//	-port int        HTTP port
//	-db string       SQLite DSN
func parseFlags(args []string) (*serverFlags, error) {
	f := &serverFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("blog-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.configFile, "config", "", "path to a YAML config file")
	fs.StringVar(&f.envFile, "env-file", ".env", "path to a .env file")
	fs.IntVar(&f.port, "port", 0, "HTTP port")
	fs.StringVar(&f.db, "db", "", "SQLite database path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, nil
}

func (f *serverFlags) apply(cfg *Config) {
	if f.set["port"] {
		cfg.Port = f.port
	}
	if f.set["db"] {
		cfg.DatabaseDSN = f.db
	}
}
