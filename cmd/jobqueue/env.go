package main

import (
	"os"
	"path/filepath"

	"oss.nandlabs.io/taskqueue/config"
	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/internal/store"
)

// defaultDataDir is used when DATA_PATH is unset, per spec §6.
const defaultDataDir = "./data"

// recognizedConfigKeys are the only keys config.json may hold (spec §6).
var recognizedConfigKeys = map[string]bool{
	"max-retries":  true,
	"backoff-base": true,
}

func dataDir() string {
	if d := os.Getenv("DATA_PATH"); d != "" {
		return d
	}
	return defaultDataDir
}

func configPath(dir string) string {
	return filepath.Join(dir, "config.json")
}

// loadJSONConfig reads config.json, treating a missing file as an empty
// configuration rather than an error.
func loadJSONConfig(dir string) (*config.JSONConfiguration, error) {
	cfg, err := config.NewJSONConfigurationForPath(configPath(dir))
	if err != nil {
		return nil, &jobs.StoreIOError{Op: "select config.json codec", Err: err}
	}
	f, err := os.Open(configPath(dir))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, &jobs.StoreIOError{Op: "read config.json", Err: err}
	}
	defer f.Close()
	if err := cfg.Load(f); err != nil {
		return nil, &jobs.StoreIOError{Op: "decode config.json", Err: err}
	}
	return cfg, nil
}

// saveJSONConfig writes cfg to config.json via a temp-file-then-rename, the
// same crash-safe write pattern the store uses for jobs.json.
func saveJSONConfig(dir string, cfg *config.JSONConfiguration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &jobs.StoreIOError{Op: "mkdir", Err: err}
	}
	path := configPath(dir)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &jobs.StoreIOError{Op: "create temp config file", Err: err}
	}
	if err := cfg.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &jobs.StoreIOError{Op: "write config.json", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &jobs.StoreIOError{Op: "close temp config file", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &jobs.StoreIOError{Op: "rename config.json", Err: err}
	}
	return nil
}

// newStore opens the store rooted at dir, applying config.json's max-retries
// and backoff-base as the defaults Store.Enqueue/Fail fall back to. It
// returns backoffBase too, since the worker pool also needs it to schedule
// retries for jobs it fails.
func newStore(dir string) (*store.Store, float64, error) {
	cfg, err := loadJSONConfig(dir)
	if err != nil {
		return nil, 0, err
	}
	maxRetries, err := cfg.GetAsInt("max-retries", jobs.DefaultMaxRetries)
	if err != nil {
		return nil, 0, &jobs.ValidationError{Field: "max-retries", Reason: "not a valid integer"}
	}
	backoffBase, err := cfg.GetAsDecimal("backoff-base", 2)
	if err != nil {
		return nil, 0, &jobs.ValidationError{Field: "backoff-base", Reason: "not a valid number"}
	}
	st, err := store.New(dir, backoffBase, maxRetries)
	if err != nil {
		return nil, 0, err
	}
	return st, backoffBase, nil
}
