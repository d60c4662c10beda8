package main

import (
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"

	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/patients"
)

func main() {
	var count int
	var file string
	flag.IntVar(&count, "n", 5, "number of patients to generate")
	flag.StringVar(&file, "file", "", "patient collection file (defaults to PATIENTS_FILE)")
	flag.Parse()

	if file == "" {
		cfg, err := config.Load()
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
		file = cfg.Patients.File
	}

	store := patients.NewStore(file)

	existing, err := store.Load()
	switch {
	case err == nil:
		slog.Info("loaded existing patients", "file", file, "count", len(existing))
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no existing collection, creating new file", "file", file)
	default:
		slog.Error("loading patients", "file", file, "error", err)
		os.Exit(1)
	}

	generated := patients.GenerateBatch(count)
	if _, err := store.Save(append(existing, generated...)); err != nil {
		slog.Error("saving patients", "file", file, "error", err)
		os.Exit(1)
	}

	slog.Info("patients generated", "added", count, "total", len(existing)+count, "file", file)
}
