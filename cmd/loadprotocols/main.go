package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/database"
	"github.com/vitalpath/vitalpath/internal/llm"
	"github.com/vitalpath/vitalpath/internal/protocols"
)

const batchSize = 96

// protocolLine is one JSONL record from the protocol export.
type protocolLine struct {
	ChunkID            string          `json:"chunk_id"`
	TaskCode           string          `json:"task_code"`
	TaskName           string          `json:"task_name"`
	Priority           string          `json:"priority"`
	Program            string          `json:"program"`
	Trigger            string          `json:"trigger,omitempty"`
	TriggeringCriteria string          `json:"triggering_criteria,omitempty"`
	Steps              json.RawMessage `json:"steps,omitempty"`
	Roles              []string        `json:"roles,omitempty"`
	FullText           string          `json:"full_text,omitempty"`
}

// searchableContent flattens a protocol into the text that gets embedded.
func searchableContent(p protocolLine) string {
	parts := []string{
		"Task: " + p.TaskName,
		"Code: " + p.TaskCode,
		"Priority: " + p.Priority,
		"Program: " + p.Program,
	}
	if p.Trigger != "" {
		parts = append(parts, "Trigger: "+p.Trigger)
	}
	if p.TriggeringCriteria != "" {
		parts = append(parts, "Criteria: "+p.TriggeringCriteria)
	}
	parts = append(parts, stepParts(p.Steps)...)
	if len(p.Roles) > 0 {
		parts = append(parts, "Roles: "+strings.Join(p.Roles, ", "))
	}
	return strings.Join(parts, "\n")
}

// stepParts renders the steps field, which is either a single string or
// a map of clinic-variant name to steps text.
func stepParts(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var variants map[string]string
	if err := json.Unmarshal(raw, &variants); err == nil {
		var parts []string
		for _, variant := range []string{"general", "clinic", "non_clinic"} {
			if steps, ok := variants[variant]; ok {
				parts = append(parts, fmt.Sprintf("Steps (%s): %s", variant, steps))
			}
		}
		return parts
	}
	var steps string
	if err := json.Unmarshal(raw, &steps); err == nil && steps != "" {
		return []string{"Steps: " + steps}
	}
	return nil
}

func main() {
	var file string
	flag.StringVar(&file, "file", "clinical_protocols.jsonl", "protocol JSONL export to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	lines, err := readProtocols(file)
	if err != nil {
		slog.Error("reading protocols", "file", file, "error", err)
		os.Exit(1)
	}
	slog.Info("loaded protocols from file", "file", file, "count", len(lines))

	llmClient := llm.NewClient(cfg.OpenAI)
	index := protocols.NewPostgresIndex(pool)

	loaded := 0
	for start := 0; start < len(lines); start += batchSize {
		end := min(start+batchSize, len(lines))
		batch := lines[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = searchableContent(p)
		}

		embeddings, err := llmClient.EmbedBatch(ctx, texts)
		if err != nil {
			slog.Error("embedding batch", "start", start, "error", err)
			os.Exit(1)
		}

		for i, p := range batch {
			rec := protocols.Record{
				TaskCode: p.TaskCode,
				TaskName: p.TaskName,
				Priority: p.Priority,
				Program:  p.Program,
				Content:  texts[i],
				FullText: p.FullText,
				Roles:    p.Roles,
			}
			if err := index.Upsert(ctx, rec, embeddings[i]); err != nil {
				slog.Error("upserting protocol", "task_code", p.TaskCode, "error", err)
				os.Exit(1)
			}
			loaded++
		}
		slog.Info("uploaded batch", "from", start, "to", end)
	}

	count, err := index.Count(ctx)
	if err != nil {
		slog.Error("counting protocols", "error", err)
		os.Exit(1)
	}
	slog.Info("protocol load complete", "loaded", loaded, "indexed_total", count)
}

func readProtocols(path string) ([]protocolLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []protocolLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var p protocolLine
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("parsing protocol line: %w", err)
		}
		lines = append(lines, p)
	}
	return lines, scanner.Err()
}
