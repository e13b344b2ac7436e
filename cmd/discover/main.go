// Command discover runs one upstream discovery pass and prints the
// per-source report as JSON. Useful for checking source health without
// starting the server.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"explorer-backend/infrastructure/config"
	"explorer-backend/infrastructure/di"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	report := container.Engine.Bootstrap(ctx)

	out := struct {
		Succeeded     int                      `json:"succeeded"`
		Failed        int                      `json:"failed"`
		TotalEntities int                      `json:"total_entities"`
		Results       []map[string]interface{} `json:"results"`
	}{
		Succeeded:     report.Succeeded(),
		Failed:        report.Failed(),
		TotalEntities: report.TotalEntities(),
	}
	for _, res := range report.Results {
		entry := map[string]interface{}{
			"domain":       res.Domain,
			"source":       res.Source,
			"entity_count": res.EntityCount,
			"skipped":      res.Skipped,
		}
		if res.Failed() {
			entry["error"] = res.Error()
		}
		out.Results = append(out.Results, entry)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}

	if report.Failed() == len(report.Results) {
		os.Exit(1)
	}
}
