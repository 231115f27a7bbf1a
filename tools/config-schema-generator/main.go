package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ttydeck/ttydeck/config"
)

func main() {
	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	outputPath := filepath.Join("schema", "ttydeck.embedded.schema.json")
	if err := os.WriteFile(outputPath, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated config schema at %s", outputPath)
}
