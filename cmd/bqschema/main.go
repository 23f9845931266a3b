// Command bqschema infers, diffs, and validates BigQuery-style
// canonical schemas from JSON or CSV data, either as a one-shot CLI
// run or as an HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/bqschema/infer/internal/api"
	"github.com/bqschema/infer/internal/engine"
	"github.com/bqschema/infer/internal/store"
)

func main() {
	var (
		jsonFile               = flag.String("json", "", "Path to a JSON file of records (array of objects)")
		csvFile                = flag.String("csv", "", "Path to a CSV file of records")
		existingSchemaFile     = flag.String("existing-schema", "", "Path to an existing canonical schema to seed inference from")
		inferMode              = flag.Bool("infer-mode", false, "Promote always-present fields to REQUIRED")
		keepNulls              = flag.Bool("keep-nulls", false, "Keep fields that were only ever observed as null or empty")
		quotedValuesAreStrings = flag.Bool("quoted-values-are-strings", false, "Treat quoted numeric/boolean-looking strings as STRING instead of inferring their type")
		sanitizeNames          = flag.Bool("sanitize-names", false, "Rewrite field names into BigQuery-safe identifiers")
		preserveInputSortOrder = flag.Bool("preserve-input-sort-order", false, "Keep fields in first-observed order instead of canonical-key order")
		useMemory              = flag.Bool("memory", true, "Use in-memory schema store instead of PostgreSQL")
		storePath              = flag.String("store-path", "", "Use a file-backed schema store rooted at this directory")
		schemaName             = flag.String("schema-name", "", "Name under which to persist the inferred schema")
		serverMode             = flag.Bool("server", false, "Run in server mode instead of a one-shot CLI run")
		port                   = flag.String("port", "8080", "Server port")
	)
	flag.Parse()

	log.Println("bqschema starting...")

	schemaStore, err := openStore(*storePath, *useMemory)
	if err != nil {
		log.Fatalf("Failed to initialize schema store: %v", err)
	}
	defer schemaStore.Close()

	if *serverMode {
		log.Printf("Starting server on port %s", *port)
		handler := api.NewHandler(schemaStore)
		router := handler.SetupRoutes()
		log.Fatal(http.ListenAndServe(":"+*port, router))
	}

	if *jsonFile == "" && *csvFile == "" {
		log.Fatal("one of -json or -csv is required outside server mode")
	}

	var records []map[string]interface{}
	switch {
	case *jsonFile != "":
		records, err = loadJSONRecords(*jsonFile)
	case *csvFile != "":
		records, err = loadCSVRecords(*csvFile)
	}
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	opts := engine.InferOptions{
		QuotedValuesAreStrings: *quotedValuesAreStrings,
		InferMode:              *inferMode,
		KeepNulls:              *keepNulls,
		SanitizeNames:          *sanitizeNames,
		PreserveInputSortOrder: *preserveInputSortOrder,
	}

	if *existingSchemaFile != "" {
		existing, err := loadSchemaFile(*existingSchemaFile)
		if err != nil {
			log.Fatalf("Failed to load existing schema: %v", err)
		}
		opts.ExistingSchema = existing
	}

	fields, entryLog := engine.InferFromRecords(records, opts)
	for _, entry := range entryLog {
		log.Printf("%s: %s", entry.Path, entry.Message)
	}

	if *schemaName != "" {
		version, err := schemaStore.Save(context.Background(), *schemaName, fields, entryLog)
		if err != nil {
			log.Fatalf("Failed to persist schema: %v", err)
		}
		log.Printf("Saved schema %q version %d", *schemaName, version)
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal inferred schema: %v", err)
	}
	fmt.Println(string(out))

	log.Println("bqschema completed successfully")
}

func openStore(storePath string, useMemory bool) (store.SchemaStore, error) {
	if storePath != "" {
		return store.NewFileVersionStore(storePath)
	}
	if useMemory {
		return store.NewMemoryStore(), nil
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "bqschema")
	dbPassword := getEnv("DB_PASSWORD", "password")
	dbName := getEnv("DB_NAME", "bqschema_db")
	dbSSLMode := getEnv("DB_SSLMODE", "disable")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	log.Println("Connecting to PostgreSQL...")
	return store.NewPostgresStore(connStr)
}

func loadJSONRecords(filename string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	return records, nil
}

func loadCSVRecords(filename string) ([]map[string]interface{}, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return engine.ReadCSVRecords(f)
}

func loadSchemaFile(filename string) ([]engine.Field, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var fields []engine.Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	return fields, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
