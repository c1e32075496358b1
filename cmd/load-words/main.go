package main

import (
	"encoding/csv"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"telepathy-drawing/internal/config"
	"telepathy-drawing/internal/db"
)

type wordRecord struct {
	Category string
	Text     string
}

func main() {
	filePath := flag.String("file", "words.csv", "path to words csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	conn, err := db.Open(config.Load())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	records, err := readWords(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read words")
	}

	inserted := 0
	for _, record := range records {
		entry := db.WordEntry{
			Category: record.Category,
			Text:     record.Text,
		}
		if err := conn.FirstOrCreate(&entry, db.WordEntry{Category: entry.Category, Text: entry.Text}).Error; err != nil {
			log.Fatal().Err(err).Str("word", record.Text).Msg("failed to upsert word")
		}
		inserted++
	}

	log.Info().Int("count", inserted).Msg("word library loaded")
}

func readWords(path string) ([]wordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []wordRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		category := strings.TrimSpace(row[0])
		text := strings.TrimSpace(row[1])
		if category == "" || text == "" {
			continue
		}
		records = append(records, wordRecord{Category: category, Text: text})
	}
	return records, nil
}
