package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravitas/internal/dynamo"
)

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	Seed    int64               `json:"seed"`
	Ticks   int                 `json:"ticks"`
	Series  []dynamo.TickSample `json:"series"`
	Merges  []dynamo.MergeEvent `json:"merges"`
	Final   []dynamo.BodyView   `json:"final"`
	Metrics map[string]float64  `json:"metrics"`
}

func NewExportData(seed int64, result *dynamo.Result) ExportData {
	return ExportData{
		Seed:    seed,
		Ticks:   result.TicksTaken,
		Series:  result.Series,
		Merges:  result.Merges,
		Final:   result.Final,
		Metrics: result.Metrics,
	}
}

func ExportJSON(path string, seed int64, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, seed, result)
}

func WriteJSON(w io.Writer, seed int64, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(seed, result))
}
