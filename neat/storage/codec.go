package storage

import (
	"encoding/json"
	"errors"

	"github.com/baldhumanity/neat-lstm/neat"
)

// Versions written into every record. Decoding rejects any other value.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when a stored record was written with a
// different schema or codec version.
var ErrVersionMismatch = errors.New("record version mismatch")

// VersionedRecord tags every persisted payload.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

func currentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// GenomeRecord is the persisted form of a genome.
type GenomeRecord struct {
	VersionedRecord
	RunID  string       `json:"run_id"`
	Genome *neat.Genome `json:"genome"`
}

// GenerationSummary is the persisted summary of one evaluated generation.
type GenerationSummary struct {
	VersionedRecord
	RunID         string  `json:"run_id"`
	Generation    int     `json:"generation"`
	Species       int     `json:"species"`
	BestGenomeID  int     `json:"best_genome_id"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	MinFitness    float64 `json:"min_fitness"`
	StdevFitness  float64 `json:"stdev_fitness"`
	InnovationMax int     `json:"innovation_max"`
}

// NewGenerationSummary builds a summary from population statistics.
func NewGenerationSummary(runID string, stats neat.GenerationStats, innovationMax int) GenerationSummary {
	return GenerationSummary{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Generation:      stats.Generation,
		Species:         stats.Species,
		BestGenomeID:    stats.BestGenomeID,
		BestFitness:     stats.BestFitness,
		MeanFitness:     stats.MeanFitness,
		MinFitness:      stats.MinFitness,
		StdevFitness:    stats.StdevFitness,
		InnovationMax:   innovationMax,
	}
}

// EncodeGenome serializes a genome as a versioned record of run runID.
func EncodeGenome(runID string, g *neat.Genome) ([]byte, error) {
	return json.Marshal(GenomeRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Genome:          g,
	})
}

// DecodeGenome returns an unowned genome that may be mutated freely.
func DecodeGenome(data []byte) (GenomeRecord, error) {
	var record GenomeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return GenomeRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return GenomeRecord{}, err
	}
	if record.Genome == nil {
		return GenomeRecord{}, errors.New("genome record has no genome")
	}
	return record, nil
}

// EncodeGeneration serializes a generation summary.
func EncodeGeneration(s GenerationSummary) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeGeneration parses a generation summary and checks its version.
func DecodeGeneration(data []byte) (GenerationSummary, error) {
	var summary GenerationSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return GenerationSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return GenerationSummary{}, err
	}
	return summary, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
