package neat

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

const checkpointVersion = 1

// checkpointData holds the parts of a run needed to resume it. The config is
// not saved; it is supplied again on load.
type checkpointData struct {
	Version      int
	Generation   int
	Size         int
	Genomes      []*Genome
	Fitness      map[int]float64
	Innovations  []InnovationRecord
	NextGenomeID int
}

// SaveCheckpoint writes the population, its recorded fitness, the innovation
// registry and the genome id counter to filePath as zstd-compressed gob.
// The random source state is not saved.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := p.WriteCheckpoint(file); err != nil {
		return err
	}
	p.engine.Log.WithFields(logrus.Fields{
		"path":       filePath,
		"generation": p.Generation,
	}).Info("checkpoint saved")
	return nil
}

// WriteCheckpoint encodes the checkpoint to w.
func (p *Population) WriteCheckpoint(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer for checkpoint: %w", err)
	}

	saveData := checkpointData{
		Version:      checkpointVersion,
		Generation:   p.Generation,
		Size:         p.Size,
		Genomes:      p.Genomes,
		Fitness:      p.fitness,
		Innovations:  p.engine.Innovations.Snapshot(),
		NextGenomeID: p.engine.nextGenomeID,
	}
	if err := gob.NewEncoder(zw).Encode(saveData); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint restores a run saved by SaveCheckpoint. A new engine is built
// from config, with the saved innovation registry and genome id counter; the
// random source is seeded from config. Genomes are frozen and re-speciated
// under the supplied config, and recorded fitness is kept.
func LoadCheckpoint(filePath string, config *Config, logger *logrus.Logger) (*Engine, *Population, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	e, p, err := ReadCheckpoint(file, config, logger)
	if err != nil {
		return nil, nil, err
	}
	e.Log.WithFields(logrus.Fields{
		"path":       filePath,
		"generation": p.Generation,
	}).Info("checkpoint loaded")
	return e, p, nil
}

// ReadCheckpoint decodes a checkpoint from r.
func ReadCheckpoint(r io.Reader, config *Config, logger *logrus.Logger) (*Engine, *Population, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create zstd reader for checkpoint: %w", err)
	}
	defer zr.Close()

	var saveData checkpointData
	if err := gob.NewDecoder(zr).Decode(&saveData); err != nil {
		return nil, nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	if saveData.Version != checkpointVersion {
		return nil, nil, fmt.Errorf("%w: checkpoint version %d, expected %d", ErrContract, saveData.Version, checkpointVersion)
	}
	if len(saveData.Genomes) != saveData.Size {
		return nil, nil, invariantf("population size", "checkpoint holds %d genomes for size %d", len(saveData.Genomes), saveData.Size)
	}
	for _, g := range saveData.Genomes {
		if !g.CheckConnections() {
			return nil, nil, invariantf("connection order", "checkpointed genome %d is not sorted by innovation", g.ID)
		}
	}

	e, err := NewEngine(config, logger)
	if err != nil {
		return nil, nil, err
	}
	e.Innovations = RestoreInnovationRegistry(saveData.Innovations)
	e.nextGenomeID = saveData.NextGenomeID

	p := newGeneration(e, saveData.Generation, saveData.Size, saveData.Genomes)
	for slot, f := range saveData.Fitness {
		if err := p.SetFitness(slot, f); err != nil {
			return nil, nil, err
		}
	}
	return e, p, nil
}
