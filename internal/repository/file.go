package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileRepository writes movie list snapshots to disk, used by the
// export command.
type FileRepository struct {
	log zerolog.Logger
}

// NewFileRepository creates a new file-based repository
func NewFileRepository(log zerolog.Logger) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
	}
}

type exportFile struct {
	Movies []domain.Movie `yaml:"movies"`
}

// ExportYAML writes the given movies to path as YAML, creating parent
// directories as needed.
func (r *FileRepository) ExportYAML(ctx context.Context, path string, movies []domain.Movie) error {
	out, err := yaml.Marshal(&exportFile{Movies: movies})
	if err != nil {
		return fmt.Errorf("failed to marshal movie list: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	r.log.Info().Str("path", path).Int("movies", len(movies)).Msg("Exported movie list")
	return nil
}
