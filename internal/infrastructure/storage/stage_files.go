package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PodcastCurator/internal/domain"
)

// Stage output file names; each pipeline stage consumes the previous
// stage's file.
const (
	CandidatesFile      = "api_candidates.json"
	CoverageResultsFile = "rss_analysis_results.json"
	CoveragePassedFile  = "stage2_passed_candidates.json"
	QualifiedFile       = "stage3_single_authors.json"
)

// StageFiles reads and writes the JSON documents exchanged between
// pipeline stages.
type StageFiles struct {
	dir string
}

// NewStageFiles roots stage outputs at dir.
func NewStageFiles(dir string) *StageFiles {
	return &StageFiles{dir: dir}
}

// WriteCandidates persists the raw discovery output.
func (s *StageFiles) WriteCandidates(candidates []domain.Candidate) error {
	return s.write(CandidatesFile, candidates)
}

// ReadCandidates loads the raw discovery output.
func (s *StageFiles) ReadCandidates() ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	if err := s.read(CandidatesFile, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// WriteCoverageResults persists all coverage analyses and, separately,
// the subset that passed validation.
func (s *StageFiles) WriteCoverageResults(all, passed []domain.CoverageResult) error {
	if err := s.write(CoverageResultsFile, all); err != nil {
		return err
	}
	return s.write(CoveragePassedFile, passed)
}

// ReadCoveragePassed loads the coverage-qualified candidates.
func (s *StageFiles) ReadCoveragePassed() ([]domain.CoverageResult, error) {
	var results []domain.CoverageResult
	if err := s.read(CoveragePassedFile, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteQualified persists the final qualified set.
func (s *StageFiles) WriteQualified(results []domain.ClassificationResult) error {
	return s.write(QualifiedFile, results)
}

func (s *StageFiles) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *StageFiles) read(name string, v any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
