package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactName returns the artifact file name for an aggregation level.
func ArtifactName(level string) string {
	return "visao_" + level + ".csv"
}

// OutputManager handles artifact directory organization for report runs.
// Every run gets its own directory under the base; artifacts are written to a
// staging sibling first and promoted in one rename, so a failed run never
// leaves a partially written directory behind.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// RunDir returns the final artifact directory for a run.
func (om *OutputManager) RunDir(runID string) string {
	return filepath.Join(om.BaseOutputDir, runID)
}

func (om *OutputManager) stageDir(runID string) string {
	return filepath.Join(om.BaseOutputDir, runID+".staging")
}

// StageRunDir creates and returns the staging directory for a run.
func (om *OutputManager) StageRunDir(runID string) (string, error) {
	dir := om.stageDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// Promote moves the staged artifacts into the final run directory, replacing
// anything already there. A previously promoted directory is renamed aside
// first and restored if the promotion rename fails, so the run never ends up
// with neither the old nor the new artifacts.
func (om *OutputManager) Promote(runID string) error {
	final := om.RunDir(runID)
	aside := final + ".old"

	if err := os.RemoveAll(aside); err != nil {
		return err
	}
	haveOld := false
	if _, err := os.Stat(final); err == nil {
		if err := os.Rename(final, aside); err != nil {
			return err
		}
		haveOld = true
	}

	if err := os.Rename(om.stageDir(runID), final); err != nil {
		if haveOld {
			os.Rename(aside, final)
		}
		return err
	}
	if haveOld {
		return os.RemoveAll(aside)
	}
	return nil
}

// Discard removes a run's staging directory, if any.
func (om *OutputManager) Discard(runID string) error {
	return os.RemoveAll(om.stageDir(runID))
}

// ArtifactPath returns the full path of one promoted artifact.
func (om *OutputManager) ArtifactPath(runID, level string) string {
	return filepath.Join(om.RunDir(runID), ArtifactName(level))
}

// ListArtifacts returns the promoted artifact file names for a run.
func (om *OutputManager) ListArtifacts(runID string) ([]string, error) {
	entries, err := os.ReadDir(om.RunDir(runID))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DownloadURL generates a download URL for a promoted artifact.
func (om *OutputManager) DownloadURL(runID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", runID, filepath.Base(fileName))
}

// FileSize returns the size of a file in bytes.
func (om *OutputManager) FileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
