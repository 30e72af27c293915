package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func stageArtifact(t *testing.T, om *OutputManager, runID, name, content string) {
	t.Helper()
	dir, err := om.StageRunDir(runID)
	if err != nil {
		t.Fatalf("stage dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write staged artifact: %v", err)
	}
}

func TestPromoteReplacesPreviousRun(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	stageArtifact(t, om, "run-1", "visao_pdv.csv", "first")
	if err := om.Promote("run-1"); err != nil {
		t.Fatalf("first promote: %v", err)
	}

	stageArtifact(t, om, "run-1", "visao_pdv.csv", "second")
	if err := om.Promote("run-1"); err != nil {
		t.Fatalf("second promote: %v", err)
	}

	got, err := os.ReadFile(om.ArtifactPath("run-1", "pdv"))
	if err != nil {
		t.Fatalf("read promoted artifact: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("artifact content = %q, want the re-promoted run", got)
	}

	for _, leftover := range []string{"run-1.staging", "run-1.old"} {
		if _, err := os.Stat(filepath.Join(om.BaseOutputDir, leftover)); !os.IsNotExist(err) {
			t.Fatalf("%s left behind after promote", leftover)
		}
	}
}

// A promotion whose staging directory is missing must fail without touching
// the artifacts promoted earlier.
func TestPromoteFailureKeepsPreviousArtifacts(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	stageArtifact(t, om, "run-1", "visao_pdv.csv", "first")
	if err := om.Promote("run-1"); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if err := om.Promote("run-1"); err == nil {
		t.Fatal("expected promote without a staging dir to fail")
	}

	got, err := os.ReadFile(om.ArtifactPath("run-1", "pdv"))
	if err != nil {
		t.Fatalf("previous artifacts lost: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("artifact content = %q, want the earlier run preserved", got)
	}
	if _, err := os.Stat(filepath.Join(om.BaseOutputDir, "run-1.old")); !os.IsNotExist(err) {
		t.Fatal("aside directory left behind after failed promote")
	}
}

func TestDiscardRemovesStaging(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	stageArtifact(t, om, "run-1", "visao_pdv.csv", "partial")
	if err := om.Discard("run-1"); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := os.Stat(filepath.Join(om.BaseOutputDir, "run-1.staging")); !os.IsNotExist(err) {
		t.Fatal("staging directory survived discard")
	}
}
