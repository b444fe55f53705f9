// Tests for store lifecycle and persistence across reopen.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

func TestStore_Open(t *testing.T) {
	tmpDir := t.TempDir()

	s := NewStore()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := s.Open(config)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, "resources.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("resources.db not created")
	}

	// Verify double open fails
	err = s.Open(config)
	if err != types.ErrAlreadyOpen {
		t.Errorf("expected ErrAlreadyOpen, got %v", err)
	}

	s.Close()
}

func TestStore_OpenRejectsBadConfig(t *testing.T) {
	s := NewStore()

	err := s.Open(types.Config{DataDir: t.TempDir()})
	if err != types.ErrBackendEmpty {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}

	err = s.Open(types.Config{Backend: "papyrus", DataDir: t.TempDir()})
	if err != types.ErrBackendUnknown {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}
}

func TestStore_Close(t *testing.T) {
	tmpDir := t.TempDir()

	s := NewStore()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	s.Open(config)

	err := s.Close()
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Verify idempotent
	err = s.Close()
	if err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}

	// Verify operations fail after close
	_, err = s.GetResource(1)
	if err != types.ErrStoreClosed {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.AddAttribute(1, "name", types.StringValue("x")); err != types.ErrStoreClosed {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	s := NewStore()
	if err := s.Open(config); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.CreateResource(7, "account", nil); err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	if err := s.AddAttribute(7, "name", types.StringValue("Cash")); err != nil {
		t.Fatalf("AddAttribute failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2 := NewStore()
	if err := s2.Open(config); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	r, err := s2.GetResource(7)
	if err != nil {
		t.Fatalf("GetResource after reopen failed: %v", err)
	}
	if r.Type != "account" {
		t.Errorf("expected type %q, got %q", "account", r.Type)
	}
	values, err := s2.Attributes(7, types.KindString, "name")
	if err != nil {
		t.Fatalf("Attributes after reopen failed: %v", err)
	}
	if len(values) != 1 || values[0].Text != "Cash" {
		t.Errorf("expected [Cash], got %v", values)
	}
}
