package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

func TestTemplateCommand(t *testing.T) {
	dir := t.TempDir()
	def := `{"description":"Funds","fields":[{"header":"Fund Name"},{"header":"Manager Email"}]}`
	if err := os.WriteFile(filepath.Join(dir, "funds.json"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEMPLATES_DIR", dir)
	cfg := common.LoadConfig()

	cmd := newTemplateCmd(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"funds"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"id: funds", "description: Funds", "fund_name", "manager_email", "email"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExtractCommandMock(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	def := `{"fields":[{"header":"Currency"}]}`
	if err := os.WriteFile(filepath.Join(dir, "funds.json"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}
	pdf := filepath.Join(dir, "statement.pdf")
	if err := os.WriteFile(pdf, []byte("not really a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEMPLATES_DIR", dir)
	t.Setenv("MOCK_LLM", "true")
	t.Setenv("PDFTOTEXT_BIN", "pdfsheets-no-such-binary")
	cfg := common.LoadConfig()

	cmd := newExtractCmd(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"-t", "funds", "-o", out, pdf})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	written := strings.TrimSpace(stdout.String())
	if filepath.Dir(written) != out || !strings.HasPrefix(filepath.Base(written), "extracted_data_funds_") {
		t.Fatalf("printed path = %q", written)
	}
	if _, err := os.Stat(written); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestStoreKind(t *testing.T) {
	cases := map[string]string{
		"":                              "memory",
		"memory":                        "memory",
		"dir:/var/lib/pdfsheets":        "dir",
		"postgres://u:secret@db/sheets": "postgres",
	}
	for in, want := range cases {
		if got := storeKind(in); got != want {
			t.Errorf("storeKind(%q) = %q, want %q", in, got, want)
		}
	}
}
