package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", output.Count)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "OWN3001" || d.Title != "Use of moved value" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Location.File != "main.toml" || d.Location.Line != 3 || d.Location.Col != 0 {
		t.Errorf("unexpected location %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "value moved here" || d.Notes[0].Location.Line != 2 {
		t.Errorf("unexpected notes %+v", d.Notes)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleBag(), JSONOpts{Max: 1})
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("expected 1 shown and 1 dropped, got %d/%d", out.Count, out.Dropped)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes must be omitted without IncludeNotes")
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, sampleBag(), SarifRunMeta{ToolName: "ownck", ToolVersion: "0.1.0"}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if len(log.Runs) != 1 || len(log.Runs[0].Results) != 2 {
		t.Fatalf("unexpected SARIF %s", buf.String())
	}
	res := log.Runs[0].Results[0]
	if res.RuleID != "OWN3001" || res.Level != "error" || len(res.RelatedLocations) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(log.Runs[0].Tool.Driver.Rules) != 2 {
		t.Fatalf("expected 2 rules")
	}
}
