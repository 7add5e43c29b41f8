package diagfmt

import (
	"encoding/json"
	"io"

	"ownck/internal/diag"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID           string            `json:"ruleId"`
	Level            string            `json:"level"`
	Message          sarifMessage      `json:"message"`
	Locations        []sarifLocation   `json:"locations,omitempty"`
	RelatedLocations []sarifRelatedLoc `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifRelatedLoc struct {
	ID               int           `json:"id"`
	Message          sarifMessage  `json:"message"`
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: []sarifResult{},
	}
	run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}

	seen := make(map[diag.Code]bool)
	if bag != nil {
		for _, d := range bag.Items() {
			if !seen[d.Code] {
				seen[d.Code] = true
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
					ID:               d.Code.ID(),
					ShortDescription: sarifMessage{Text: d.Code.Title()},
				})
			}
			res := sarifResult{
				RuleID:  d.Code.ID(),
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: d.Message},
			}
			if d.Primary.IsValid() {
				res.Locations = []sarifLocation{{PhysicalLocation: sarifPhys(d.Primary.File, d.Primary.Line, d.Primary.Col)}}
			}
			for i, n := range d.Notes {
				res.RelatedLocations = append(res.RelatedLocations, sarifRelatedLoc{
					ID:               i + 1,
					Message:          sarifMessage{Text: n.Msg},
					PhysicalLocation: sarifPhys(n.Loc.File, n.Loc.Line, n.Loc.Col),
				})
			}
			run.Results = append(run.Results, res)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}})
}

func sarifPhys(file string, line, col uint32) sarifPhysical {
	p := sarifPhysical{ArtifactLocation: sarifArtifact{URI: formatPath(file, PathModeAuto, "")}}
	if line > 0 {
		p.Region = &sarifRegion{StartLine: line, StartColumn: col}
	}
	return p
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}
