package driver

import (
	"encoding/json"
	"fmt"

	"ownck/internal/diag"
	"ownck/internal/observ"
	"ownck/internal/source"
)

type timingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
	Cached bool `json:"cached,omitempty"`
}

// appendTimingDiagnostic adds an info diagnostic whose single note carries
// the JSON payload. It is added even when the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "file"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Loc{File: payload.Path}, msg).
		WithNote(source.NoLoc, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
