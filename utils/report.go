package utils

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/iancoleman/orderedmap"

	"github.com/ruinedyourlife/tfm-unpacker/unpacker"
)

// Report describes one unpack run. Keys keep a fixed order so reports diff
// cleanly between game versions.
type Report struct {
	Input    string
	Output   string
	Size     int
	Unpacked int
	Missing  string
	Unpacker *unpacker.Unpacker
	Timings  *Timings
}

func (r *Report) build() *orderedmap.OrderedMap {
	out := orderedmap.New()
	out.Set("input", r.Input)
	out.Set("output", r.Output)
	out.Set("input_size", r.Size)
	out.Set("output_size", r.Unpacked)

	u := r.Unpacker
	if u != nil {
		out.Set("keymap", u.Keymap)
		out.Set("character_methods", len(u.Methods))

		order := make([]string, len(u.Order))
		copy(order, u.Order)
		out.Set("order", order)

		binaries := orderedmap.New()
		names := make([]string, 0, len(u.Binaries))
		for name := range u.Binaries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			binaries.Set(name, len(u.Binaries[name]))
		}
		out.Set("binaries", binaries)
	}
	if r.Missing != "" {
		out.Set("missing", r.Missing)
	}

	if r.Timings != nil {
		timings := orderedmap.New()
		for _, p := range r.Timings.Phases() {
			timings.Set(p.Name, p.Took.Round(time.Microsecond).String())
		}
		timings.Set("total", r.Timings.Total().Round(time.Microsecond).String())
		out.Set("timings", timings)
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return r.build().MarshalJSON()
}

func GenerateReport(r *Report, outputFile string) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return os.WriteFile(outputFile, append(data, '\n'), 0644)
}
