package stages

import "errors"

// ErrUnknownStage dikembalikan kalau nama stage tidak ada di katalog.
var ErrUnknownStage = errors.New("unknown construction stage")

const (
	FoundationSitework = "Foundation & Sitework"
	FramingStructure   = "Framing & Structure"
	ElectricalSystems  = "Electrical Systems"
	PlumbingSystems    = "Plumbing Systems"
	RoofingInsulation  = "Roofing & Insulation"
	InteriorFinishing  = "Interior Finishing"
)

var catalog = []StageProfile{
	{
		Name:       FoundationSitework,
		FocusAreas: "Excavation depth, concrete quality, rebar placement, drainage systems, soil compaction",
		CommonIssues: []string{
			"Cracks in foundation",
			"Improper drainage",
			"Inadequate footing depth",
			"Steel reinforcement issues",
		},
	},
	{
		Name:       FramingStructure,
		FocusAreas: "Wood quality, spacing of studs/joists, alignment, load-bearing walls, structural integrity",
		CommonIssues: []string{
			"Incorrect stud spacing",
			"Warped or damaged lumber",
			"Missing headers",
			"Improper load distribution",
		},
	},
	{
		Name:       ElectricalSystems,
		FocusAreas: "Wiring installation, panel organization, outlet placement, code compliance, safety measures",
		CommonIssues: []string{
			"Exposed wiring",
			"Improper grounding",
			"Inadequate circuit protection",
			"Code violations",
		},
	},
	{
		Name:       PlumbingSystems,
		FocusAreas: "Pipe installation, fixture placement, drainage slope, pressure testing, backflow prevention",
		CommonIssues: []string{
			"Incorrect pipe slope",
			"Leaks at joints",
			"Improper fixture installation",
			"Water pressure issues",
		},
	},
	{
		Name:       RoofingInsulation,
		FocusAreas: "Shingle quality, flashing details, ventilation, insulation coverage, waterproofing",
		CommonIssues: []string{
			"Missing shingles",
			"Improper flashing",
			"Inadequate ventilation",
			"Roof leaks",
		},
	},
	{
		Name:       InteriorFinishing,
		FocusAreas: "Drywall quality, flooring installation, trim work, paint quality, finish details",
		CommonIssues: []string{
			"Cracks in drywall",
			"Uneven flooring",
			"Paint blemishes",
			"Trim gaps",
		},
	},
}

// All returns every profile in display order. The returned slice is a copy.
func All() []StageProfile {
	out := make([]StageProfile, len(catalog))
	for i, p := range catalog {
		out[i] = clone(p)
	}
	return out
}

// Names returns the stage names in display order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, p := range catalog {
		out[i] = p.Name
	}
	return out
}

// Lookup finds a profile by its exact name.
func Lookup(name string) (StageProfile, error) {
	for _, p := range catalog {
		if p.Name == name {
			return clone(p), nil
		}
	}
	return StageProfile{}, ErrUnknownStage
}

// Known reports whether name is a catalog stage.
func Known(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

func clone(p StageProfile) StageProfile {
	p.CommonIssues = append([]string(nil), p.CommonIssues...)
	return p
}
