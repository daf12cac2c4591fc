package audit

import "strings"

// ExperimentType identifies the kind of experiment an image depicts.
type ExperimentType string

const (
	ExperimentMTT    ExperimentType = "MTT_CELL_VIABILITY"
	ExperimentGel    ExperimentType = "GEL_ELECTROPHORESIS"
	ExperimentHPLC   ExperimentType = "HPLC_CHROMATOGRAPHY"
	ExperimentColony ExperimentType = "COLONY_COUNTING"
	ExperimentOther  ExperimentType = "OTHER"
)

// ParseExperimentType normalizes a model-produced type string.
// Unknown values map to OTHER.
func ParseExperimentType(s string) ExperimentType {
	switch ExperimentType(strings.ToUpper(strings.TrimSpace(s))) {
	case ExperimentMTT:
		return ExperimentMTT
	case ExperimentGel:
		return ExperimentGel
	case ExperimentHPLC:
		return ExperimentHPLC
	case ExperimentColony:
		return ExperimentColony
	default:
		return ExperimentOther
	}
}

// typeKeywords lists, per experiment type, phrases that strongly indicate
// the type in a free-text description. Iteration order matters: the first
// matching entry wins, so the table is an ordered slice, not a map.
var typeKeywords = []struct {
	Type     ExperimentType
	Keywords []string
}{
	{ExperimentMTT, []string{"mtt", "96-well", "microplate", "well plate", "formazan", "purple well", "cell viability"}},
	{ExperimentGel, []string{"gel electrophoresis", "agarose", "gel band", "dna gel", "gel lane", "electrophoresis"}},
	{ExperimentHPLC, []string{"hplc", "chromatogram", "chromatography", "retention time", "peak area"}},
	{ExperimentColony, []string{"colony count", "cfu", "petri dish", "bacterial colony", "agar plate"}},
}

// protocolKeywords maps phrases found in a protocol's first line to the
// experiment type that protocol covers. Ordered: first match wins.
var protocolKeywords = []struct {
	Keyword string
	Type    ExperimentType
}{
	{"mtt", ExperimentMTT},
	{"cell viability", ExperimentMTT},
	{"sop-cv", ExperimentMTT},
	{"gel", ExperimentGel},
	{"electrophoresis", ExperimentGel},
	{"sop-ge", ExperimentGel},
	{"hplc", ExperimentHPLC},
	{"chromatograph", ExperimentHPLC},
	{"sop-hp", ExperimentHPLC},
	{"colony", ExperimentColony},
	{"cfu", ExperimentColony},
	{"bacterial", ExperimentColony},
	{"sop-bc", ExperimentColony},
}

// ClassifyDescription infers the experiment type from free description
// text by keyword search. Returns OTHER when nothing matches.
func ClassifyDescription(text string) ExperimentType {
	lower := strings.ToLower(text)
	for _, entry := range typeKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				return entry.Type
			}
		}
	}
	return ExperimentOther
}

// ExpectedProtocolType derives the experiment type a protocol expects by
// matching its first line against the protocol keyword table. Returns
// OTHER when the protocol gives no signal, in which case no mismatch can
// be declared.
func ExpectedProtocolType(protocolText string) ExperimentType {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(protocolText), "\n")
	lower := strings.ToLower(firstLine)
	for _, entry := range protocolKeywords {
		if strings.Contains(lower, entry.Keyword) {
			return entry.Type
		}
	}
	return ExperimentOther
}
