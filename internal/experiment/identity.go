package experiment

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Prompting strategies.
const (
	StrategyFewShot  = "fewshot"
	StrategyZeroShot = "zeroshot"
)

// Identity uniquely determines an experiment. It is serialized into the
// output filenames, which are the sole index of completed runs.
type Identity struct {
	Image          string // target image filename, e.g. "A.jpg"
	Model          string // full model identifier, e.g. "models/gemini-2.5-flash-lite"
	Strategy       string // StrategyFewShot or StrategyZeroShot
	ThinkingBudget int
}

// ModelShortName strips the service path prefix and maps colons to hyphens,
// making the model identifier filename-safe.
func ModelShortName(model string) string {
	short := strings.Replace(model, "models/", "", 1)
	return strings.ReplaceAll(short, ":", "-")
}

// Filename serializes the identity into the output filename:
// {image_base}__{model_short}__{strategy}__thinking{budget}.json
func (id Identity) Filename() string {
	base := strings.TrimSuffix(id.Image, filepath.Ext(id.Image))
	parts := []string{
		base,
		ModelShortName(id.Model),
		id.Strategy,
		fmt.Sprintf("thinking%d", id.ThinkingBudget),
	}
	return strings.Join(parts, "__") + ".json"
}

// String renders the identity for logs.
func (id Identity) String() string {
	return fmt.Sprintf("%s %s thinking=%d on %s",
		ModelShortName(id.Model), id.Strategy, id.ThinkingBudget, id.Image)
}
