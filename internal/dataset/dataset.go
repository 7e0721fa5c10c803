// Package dataset loads the local experiment assets: the scanned page images,
// the shared task prompt, per-image ground-truth records, and the optional
// response schema. Everything is read once at startup; a missing or broken
// asset aborts the run before any request is sent.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ImagesDirName          = "images"
	GroundTruthDirName     = "ground_truth"
	PromptFileName         = "prompt.txt"
	ResponseSchemaFileName = "response_schema.json"

	// JPEGMimeType is the MIME type of the scanned page corpus.
	JPEGMimeType = "image/jpeg"

	// reasoningPreamble is prepended verbatim to the task prompt.
	reasoningPreamble = "Perform the following task using step-by-step reasoning."
)

// Dataset holds the loaded assets for one run.
type Dataset struct {
	dir string

	// Images is the ordered image filename list from configuration.
	Images []string

	// Prompt is the shared instruction text. It is loaded once and reused by
	// reference, so the prompt part is byte-identical across all turns.
	Prompt string

	// ResponseSchema is the optional output schema forwarded to the service.
	// Nil when data/response_schema.json does not exist.
	ResponseSchema json.RawMessage

	groundTruth map[string]string
}

// Load reads all assets for the given image list from dir.
func Load(dir string, images []string) (*Dataset, error) {
	ds := &Dataset{
		dir:         dir,
		Images:      images,
		groundTruth: make(map[string]string, len(images)),
	}

	promptBytes, err := os.ReadFile(filepath.Join(dir, PromptFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt: %w", err)
	}
	ds.Prompt = reasoningPreamble + string(promptBytes)

	for _, name := range images {
		if _, err := os.Stat(ds.ImagePath(name)); err != nil {
			return nil, fmt.Errorf("missing image %s: %w", name, err)
		}

		gt, err := loadGroundTruth(dir, name)
		if err != nil {
			return nil, err
		}
		ds.groundTruth[name] = gt
	}

	schema, err := loadResponseSchema(dir)
	if err != nil {
		return nil, err
	}
	ds.ResponseSchema = schema

	return ds, nil
}

// ImagePath returns the local path of an image by filename.
func (d *Dataset) ImagePath(name string) string {
	return filepath.Join(d.dir, ImagesDirName, name)
}

// GroundTruth returns the pretty-printed reference record for an image.
func (d *Dataset) GroundTruth(name string) (string, bool) {
	gt, ok := d.groundTruth[name]
	return gt, ok
}

// loadGroundTruth reads ground_truth/<base>.json and normalizes it to
// pretty-printed text, the exact form emitted as few-shot model turns.
func loadGroundTruth(dir, imageName string) (string, error) {
	base := imageName[:len(imageName)-len(filepath.Ext(imageName))]
	path := filepath.Join(dir, GroundTruthDirName, base+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ground truth for %s: %w", imageName, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("invalid ground truth JSON for %s: %w", imageName, err)
	}

	pretty, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to format ground truth for %s: %w", imageName, err)
	}
	return string(pretty), nil
}

// loadResponseSchema reads the optional response schema and compiles it so a
// broken schema fails setup instead of poisoning every request.
func loadResponseSchema(dir string) (json.RawMessage, error) {
	path := filepath.Join(dir, ResponseSchemaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read response schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(ResponseSchemaFileName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}
	if _, err := compiler.Compile(ResponseSchemaFileName); err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	return json.RawMessage(data), nil
}
