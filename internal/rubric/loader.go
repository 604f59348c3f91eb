package rubric

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
)

//go:embed versions/*.yaml
var embedded embed.FS

// Load returns the validated rubric for version. When dir is non-empty a
// <dir>/<version>.yaml file overrides the embedded document, so rubric
// revisions can ship without a rebuild.
func Load(version, dir string) (*Rubric, error) {
	data, err := readDocument(version, dir)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a rubric document.
func Parse(data []byte) (*Rubric, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Rubric
	if err := dec.Decode(&r); err != nil {
		return nil, common.NewAppError("RUBRIC_INVALID", "decode rubric document", err)
	}
	r.Financial.Track = constants.TrackFinancial
	r.Sustainability.Track = constants.TrackSustainability
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func readDocument(version, dir string) ([]byte, error) {
	if dir != "" {
		path := filepath.Join(dir, version+".yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read rubric override %s: %w", path, err)
		}
		// fall through to the embedded copy
	}
	data, err := embedded.ReadFile("versions/" + version + ".yaml")
	if err != nil {
		return nil, common.NewAppError("RUBRIC_UNKNOWN",
			fmt.Sprintf("no rubric document for version %q", version), common.ErrConfiguration)
	}
	return data, nil
}

// Versions lists the embedded rubric versions.
func Versions() []string {
	entries, err := embedded.ReadDir("versions")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		out = append(out, name[:len(name)-len(filepath.Ext(name))])
	}
	return out
}
