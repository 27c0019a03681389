package tools

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeArgs populates a typed argument struct from the loosely typed map
// the normalizer produces. Decoding is weakly typed: "5" satisfies an int
// field, a bare string satisfies a single-element slice. Field names bind
// via json tags.
func DecodeArgs(args map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}
