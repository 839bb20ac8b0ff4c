package export

import (
	"bytes"
	"encoding/json"

	"github.com/Rana718/seedforge/internal/types"
)

// encodeJSON writes an array of objects whose keys follow field order,
// indented by two spaces.
func encodeJSON(ds types.Dataset, _ Options) ([]byte, error) {
	compact, err := json.Marshal(ds)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
