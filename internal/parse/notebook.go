package parse

import (
	"bytes"
	"encoding/json"
	"strings"
)

// notebook is the minimal shape of a Jupyter notebook needed to recover
// source text: a list of cells, each with a type and source lines.
type notebook struct {
	Cells []struct {
		CellType string      `json:"cell_type"`
		Source   interface{} `json:"source"` // string, or []string joined without separators
	} `json:"cells"`
}

// extractNotebookSource parses content as a Jupyter notebook and
// concatenates every code cell's source with blank-line separators,
// producing a synthetic Python source buffer for syntactic analysis.
func extractNotebookSource(content []byte) ([]byte, error) {
	var nb notebook
	if err := json.Unmarshal(content, &nb); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, cell := range nb.Cells {
		if cell.CellType != "code" {
			continue
		}
		src := cellSourceText(cell.Source)
		if src == "" {
			continue
		}
		buf.WriteString(src)
		if !strings.HasSuffix(src, "\n") {
			buf.WriteByte('\n')
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// cellSourceText normalizes a notebook cell's "source" field, which may
// be a single string or a list of lines, into one string.
func cellSourceText(source interface{}) string {
	switch v := source.(type) {
	case string:
		return v
	case []interface{}:
		var b strings.Builder
		for _, line := range v {
			if s, ok := line.(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	default:
		return ""
	}
}
