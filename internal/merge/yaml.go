package merge

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/courseta/courseta/internal/tabular"
)

// FromYAML mail merges a template against a YAML mapping of recipient key to
// an inner mapping of template variables. Entries render in document order,
// and each inner mapping additionally exposes its own top-level key as the
// variable Key. This consumes the calendar converter's output as well as
// hand-written YAML data files.
func FromYAML(templateR, data io.Reader) (Results, error) {
	templateText, err := io.ReadAll(templateR)
	if err != nil {
		return Results{}, fmt.Errorf("read template: %w", err)
	}

	var doc yaml.Node
	if err := yaml.NewDecoder(data).Decode(&doc); err != nil {
		return Results{}, fmt.Errorf("%w: parse yaml: %v", tabular.ErrDataFormat, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return Results{}, fmt.Errorf("%w: yaml data must be a mapping of key to variables", tabular.ErrDataFormat)
	}

	rows, err := yamlRows(root)
	if err != nil {
		return Results{}, err
	}

	// Keying by the injected Key column makes result keys and order match
	// the document's top level.
	return Render(string(templateText), rows, "Key")
}

// yamlRows converts a YAML mapping node into tabular rows, one per top-level
// entry, injecting the entry key as the Key column.
func yamlRows(root *yaml.Node) (tabular.Rows, error) {
	rows := make(tabular.Rows, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if valNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: entry %q is not a mapping", tabular.ErrDataFormat, keyNode.Value)
		}

		columns := []string{"Key"}
		values := []string{keyNode.Value}
		for j := 0; j+1 < len(valNode.Content); j += 2 {
			columns = append(columns, valNode.Content[j].Value)
			values = append(values, valNode.Content[j+1].Value)
		}
		rows = append(rows, tabular.NewRow(columns, values))
	}
	return rows, nil
}
