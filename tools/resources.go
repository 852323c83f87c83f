package tools

import (
	"strings"

	"findata-mcp/models"
)

// SchemaScheme prefixes resource URIs that describe stored tables
const SchemaScheme = "schema://"

// Resource is a read-only document describing one table
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mime_type"`
}

// Resources lists one schema resource per table, root table first
func Resources() []Resource {
	out := make([]Resource, len(models.Schema))
	for i, t := range models.Schema {
		out[i] = Resource{
			URI:         SchemaScheme + t.Name,
			Name:        t.Name + " schema",
			Description: t.Description,
			MIMEType:    "text/plain",
		}
	}
	return out
}

// ReadResource renders the resource at uri
func ReadResource(uri string) (string, bool) {
	name, ok := strings.CutPrefix(uri, SchemaScheme)
	if !ok {
		return "", false
	}
	t, ok := models.LookupTable(name)
	if !ok {
		return "", false
	}
	return t.Describe(), true
}
