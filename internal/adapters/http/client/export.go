package client

import (
	"context"
	"fmt"
)

// ExportKind selects which CSV the backend produces.
type ExportKind string

// Export kinds.
const (
	ExportAssessments ExportKind = "assessments"
	ExportUsers       ExportKind = "users"
	ExportSkills      ExportKind = "skills"
)

var exportPaths = map[ExportKind]string{
	ExportAssessments: "/export/csv",
	ExportUsers:       "/export/users/csv",
	ExportSkills:      "/export/skills/csv",
}

// ParseExportKind converts s into an ExportKind.
func ParseExportKind(s string) (ExportKind, error) {
	k := ExportKind(s)
	if _, ok := exportPaths[k]; !ok {
		return "", fmt.Errorf("unknown export %q", s)
	}
	return k, nil
}

// Export downloads a ;-delimited CSV with a UTF-8 BOM.
func (c *Client) Export(ctx context.Context, kind ExportKind) ([]byte, error) {
	path, ok := exportPaths[kind]
	if !ok {
		return nil, fmt.Errorf("export: unknown kind %q", kind)
	}
	return c.download(ctx, "export_"+string(kind), path, nil)
}
