package sync

import (
	"fmt"
	"path"
	"strings"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/manifest"
)

// cdsBinding synchronizes services whose annotations live inside CDS
// sources. It maintains a per-service block in annotations.cds and touches
// neither the YAML configs nor localService files.
type cdsBinding struct{}

func annotationsCdsPath(basePath string) string {
	return path.Join(path.Clean("/"+strings.ReplaceAll(basePath, "\\", "/")), "annotations.cds")
}

func blockMarkers(serviceName string) (string, string) {
	return fmt.Sprintf("// #cds-service %s", serviceName),
		fmt.Sprintf("// #cds-service-end %s", serviceName)
}

func (cdsBinding) generate(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, plan *manifest.LocalFilePlan) error {
	if len(desc.CdsAnnotations) == 0 {
		return nil
	}
	var lines []string
	for _, ann := range desc.CdsAnnotations {
		if ann.Source != "" {
			lines = append(lines, strings.TrimRight(ann.Source, "\n"))
			continue
		}
		lines = append(lines, fmt.Sprintf("using from './%s';", ann.Name))
	}
	begin, end := blockMarkers(desc.Name)
	block := begin + "\n" + strings.Join(lines, "\n") + "\n" + end + "\n"

	p := annotationsCdsPath(basePath)
	content := ""
	if ed.Exists(p) {
		existing, err := ed.Read(p)
		if err != nil {
			return err
		}
		content = stripBlock(string(existing), desc.Name)
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
	}
	return ed.Write(p, []byte(content+block))
}

func (cdsBinding) remove(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, localFiles []string) error {
	p := annotationsCdsPath(basePath)
	if !ed.Exists(p) {
		return nil
	}
	existing, err := ed.Read(p)
	if err != nil {
		return err
	}
	stripped := stripBlock(string(existing), desc.Name)
	if stripped == string(existing) {
		return nil
	}
	if strings.TrimSpace(stripped) == "" {
		ed.Delete(p)
		return nil
	}
	return ed.Write(p, []byte(stripped))
}

// stripBlock removes the service's marker-delimited block, leaving the rest
// of the file untouched.
func stripBlock(content, serviceName string) string {
	begin, end := blockMarkers(serviceName)
	start := strings.Index(content, begin)
	if start < 0 {
		return content
	}
	stop := strings.Index(content[start:], end)
	if stop < 0 {
		return content
	}
	stop = start + stop + len(end)
	if stop < len(content) && content[stop] == '\n' {
		stop++
	}
	return content[:start] + content[stop:]
}
