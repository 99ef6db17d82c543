package sync

import (
	"fmt"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/manifest"
	"github.com/ui5-tools/odatasync/internal/yamldoc"
)

// binding is the per-type synchronization branch. The two variants form a
// closed set; bindingFor is the only constructor.
type binding interface {
	// generate applies the config and local-file side of an add.
	generate(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, plan *manifest.LocalFilePlan) error
	// remove excises the service from configs and deletes localFiles, the
	// localUri paths captured before the manifest entry was dropped.
	remove(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, localFiles []string) error
}

func bindingFor(t api.ServiceType) (binding, error) {
	switch t {
	case api.ServiceTypeEDMX:
		return edmxBinding{}, nil
	case api.ServiceTypeCDS:
		return cdsBinding{}, nil
	}
	return nil, fmt.Errorf("unknown service type %q", t)
}

func loadYAML(ed *editor.Editor, p string) (*yamldoc.Document, error) {
	content, err := ed.Read(p)
	if err != nil {
		return nil, err
	}
	doc, err := yamldoc.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return doc, nil
}

func saveYAML(ed *editor.Editor, p string, doc *yamldoc.Document) error {
	content, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	return ed.Write(p, content)
}
