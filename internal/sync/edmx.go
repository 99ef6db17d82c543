package sync

import (
	"embed"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/manifest"
	"github.com/ui5-tools/odatasync/internal/middleware"
	"github.com/ui5-tools/odatasync/internal/xmlfmt"
)

//go:embed templates/annotation.xml
var templates embed.FS

// edmxBinding synchronizes services whose metadata and annotations live as
// standalone XML payloads.
type edmxBinding struct{}

func (edmxBinding) generate(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, plan *manifest.LocalFilePlan) error {
	// Only a service with live metadata can be proxied or mocked.
	if desc.Metadata != "" && arts.UI5Yaml != "" {
		entry := backendEntry(desc)
		for _, p := range []string{arts.UI5Yaml, arts.UI5LocalYaml} {
			if p == "" {
				continue
			}
			doc, err := loadYAML(ed, p)
			if err != nil {
				return err
			}
			if err := middleware.UpsertBackend(doc, entry); err != nil {
				return err
			}
			if err := saveYAML(ed, p, doc); err != nil {
				return err
			}
		}

		if arts.UI5MockYaml != "" {
			svc := middleware.MockService{ServiceName: desc.Name, ServicePath: desc.Path}
			annotations := mockAnnotations(desc)
			// The mock block lands in ui5-mock.yaml and is mirrored into
			// ui5-local.yaml when that file exists.
			for _, p := range []string{arts.UI5MockYaml, arts.UI5LocalYaml} {
				if p == "" {
					continue
				}
				doc, err := loadYAML(ed, p)
				if err != nil {
					return err
				}
				if err := middleware.UpsertMock(doc, svc, annotations); err != nil {
					return err
				}
				if err := saveYAML(ed, p, doc); err != nil {
					return err
				}
			}
		}
	}

	if desc.Metadata != "" && plan.MetadataPath != "" {
		if err := ed.Write(plan.MetadataPath, xmlfmt.Format([]byte(desc.Metadata))); err != nil {
			return err
		}
	}
	for _, ann := range desc.EdmxAnnotations {
		dest := plan.AnnotationPaths[ann.TechnicalName]
		if dest == "" {
			continue
		}
		if ann.XML != "" {
			if err := ed.Write(dest, xmlfmt.Format([]byte(ann.XML))); err != nil {
				return err
			}
			continue
		}
		data := struct {
			TechnicalName string
			Namespace     string
			ServiceURI    string
		}{ann.TechnicalName, ann.TechnicalName, desc.Path}
		if err := ed.CopyTemplate(templates, "templates/annotation.xml", dest, data); err != nil {
			return err
		}
	}
	return nil
}

func (edmxBinding) remove(ed *editor.Editor, basePath string, arts ArtifactPaths, desc *api.ServiceDescriptor, localFiles []string) error {
	urlPaths := annotationURLPaths(desc)
	// Mock entries only ever land in the local and mock variants, mirroring
	// the upsert side; the primary file only carries backend entries.
	files := []struct {
		path string
		mock bool
	}{
		{arts.UI5Yaml, false},
		{arts.UI5LocalYaml, true},
		{arts.UI5MockYaml, true},
	}
	for _, f := range files {
		p := f.path
		if p == "" {
			continue
		}
		doc, err := loadYAML(ed, p)
		if err != nil {
			return err
		}
		changed := false
		if desc.PreviewSettings.URL != "" {
			c, err := middleware.RemoveBackend(doc, desc.PreviewSettings.URL)
			if err != nil {
				return err
			}
			changed = changed || c
		}
		if f.mock {
			c, err := middleware.RemoveMock(doc, desc.Path, urlPaths)
			if err != nil {
				return err
			}
			changed = changed || c
		}
		// Untouched files are not rewritten, so a no-op removal leaves
		// them byte-identical.
		if changed {
			if err := saveYAML(ed, p, doc); err != nil {
				return err
			}
		}
	}

	for _, f := range localFiles {
		ed.Delete(f)
	}
	return nil
}

func backendEntry(desc *api.ServiceDescriptor) middleware.BackendEntry {
	ps := desc.PreviewSettings
	return middleware.BackendEntry{
		Path:        ps.Path,
		URL:         ps.URL,
		Client:      ps.Client,
		Destination: ps.Destination,
		APIHub:      ps.APIHub,
		SCP:         ps.SCP,
		PathPrefix:  ps.PathPrefix,
	}
}

func mockAnnotations(desc *api.ServiceDescriptor) []middleware.MockAnnotation {
	var annotations []middleware.MockAnnotation
	for _, p := range annotationURLPaths(desc) {
		annotations = append(annotations, middleware.MockAnnotation{URLPath: p})
	}
	return annotations
}

func annotationURLPaths(desc *api.ServiceDescriptor) []string {
	var paths []string
	for _, ann := range desc.EdmxAnnotations {
		paths = append(paths, manifest.AnnotationURL(ann.TechnicalName))
	}
	return paths
}
