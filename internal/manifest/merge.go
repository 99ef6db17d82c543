package manifest

import (
	"fmt"
	"path"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/ui5-tools/odatasync/api"
)

// localServiceDir is the webapp-relative root of local metadata copies.
const localServiceDir = "localService"

// AnnotationURL is the catalog-service uri recorded for an annotation data
// source. Derived purely from the technical name so removal can rebuild the
// same key from the descriptor alone.
func AnnotationURL(technicalName string) string {
	return fmt.Sprintf("/sap/opu/odata/IWFND/CATALOGSERVICE;v=2/Annotations(TechnicalName='%s',Version='0001')/$value/", technicalName)
}

// FileMove is one pending flat→namespaced relocation.
type FileMove struct {
	From string
	To   string
}

// LocalFilePlan tells the orchestrator where the service's local payload
// files belong and which existing files the layout migration relocates.
type LocalFilePlan struct {
	// MetadataPath is the webapp-absolute metadata.xml location.
	MetadataPath string
	// AnnotationPaths maps annotation technical names to their files.
	AnnotationPaths map[string]string
	// Moves are migration relocations to run before writing new files.
	Moves []FileMove
}

// Merge inserts or overwrites the descriptor's service, its annotation
// entries, and its model binding in the manifest. The first OData service
// gets the flat localService layout; any later one forces the namespaced
// layout, migrating a pre-existing lone flat service first. The descriptor
// must already be enhanced.
func Merge(d *Document, basePath string, desc *api.ServiceDescriptor) (*LocalFilePlan, error) {
	ds := d.mutableDataSources()
	plan := &LocalFilePlan{AnnotationPaths: map[string]string{}}

	var others []string
	for _, name := range d.ServiceNames() {
		if name != desc.Name {
			others = append(others, name)
		}
	}
	namespaced := len(others) > 0

	// A lone pre-existing service still in flat layout moves into its own
	// folder the moment a second service arrives. One-way; keyed purely on
	// the OData entry count, so it only ever fires on the 1→2 transition.
	if len(others) == 1 {
		plan.Moves = migrateFlatLayout(ds, basePath, others[0])
	}

	if desc.Type == api.ServiceTypeEDMX {
		dir := localServiceDir
		if namespaced {
			dir = path.Join(localServiceDir, desc.Name)
		}
		metadataURI := path.Join(dir, "metadata.xml")
		plan.MetadataPath = path.Join(WebappPath(basePath), metadataURI)

		annotations := d.ServiceAnnotationNames(desc.Name)
		for _, ann := range desc.EdmxAnnotations {
			annotationURI := path.Join(dir, ann.TechnicalName+".xml")
			ds.Set(ann.TechnicalName, annotationEntry(ann.TechnicalName, annotationURI))
			plan.AnnotationPaths[ann.TechnicalName] = path.Join(WebappPath(basePath), annotationURI)
			if !contains(annotations, ann.TechnicalName) {
				annotations = append(annotations, ann.TechnicalName)
			}
		}
		ds.Set(desc.Name, serviceEntry(desc, metadataURI, annotations))
	} else {
		ds.Set(desc.Name, serviceEntry(desc, "", nil))
	}

	models := d.mutableModels()
	v4 := odataVersion(desc.Version) == "4.0"
	if bound := getMap(models, desc.Model); bound != nil {
		if v, ok := bound.Get("dataSource"); ok && v == desc.Name {
			if v4 {
				bound.Set("preload", true)
			}
			return plan, nil
		}
	}
	model := orderedmap.New()
	model.Set("dataSource", desc.Name)
	// v4 models are preloaded so the metadata request starts with the app.
	if v4 {
		model.Set("preload", true)
	}
	models.Set(desc.Model, model)
	return plan, nil
}

// migrateFlatLayout rewrites the lone service's localUri values into its
// own subfolder and returns the matching file moves.
func migrateFlatLayout(ds *orderedmap.OrderedMap, basePath, lone string) []FileMove {
	var moves []FileMove
	relocate := func(entry *orderedmap.OrderedMap) {
		if entry == nil {
			return
		}
		settings := mutableMap(entry, "settings")
		if settings == nil {
			return
		}
		uri := localURI(entry)
		if uri == "" || path.Dir(uri) != localServiceDir {
			return
		}
		namespaced := path.Join(localServiceDir, lone, path.Base(uri))
		settings.Set("localUri", namespaced)
		moves = append(moves, FileMove{
			From: path.Join(WebappPath(basePath), uri),
			To:   path.Join(WebappPath(basePath), namespaced),
		})
	}

	entry := mutableMap(ds, lone)
	if entry == nil {
		return nil
	}
	relocate(entry)
	for _, ann := range annotationNames(entry) {
		relocate(mutableMap(ds, ann))
	}
	return moves
}

func serviceEntry(desc *api.ServiceDescriptor, metadataURI string, annotations []string) *orderedmap.OrderedMap {
	settings := orderedmap.New()
	if annotations == nil {
		annotations = []string{}
	}
	settings.Set("annotations", annotations)
	if metadataURI != "" {
		settings.Set("localUri", metadataURI)
	}
	settings.Set("odataVersion", odataVersion(desc.Version))

	entry := orderedmap.New()
	entry.Set("uri", desc.Path)
	entry.Set("type", TypeOData)
	entry.Set("settings", settings)
	return entry
}

func annotationEntry(technicalName, annotationURI string) *orderedmap.OrderedMap {
	settings := orderedmap.New()
	settings.Set("localUri", annotationURI)

	entry := orderedmap.New()
	entry.Set("uri", AnnotationURL(technicalName))
	entry.Set("type", TypeODataAnnotation)
	entry.Set("settings", settings)
	return entry
}

// odataVersion maps the descriptor version onto the manifest form,
// e.g. "2" → "2.0".
func odataVersion(version string) string {
	if strings.Contains(version, ".") {
		return version
	}
	return version + ".0"
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
