// Package manifest edits webapp/manifest.json. The document is held as an
// order-preserving JSON map so the dataSources table keeps insertion order
// and manifest content this tool does not understand survives untouched.
package manifest

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/iancoleman/orderedmap"

	"github.com/ui5-tools/odatasync/internal/editor"
)

const (
	// TypeOData marks a service data source.
	TypeOData = "OData"
	// TypeODataAnnotation marks an annotation data source.
	TypeODataAnnotation = "ODataAnnotation"
)

// RequiredFileError reports a missing mandatory project file.
type RequiredFileError struct {
	Path string
}

func (e *RequiredFileError) Error() string {
	return fmt.Sprintf("required project file not found: %s", e.Path)
}

// RequiredPropertyError reports a missing mandatory manifest property.
type RequiredPropertyError struct {
	Property string
}

func (e *RequiredPropertyError) Error() string {
	return fmt.Sprintf("required project property not found: %s", e.Property)
}

// Path returns the manifest location under a project base path.
func Path(basePath string) string {
	return path.Join(basePath, "webapp", "manifest.json")
}

// WebappPath returns the webapp root under a project base path.
func WebappPath(basePath string) string {
	return path.Join(basePath, "webapp")
}

// Document is one loaded manifest.
type Document struct {
	root *orderedmap.OrderedMap
	path string
}

// Load reads and validates the manifest of the project at basePath. A
// missing file or a missing sap.app.id aborts before any mutation;
// malformed JSON propagates as-is.
func Load(ed *editor.Editor, basePath string) (*Document, error) {
	p := Path(basePath)
	if !ed.Exists(p) {
		return nil, &RequiredFileError{Path: p}
	}
	content, err := ed.Read(p)
	if err != nil {
		return nil, err
	}
	root := orderedmap.New()
	if err := json.Unmarshal(content, root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	doc := &Document{root: root, path: p}
	if _, err := doc.AppID(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save stages the manifest back through the editor.
func (d *Document) Save(ed *editor.Editor) error {
	return ed.WriteJSON(d.path, d.root)
}

// AppID returns sap.app.id or a RequiredPropertyError.
func (d *Document) AppID() (string, error) {
	if app := getMap(d.root, "sap.app"); app != nil {
		if v, ok := app.Get("id"); ok {
			if id, ok := v.(string); ok && id != "" {
				return id, nil
			}
		}
	}
	return "", &RequiredPropertyError{Property: "sap.app.id"}
}

// DataSourceNames lists every dataSources key in insertion order.
func (d *Document) DataSourceNames() []string {
	ds := d.dataSources()
	if ds == nil {
		return nil
	}
	return ds.Keys()
}

// ServiceNames lists the OData-typed dataSources keys in insertion order.
func (d *Document) ServiceNames() []string {
	ds := d.dataSources()
	if ds == nil {
		return nil
	}
	var names []string
	for _, k := range ds.Keys() {
		if entryType(ds, k) == TypeOData {
			names = append(names, k)
		}
	}
	return names
}

// HasService reports whether name is an OData-typed data source.
func (d *Document) HasService(name string) bool {
	ds := d.dataSources()
	return ds != nil && entryType(ds, name) == TypeOData
}

// ServiceAnnotationNames returns the settings.annotations list of a service.
func (d *Document) ServiceAnnotationNames(name string) []string {
	ds := d.dataSources()
	if ds == nil {
		return nil
	}
	return annotationNames(getMap(ds, name))
}

// ModelForDataSource returns the name of a sap.ui5 model already bound to
// the data source, if any.
func (d *Document) ModelForDataSource(dataSource string) (string, bool) {
	models := getMap(getMap(d.root, "sap.ui5"), "models")
	if models == nil {
		return "", false
	}
	for _, k := range models.Keys() {
		if m := getMap(models, k); m != nil {
			if v, ok := m.Get("dataSource"); ok && v == dataSource {
				return k, true
			}
		}
	}
	return "", false
}

// LocalFilesOf returns the webapp-absolute localUri paths of a service and
// its annotations. Unknown names yield nil.
func (d *Document) LocalFilesOf(basePath, name string) []string {
	ds := d.dataSources()
	entry := getMap(ds, name)
	if entry == nil {
		return nil
	}
	var files []string
	appendLocalURI := func(e *orderedmap.OrderedMap) {
		if uri := localURI(e); uri != "" {
			files = append(files, path.Join(WebappPath(basePath), uri))
		}
	}
	appendLocalURI(entry)
	for _, ann := range annotationNames(entry) {
		appendLocalURI(getMap(ds, ann))
	}
	return files
}

func (d *Document) dataSources() *orderedmap.OrderedMap {
	return getMap(getMap(d.root, "sap.app"), "dataSources")
}

// mutableDataSources resolves sap.app.dataSources for mutation, creating it
// when absent. sap.app itself exists on every loaded document (AppID).
func (d *Document) mutableDataSources() *orderedmap.OrderedMap {
	return ensureMap(ensureMap(d.root, "sap.app"), "dataSources")
}

func (d *Document) mutableModels() *orderedmap.OrderedMap {
	return ensureMap(ensureMap(d.root, "sap.ui5"), "models")
}

// getMap resolves a nested object for reading only. Mutation paths must go
// through ensureMap, which re-anchors the child in its parent: nested
// orderedmap values are stored by value, so edits to a plain copy would be
// partially lost.
func getMap(o *orderedmap.OrderedMap, key string) *orderedmap.OrderedMap {
	if o == nil {
		return nil
	}
	v, ok := o.Get(key)
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case orderedmap.OrderedMap:
		return &m
	case *orderedmap.OrderedMap:
		return m
	}
	return nil
}

func ensureMap(o *orderedmap.OrderedMap, key string) *orderedmap.OrderedMap {
	if m := getMap(o, key); m != nil {
		o.Set(key, m)
		return m
	}
	m := orderedmap.New()
	o.Set(key, m)
	return m
}

// mutableMap is ensureMap without the create: nil when the key is absent.
func mutableMap(o *orderedmap.OrderedMap, key string) *orderedmap.OrderedMap {
	if m := getMap(o, key); m != nil {
		o.Set(key, m)
		return m
	}
	return nil
}

func entryType(ds *orderedmap.OrderedMap, key string) string {
	entry := getMap(ds, key)
	if entry == nil {
		return ""
	}
	if v, ok := entry.Get("type"); ok {
		if t, ok := v.(string); ok {
			return t
		}
	}
	return ""
}

func localURI(entry *orderedmap.OrderedMap) string {
	settings := getMap(entry, "settings")
	if settings == nil {
		return ""
	}
	if v, ok := settings.Get("localUri"); ok {
		if uri, ok := v.(string); ok {
			return uri
		}
	}
	return ""
}

func annotationNames(entry *orderedmap.OrderedMap) []string {
	settings := getMap(entry, "settings")
	if settings == nil {
		return nil
	}
	v, ok := settings.Get("annotations")
	if !ok {
		return nil
	}
	// A freshly-merged entry holds []string; one unmarshalled from disk
	// holds []interface{}. Both shapes occur within one session.
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []interface{}:
		var names []string
		for _, item := range list {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
