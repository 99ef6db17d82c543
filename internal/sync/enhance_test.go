package sync

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/manifest"
)

func docFromManifest(t *testing.T, manifestJSON string) *manifest.Document {
	t.Helper()
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/app/webapp/manifest.json", []byte(manifestJSON), 0o644))
	doc, err := manifest.Load(editor.New(base), "/app")
	require.NoError(t, err)
	return doc
}

const emptyManifest = `{
    "sap.app": {"id": "my.test.app", "dataSources": {}},
    "sap.ui5": {"models": {}}
}`

func TestEnhance_Defaults(t *testing.T) {
	doc := docFromManifest(t, emptyManifest)
	desc := &api.ServiceDescriptor{
		URL:     "https://services.odata.org",
		Path:    "/V2/Northwind/Northwind.svc",
		Version: "2",
	}

	Enhance(desc, doc)

	assert.Equal(t, "mainService", desc.Name)
	assert.Equal(t, api.ServiceTypeEDMX, desc.Type)
	assert.Equal(t, "/V2/Northwind/Northwind.svc/", desc.Path)
	require.NotNil(t, desc.PreviewSettings)
	assert.Equal(t, "/V2", desc.PreviewSettings.Path)
	assert.Equal(t, "https://services.odata.org", desc.PreviewSettings.URL)
	assert.Equal(t, "", desc.Model)
}

func TestEnhance_AbsentPathResolvesToRoot(t *testing.T) {
	doc := docFromManifest(t, emptyManifest)
	desc := &api.ServiceDescriptor{URL: "https://example.com", Version: "2"}

	Enhance(desc, doc)

	assert.Equal(t, "/", desc.Path)
	assert.Equal(t, "/", desc.PreviewSettings.Path)
}

func TestEnhance_CallerOverridesWin(t *testing.T) {
	doc := docFromManifest(t, emptyManifest)
	desc := &api.ServiceDescriptor{
		Name: "custom", URL: "https://example.com", Path: "/sap/opu/odata/svc/",
		Version: "2", Client: "012",
		PreviewSettings: &api.PreviewSettings{Path: "/proxy", URL: "https://proxy.example.com", PathPrefix: "/pfx"},
	}

	Enhance(desc, doc)

	assert.Equal(t, "custom", desc.Name)
	assert.Equal(t, "/proxy", desc.PreviewSettings.Path)
	assert.Equal(t, "https://proxy.example.com", desc.PreviewSettings.URL)
	assert.Equal(t, "/pfx", desc.PreviewSettings.PathPrefix)
	// Client flows into the preview settings when not overridden.
	assert.Equal(t, "012", desc.PreviewSettings.Client)
}

func TestEnhance_AnnotationCollisionWithServiceName(t *testing.T) {
	doc := docFromManifest(t, emptyManifest)
	desc := &api.ServiceDescriptor{
		Name: "aname", URL: "https://example.com", Path: "/odata/", Version: "2",
		EdmxAnnotations: []api.EdmxAnnotation{{TechnicalName: "aname"}},
	}

	Enhance(desc, doc)

	assert.Equal(t, "aname_Annotation", desc.EdmxAnnotations[0].TechnicalName)
}

func TestEnhance_AnnotationCollisionWithForeignKey(t *testing.T) {
	doc := docFromManifest(t, `{
        "sap.app": {"id": "my.test.app", "dataSources": {
            "other": {"type": "OData", "uri": "/other/", "settings": {"annotations": ["taken"]}},
            "taken": {"type": "ODataAnnotation", "uri": "/t/"}
        }}
    }`)
	desc := &api.ServiceDescriptor{
		Name: "mine", URL: "https://example.com", Path: "/mine/", Version: "2",
		EdmxAnnotations: []api.EdmxAnnotation{{TechnicalName: "taken"}},
	}

	Enhance(desc, doc)

	assert.Equal(t, "taken_Annotation", desc.EdmxAnnotations[0].TechnicalName)
}

func TestEnhance_OwnAnnotationIsNotACollision(t *testing.T) {
	doc := docFromManifest(t, `{
        "sap.app": {"id": "my.test.app", "dataSources": {
            "mine": {"type": "OData", "uri": "/mine/", "settings": {"annotations": ["mineAnn"]}},
            "mineAnn": {"type": "ODataAnnotation", "uri": "/a/"}
        }}
    }`)
	desc := &api.ServiceDescriptor{
		Name: "mine", URL: "https://example.com", Path: "/mine/", Version: "2",
		EdmxAnnotations: []api.EdmxAnnotation{{TechnicalName: "mineAnn"}},
	}

	Enhance(desc, doc)

	assert.Equal(t, "mineAnn", desc.EdmxAnnotations[0].TechnicalName)
}

func TestEnhance_ReusesModelBoundToSameDataSource(t *testing.T) {
	doc := docFromManifest(t, `{
        "sap.app": {"id": "my.test.app", "dataSources": {
            "mainService": {"type": "OData", "uri": "/odata/"}
        }},
        "sap.ui5": {"models": {"northwind": {"dataSource": "mainService"}}}
    }`)
	desc := &api.ServiceDescriptor{URL: "https://example.com", Path: "/odata/", Version: "2"}

	Enhance(desc, doc)

	assert.Equal(t, "northwind", desc.Model)
}
