package integration

import (
	"encoding/json"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/sync"
)

// End-to-end: generate against a realistic project tree, commit, verify the
// files on the backing filesystem, then remove and verify the cleanup.
func TestGenerateCommitRemove(t *testing.T) {
	base := memfs.New()
	files := map[string]string{
		"/proj/webapp/manifest.json": `{
            "_version": "1.58.0",
            "sap.app": {"id": "integration.app", "dataSources": {}},
            "sap.ui5": {"models": {}}
        }`,
		"/proj/ui5.yaml": `specVersion: "3.1"
metadata:
  name: integration.app
type: application
`,
		"/proj/ui5-mock.yaml": `specVersion: "3.1"
metadata:
  name: integration.app
type: application
`,
		"/proj/package.json": `{"name": "integration-app", "version": "0.0.1"}`,
	}
	for p, content := range files {
		require.NoError(t, util.WriteFile(base, p, []byte(content), 0o644))
	}

	desc := &api.ServiceDescriptor{
		URL:      "https://services.odata.org",
		Path:     "/V2/Northwind/Northwind.svc",
		Version:  "2",
		Metadata: "<metadata><entities/></metadata>",
		EdmxAnnotations: []api.EdmxAnnotation{
			{TechnicalName: "NORTHWIND_ANNO", XML: "<annotations/>"},
		},
	}

	ed, err := sync.Generate("/proj", desc, editor.New(base))
	require.NoError(t, err)
	require.NoError(t, ed.Commit())

	manifest, err := util.ReadFile(base, "/proj/webapp/manifest.json")
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(manifest, &m))
	ds := m["sap.app"].(map[string]any)["dataSources"].(map[string]any)
	assert.Contains(t, ds, "mainService")
	assert.Contains(t, ds, "NORTHWIND_ANNO")
	assert.Equal(t, "1.58.0", m["_version"])

	ui5, err := util.ReadFile(base, "/proj/ui5.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(ui5), "fiori-tools-proxy")

	mock, err := util.ReadFile(base, "/proj/ui5-mock.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(mock), "sap-fe-mockserver")

	_, err = base.Stat("/proj/webapp/localService/metadata.xml")
	require.NoError(t, err)
	_, err = base.Stat("/proj/webapp/localService/NORTHWIND_ANNO.xml")
	require.NoError(t, err)

	pkg, err := util.ReadFile(base, "/proj/package.json")
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `"sapux": true`)

	// Remove with an equivalent descriptor restores the manifest tables.
	removal := &api.ServiceDescriptor{
		URL:             "https://services.odata.org",
		Path:            "/V2/Northwind/Northwind.svc",
		Version:         "2",
		EdmxAnnotations: []api.EdmxAnnotation{{TechnicalName: "NORTHWIND_ANNO"}},
	}
	ed, err = sync.Remove("/proj", removal, editor.New(base))
	require.NoError(t, err)
	require.NoError(t, ed.Commit())

	manifest, err = util.ReadFile(base, "/proj/webapp/manifest.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(manifest, &m))
	assert.Empty(t, m["sap.app"].(map[string]any)["dataSources"])
	assert.Empty(t, m["sap.ui5"].(map[string]any)["models"])

	_, err = base.Stat("/proj/webapp/localService/metadata.xml")
	assert.Error(t, err)
	_, err = base.Stat("/proj/webapp/localService/NORTHWIND_ANNO.xml")
	assert.Error(t, err)

	ui5, err = util.ReadFile(base, "/proj/ui5.yaml")
	require.NoError(t, err)
	assert.NotContains(t, string(ui5), "url: https://services.odata.org")
}

// Two sessions sharing one editor accumulate their staged mutations; nothing
// reaches the base until the single Commit.
func TestSharedEditorAcrossCalls(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/proj/webapp/manifest.json",
		[]byte(`{"sap.app": {"id": "integration.app", "dataSources": {}}}`), 0o644))

	ed := editor.New(base)
	first := &api.ServiceDescriptor{
		Name: "first", URL: "https://one.example.com", Path: "/one/",
		Version: "2", Metadata: "<metadata/>",
	}
	second := &api.ServiceDescriptor{
		Name: "second", URL: "https://two.example.com", Path: "/two/",
		Version: "2", Metadata: "<metadata/>",
	}

	_, err := sync.Generate("/proj", first, ed)
	require.NoError(t, err)
	_, err = sync.Generate("/proj", second, ed)
	require.NoError(t, err)

	// Base still pristine.
	_, err = base.Stat("/proj/webapp/localService/first/metadata.xml")
	assert.Error(t, err)

	require.NoError(t, ed.Commit())
	_, err = base.Stat("/proj/webapp/localService/first/metadata.xml")
	assert.NoError(t, err)
	_, err = base.Stat("/proj/webapp/localService/second/metadata.xml")
	assert.NoError(t, err)
}
