package sync

import (
	"path"
	"strings"

	"github.com/ui5-tools/odatasync/internal/editor"
)

// ArtifactPaths are the config files one call synchronizes. Empty fields
// mean the file was not found and its sync steps are skipped.
type ArtifactPaths struct {
	PackageJSON  string
	UI5Yaml      string
	UI5LocalYaml string
	UI5MockYaml  string
}

// DiscoverArtifacts walks from basePath up to the filesystem root and
// resolves each artifact to its closest occurrence. The files are resolved
// independently; they need not live at the same level.
func DiscoverArtifacts(ed *editor.Editor, basePath string) ArtifactPaths {
	var arts ArtifactPaths
	targets := []struct {
		name string
		dest *string
	}{
		{"package.json", &arts.PackageJSON},
		{"ui5.yaml", &arts.UI5Yaml},
		{"ui5-local.yaml", &arts.UI5LocalYaml},
		{"ui5-mock.yaml", &arts.UI5MockYaml},
	}

	dir := path.Clean("/" + strings.ReplaceAll(basePath, "\\", "/"))
	for {
		for _, t := range targets {
			if *t.dest != "" {
				continue
			}
			if p := path.Join(dir, t.name); ed.Exists(p) {
				*t.dest = p
			}
		}
		parent := path.Dir(dir)
		if parent == dir {
			return arts
		}
		dir = parent
	}
}
