package sync

import (
	"github.com/iancoleman/orderedmap"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/manifest"
)

// Generate synchronizes the descriptor's service into every artifact of the
// project at basePath. A nil editor creates one over the OS filesystem; the
// returned editor holds all staged mutations and nothing reaches disk until
// its Commit. Re-running with the same descriptor yields the same artifact
// content: entries are replaced, never duplicated.
func Generate(basePath string, desc *api.ServiceDescriptor, ed *editor.Editor) (*editor.Editor, error) {
	if ed == nil {
		ed = editor.NewOS()
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	doc, err := manifest.Load(ed, basePath)
	if err != nil {
		return nil, err
	}
	Enhance(desc, doc)
	b, err := bindingFor(desc.Type)
	if err != nil {
		return nil, err
	}

	plan, err := manifest.Merge(doc, basePath, desc)
	if err != nil {
		return nil, err
	}
	if err := doc.Save(ed); err != nil {
		return nil, err
	}
	// Layout migration moves run before the new service's files land.
	for _, mv := range plan.Moves {
		if !ed.Exists(mv.From) {
			continue
		}
		if err := ed.Rename(mv.From, mv.To); err != nil {
			return nil, err
		}
	}

	arts := DiscoverArtifacts(ed, basePath)
	if err := b.generate(ed, basePath, arts, desc, plan); err != nil {
		return nil, err
	}

	if arts.PackageJSON != "" && arts.UI5Yaml != "" {
		if err := markUI5App(ed, arts.PackageJSON); err != nil {
			return nil, err
		}
	}
	return ed, nil
}

// Remove excises the descriptor's service from every artifact. Unknown
// service names, absent optional files, and non-matching entries are all
// no-ops; the artifacts they would have touched stay byte-identical. The
// flat→namespaced layout migration is never reversed.
func Remove(basePath string, desc *api.ServiceDescriptor, ed *editor.Editor) (*editor.Editor, error) {
	if ed == nil {
		ed = editor.NewOS()
	}

	doc, err := manifest.Load(ed, basePath)
	if err != nil {
		return nil, err
	}
	Enhance(desc, doc)
	b, err := bindingFor(desc.Type)
	if err != nil {
		return nil, err
	}

	// localUri paths must be captured before the entries disappear.
	localFiles := doc.LocalFilesOf(basePath, desc.Name)
	if doc.RemoveService(desc.Name) {
		if err := doc.Save(ed); err != nil {
			return nil, err
		}
	}

	arts := DiscoverArtifacts(ed, basePath)
	if err := b.remove(ed, basePath, arts, desc, localFiles); err != nil {
		return nil, err
	}
	return ed, nil
}

// markUI5App sets the idempotent sapux marker on package.json.
func markUI5App(ed *editor.Editor, packageJSON string) error {
	pkg := orderedmap.New()
	if err := ed.ReadJSON(packageJSON, pkg); err != nil {
		return err
	}
	if v, ok := pkg.Get("sapux"); ok {
		if flagged, ok := v.(bool); ok && flagged {
			return nil
		}
	}
	pkg.Set("sapux", true)
	return ed.WriteJSON(packageJSON, pkg)
}
