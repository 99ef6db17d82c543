package manifest

// RemoveService deletes a service entry, its annotation entries, and every
// model bound to it. Annotations still referenced by another remaining
// service stay. Removing an unknown name is a no-op; the one-way layout
// migration is never reversed. Reports whether the document changed.
func (d *Document) RemoveService(name string) bool {
	ds := d.mutableDataSources()
	entry := getMap(ds, name)
	if entry == nil {
		return false
	}
	annotations := annotationNames(entry)
	ds.Delete(name)

	for _, ann := range annotations {
		referenced := false
		for _, other := range ds.Keys() {
			if entryType(ds, other) == TypeOData && contains(annotationNames(getMap(ds, other)), ann) {
				referenced = true
				break
			}
		}
		if !referenced {
			ds.Delete(ann)
		}
	}

	// A removal never adds structure, so sap.ui5.models is resolved
	// without creating it.
	if models := mutableMap(mutableMap(d.root, "sap.ui5"), "models"); models != nil {
		keys := append([]string(nil), models.Keys()...)
		for _, k := range keys {
			if m := getMap(models, k); m != nil {
				if v, ok := m.Get("dataSource"); ok && v == name {
					models.Delete(k)
				}
			}
		}
	}
	return true
}
