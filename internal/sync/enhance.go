// Package sync drives one Generate or Remove call: it locates the project
// artifacts, fills the descriptor from manifest state, and applies the
// manifest, middleware, and local-file synchronizers in order.
package sync

import (
	"strings"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/manifest"
)

// DefaultServiceName keys the first service added to a project.
const DefaultServiceName = "mainService"

// Enhance fills the descriptor's optional fields from manifest state.
// Rules apply in order and are deterministic, so re-running a call with the
// same input converges on the same names. No component mutates the
// descriptor after this.
func Enhance(desc *api.ServiceDescriptor, doc *manifest.Document) {
	if desc.Type == "" {
		desc.Type = api.ServiceTypeEDMX
	}
	if desc.Name == "" {
		desc.Name = DefaultServiceName
	}

	// Path always ends in "/"; an absent path resolves to "/".
	if desc.Path == "" {
		desc.Path = "/"
	}
	if !strings.HasSuffix(desc.Path, "/") {
		desc.Path += "/"
	}

	ps := desc.PreviewSettings
	if ps == nil {
		ps = &api.PreviewSettings{}
		desc.PreviewSettings = ps
	}
	if ps.Path == "" {
		ps.Path = "/" + firstSegment(desc.Path)
	}
	if ps.URL == "" {
		ps.URL = desc.URL
	}
	if ps.Client == "" {
		ps.Client = desc.Client
	}
	if ps.Destination == "" {
		ps.Destination = desc.Destination
	}

	// An annotation name colliding with the service or a foreign manifest
	// key gets the "_Annotation" suffix. The service's own previous
	// annotation entries don't count as collisions, so repeat runs keep
	// their names.
	existing := doc.DataSourceNames()
	own := map[string]bool{}
	for _, n := range doc.ServiceAnnotationNames(desc.Name) {
		own[n] = true
	}
	for i := range desc.EdmxAnnotations {
		n := desc.EdmxAnnotations[i].TechnicalName
		if n == "" {
			continue
		}
		if n == desc.Name || (containsName(existing, n) && !own[n]) {
			desc.EdmxAnnotations[i].TechnicalName = n + "_Annotation"
		}
	}

	// "" is the default model. A model already bound to this data source
	// wins over the default.
	if desc.Model == "" {
		if m, ok := doc.ModelForDataSource(desc.Name); ok {
			desc.Model = m
		}
	}
}

// firstSegment returns the first path segment, the routing prefix the proxy
// middleware matches on.
func firstSegment(p string) string {
	parts := strings.SplitN(strings.TrimPrefix(p, "/"), "/", 2)
	return parts[0]
}

func containsName(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
