// Package middleware synchronizes the proxy and mock-server blocks of one
// parsed ui5 YAML document. Each function is idempotent: re-applying the
// same entry never duplicates it.
package middleware

import (
	"github.com/ui5-tools/odatasync/internal/yamldoc"
)

const (
	// ProxyName is the routing middleware carrying the backend list.
	ProxyName = "fiori-tools-proxy"
	// MockName is the mock-server middleware.
	MockName = "sap-fe-mockserver"
)

// BackendEntry is one routing rule in the proxy middleware's backend list.
type BackendEntry struct {
	Path        string `yaml:"path"`
	URL         string `yaml:"url"`
	Client      string `yaml:"client,omitempty"`
	Destination string `yaml:"destination,omitempty"`
	APIHub      bool   `yaml:"apiHub,omitempty"`
	SCP         bool   `yaml:"scp,omitempty"`
	PathPrefix  string `yaml:"pathPrefix,omitempty"`
}

// Proxy is the full middleware block, used when the document has none yet.
type Proxy struct {
	Name            string             `yaml:"name"`
	AfterMiddleware string             `yaml:"afterMiddleware"`
	Configuration   ProxyConfiguration `yaml:"configuration"`
}

// ProxyConfiguration holds the proxy settings and its backend list.
type ProxyConfiguration struct {
	IgnoreCertError bool           `yaml:"ignoreCertError"`
	Backend         []BackendEntry `yaml:"backend"`
}

// UpsertBackend adds entry to the proxy middleware's backend list, replacing
// in place an existing entry with the same path. An absent proxy block is
// created; any other document error propagates unchanged.
func UpsertBackend(doc *yamldoc.Document, entry BackendEntry) error {
	item, err := doc.FindCustomMiddleware(ProxyName)
	if err != nil {
		if yamldoc.IsNotFound(err) {
			return doc.AddCustomMiddleware(Proxy{
				Name:            ProxyName,
				AfterMiddleware: "compression",
				Configuration: ProxyConfiguration{
					IgnoreCertError: false,
					Backend:         []BackendEntry{entry},
				},
			})
		}
		return err
	}
	node, err := yamldoc.EncodeNode(entry)
	if err != nil {
		return err
	}
	config := yamldoc.EnsureMap(item, "configuration")
	list := yamldoc.EnsureSeq(config, "backend")
	for i, existing := range list.Content {
		if yamldoc.Scalar(yamldoc.MapEntry(existing, "path")) == entry.Path {
			list.Content[i] = node
			return nil
		}
	}
	list.Content = append(list.Content, node)
	return nil
}

// RemoveBackend deletes every backend entry whose url matches. It reports
// whether the document changed; a missing block or non-matching url is a
// no-op.
func RemoveBackend(doc *yamldoc.Document, url string) (bool, error) {
	item, err := doc.FindCustomMiddleware(ProxyName)
	if err != nil {
		if yamldoc.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	list := yamldoc.MapEntry(yamldoc.MapEntry(item, "configuration"), "backend")
	if list == nil {
		return false, nil
	}
	kept := list.Content[:0]
	for _, existing := range list.Content {
		if yamldoc.Scalar(yamldoc.MapEntry(existing, "url")) != url {
			kept = append(kept, existing)
		}
	}
	changed := len(kept) != len(list.Content)
	list.Content = kept
	return changed, nil
}
