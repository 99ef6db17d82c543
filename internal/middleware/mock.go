package middleware

import (
	"github.com/ui5-tools/odatasync/internal/yamldoc"
)

// MockService is one intercepted service in the mock-server middleware.
type MockService struct {
	ServiceName string `yaml:"serviceName"`
	ServicePath string `yaml:"servicePath"`
}

// MockAnnotation is one intercepted annotation path.
type MockAnnotation struct {
	URLPath string `yaml:"urlPath"`
}

// Mock is the full middleware block, used when the document has none yet.
type Mock struct {
	Name             string            `yaml:"name"`
	BeforeMiddleware string            `yaml:"beforeMiddleware"`
	Configuration    MockConfiguration `yaml:"configuration"`
}

// MockConfiguration holds the mock-server mount point and its service and
// annotation lists.
type MockConfiguration struct {
	MountPath   string           `yaml:"mountPath"`
	Services    []MockService    `yaml:"services"`
	Annotations []MockAnnotation `yaml:"annotations,omitempty"`
}

// UpsertMock ensures the mock-server block holds svc (keyed by serviceName)
// and one annotation entry per urlPath (keyed by urlPath). An absent block
// is created; any other document error propagates unchanged.
func UpsertMock(doc *yamldoc.Document, svc MockService, annotations []MockAnnotation) error {
	item, err := doc.FindCustomMiddleware(MockName)
	if err != nil {
		if yamldoc.IsNotFound(err) {
			return doc.AddCustomMiddleware(Mock{
				Name:             MockName,
				BeforeMiddleware: "csp",
				Configuration: MockConfiguration{
					MountPath:   "/",
					Services:    []MockService{svc},
					Annotations: annotations,
				},
			})
		}
		return err
	}
	config := yamldoc.EnsureMap(item, "configuration")

	svcNode, err := yamldoc.EncodeNode(svc)
	if err != nil {
		return err
	}
	services := yamldoc.EnsureSeq(config, "services")
	replaced := false
	for i, existing := range services.Content {
		if yamldoc.Scalar(yamldoc.MapEntry(existing, "serviceName")) == svc.ServiceName {
			services.Content[i] = svcNode
			replaced = true
			break
		}
	}
	if !replaced {
		services.Content = append(services.Content, svcNode)
	}

	if len(annotations) == 0 {
		return nil
	}
	list := yamldoc.EnsureSeq(config, "annotations")
	for _, ann := range annotations {
		node, err := yamldoc.EncodeNode(ann)
		if err != nil {
			return err
		}
		found := false
		for i, existing := range list.Content {
			if yamldoc.Scalar(yamldoc.MapEntry(existing, "urlPath")) == ann.URLPath {
				list.Content[i] = node
				found = true
				break
			}
		}
		if !found {
			list.Content = append(list.Content, node)
		}
	}
	return nil
}

// RemoveMock deletes service entries matching servicePath and annotation
// entries matching any of the urlPaths. It reports whether the document
// changed; absent blocks and non-matching entries are no-ops.
func RemoveMock(doc *yamldoc.Document, servicePath string, urlPaths []string) (bool, error) {
	item, err := doc.FindCustomMiddleware(MockName)
	if err != nil {
		if yamldoc.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	config := yamldoc.MapEntry(item, "configuration")
	changed := false

	if services := yamldoc.MapEntry(config, "services"); services != nil {
		kept := services.Content[:0]
		for _, existing := range services.Content {
			if yamldoc.Scalar(yamldoc.MapEntry(existing, "servicePath")) != servicePath {
				kept = append(kept, existing)
			}
		}
		changed = changed || len(kept) != len(services.Content)
		services.Content = kept
	}

	if list := yamldoc.MapEntry(config, "annotations"); list != nil {
		drop := map[string]bool{}
		for _, p := range urlPaths {
			drop[p] = true
		}
		kept := list.Content[:0]
		for _, existing := range list.Content {
			if !drop[yamldoc.Scalar(yamldoc.MapEntry(existing, "urlPath"))] {
				kept = append(kept, existing)
			}
		}
		changed = changed || len(kept) != len(list.Content)
		list.Content = kept
	}
	return changed, nil
}
