// Package api defines the public data model of the synchronizer: the
// service descriptor handed to Generate/Remove and its annotation payloads.
package api

import (
	"github.com/go-playground/validator/v10"
)

// ServiceType discriminates how a service carries its annotations.
type ServiceType string

const (
	// ServiceTypeEDMX services ship metadata and annotations as standalone
	// XML payloads with their own manifest data-source entries.
	ServiceTypeEDMX ServiceType = "edmx"
	// ServiceTypeCDS services keep annotations inside CDS source files.
	ServiceTypeCDS ServiceType = "cds"
)

// ServiceDescriptor is the unit of work for one Generate or Remove call.
// The enhancer fills the optional fields from manifest state before any
// downstream component reads it; after that the descriptor is never mutated.
type ServiceDescriptor struct {
	// Name keys the manifest data-source entry. Defaults to "mainService".
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	// URL of the live backend system.
	URL string `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`
	// Path of the service on that system. Normalized to end with "/".
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	// Client is the backend client number, e.g. "012".
	Client string `json:"client,omitempty" yaml:"client,omitempty" mapstructure:"client"`
	// Version is the OData protocol version, "2" or "4".
	Version string `json:"version" yaml:"version" mapstructure:"version" validate:"required,oneof=2 4 2.0 4.0"`
	// Model names the sap.ui5 model the service binds to. "" is the
	// default model.
	Model string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	// Metadata is the service metadata XML. A service without metadata is
	// recorded in the manifest but gets no proxy/mock entries and no
	// localService copy.
	Metadata string `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
	// Destination is an optional SAP BTP destination name.
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty" mapstructure:"destination"`
	// PreviewSettings override how the service is proxied during preview.
	PreviewSettings *PreviewSettings `json:"previewSettings,omitempty" yaml:"previewSettings,omitempty" mapstructure:"previewSettings"`
	// Type selects the EDMX or CDS synchronization branch. Defaults to EDMX.
	Type ServiceType `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=edmx cds"`
	// EdmxAnnotations are standalone annotation documents (EDMX only).
	EdmxAnnotations []EdmxAnnotation `json:"annotations,omitempty" yaml:"annotations,omitempty" mapstructure:"annotations"`
	// CdsAnnotations are annotation fragments merged into CDS sources
	// (CDS only).
	CdsAnnotations []CdsAnnotation `json:"cdsAnnotations,omitempty" yaml:"cdsAnnotations,omitempty" mapstructure:"cdsAnnotations"`
}

// EdmxAnnotation is one standalone annotation document of an EDMX service.
type EdmxAnnotation struct {
	// TechnicalName keys the ODataAnnotation manifest entry. The enhancer
	// suffixes it with "_Annotation" on a key collision.
	TechnicalName string `json:"technicalName" yaml:"technicalName" mapstructure:"technicalName"`
	// XML is the annotation payload. When empty, a blank annotation file is
	// stamped from the bundled template instead.
	XML string `json:"xml,omitempty" yaml:"xml,omitempty" mapstructure:"xml"`
}

// CdsAnnotation is one annotation fragment of a CDS service.
type CdsAnnotation struct {
	Name   string `json:"name" yaml:"name" mapstructure:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

// PreviewSettings control the proxy routing used during local preview.
// Path and URL default to values derived from the service path and url;
// the remaining fields pass through to the backend entry unchanged.
type PreviewSettings struct {
	Path        string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	Client      string `json:"client,omitempty" yaml:"client,omitempty" mapstructure:"client"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty" mapstructure:"destination"`
	APIHub      bool   `json:"apiHub,omitempty" yaml:"apiHub,omitempty" mapstructure:"apiHub"`
	SCP         bool   `json:"scp,omitempty" yaml:"scp,omitempty" mapstructure:"scp"`
	PathPrefix  string `json:"pathPrefix,omitempty" yaml:"pathPrefix,omitempty" mapstructure:"pathPrefix"`
}

var validate = validator.New()

// Validate checks the descriptor before it enters the engine.
func (d *ServiceDescriptor) Validate() error {
	return validate.Struct(d)
}
