package compiler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docforge/internal/content"
	"github.com/dgallion1/docforge/internal/signature"
)

// Field is one label/value line of the record's info table.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// AttachmentGroup is a labeled list of attachment URIs.
type AttachmentGroup struct {
	Label string   `json:"label" yaml:"label"`
	URIs  []string `json:"uris" yaml:"uris"`
}

// Record is everything needed to compile one document.
type Record struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	ReferenceNo  string               `json:"reference_no,omitempty"`
	Organization string               `json:"organization,omitempty"`
	LogoURI      string               `json:"logo_uri,omitempty"`
	Fields       []Field              `json:"fields,omitempty"`
	Body         json.RawMessage      `json:"content,omitempty"`
	Approvers    []signature.Approver `json:"approvers,omitempty"`
	Attachments  []AttachmentGroup    `json:"attachments,omitempty"`

	// Content takes precedence over Body when set.
	Content content.Node `json:"-"`
}

// RecordSource loads records by id. Implementations return an error
// wrapping ErrRecordNotFound for unknown ids.
type RecordSource interface {
	Record(ctx context.Context, id string) (*Record, error)
}

// tree returns the record's content tree, decoding Body if needed.
func (r *Record) tree(maxDepth int) (content.Node, error) {
	if r.Content != nil {
		return r.Content, nil
	}
	n, err := content.Decode(r.Body, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return n, nil
}
