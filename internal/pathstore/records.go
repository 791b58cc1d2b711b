package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docforge/internal/compiler"
)

// DefaultPrefix is the key prefix records are stored under.
const DefaultPrefix = "docforge/records"

var ErrInvalidID = errors.New("invalid record id")

// Records is a compiler.RecordSource backed by pathstore.
type Records struct {
	client *Client
	prefix string
}

func NewRecords(client *Client, prefix string) *Records {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Records{client: client, prefix: strings.Trim(prefix, "/")}
}

// Summary is the listing view of a stored record.
type Summary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
}

func (r *Records) key(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return r.prefix + "/" + id, nil
}

// ValidID reports whether id can be used as a single key segment.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 128 {
		return false
	}
	return !strings.ContainsAny(id, "/\\?#*% ")
}

// Record loads the record stored under id.
func (r *Records) Record(ctx context.Context, id string) (*compiler.Record, error) {
	key, err := r.key(id)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, compiler.ErrRecordNotFound)
	}
	node, err := r.client.GetNode(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}
	if node == nil || len(node.Value) == 0 || string(node.Value) == "null" {
		return nil, fmt.Errorf("record %s: %w", id, compiler.ErrRecordNotFound)
	}

	var rec compiler.Record
	if err := json.Unmarshal(node.Value, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec.ID = id
	return &rec, nil
}

// Put stores rec under its id, replacing any previous version.
func (r *Records) Put(ctx context.Context, rec *compiler.Record) error {
	key, err := r.key(rec.ID)
	if err != nil {
		return err
	}
	return r.client.PutNode(ctx, key, NodeRequest{
		Value:     rec,
		MergeMode: "replace",
		Source:    "docforge:" + rec.ID,
	})
}

// Delete removes the record stored under id.
func (r *Records) Delete(ctx context.Context, id string) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}
	return r.client.DeleteNode(ctx, key, false)
}

// List returns up to limit stored records.
func (r *Records) List(ctx context.Context, limit int) ([]Summary, error) {
	children, err := r.client.ListChildren(ctx, r.prefix, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(children))
	for _, child := range children {
		var s Summary
		if err := json.Unmarshal(child.Value, &s); err != nil {
			continue
		}
		if s.ID == "" {
			s.ID = lastSegment(child.Key)
		}
		out = append(out, s)
	}
	return out, nil
}

// lastSegment returns the final key segment. Keys come back with either
// slash or dot separators.
func lastSegment(key string) string {
	if i := strings.LastIndexAny(key, "/."); i >= 0 {
		return key[i+1:]
	}
	return key
}
