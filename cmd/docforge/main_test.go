package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRecord = `id: cr-7
title: Change Request
organization: Acme
fields:
  - label: Owner
    value: Dana
approvers:
  - name: Ana
    category: Engineering
content:
  type: doc
  content:
    - type: paragraph
      content:
        - type: text
          text: inline body
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"docforge", "-r", "rec.yaml", "--host-org", "Acme", "--required-category", "Legal,QA"})
	require.NoError(t, err)
	assert.Equal(t, "rec.yaml", opts.record)
	assert.Equal(t, "Acme", opts.hostOrg)
	assert.Equal(t, []string{"Legal", "QA"}, opts.required)
	assert.Equal(t, "Approvers", opts.category)

	_, err = parseFlags([]string{"docforge"})
	assert.Error(t, err)
}

func TestReadRecord_YAML(t *testing.T) {
	dir := t.TempDir()
	rec, err := readRecord(writeFile(t, dir, "rec.yaml", yamlRecord))
	require.NoError(t, err)

	assert.Equal(t, "cr-7", rec.ID)
	assert.Equal(t, "Acme", rec.Organization)
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "Dana", rec.Fields[0].Value)
	require.Len(t, rec.Approvers, 1)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"inline body"}]}]}`, string(rec.Body))
}

func TestReadRecord_JSONAndErrors(t *testing.T) {
	dir := t.TempDir()
	rec, err := readRecord(writeFile(t, dir, "rec.json", `{"id":"j","title":"From JSON"}`))
	require.NoError(t, err)
	assert.Equal(t, "From JSON", rec.Title)

	_, err = readRecord(writeFile(t, dir, "empty.yaml", ""))
	assert.Error(t, err)

	_, err = readRecord(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_WritesDocx(t *testing.T) {
	dir := t.TempDir()
	recPath := writeFile(t, dir, "rec.yaml", yamlRecord)
	out := filepath.Join(dir, "out.docx")

	path, err := run(context.Background(), options{record: recPath, out: out, category: "Approvers"}, discard())
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Document.Body.Items)
}

func TestRun_ImportedContentAndDerivedName(t *testing.T) {
	dir := t.TempDir()
	recPath := writeFile(t, dir, "rec.yaml", "id: x\norganization: Acme\n")
	mdPath := writeFile(t, dir, "body.md", "# Release Notes\n\n- one\n- two\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path, err := run(context.Background(), options{record: recPath, content: mdPath}, discard())
	require.NoError(t, err)
	assert.Equal(t, "Release Notes_Acme.docx", path)
	assert.FileExists(t, filepath.Join(dir, path))
}

func TestRun_UnsupportedContent(t *testing.T) {
	dir := t.TempDir()
	recPath := writeFile(t, dir, "rec.yaml", "id: x\n")
	other := writeFile(t, dir, "body.rtf", "{}")

	_, err := run(context.Background(), options{record: recPath, content: other}, discard())
	assert.Error(t, err)
}
