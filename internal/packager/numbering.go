package packager

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docforge/internal/numbering"
	"github.com/fumiama/go-docx"
)

const (
	numberingPart        = "word/numbering.xml"
	numberingRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	numberingContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"

	relsPart         = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
)

type xNumbering struct {
	XMLName  xml.Name `xml:"w:numbering"`
	XMLW     string   `xml:"xmlns:w,attr"`
	Abstract []xAbstractNum
	Nums     []xNum
}

type xAbstractNum struct {
	XMLName    xml.Name `xml:"w:abstractNum"`
	ID         int      `xml:"w:abstractNumId,attr"`
	MultiLevel xVal     `xml:"w:multiLevelType"`
	Levels     []xLevel
}

type xLevel struct {
	XMLName xml.Name `xml:"w:lvl"`
	Ilvl    int      `xml:"w:ilvl,attr"`
	Start   xVal     `xml:"w:start"`
	NumFmt  xVal     `xml:"w:numFmt"`
	LvlText xVal     `xml:"w:lvlText"`
	LvlJc   xVal     `xml:"w:lvlJc"`
	PPr     xLevelPPr
	RPr     *xLevelRPr
}

type xLevelPPr struct {
	XMLName xml.Name `xml:"w:pPr"`
	Ind     xIndent  `xml:"w:ind"`
}

type xIndent struct {
	Left    int `xml:"w:left,attr"`
	Hanging int `xml:"w:hanging,attr"`
}

type xLevelRPr struct {
	XMLName xml.Name `xml:"w:rPr"`
	Fonts   xFonts   `xml:"w:rFonts"`
}

type xFonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	Hint  string `xml:"w:hint,attr"`
}

type xNum struct {
	XMLName  xml.Name `xml:"w:num"`
	ID       int      `xml:"w:numId,attr"`
	Abstract xVal     `xml:"w:abstractNumId"`
}

type xVal struct {
	Val string `xml:"w:val,attr"`
}

// numberingXML renders the definitions. Every definition gets its own
// abstract numbering so each list restarts at 1.
func numberingXML(defs []numbering.Definition) ([]byte, error) {
	doc := xNumbering{XMLW: docx.XMLNS_W}
	for _, d := range defs {
		an := xAbstractNum{ID: d.ID, MultiLevel: xVal{Val: "hybridMultilevel"}}
		for _, l := range d.Levels {
			lvl := xLevel{
				Ilvl:    l.Index,
				Start:   xVal{Val: strconv.Itoa(max(l.Start, 1))},
				NumFmt:  xVal{Val: l.Format},
				LvlText: xVal{Val: l.Text},
				LvlJc:   xVal{Val: "left"},
				PPr:     xLevelPPr{Ind: xIndent{Left: l.Indent, Hanging: l.Hanging}},
			}
			if l.Font != "" {
				lvl.RPr = &xLevelRPr{Fonts: xFonts{ASCII: l.Font, HAnsi: l.Font, Hint: "default"}}
			}
			an.Levels = append(an.Levels, lvl)
		}
		doc.Abstract = append(doc.Abstract, an)
		doc.Nums = append(doc.Nums, xNum{ID: d.ID, Abstract: xVal{Val: strconv.Itoa(d.ID)}})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addNumbering copies the archive in src to w, adding the numbering part
// and registering it with the document relationships and content types.
func addNumbering(w io.Writer, src []byte, defs []numbering.Definition) error {
	zr, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	var part []byte
	if len(defs) > 0 {
		if part, err = numberingXML(defs); err != nil {
			return fmt.Errorf("marshal numbering: %w", err)
		}
	}

	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return err
		}
		switch f.Name {
		case relsPart:
			if part != nil {
				if data, err = addRelationship(data); err != nil {
					return err
				}
			}
		case contentTypesPart:
			data = fixContentTypes(data, part != nil)
		case numberingPart:
			if part != nil {
				continue
			}
		}
		if err := writeEntry(zw, f.Name, data); err != nil {
			return err
		}
	}
	if part != nil {
		if err := writeEntry(zw, numberingPart, part); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// addRelationship links the numbering part under the next free rId.
// Readers such as go-docx require ids of the form rId<n>.
func addRelationship(rels []byte) ([]byte, error) {
	s := string(rels)
	if strings.Contains(s, numberingRelType) {
		return rels, nil
	}
	var parsed docx.Relationships
	if err := xml.Unmarshal(rels, &parsed); err != nil {
		return nil, fmt.Errorf("parse relationships: %w", err)
	}
	next := 1
	for _, r := range parsed.Relationship {
		n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId"))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	rel := `<Relationship Id="rId` + strconv.Itoa(next) + `" Type="` + numberingRelType + `" Target="numbering.xml"></Relationship>`
	return []byte(strings.Replace(s, "</Relationships>", rel+"</Relationships>", 1)), nil
}

// extraDefaults are image types go-docx can embed but its template does
// not declare. The order is fixed so output bytes are reproducible.
var extraDefaults = []struct{ ext, contentType string }{
	{"gif", "image/gif"},
	{"jpg", "image/jpeg"},
}

// fixContentTypes registers the numbering part and image extensions the
// template does not declare.
func fixContentTypes(types []byte, withNumbering bool) []byte {
	s := string(types)
	var add strings.Builder
	for _, d := range extraDefaults {
		if !strings.Contains(s, `Extension="`+d.ext+`"`) {
			add.WriteString(`<Default Extension="` + d.ext + `" ContentType="` + d.contentType + `"/>`)
		}
	}
	if withNumbering && !strings.Contains(s, "/"+numberingPart) {
		add.WriteString(`<Override PartName="/` + numberingPart + `" ContentType="` + numberingContentType + `"/>`)
	}
	if add.Len() == 0 {
		return types
	}
	return []byte(strings.Replace(s, "</Types>", add.String()+"</Types>", 1))
}
