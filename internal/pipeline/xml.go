package pipeline

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/xmlfrag"
)

// Element and attribute names of the structural format.
const (
	componentsElement = "components"
	componentElement  = "component"
	branchElement     = "helpOutput"
	branchFormatAttr  = "format"
)

type xmlComponent struct {
	ID    string     `xml:"id,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

type xmlOther struct {
	XMLName xml.Name
}

type xmlComponents struct {
	XMLName    xml.Name       `xml:"components"`
	Attrs      []xml.Attr     `xml:",any,attr"`
	Components []xmlComponent `xml:"component"`
	Other      []xmlOther     `xml:",any"`
}

// Load reads and parses a pipeline template file.
func Load(path string, target component.Target, containerID component.ID) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s pipeline template: %w", target, err)
	}
	doc, err := Parse(target, data, containerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a <components> document. The first component whose id is
// containerID becomes the multi-format container; each of its top-level
// <helpOutput format="..."> children becomes a branch.
func Parse(target component.Target, data []byte, containerID component.ID) (*Document, error) {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	nodes, err := parseNodes(data)
	if err != nil {
		return nil, err
	}
	doc := NewDocument(target)
	doc.ContainerID = containerID
	for _, n := range nodes {
		if n.ID != containerID || doc.Container != nil {
			doc.Root.nodes = append(doc.Root.nodes, n)
			continue
		}
		if err := doc.attachContainer(n); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (d *Document) attachContainer(n Node) error {
	split, err := xmlfrag.Extract(n.Content, branchElement, branchFormatAttr)
	if err != nil {
		return fmt.Errorf("container %q: %w", n.ID, err)
	}
	n.container = true
	n.Content = ""
	d.Root.nodes = append(d.Root.nodes, n)
	d.Container = &Container{Generic: split.Rest}
	for _, frag := range split.Fragments {
		if _, dup := d.Container.Branch(frag.Key); dup {
			return fmt.Errorf("container %q declares format %q twice", n.ID, frag.Key)
		}
		branchNodes, err := parseNodes([]byte("<" + componentsElement + ">" + frag.Inner + "</" + componentsElement + ">"))
		if err != nil {
			return fmt.Errorf("container %q branch %q: %w", n.ID, frag.Key, err)
		}
		d.AddBranch(frag.Key, branchNodes...)
	}
	return nil
}

func parseNodes(data []byte) ([]Node, error) {
	var doc xmlComponents
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline: %w", err)
	}
	if len(doc.Other) > 0 {
		return nil, fmt.Errorf("unexpected <%s> element in <%s>", doc.Other[0].XMLName.Local, componentsElement)
	}
	scope := declaredPrefixes(map[string]string{xmlURL: xmlPrefix}, doc.Attrs)
	nodes := make([]Node, 0, len(doc.Components))
	for i, c := range doc.Components {
		id, err := component.ParseID(c.ID)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		nodes = append(nodes, Node{ID: id, Attrs: withPrefixes(c.Attrs, declaredPrefixes(scope, c.Attrs)), Content: c.Inner})
	}
	return nodes, nil
}

const (
	xmlnsPrefix = "xmlns"
	xmlPrefix   = "xml"
	xmlURL      = "http://www.w3.org/XML/1998/namespace"
)

// declaredPrefixes returns scope extended with the xmlns:prefix declarations
// in attrs, keyed by namespace URL.
func declaredPrefixes(scope map[string]string, attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(scope)+len(attrs))
	for url, prefix := range scope {
		out[url] = prefix
	}
	for _, a := range attrs {
		if a.Name.Space == xmlnsPrefix && a.Value != "" {
			out[a.Value] = a.Name.Local
		}
	}
	return out
}

// withPrefixes maps the namespace URLs the decoder puts into attribute names
// back to the prefixes written in the source.
func withPrefixes(attrs []xml.Attr, scope map[string]string) []xml.Attr {
	if len(attrs) == 0 {
		return attrs
	}
	out := make([]xml.Attr, len(attrs))
	for i, a := range attrs {
		if prefix, ok := scope[a.Name.Space]; ok && a.Name.Space != xmlnsPrefix {
			a.Name.Space = prefix
		}
		out[i] = a
	}
	return out
}

// Marshal serializes the document back to the structural format.
func (d *Document) Marshal() []byte {
	var sb strings.Builder
	sb.WriteString("<" + componentsElement + ">\n")
	for _, n := range d.Root.nodes {
		if n.container && d.Container != nil {
			d.writeContainer(&sb, n, "  ")
			continue
		}
		writeNode(&sb, n, "  ")
	}
	sb.WriteString("</" + componentsElement + ">\n")
	return []byte(sb.String())
}

func (d *Document) writeContainer(sb *strings.Builder, n Node, indent string) {
	writeOpen(sb, n, indent)
	sb.WriteString("\n")
	if generic := strings.TrimSpace(d.Container.Generic); generic != "" {
		sb.WriteString(indent + "  " + generic + "\n")
	}
	for _, b := range d.Container.branches {
		sb.WriteString(indent + "  <" + branchElement + " " + branchFormatAttr + "=\"" + escape(b.Format) + "\">\n")
		for _, child := range b.Seq.nodes {
			writeNode(sb, child, indent+"    ")
		}
		sb.WriteString(indent + "  </" + branchElement + ">\n")
	}
	sb.WriteString(indent + "</" + componentElement + ">\n")
}

func writeNode(sb *strings.Builder, n Node, indent string) {
	writeOpen(sb, n, indent)
	sb.WriteString(n.Content)
	sb.WriteString("</" + componentElement + ">\n")
}

func writeOpen(sb *strings.Builder, n Node, indent string) {
	sb.WriteString(indent + "<" + componentElement + " id=\"" + escape(string(n.ID)) + "\"")
	for _, a := range n.Attrs {
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + name
		}
		sb.WriteString(" " + name + "=\"" + escape(a.Value) + "\"")
	}
	sb.WriteString(">")
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
