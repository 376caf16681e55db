package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

func ids(s ...string) []component.ID {
	out := make([]component.ID, len(s))
	for i, v := range s {
		out[i] = component.ID(v)
	}
	return out
}

func TestSequence_FindByOrdinal(t *testing.T) {
	seq := NewSequence(NewNode("M", "1"), NewNode("N", ""), NewNode("M", "2"))

	pos, ok := seq.Find("M", 2)
	require.True(t, ok)
	require.Equal(t, 2, pos)
	require.Equal(t, "2", seq.At(pos).Content)

	_, ok = seq.Find("M", 3)
	require.False(t, ok)
	_, ok = seq.Find("M", 0)
	require.False(t, ok)
	require.Equal(t, 2, seq.Count("M"))
}

func TestSequence_InsertSetRemove(t *testing.T) {
	seq := NewSequence(NewNode("A", ""), NewNode("B", ""))

	require.NoError(t, seq.Insert(1, NewNode("X", "")))
	require.Equal(t, ids("A", "X", "B"), seq.IDs())
	require.NoError(t, seq.Insert(seq.Len(), NewNode("Z", "")))
	require.Equal(t, ids("A", "X", "B", "Z"), seq.IDs())
	require.Error(t, seq.Insert(9, NewNode("Q", "")))

	require.NoError(t, seq.Set(0, NewNode("A2", "c")))
	n, err := seq.Remove(1)
	require.NoError(t, err)
	require.Equal(t, component.ID("X"), n.ID)
	require.Equal(t, ids("A2", "B", "Z"), seq.IDs())
}

func TestDocument_ContainerIsImmutable(t *testing.T) {
	doc := NewDocument(component.TargetReference, NewNode("A", ""))
	doc.AddBranch("Website")

	pos := doc.Root.IndexOf(DefaultContainerID)
	require.Equal(t, 1, pos)
	require.True(t, doc.Root.At(pos).IsContainer())

	_, err := doc.Root.Remove(pos)
	require.ErrorIs(t, err, ErrContainerImmutable)
	require.ErrorIs(t, doc.Root.Set(pos, NewNode("B", "")), ErrContainerImmutable)
}

func TestDocument_CloneAndRestore(t *testing.T) {
	doc := NewDocument(component.TargetReference, NewNode("A", ""))
	web := doc.AddBranch("Website", NewNode("W", ""))
	snap := doc.Clone()

	require.NoError(t, doc.Root.Insert(0, NewNode("B", "")))
	require.NoError(t, web.Insert(0, NewNode("C", "")))
	require.Equal(t, ids("B", "A", DefaultContainerID.String()), doc.Root.IDs())

	doc.Restore(snap)
	require.Equal(t, ids("A", DefaultContainerID.String()), doc.Root.IDs())
	b, ok := doc.Container.Branch("Website")
	require.True(t, ok)
	require.Equal(t, ids("W"), b.Seq.IDs())
}

func TestDocument_Sequences(t *testing.T) {
	doc := NewDocument(component.TargetConceptual)
	require.Len(t, doc.Sequences(), 1)
	require.Equal(t, "root", doc.Sequences()[0].Key())

	doc.AddBranch("HtmlHelp1")
	doc.AddBranch("Website")
	doc.AddBranch("HtmlHelp1")
	seqs := doc.Sequences()
	require.Len(t, seqs, 2)
	require.Equal(t, "format:HtmlHelp1", seqs[0].Key())
	require.Equal(t, "Website", seqs[1].Format())
}

const sample = `<components>
  <component id="Resolve Links" mode="strict"><data key="a">x &amp; y</data></component>
  <component id="Multi-format Output Component">
    <generic />
    <helpOutput format="HtmlHelp1">
      <component id="Save Pages" />
    </helpOutput>
    <helpOutput format="Website">
      <component id="Save Pages">web</component>
      <component id="Copy Assets" />
    </helpOutput>
  </component>
  <component id="Finish" />
</components>`

func TestParse_SplitsContainerIntoBranches(t *testing.T) {
	doc, err := Parse(component.TargetReference, []byte(sample), "")
	require.NoError(t, err)

	require.Equal(t, ids("Resolve Links", DefaultContainerID.String(), "Finish"), doc.Root.IDs())
	first := doc.Root.At(0)
	require.Equal(t, `<data key="a">x &amp; y</data>`, first.Content)
	require.Len(t, first.Attrs, 1)
	require.Equal(t, "mode", first.Attrs[0].Name.Local)

	require.NotNil(t, doc.Container)
	require.Equal(t, []string{"HtmlHelp1", "Website"}, doc.Container.Formats())
	require.Contains(t, doc.Container.Generic, "<generic />")
	web, ok := doc.Container.Branch("Website")
	require.True(t, ok)
	require.Equal(t, ids("Save Pages", "Copy Assets"), web.Seq.IDs())
	require.Equal(t, "Website", web.Seq.Format())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":         `<components><component id="A"></components>`,
		"foreign element":   `<components><step id="A" /></components>`,
		"missing id":        `<components><component /></components>`,
		"duplicate branch":  `<components><component id="C"><helpOutput format="W" /><helpOutput format="W" /></component></components>`,
		"branch missing id": `<components><component id="C"><helpOutput><component id="A" /></helpOutput></component></components>`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(component.TargetReference, []byte(input), "C")
			require.Error(t, err)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	doc, err := Parse(component.TargetReference, []byte(sample), "")
	require.NoError(t, err)

	web, _ := doc.Container.Branch("Website")
	require.NoError(t, web.Seq.Insert(0, NewNode("Lint \"Pages\"", "")))

	again, err := Parse(component.TargetReference, doc.Marshal(), "")
	require.NoError(t, err)
	require.Equal(t, doc.Root.IDs(), again.Root.IDs())
	require.Equal(t, doc.Container.Formats(), again.Container.Formats())
	web2, ok := again.Container.Branch("Website")
	require.True(t, ok)
	require.Equal(t, ids("Lint \"Pages\"", "Save Pages", "Copy Assets"), web2.Seq.IDs())
	require.Equal(t, "web", web2.Seq.At(1).Content)
	require.Equal(t, doc.Root.At(0).Content, again.Root.At(0).Content)
}

func TestMarshal_KeepsAttributePrefixes(t *testing.T) {
	src := `<components xmlns:y="urn:y">` +
		`<component id="M" xml:lang="en" xmlns:x="urn:x" x:a="1" y:b="2" plain="3">body</component>` +
		`</components>`
	doc, err := Parse(component.TargetReference, []byte(src), "")
	require.NoError(t, err)

	out := string(doc.Marshal())
	require.Contains(t, out, `<component id="M" xml:lang="en" xmlns:x="urn:x" x:a="1" y:b="2" plain="3">body</component>`)

	again, err := Parse(component.TargetReference, []byte(out), "")
	require.NoError(t, err)
	require.Equal(t, out, string(again.Marshal()))
}
