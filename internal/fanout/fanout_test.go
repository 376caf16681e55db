package fanout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
)

const config = `<generic value="1" />` +
	`<helpOutput format="HtmlHelp1"><chm /></helpOutput>` +
	`<helpOutput format="Website"><web /></helpOutput>`

type call struct {
	key  string
	text string
}

type recordingMerger struct {
	calls []call
	err   error
}

func (m *recordingMerger) MergeComponent(seq *pipeline.Sequence, _ component.ID, text string) error {
	m.calls = append(m.calls, call{key: seq.Key(), text: text})
	return m.err
}

func TestSplitByFormat(t *testing.T) {
	s, err := SplitByFormat(config)
	require.NoError(t, err)

	require.Equal(t, `<generic value="1" />`, s.Generic)
	require.True(t, s.HasFragments())
	require.Equal(t, []string{"HtmlHelp1", "Website"}, s.Formats())
	require.Equal(t, `<generic value="1" /><web />`, s.For("Website"))
	require.Equal(t, `<generic value="1" />`, s.For("MSHelpViewer"))
}

func TestSplitByFormat_DuplicateFormatsConcatenate(t *testing.T) {
	s, err := SplitByFormat(`<helpOutput format="W"><a /></helpOutput>x<helpOutput format="W"><b /></helpOutput>`)
	require.NoError(t, err)

	f, ok := s.Fragment("W")
	require.True(t, ok)
	require.Equal(t, "<a /><b />", f)
	require.Equal(t, "x", s.Generic)
	require.Equal(t, []string{"W"}, s.Formats())
}

func TestSplitByFormat_Malformed(t *testing.T) {
	_, err := SplitByFormat(`<helpOutput format="W">`)
	require.Error(t, err)
	_, err = SplitByFormat(`<helpOutput><a /></helpOutput>`)
	require.Error(t, err)
}

func TestMerge_ContainerBranchesSeeOnlyTheirFragment(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference)
	doc.AddBranch("HtmlHelp1")
	doc.AddBranch("Website")
	m := &recordingMerger{}

	notices, err := Resolver{}.Merge(m, doc, "Add Branding", config)
	require.NoError(t, err)
	require.Empty(t, notices)

	require.Equal(t, []call{
		{key: "format:HtmlHelp1", text: `<generic value="1" /><chm />`},
		{key: "format:Website", text: `<generic value="1" /><web />`},
	}, m.calls)
	require.NotContains(t, m.calls[0].text, "<web />")
	require.NotContains(t, m.calls[1].text, "<chm />")
}

func TestMerge_ContainerBranchWithoutFragmentGetsGeneric(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference)
	doc.AddBranch("Website")
	doc.AddBranch("OpenXml")
	m := &recordingMerger{}

	notices, err := Resolver{}.Merge(m, doc, "Add Branding", config)
	require.NoError(t, err)

	require.Len(t, m.calls, 2)
	require.Equal(t, `<generic value="1" />`, m.calls[1].text)
	require.Len(t, notices, 1)
	require.Equal(t, NoticeUnusedFragment, notices[0].Kind)
	require.Equal(t, "HtmlHelp1", notices[0].Format)
}

func TestMerge_SingleFormat(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference, pipeline.NewNode("M", ""))
	m := &recordingMerger{}

	notices, err := Resolver{ActiveFormat: "Website"}.Merge(m, doc, "Add Branding", config)
	require.NoError(t, err)
	require.Equal(t, []call{{key: "root", text: `<generic value="1" /><web />`}}, m.calls)
	require.Len(t, notices, 1)
	require.Equal(t, NoticeUnusedFragment, notices[0].Kind)
}

func TestMerge_SingleFormatMissingFragmentSkips(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference)
	m := &recordingMerger{}

	notices, err := Resolver{ActiveFormat: "OpenXml"}.Merge(m, doc, "Add Branding", config)
	require.NoError(t, err)
	require.Empty(t, m.calls)
	require.Equal(t, NoticeFragmentMissing, notices[0].Kind)
	require.Equal(t, "OpenXml", notices[0].Format)
	require.Len(t, notices, 3)
}

func TestMerge_NoFragmentsMergesRootOnce(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference)
	doc.AddBranch("Website")
	m := &recordingMerger{}

	notices, err := Resolver{}.Merge(m, doc, "Plain", "<plain />")
	require.NoError(t, err)
	require.Empty(t, notices)
	require.Equal(t, []call{{key: "root", text: "<plain />"}}, m.calls)
}

func TestMerge_PropagatesMergerError(t *testing.T) {
	doc := pipeline.NewDocument(component.TargetReference)
	doc.AddBranch("Website")
	boom := errors.New("boom")

	_, err := Resolver{}.Merge(&recordingMerger{err: boom}, doc, "Add Branding", config)
	require.ErrorIs(t, err, boom)
	require.True(t, strings.Contains(err.Error(), `format "Website"`))
}
