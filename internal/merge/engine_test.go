package merge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
	"git.home.luguber.info/inful/pipemerge/internal/resolve"
)

func rule(action component.Action, anchor component.ID, instance int) component.PlacementRule {
	return component.PlacementRule{Action: action, Anchor: anchor, Instance: instance}
}

func ref(id component.ID, r component.PlacementRule, deps ...component.ID) component.Descriptor {
	return component.Descriptor{ID: id, Reference: r, Dependencies: deps}
}

func newRegistry(t *testing.T, descs ...component.Descriptor) *component.Registry {
	t.Helper()
	reg, err := component.NewRegistry(descs...)
	require.NoError(t, err)
	return reg
}

func baseDoc(ids ...component.ID) *pipeline.Document {
	nodes := make([]pipeline.Node, len(ids))
	for i, id := range ids {
		nodes[i] = pipeline.NewNode(id, "")
	}
	return pipeline.NewDocument(component.TargetReference, nodes...)
}

func req(id component.ID, text string) Request {
	return Request{ID: id, Configuration: text, Enabled: true}
}

func requireIDs(t *testing.T, want []component.ID, seq *pipeline.Sequence) {
	t.Helper()
	if diff := cmp.Diff(want, seq.IDs()); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_PlacementActions(t *testing.T) {
	reg := newRegistry(t,
		ref("A", rule(component.ActionStart, "", 1)),
		ref("B", rule(component.ActionEnd, "", 1)),
		ref("C", rule(component.ActionBefore, "M", 1)),
	)
	doc := baseDoc("M", "N")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("A", "a"), req("B", "b"), req("C", "c")}))
	requireIDs(t, []component.ID{"A", "C", "M", "N", "B"}, doc.Root)
	require.Empty(t, e.Warnings())
}

func TestMerge_StartAndEndIndependentOfOrder(t *testing.T) {
	reg := newRegistry(t,
		ref("A", rule(component.ActionStart, "", 1)),
		ref("B", rule(component.ActionEnd, "", 1)),
		ref("C", rule(component.ActionAfter, "N", 1)),
	)
	doc := baseDoc("M", "N")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("C", ""), req("B", ""), req("A", "")}))
	requireIDs(t, []component.ID{"A", "M", "N", "C", "B"}, doc.Root)
}

func TestMerge_ReplaceAdjustsPendingInstances(t *testing.T) {
	reg := newRegistry(t,
		ref("X", rule(component.ActionReplace, "M", 2)),
		ref("Y", rule(component.ActionBefore, "M", 2)),
	)
	doc := baseDoc("M", "M", "N")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("X", "x")}))
	requireIDs(t, []component.ID{"M", "X", "N"}, doc.Root)
	require.Equal(t, 1, e.Instances(doc.Root)["Y"])

	require.NoError(t, e.Merge(context.Background(), []Request{req("Y", "y")}))
	requireIDs(t, []component.ID{"Y", "M", "X", "N"}, doc.Root)
}

func TestMerge_ReplaceMissingInstanceTopLevelWarns(t *testing.T) {
	reg := newRegistry(t, ref("R", rule(component.ActionReplace, "M", 2)))
	doc := baseDoc("M", "N")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("R", "")}))
	requireIDs(t, []component.ID{"M", "N"}, doc.Root)

	warnings := e.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, WarningAnchorMissing, warnings[0].Kind)
	require.Equal(t, component.ID("M"), warnings[0].Anchor)
	require.Equal(t, component.TargetReference, warnings[0].Target)
}

func TestMerge_ReplaceMissingInstanceAsDependencyFails(t *testing.T) {
	reg := newRegistry(t,
		ref("R", rule(component.ActionReplace, "M", 2)),
		ref("D", rule(component.ActionStart, "", 1), "R"),
	)
	doc := baseDoc("M", "N")
	e := New(reg, component.TargetReference, doc)

	err := e.Merge(context.Background(), []Request{req("D", "")})
	require.ErrorIs(t, err, ErrPlacementAnchorMissing)

	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, component.ID("D"), merr.Component)
	require.Equal(t, component.ID("R"), merr.Dependency)
	requireIDs(t, []component.ID{"M", "N"}, doc.Root)
}

func TestMerge_FailedRequestIsRolledBack(t *testing.T) {
	reg := newRegistry(t,
		ref("E", rule(component.ActionStart, "", 1)),
		ref("F", rule(component.ActionReplace, "Missing", 1)),
		ref("D", rule(component.ActionEnd, "", 1), "E", "F"),
		ref("Ok", rule(component.ActionEnd, "", 1)),
	)
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	err := e.Merge(context.Background(), []Request{req("Ok", ""), req("D", "")})
	require.Error(t, err)
	requireIDs(t, []component.ID{"M", "Ok"}, e.Document().Root)
}

func TestMerge_DependenciesUseDefaultConfiguration(t *testing.T) {
	reg := newRegistry(t,
		component.Descriptor{
			ID:                   "Dep",
			DefaultConfiguration: "<dep target=\"{@Target}\" />",
			Reference:            rule(component.ActionBefore, "M", 1),
		},
		ref("Main", rule(component.ActionAfter, "M", 1), "Dep"),
	)
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("Main", "<main />")}))
	requireIDs(t, []component.ID{"Dep", "M", "Main"}, doc.Root)
	require.Equal(t, `<dep target="reference" />`, doc.Root.At(0).Content)
	require.Equal(t, "<main />", doc.Root.At(2).Content)
}

func TestMerge_PresentDependencyIsNotDuplicated(t *testing.T) {
	reg := newRegistry(t,
		ref("Dep", rule(component.ActionStart, "", 1)),
		ref("A", rule(component.ActionEnd, "", 1), "Dep"),
		ref("B", rule(component.ActionEnd, "", 1), "Dep"),
	)
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("A", ""), req("B", "")}))
	requireIDs(t, []component.ID{"Dep", "M", "A", "B"}, doc.Root)
}

func TestMerge_ExistingIDIsOverriddenInPlace(t *testing.T) {
	reg := newRegistry(t, ref("M", rule(component.ActionStart, "", 1)))
	doc, err := pipeline.Parse(component.TargetReference,
		[]byte(`<components><component id="N" /><component id="M" mode="x">old</component></components>`), "")
	require.NoError(t, err)
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("M", "new")}))
	requireIDs(t, []component.ID{"N", "M"}, doc.Root)
	node := doc.Root.At(1)
	require.Equal(t, "new", node.Content)
	require.Len(t, node.Attrs, 1)
}

func TestMerge_ActionNoneWarns(t *testing.T) {
	reg := newRegistry(t, component.Descriptor{
		ID:         "Inert",
		Conceptual: rule(component.ActionStart, "", 1),
	})
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{req("Inert", "")}))
	requireIDs(t, []component.ID{"M"}, doc.Root)
	require.Equal(t, WarningPlacementNone, e.Warnings()[0].Kind)
}

func TestMerge_DisabledRequestHasNoEffect(t *testing.T) {
	reg := newRegistry(t, ref("A", rule(component.ActionStart, "", 1)))
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	require.NoError(t, e.Merge(context.Background(), []Request{{ID: "A", Enabled: false}, {ID: "Unknown", Enabled: false}}))
	requireIDs(t, []component.ID{"M"}, doc.Root)
	require.Empty(t, e.Warnings())
}

func TestMerge_UnknownComponentIsFatal(t *testing.T) {
	reg := newRegistry(t, ref("A", rule(component.ActionStart, "", 1)))
	e := New(reg, component.TargetReference, baseDoc("M"))

	err := e.Merge(context.Background(), []Request{req("Nope", "")})
	require.ErrorIs(t, err, resolve.ErrUnknownComponent)
}

func TestMerge_CycleIsFatal(t *testing.T) {
	reg := newRegistry(t,
		ref("A", rule(component.ActionStart, "", 1), "B"),
		ref("B", rule(component.ActionStart, "", 1), "A"),
	)
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	err := e.Merge(context.Background(), []Request{req("A", "")})
	require.ErrorIs(t, err, resolve.ErrCircularDependency)
	requireIDs(t, []component.ID{"M"}, doc.Root)
}

func TestMerge_CycleThroughPresentNodeIsFatal(t *testing.T) {
	reg := newRegistry(t,
		ref("A", rule(component.ActionStart, "", 1), "B"),
		ref("B", rule(component.ActionStart, "", 1), "A"),
	)
	doc := baseDoc("B")
	e := New(reg, component.TargetReference, doc)

	err := e.Merge(context.Background(), []Request{req("A", "")})
	require.ErrorIs(t, err, resolve.ErrCircularDependency)
	requireIDs(t, []component.ID{"B"}, doc.Root)
}

func TestMerge_CancelledBetweenRequests(t *testing.T) {
	reg := newRegistry(t, ref("A", rule(component.ActionStart, "", 1)))
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Merge(ctx, []Request{req("A", "")})
	require.ErrorIs(t, err, context.Canceled)
	requireIDs(t, []component.ID{"M"}, doc.Root)
}

// cancelAfter reports cancellation once Err has been consulted n times.
type cancelAfter struct {
	context.Context
	n int
}

func (c *cancelAfter) Err() error {
	if c.n == 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestMerge_CancelledAfterFirstRequestKeepsIt(t *testing.T) {
	reg := newRegistry(t,
		ref("A", rule(component.ActionStart, "", 1)),
		ref("B", rule(component.ActionEnd, "", 1)),
	)
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc)

	ctx := &cancelAfter{Context: context.Background(), n: 1}
	err := e.Merge(ctx, []Request{req("A", "<a />"), req("B", "<b />")})
	require.ErrorIs(t, err, context.Canceled)
	requireIDs(t, []component.ID{"A", "M"}, doc.Root)
	require.Equal(t, "<a />", doc.Root.At(0).Content)
}

func TestMerge_UnresolvableFieldsAreFatal(t *testing.T) {
	reg := newRegistry(t, ref("A", rule(component.ActionStart, "", 1)))
	f := fields.NewFields(map[string]string{"Loop": "{@Loop}"})
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc, WithFields(f))

	err := e.Merge(context.Background(), []Request{req("A", "{@Loop}")})
	require.ErrorIs(t, err, fields.ErrUnresolvable)
	requireIDs(t, []component.ID{"M"}, doc.Root)
}

func TestMerge_FieldsAreSubstituted(t *testing.T) {
	reg := newRegistry(t, ref("A", rule(component.ActionStart, "", 1)))
	f := fields.NewFields(map[string]string{"Outer": "{@inner}", "Inner": "42"})
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc, WithFields(f), WithHelpFormat("Website"))

	require.NoError(t, e.Merge(context.Background(), []Request{req("A", "{@outer}/{@helpformat:upper}")}))
	require.Equal(t, "42/WEBSITE", doc.Root.At(0).Content)
}

func TestMerge_FanOutAcrossBranches(t *testing.T) {
	reg := newRegistry(t,
		ref("Dep", rule(component.ActionStart, "", 1)),
		ref("Branding", rule(component.ActionBefore, "Save Pages", 1), "Dep"),
	)
	doc := baseDoc("M")
	chm := doc.AddBranch("HtmlHelp1", pipeline.NewNode("Save Pages", ""))
	web := doc.AddBranch("Website", pipeline.NewNode("Save Pages", ""))
	e := New(reg, component.TargetReference, doc)

	text := `<generic />` +
		`<helpOutput format="HtmlHelp1"><chm /></helpOutput>` +
		`<helpOutput format="Website"><web /></helpOutput>`
	require.NoError(t, e.Merge(context.Background(), []Request{req("Branding", text)}))

	requireIDs(t, []component.ID{"Dep", "Branding", "Save Pages"}, chm)
	requireIDs(t, []component.ID{"Dep", "Branding", "Save Pages"}, web)
	require.Equal(t, "<generic /><chm />", chm.At(1).Content)
	require.Equal(t, "<generic /><web />", web.At(1).Content)
	requireIDs(t, []component.ID{"M", pipeline.DefaultContainerID}, doc.Root)
}

func TestMerge_SingleFormatMissingFragmentWarns(t *testing.T) {
	reg := newRegistry(t, ref("Branding", rule(component.ActionEnd, "", 1)))
	doc := baseDoc("M")
	e := New(reg, component.TargetReference, doc, WithHelpFormat("OpenXml"))

	text := `<generic /><helpOutput format="Website"><web /></helpOutput>`
	require.NoError(t, e.Merge(context.Background(), []Request{req("Branding", text)}))
	requireIDs(t, []component.ID{"M"}, doc.Root)

	kinds := []WarningKind{}
	for _, w := range e.Warnings() {
		kinds = append(kinds, w.Kind)
	}
	require.Equal(t, []WarningKind{WarningFormatFragmentMissing, WarningUnusedFormatFragment}, kinds)
}

func TestMerge_ContainerCannotBeReplaced(t *testing.T) {
	reg := newRegistry(t, ref("R", rule(component.ActionReplace, pipeline.DefaultContainerID, 1)))
	doc := baseDoc("M")
	doc.AddBranch("Website")
	e := New(reg, component.TargetReference, doc)

	err := e.Merge(context.Background(), []Request{req("R", "")})
	require.True(t, errors.Is(err, pipeline.ErrContainerImmutable))
}

func TestMerge_InstanceStateIsPerSequence(t *testing.T) {
	reg := newRegistry(t,
		ref("X", rule(component.ActionReplace, "M", 1)),
		ref("Y", rule(component.ActionAfter, "M", 2)),
	)
	doc := baseDoc()
	chm := doc.AddBranch("HtmlHelp1", pipeline.NewNode("M", ""), pipeline.NewNode("M", ""))
	web := doc.AddBranch("Website", pipeline.NewNode("M", ""), pipeline.NewNode("M", ""))
	e := New(reg, component.TargetReference, doc)

	x := `<helpOutput format="HtmlHelp1"><x /></helpOutput>`
	require.NoError(t, e.Merge(context.Background(), []Request{req("X", x)}))

	require.Equal(t, 1, e.Instances(chm)["Y"])
	require.Equal(t, 1, e.Instances(web)["Y"])
	requireIDs(t, []component.ID{"X", "M"}, chm)
	requireIDs(t, []component.ID{"X", "M"}, web)
}
