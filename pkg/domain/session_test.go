package domain_test

import (
	"testing"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := domain.NewSession("croup", "start")
	s.ID = "01HZX"
	s.History = append(s.History, "start")
	s.CurrentNodeID = "severity"
	s.Answers["start"] = "Barky cough"

	back := s.Snapshot().Session()
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.TreeID, back.TreeID)
	assert.Equal(t, s.CurrentNodeID, back.CurrentNodeID)
	assert.Equal(t, s.History, back.History)
	assert.Equal(t, s.Answers, back.Answers)
	assert.Equal(t, s.StartedAt.UnixMilli(), back.StartedAt.UnixMilli())
}

func TestClone_IsIndependent(t *testing.T) {
	s := domain.NewSession("croup", "start")
	s.Answers["start"] = "a"

	c := s.Clone()
	c.History = append(c.History, "x")
	c.Answers["start"] = "b"

	assert.Empty(t, s.History)
	assert.Equal(t, "a", s.Answers["start"])
	assert.False(t, s.CanGoBack())
	assert.True(t, c.CanGoBack())
}

func TestParseNodeType(t *testing.T) {
	nt, err := domain.ParseNodeType("input")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeInput, nt)

	_, err = domain.ParseNodeType("calculator")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestSpanIntents(t *testing.T) {
	cite := domain.Span{Kind: domain.SpanCitation, Citations: []int{1, 3}}
	assert.Equal(t, []domain.Intent{
		{Kind: domain.IntentScrollToCitation, Citation: 1},
		{Kind: domain.IntentScrollToCitation, Citation: 3},
	}, cite.Intents())

	drug := domain.Span{Kind: domain.SpanDrugLink, Text: "dex", Target: "dexamethasone", Hint: "croup"}
	assert.Equal(t, []domain.Intent{{Kind: domain.IntentShowDrug, Target: "dexamethasone", Hint: "croup"}}, drug.Intents())
	assert.True(t, drug.IsLink())

	assert.Nil(t, domain.Span{Kind: domain.SpanBold, Text: "x"}.Intents())
}

func TestTransitionError(t *testing.T) {
	err := &domain.TransitionError{Op: "select", TreeID: "croup", NodeID: "start", Err: domain.ErrOptionOutOfRange}
	assert.ErrorIs(t, err, domain.ErrOptionOutOfRange)
	assert.False(t, domain.IsContentError(err))

	dangling := &domain.TransitionError{Op: "advance", TreeID: "croup", NodeID: "info", Target: "gone", Err: domain.ErrDanglingTarget}
	assert.True(t, domain.IsContentError(dangling))
	assert.Contains(t, dangling.Error(), "gone")
}

func TestDrugDoseFor(t *testing.T) {
	d := domain.DrugEntry{
		ID: "dexamethasone",
		Dosing: []domain.DrugDose{
			{Indication: "Croup", Regimen: "0.6 mg/kg PO once"},
			{Indication: "Asthma exacerbation", Regimen: "16 mg PO daily"},
		},
	}
	got := d.DoseFor("croup")
	require.Len(t, got, 1)
	assert.Equal(t, "0.6 mg/kg PO once", got[0].Regimen)
	assert.Len(t, d.DoseFor("unknown"), 2)
	assert.Len(t, d.DoseFor(""), 2)
}
