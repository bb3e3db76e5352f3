package tui

import (
	"testing"

	"insightcast/internal/core"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() core.InsightSet {
	set := core.EmptyInsightSet()
	set.Set(core.CategoryContradictions, []core.Section{{DocumentName: "a.pdf", PageNumber: 1, OriginalContent: "Dropout hurts small models."}})
	set.Set(core.CategoryConnections, []core.Section{
		{DocumentName: "b.pdf", PageNumber: 4, OriginalContent: "Ensembles average errors."},
		{DocumentName: "c.pdf", PageNumber: 9, OriginalContent: "Noise injection regularizes."},
	})
	return set
}

func press(m tea.Model, key string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return m
}

func TestNewModelFlattensInCategoryOrder(t *testing.T) {
	m := newModel("dropout", sampleSet())
	require.Len(t, m.items, 3)
	assert.Equal(t, core.CategoryContradictions, m.items[0].category)
	assert.Equal(t, "c.pdf", m.items[2].section.DocumentName)
}

func TestNavigationStaysInBounds(t *testing.T) {
	var m tea.Model = newModel("dropout", sampleSet())

	m = press(m, "k")
	assert.Equal(t, 0, m.(model).selectedIdx)

	for range 5 {
		m = press(m, "j")
	}
	assert.Equal(t, 2, m.(model).selectedIdx)

	m = press(m, "g")
	assert.Equal(t, 0, m.(model).selectedIdx)
}

func TestViewShowsSelectedContent(t *testing.T) {
	var m tea.Model = newModel("dropout", sampleSet())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = press(m, "j")

	view := m.View()
	assert.Contains(t, view, "Ensembles average errors.")
	assert.Contains(t, view, "CONNECTIONS")
}

func TestViewEmptySet(t *testing.T) {
	m := newModel("nothing", core.EmptyInsightSet())
	assert.Contains(t, m.View(), "No insights found")
}

func TestQuit(t *testing.T) {
	m, cmd := newModel("x", sampleSet()).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.(model).quitting)
	assert.NotNil(t, cmd)
}
