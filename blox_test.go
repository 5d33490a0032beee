package blox_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() domain.BlockID {
	n := 0
	return func() domain.BlockID {
		n++
		return domain.BlockID(fmt.Sprintf("b%d", n))
	}
}

func TestEditor_EndToEnd(t *testing.T) {
	var mu sync.Mutex
	var ops []string
	hooks := domain.LifecycleHooks{
		OnMutation: func(op domain.MutationOp, id domain.BlockID, applied bool) {
			mu.Lock()
			defer mu.Unlock()
			ops = append(ops, fmt.Sprintf("%s:%s:%t", op, id, applied))
		},
	}

	ed, err := blox.New(
		blox.WithIDGenerator(sequentialIDs()),
		blox.WithLifecycleHooks(hooks),
		blox.WithCampaign(export.CampaignMeta{Name: "Welcome"}),
	)
	require.NoError(t, err)

	var events []domain.EventType
	unsub := ed.Subscribe(func(ev domain.Event) { events = append(events, ev.Type) })
	defer unsub()

	heading, err := ed.Insert(domain.RootID, 0, -1, domain.TypeHeading)
	require.NoError(t, err)
	text, err := ed.Insert(domain.RootID, 0, -1, domain.TypeText)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockID("b1"), heading)
	assert.Equal(t, domain.BlockID("b2"), text)

	assert.Equal(t, text, ed.Selection().BlockID, "insert selects the new block")

	require.NoError(t, ed.Move(text, domain.DirectionUp))
	root, err := ed.Block(domain.RootID)
	require.NoError(t, err)
	assert.Equal(t, []any{"b2", "b1"}, root.Data.Props["childrenIds"])

	html := ed.HTML(render.ModeStatic)
	assert.Less(t, strings.Index(html, "My new text block"), strings.Index(html, "Hello friend"))

	campaign := ed.Campaign()
	assert.Equal(t, "Welcome", campaign.Name)
	require.Len(t, campaign.TemplateContent.Repeaters, 1)
	assert.Len(t, campaign.TemplateContent.Repeaters[0].Items, 2)

	require.NoError(t, ed.Delete(heading))
	assert.False(t, ed.Document().Has(heading))
	assert.ErrorIs(t, ed.Delete(domain.RootID), domain.ErrRootProtected)

	assert.Equal(t, []string{"insert:b1:true", "insert:b2:true", "move:b2:true", "delete:b1:true"}, ops)
	assert.NotEmpty(t, events)
}

func TestEditor_PatchRejected(t *testing.T) {
	ed, err := blox.New()
	require.NoError(t, err)

	err = ed.PatchBlock("x", domain.Block{
		Type: domain.TypeButton,
		Data: domain.BlockData{Props: map[string]any{"text": "Go", "url": "https://example.com", "buttonBackgroundColor": "red"}},
	})
	var se *registry.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, domain.TypeButton, se.Type)
	assert.False(t, ed.Document().Has("x"))
}

func TestNew_InvalidDocument(t *testing.T) {
	doc := domain.NewDocument()
	doc["bad"] = domain.Block{Type: "Nope"}

	_, err := blox.New(blox.WithDocument(doc))
	assert.ErrorIs(t, err, domain.ErrTypeNotFound)
}

func TestEditor_WritePage(t *testing.T) {
	doc := domain.NewDocument()
	doc[domain.RootID].Data.Props["childrenIds"] = []any{"t"}
	doc["t"] = domain.Block{Type: domain.TypeText, Data: domain.BlockData{Props: map[string]any{"text": "Hi"}}}

	ed, err := blox.New(blox.WithDocument(doc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ed.WritePage(&buf, domain.ViewportMobile))
	assert.Contains(t, buf.String(), "max-width:370px")
	assert.Contains(t, buf.String(), "Hi")
	assert.NotContains(t, buf.String(), "data-block-id", "pages use static renderers")

	tree := ed.Tree(render.ModeEditable)
	require.NotNil(t, tree)
	require.Len(t, tree.Slots, 1)
	assert.Equal(t, domain.BlockID("t"), tree.Slots[0][0].ID)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, blox.Version)
	assert.Equal(t, strings.TrimSpace(blox.Version), blox.Version)
}
