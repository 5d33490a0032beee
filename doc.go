/*
Package blox is an editing core for block-structured email documents.

A document is a flat map from block id to a typed block. Container blocks
reference their children by id, so the map describes a tree rooted at the
"root" EmailLayout block. The library keeps that map consistent while it is
edited and turns it into markup or into a template export.

# Concept

Block types are registered once with a schema, an editable renderer, a
static renderer and, for containers, a description of where child ids live
in their payload. Everything else is driven by that registry:

  - The store validates every write and notifies subscribers with a diff.
  - The mutation engine deletes, moves and inserts blocks without leaving
    dangling references.
  - The renderer walks the tree from the root, skipping blocks it cannot
    render instead of failing.
  - The exporter flattens the root's children into repeater items for an
    email campaign service.

# Usage

	ed, err := blox.New(blox.WithLogger(logging.New(slog.LevelInfo)))
	if err != nil {
		log.Fatal(err)
	}

	id, err := ed.Insert("root", 0, -1, "Text")
	if err != nil {
		log.Fatal(err)
	}
	_ = ed.PatchBlock(id, domain.Block{
		Type: "Text",
		Data: domain.BlockData{Props: map[string]any{"text": "Hello"}},
	})

	fmt.Println(ed.HTML(render.ModeStatic))

# Adapters

The same Editor is exposed over HTTP (pkg/adapters/http), to MCP clients
(pkg/adapters/mcp) and from the blox command line (cmd/blox). Changes can be
mirrored to a Redis outbox with pkg/adapters/redis.
*/
package blox
