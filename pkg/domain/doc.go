/*
Package domain contains the core models of the email block editor.

It defines the document tree, the editor selection state and the events
and hooks the other packages report through. This package is kept pure and
free of external dependencies like I/O or persistence.

# Key Entities

  - Block: a typed node carrying a loosely typed style and props payload.
  - Document: the flat id-to-block dictionary. The tree lives in child id
    lists inside container payloads, starting at RootID.
  - Selection: the selected block, the active view and the preview viewport.
  - DocumentDiff: the delta between two documents, sent to live clients.
*/
package domain
