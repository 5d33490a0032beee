// Package store holds the live document and the editor selection.
//
// Every write goes through PatchBlock, ReplaceDocument, LoadDocument or Update.
// Readers get deep copies, so a snapshot never changes under them.
package store
