/*
Package dsl builds blox documents in Go instead of JSON or YAML files.

Blocks are declared with a fluent builder. A block's type setter starts it
from the registry defaults for that type, so only the props that differ need
to be spelled out. In and InColumn attach a block to a container; links are
resolved in declaration order when the document is built.

Example usage:

	b := dsl.New()

	b.Root().Prop("backdropColor", "#EEEEEE")

	b.Add("hero").Heading("Welcome aboard", "h1").In("root")
	b.Add("intro").Text("Thanks for signing up!").In("root")

	b.Add("cta-row").Columns(2).In("root")
	b.Add("docs").Button("Read the docs", "https://example.com/docs").InColumn("cta-row", 0)
	b.Add("help").Button("Get help", "https://example.com/help").InColumn("cta-row", 1)

	doc, err := b.Build()
	// ... pass doc to blox.New(blox.WithDocument(doc))
*/
package dsl
