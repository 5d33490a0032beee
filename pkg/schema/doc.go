// Package schema validates the loosely typed data carried by blocks.
//
// A Schema maps field names to types. Besides scalars (string, int, float,
// bool) and slices, it supports bounded numbers, closed enums, regexp
// patterns, optional fields and nested objects, which is what block style
// and props payloads need:
//
//	padding := schema.Object(schema.Schema{
//	    "top":    schema.Min(0),
//	    "bottom": schema.Min(0),
//	    "left":   schema.Min(0),
//	    "right":  schema.Min(0),
//	})
//
//	s := schema.Schema{
//	    "style": schema.Optional(schema.Object(schema.Schema{
//	        "padding": schema.Optional(padding),
//	    })),
//	}
//
//	if err := schema.Validate(s, data); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // e.Key is a dotted path such as "style.padding.top"
//	    }
//	}
//
// Fields are required unless wrapped in Optional. Keys a schema does not
// mention are accepted and left alone.
//
// A Schema marshals to JSON as a nested description of its fields, which is
// what editors use to build property panels.
//
// The package has no dependencies beyond the standard library.
package schema
