package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"text": String(), "level": Optional(Enum("h1", "h2", "h3"))}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Fields not wrapped in Optional are required. Keys the schema does not
// mention are accepted untouched. Failures inside nested objects are
// reported with dotted keys ("props.padding.top").
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	errs := collect("", schema, data, nil)
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error

	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "not defined in schema",
			})
			continue
		}
		errs = checkField("", fieldName, fieldType, data, errs)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func collect(prefix string, schema Schema, data map[string]any, errs []error) []error {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		errs = checkField(prefix, key, schema[key], data, errs)
	}
	return errs
}

func checkField(prefix, key string, fieldType Type, data map[string]any, errs []error) []error {
	path := key
	if prefix != "" {
		path = prefix + "." + key
	}

	value, exists := data[key]
	if opt, ok := fieldType.(*OptionalType); ok {
		if !exists || value == nil {
			return errs
		}
		fieldType = opt.Elem()
	} else if !exists || value == nil {
		return append(errs, &ValidationError{Key: path, Reason: "required"})
	}

	if obj, ok := fieldType.(*ObjectType); ok {
		if m, isMap := asMap(value); isMap {
			return collect(path, obj.Fields(), m, errs)
		}
	}

	if err := fieldType.Validate(value); err != nil {
		errs = append(errs, &ValidationError{
			Key:    path,
			Reason: err.Error(),
			Value:  value,
		})
	}
	return errs
}
