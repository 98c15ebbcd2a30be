// Package validation checks flat string maps against Laravel-style rule
// strings. The configuration loader uses it to reject bad environment values
// before anything is built.
//
//	v := validation.Make(map[string]string{
//	    "APP_PORT": os.Getenv("APP_PORT"),
//	}, validation.Rules{
//	    "APP_PORT": "required|integer|gte:1|lte:65535",
//	})
//
//	if err := v.Err(); err != nil {
//	    return err
//	}
//
// # Available Rules
//
//   - required — value must be non-blank
//   - nullable — an empty value skips the remaining rules
//   - integer  — parses as a base-10 int
//   - boolean  — parses with strconv.ParseBool
//   - in:a,b   — one of the listed values
//   - gte:n    — numeric and >= n
//   - lte:n    — numeric and <= n
//
// Rules run left to right and stop at the first failure for a field.
package validation
