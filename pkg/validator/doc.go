// Package validator builds declarative request validation out of small Rule
// values.
//
// Each rule pairs a Check func with the ValidationError reported when the
// check fails. Apply evaluates all rules and aggregates failures into a
// ValidationErrors slice that implements error:
//
//	err := validator.Apply(
//	    validator.NotEmpty("contents", req.Contents),
//	    validator.InRange("priority", req.Priority, 0, 255),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    details := verrs.Map()
//	}
//
// Rules capture their inputs at construction and hold no shared state, so
// they are safe to build and apply from concurrent handlers.
package validator
