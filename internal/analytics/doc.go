// Package analytics is the request-translation layer between the tool surface
// and the Google Analytics APIs.
//
// It canonicalizes property references, materializes simplified snake_case
// dictionary arguments into the typed request objects of the Data API
// (v1beta), the funnel-capable Data API (v1alpha), and the Admin API, and
// flattens the typed responses into compact JSON-safe structures, including a
// quota monitor that warns when a quota bucket approaches exhaustion.
//
// Schema validation of dimension and metric names is delegated to the
// backend; this package validates only the structural shape of arguments.
package analytics
