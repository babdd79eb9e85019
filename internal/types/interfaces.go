// internal/types/interfaces.go
package types

// RecordSink receives finished records, one per completed input line.
// Implementations must append synchronously: once Append returns nil the
// record is durable.
type RecordSink interface {
	Append(record *Record) error
}
