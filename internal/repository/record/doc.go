// Package record persists the bootstrap build record.
//
// FileRepository stores the record as protobuf JSON (a structpb.Struct) next to
// the installation. A missing file means no build has completed.
package record
