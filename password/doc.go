// Package password implements legacy-format password verification with
// online migration.
//
// # Stored format
//
// Credentials are encoded as
//
//	<hex sha1 digest>:<salt>
//
// where an empty salt (or a value with no colon at all) marks the unsalted
// legacy scheme. When an unsalted credential matches a submission, Verify
// returns a freshly salted replacement so the caller can persist it
// immediately and retire the unsalted form.
//
// # Architecture boundaries
//
// This package owns parsing, comparison, and migration only. Lockout policy
// and persistence are enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials — callers supply strings and receive
//     strings.
//   - Import any other gatehouse package.
//   - Compare digests byte-by-byte with an early exit; all comparisons are
//     constant time.
package password
