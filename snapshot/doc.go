// Package snapshot writes and loads point-in-time copies of the tree's
// values so that startup does not have to replay the whole journal.
//
// A snapshot stores values in preorder together with the last journal
// sequence number it covers. Loading reinserts them; the journal is then
// replayed from the following sequence number.
package snapshot
