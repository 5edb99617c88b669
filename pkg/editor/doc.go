// Package editor provides a headless pipeline editing session.
//
// A [Session] owns the current graph and an undo/redo [History] of
// immutable snapshots. Every structural mutation (adding, connecting,
// removing, moving, retyping, renaming, auto-layout, loading) produces one
// new snapshot; front ends such as the terminal editor or an HTTP handler
// call [Session.Status] afterwards to show the validation banner.
//
//	s := editor.NewSession()
//	src, _ := s.AddNode("extract", graph.TypeSource)
//	dst, _ := s.AddNode("load", graph.TypeOutput)
//	s.Connect(src.ID, dst.ID)
//	fmt.Println(s.Status().Banner()) // Valid DAG
//
// Connections are checked only for what the editor can know at drag time
// (self-connection, equal handles, unknown endpoints, duplicates). Global
// properties such as acyclicity are left to the validator so an invalid
// graph can be built, inspected, and repaired.
//
// Sessions are safe for concurrent use; concurrent edits are serialized
// into one history.
package editor
