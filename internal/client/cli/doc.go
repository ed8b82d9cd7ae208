// Package cli implements the interactive fieldsync client: a REPL over the
// draft store, the sync service and the record gateway.
//
// The app logs in (online, or from the cached identity when the server is
// unreachable), then lets the technician resume drafts, edit form fields,
// attach photos, save, submit, and sweep-sync everything stored locally. A
// background watcher flips the online/offline mode indicator as server
// reachability changes.
package cli
