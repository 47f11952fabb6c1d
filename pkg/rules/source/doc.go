// Package source loads definitions into a registry and keeps them
// fresh.
//
// FileSource reads YAML definition files from a file or directory and
// registers the result. A fsnotify-backed Watcher can rerun the load
// whenever the files change, with debouncing so editor save storms
// trigger a single reload. MemorySource serves a fixed definition set
// for tests and embedded use.
package source
