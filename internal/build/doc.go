// Package build runs the site generation pipeline.
//
// Every execution path (the build command, the preview server, tests)
// goes through BuildService. A build runs these stages in order:
//
//	load → gitinfo → index → render → write → verify
//
// Each stage is timed, logged with its stage name and recorded on the
// metrics recorder. The write stage consults the build state store so
// pages whose content did not change are not rewritten.
package build
