// Package document loads, searches and saves the robot configuration document.
//
// The document is a YAML file with a top-level `modules` list. Each entry has
// an `id`, an optional `name`, and the module's tunable parameters under
// `constructor_args.cfg`:
//
//	modules:
//	  - id: ArmorDetector_0
//	    name: ArmorDetector
//	    constructor_args:
//	      cfg:
//	        binary_thres: 100
//
// The document is kept as a yaml.v3 node tree rather than decoded into Go
// maps, so key order, comments and untouched scalars survive a save.
//
// Loading never fails: a missing or malformed file yields an empty document
// carrying a ParseWarning. Saving replaces the file wholesale and only after
// the new content has been written completely.
package document
