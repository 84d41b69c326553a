// Package bundler merges a multi-file OpenAPI description into one canonical
// document.
//
// Bundling runs in three stages over an immutable [parser.FileSet]:
//
//  1. [DetectRoot] selects the single file no other file points to.
//  2. The root is structurally validated for its declared version.
//  3. Every reachable $ref is rewritten. Targets in other files are moved
//     into the component namespace ("components.<bucket>" for 3.x, the
//     root-level definitions, parameters and responses for 2.0) under a
//     generated key, exactly once per distinct target. A [Classifier]
//     selected from the root's version decides the bucket.
//
// Cycles stay cycles: a target reached again is referenced by its canonical
// pointer instead of being copied.
//
// # Usage
//
//	fs, err := parser.NewFileSet(files)
//	if err != nil {
//	    return err
//	}
//	res, err := bundler.Bundle(ctx, fs, bundler.WithLogger(logger))
//	if err != nil {
//	    return err // invalid options or cancellation
//	}
//	if !res.Success {
//	    fmt.Println(res.Reason) // e.g. "More than one root file not supported."
//	}
//
// Independent file sets can be bundled concurrently with [BundleAll].
package bundler
