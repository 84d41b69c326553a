// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil provides path helpers shared by the bundler and the
// contract engine.
//
// # JSON Pointers
//
// [EscapeToken], [UnescapeToken], [JoinPointer] and [SplitPointer] implement
// RFC 6901 with percent-decoding of fragment tokens, as found in $ref values:
//
//	pathutil.JoinPointer([]string{"paths", "/pets"}) // "/paths/~1pets"
//
// # Component references
//
// [ComponentRef] builds the canonical intra-document reference for a bucket,
// taking the OAS 2.0 layout into account:
//
//	pathutil.ComponentRef(pathutil.BucketSchemas, "Pet", false)    // "#/components/schemas/Pet"
//	pathutil.ComponentRef(pathutil.BucketDefinitions, "Pet", true) // "#/definitions/Pet"
//
// # Payload paths
//
// [PathBuilder] builds property paths such as "owner.tags[0].name" with
// push/pop semantics while walking a payload.
package pathutil
