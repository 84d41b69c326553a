package bundler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/erraggy/oasweave/internal/pathutil"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
)

// Bundle merges a file set into one canonical document.
//
// The root is detected (or taken from the set's root hint) and structurally
// validated, then every pointer reachable from it is rewritten:
//
//   - pointers into the root file keep their fragment and lose any file part
//   - pointers into other files are classified and their targets are moved
//     into the component namespace once, under a generated key
//   - a target referenced again reuses its canonical ref, which keeps cycles
//     as pointers
//   - unclassifiable targets are copied inline
//
// Expected failures (root ambiguity, structural errors, dangling pointers,
// inline cycles, node limits) are returned as an unsuccessful Result. The
// returned error is non-nil only for invalid options or cancellation.
//
// The file set is not modified.
func Bundle(ctx context.Context, fs *parser.FileSet, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", err)
	}
	if fs == nil {
		return nil, &oaserrors.ConfigError{Option: "file-set", Message: "file set cannot be nil"}
	}

	info, err := DetectRoot(fs)
	if err != nil {
		cfg.logger.Warn("root detection failed", "error", err)
		return failed(err), nil
	}
	rootDoc, _ := fs.Get(info.Root)
	if err := parser.ValidateStructure(rootDoc); err != nil {
		return failed(err), nil
	}

	classifier := cfg.classifier
	if classifier == nil {
		classifier = ClassifierFor(rootDoc.Version)
	}

	b := &bundler{
		ctx:        ctx,
		cfg:        cfg,
		log:        cfg.logger.With("root", info.Root),
		fs:         fs,
		root:       info.Root,
		classifier: classifier,
		oas2:       classifier.OAS2(),
		visited:    make(map[string]string),
		keys:       newKeyGenerator(),
		res:        &Result{RootFile: info.Root, Version: rootDoc.Version},
	}
	for _, f := range info.Unreachable {
		b.res.Warnings = append(b.res.Warnings, fmt.Sprintf("file %s is not reachable from root %s", f, info.Root))
	}

	if err := b.run(rootDoc); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return failed(err), nil
	}

	if cfg.verify {
		b.res.Warnings = append(b.res.Warnings, verifyDocument(ctx, b.out, rootDoc.Version)...)
	}
	b.res.Success = true
	b.res.Document = b.out
	b.res.Components = b.components()
	b.log.Debug("bundle complete",
		"relocated", b.res.Stats.Relocated,
		"shared", b.res.Stats.Shared,
		"inlined", b.res.Stats.Inlined,
		"nodes", b.res.Stats.NodesVisited)
	return b.res, nil
}

type bundler struct {
	ctx        context.Context
	cfg        *config
	log        parser.Logger
	fs         *parser.FileSet
	root       string
	classifier Classifier
	oas2       bool

	out     map[string]any
	visited map[string]string // pointer key -> canonical ref
	keys    *keyGenerator
	res     *Result
}

// frame is one node waiting to be scanned.
type frame struct {
	node any
	// parent and slot locate node so it can be replaced
	parent any
	key    string
	index  int
	// file is the file node was copied from; relative refs resolve against it
	file string
	// trace is the location of node in the output document
	trace []string
	// src is the location of node in file
	src []string
	// inlined holds pointer keys expanded inline on the way to node
	inlined []string
	// lineage holds the canonical refs of the components enclosing node
	lineage []string
}

func (f *frame) replace(v any) {
	switch p := f.parent.(type) {
	case map[string]any:
		p[f.key] = v
	case []any:
		p[f.index] = v
	}
}

func (f *frame) child(node any, key string, index int, tok string) *frame {
	return &frame{
		node:    node,
		parent:  f.node,
		key:     key,
		index:   index,
		file:    f.file,
		trace:   appendTok(f.trace, tok),
		src:     appendTok(f.src, tok),
		inlined: f.inlined,
		lineage: f.lineage,
	}
}

func appendTok(tokens []string, tok string) []string {
	out := make([]string, len(tokens), len(tokens)+1)
	copy(out, tokens)
	return append(out, tok)
}

func (b *bundler) run(rootDoc *parser.Document) error {
	b.out = parser.Clone(rootDoc.Object()).(map[string]any)
	b.reserveExisting()

	stack := []*frame{{node: b.out, file: b.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := b.ctx.Err(); err != nil {
			return err
		}
		b.res.Stats.NodesVisited++
		if b.res.Stats.NodesVisited > b.cfg.maxNodes {
			return &oaserrors.ResourceLimitError{
				ResourceType: "nodes",
				Limit:        int64(b.cfg.maxNodes),
				Message:      "bundle visited too many nodes",
			}
		}

		switch n := f.node.(type) {
		case map[string]any:
			if ref, ok := n["$ref"].(string); ok {
				next, err := b.resolve(f, n, ref)
				if err != nil {
					return err
				}
				if next != nil {
					stack = append(stack, next)
				}
				continue
			}
			keys := parser.SortedKeys(n)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, f.child(n[keys[i]], keys[i], 0, keys[i]))
			}
		case []any:
			for i := len(n) - 1; i >= 0; i-- {
				stack = append(stack, f.child(n[i], "", i, strconv.Itoa(i)))
			}
		}
	}
	return nil
}

// reserveExisting records the component keys the root already defines.
func (b *bundler) reserveExisting() {
	buckets := pathutil.Buckets3
	if b.oas2 {
		buckets = pathutil.Buckets2
	}
	for _, bucket := range buckets {
		container, ok := parser.Lookup(b.out, pathutil.ComponentContainer(bucket, b.oas2))
		if !ok {
			continue
		}
		if m, ok := container.(map[string]any); ok {
			for k := range m {
				b.keys.reserve(bucket, k)
			}
		}
	}
}

// resolve rewrites the $ref object n found at frame f. It returns a frame to
// scan next when target content was copied into the output.
func (b *bundler) resolve(f *frame, n map[string]any, ref string) (*frame, error) {
	p := parser.ParseRef(ref, f.file)
	if p.Remote {
		b.res.Warnings = append(b.res.Warnings, fmt.Sprintf("remote reference %s left in place", ref))
		b.log.Warn("remote reference left in place", "ref", ref, "file", f.file)
		return nil, nil
	}

	doc, ok := b.fs.Get(p.File)
	if !ok {
		return nil, b.dangling(f, ref, "file "+p.File+" is not part of the file set")
	}
	target, ok := doc.Lookup(p.Fragment)
	if !ok {
		return nil, b.dangling(f, ref, "fragment #"+p.Fragment+" not found in "+p.File)
	}

	if p.File == b.root {
		if f.file != b.root || !pathutil.IsLocalRef(ref) {
			n["$ref"] = "#" + p.Fragment
		}
		return nil, nil
	}

	key := p.Key()
	if canonical, ok := b.visited[key]; ok {
		n["$ref"] = canonical
		b.res.Stats.Shared++
		if slices.Contains(f.lineage, canonical) && !slices.Contains(b.res.CircularRefs, canonical) {
			b.res.CircularRefs = append(b.res.CircularRefs, canonical)
			b.log.Debug("cycle kept as pointer", "ref", canonical, "from", p.String())
		}
		return nil, nil
	}

	cls := b.classifier.Classify(f.trace)
	switch cls.Placement {
	case PlaceInPlace:
		bucket, name := cls.Path[0], cls.Path[1]
		canonical := pathutil.ComponentRef(bucket, name, b.oas2)
		b.visited[key] = canonical
		b.record(p, canonical, bucket, true)
		merged := mergeTarget(n, target)
		f.replace(merged)
		return &frame{
			node: merged, parent: f.parent, key: f.key, index: f.index,
			file: p.File, trace: f.trace, src: p.Tokens(),
			lineage: append(slices.Clone(f.lineage), canonical),
		}, nil

	case PlaceRelocate:
		bucket := cls.Bucket()
		name := b.keys.generate(bucket, p)
		canonical := pathutil.ComponentRef(bucket, name, b.oas2)
		b.visited[key] = canonical
		b.record(p, canonical, bucket, false)
		container := b.bucket(bucket)
		copied := parser.Clone(target)
		container[name] = copied
		n["$ref"] = canonical
		return &frame{
			node: copied, parent: container, key: name,
			file:    p.File,
			trace:   append(pathutil.ComponentContainer(bucket, b.oas2), name),
			src:     p.Tokens(),
			lineage: append(slices.Clone(f.lineage), canonical),
		}, nil

	default:
		if slices.Contains(f.inlined, key) {
			return nil, &oaserrors.ReferenceError{
				Ref:        ref,
				File:       f.file,
				Origin:     pathutil.JoinPointer(f.src),
				IsCircular: true,
				Message:    "target has no component bucket and cannot be inlined into itself",
			}
		}
		if f.parent == nil {
			return nil, &oaserrors.ReferenceError{Ref: ref, File: f.file, Message: "document root cannot be a reference"}
		}
		b.res.Stats.Inlined++
		b.log.Debug("inlined unclassified target", "ref", ref, "at", pathutil.JoinPointer(f.trace))
		merged := mergeTarget(n, target)
		f.replace(merged)
		return &frame{
			node: merged, parent: f.parent, key: f.key, index: f.index,
			file: p.File, trace: f.trace, src: p.Tokens(),
			inlined: append(slices.Clone(f.inlined), key),
			lineage: f.lineage,
		}, nil
	}
}

func (b *bundler) dangling(f *frame, ref, msg string) error {
	return &oaserrors.ReferenceError{
		Ref:        ref,
		File:       f.file,
		Origin:     pathutil.JoinPointer(f.src),
		IsDangling: true,
		Message:    msg,
	}
}

func (b *bundler) record(p parser.Pointer, canonical, bucket string, inPlace bool) {
	b.res.Relocations = append(b.res.Relocations, Relocation{
		From: p.String(), To: canonical, Bucket: bucket, InPlace: inPlace,
	})
	b.res.Stats.Relocated++
	b.log.Debug("relocated definition", "from", p.String(), "to", canonical)
}

// bucket returns the output map for a bucket, creating it when needed.
func (b *bundler) bucket(name string) map[string]any {
	parent := b.out
	for _, tok := range pathutil.ComponentContainer(name, b.oas2) {
		next, ok := parent[tok].(map[string]any)
		if !ok {
			next = make(map[string]any)
			parent[tok] = next
		}
		parent = next
	}
	return parent
}

func (b *bundler) components() map[string]map[string]any {
	buckets := pathutil.Buckets3
	if b.oas2 {
		buckets = pathutil.Buckets2
	}
	out := make(map[string]map[string]any)
	for _, bucket := range buckets {
		v, ok := parser.Lookup(b.out, pathutil.ComponentContainer(bucket, b.oas2))
		if !ok {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			out[bucket] = m
		}
	}
	return out
}

// mergeTarget copies target over a $ref object. Sibling keys of the $ref
// survive when the target is an object that does not define them.
func mergeTarget(refObj map[string]any, target any) any {
	copied := parser.Clone(target)
	m, ok := copied.(map[string]any)
	if !ok {
		return copied
	}
	for k, v := range refObj {
		if k == "$ref" {
			continue
		}
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return m
}
