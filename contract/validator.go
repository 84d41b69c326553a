package contract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/internal/options"
	"github.com/erraggy/oasweave/oaserrors"
)

// Validator compares recorded transactions against one bundled document.
// A Validator is safe for concurrent use.
//
//	v, err := contract.New(contract.WithBundleResult(res), contract.WithDetailedBlobValidation(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := v.Validate(ctx, transactions)
type Validator struct {
	cfg      *config
	ops      []*Operation
	warnings []string
	matcher  *matcher
	cmp      *comparator
}

// New builds a Validator. Exactly one of WithDocument, WithBundleResult or
// WithFileSet must be given.
func New(opts ...Option) (*Validator, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("contract: invalid options: %w", err)
	}
	if _, err := options.SingleSource("document",
		options.Source{Name: "WithDocument", Set: cfg.doc != nil},
		options.Source{Name: "WithBundleResult", Set: cfg.bundle != nil},
		options.Source{Name: "WithFileSet", Set: cfg.fileSet != nil},
	); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	doc, err := cfg.document()
	if err != nil {
		return nil, err
	}
	cmp, err := newComparator(cfg, doc)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	ops, warnings := Operations(doc)
	for _, w := range warnings {
		cfg.Logger.Warn("operation skipped", "reason", w)
	}
	return &Validator{
		cfg:      cfg,
		ops:      ops,
		warnings: warnings,
		matcher:  newMatcher(ops, BasePath(doc), cfg.StrictRequestMatching),
		cmp:      cmp,
	}, nil
}

// document returns the bundled document of the configured source.
func (c *config) document() (map[string]any, error) {
	res := c.bundle
	if c.fileSet != nil {
		var err error
		res, err = bundler.Bundle(context.Background(), c.fileSet, bundler.WithLogger(c.Logger))
		if err != nil {
			return nil, fmt.Errorf("contract: bundling file set: %w", err)
		}
	}
	if res == nil {
		return c.doc, nil
	}
	if !res.Success {
		return nil, &oaserrors.ConfigError{Option: "bundle", Message: "document did not bundle: " + res.Reason, Cause: res.Failure}
	}
	return res.Document, nil
}

// Operations returns the operations transactions are matched against.
func (v *Validator) Operations() []*Operation {
	return v.ops
}

// Validate compares every transaction and reports the operations no
// transaction matched. Mismatches and unmatched transactions are data in the
// Result; the error is non-nil only when ctx is done.
func (v *Validator) Validate(ctx context.Context, txs []Transaction) (*Result, error) {
	res := &Result{
		Transactions:     make(map[string]*TransactionResult, len(txs)),
		Order:            make([]string, 0, len(txs)),
		MissingEndpoints: []MissingEndpoint{},
		Warnings:         v.warnings,
	}
	hits := make(map[*Operation]int, len(v.ops))

	for i := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tx := &txs[i]
		id := uniqueID(tx.ID, i, res.Transactions)
		tr, op := v.validateTransaction(tx, id)
		if op != nil {
			hits[op]++
		}
		res.Transactions[id] = tr
		res.Order = append(res.Order, id)
	}

	for _, op := range v.ops {
		if hits[op] == 0 {
			res.MissingEndpoints = append(res.MissingEndpoints, MissingEndpoint{Endpoint: op.Endpoint()})
		}
	}
	v.cfg.Logger.Debug("validation complete",
		"transactions", len(txs),
		"missingEndpoints", len(res.MissingEndpoints))
	return res, nil
}

func (v *Validator) validateTransaction(tx *Transaction, id string) (*TransactionResult, *Operation) {
	tr := &TransactionResult{ID: id, Name: tx.Name, Mismatches: []Mismatch{}}

	parts, query := v.matcher.requestTarget(tx.Request.Path)
	for k, val := range tx.Request.Query {
		if query == nil {
			query = make(map[string]string, len(tx.Request.Query))
		}
		query[k] = val
	}

	op, params := v.matcher.match(tx.Request.Method, parts)
	if op == nil {
		v.cfg.Logger.Debug("no operation matched", "id", id, "method", tx.Request.Method, "path", tx.Request.Path)
		return tr, nil
	}
	tr.Matched = true
	tr.Endpoint = op.Endpoint()
	tr.Mismatches = v.cmp.request(op, params, query, tx.Request)

	if len(tx.Responses) > 0 {
		tr.Responses = make(map[string]*ResponseResult, len(tx.Responses))
		for j, resp := range tx.Responses {
			rid := uniqueID(resp.ID, j, tr.Responses)
			tr.Responses[rid] = &ResponseResult{ID: rid, Status: resp.Status, Mismatches: v.cmp.response(op, resp)}
		}
	}
	return tr, op
}

// uniqueID returns id, or the index when id is empty, made unique within
// seen.
func uniqueID[V any](id string, index int, seen map[string]V) string {
	if strings.TrimSpace(id) == "" {
		id = strconv.Itoa(index)
	}
	for {
		if _, dup := seen[id]; !dup {
			return id
		}
		id += "#" + strconv.Itoa(index)
	}
}

// Validate is a convenience wrapper around New and Validator.Validate.
func Validate(ctx context.Context, txs []Transaction, opts ...Option) (*Result, error) {
	v, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, txs)
}
