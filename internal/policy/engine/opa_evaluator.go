package engine

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const allowQuery = "data.medsupply.access.allow"

//go:embed access.rego
var defaultRegoPolicy string

// OPAEvaluator evaluates the portal access policy using OPA Rego.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the embedded access policy.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	return NewOPAEvaluatorWithPolicy(ctx, defaultRegoPolicy)
}

// NewOPAEvaluatorWithPolicy compiles policy, which must define data.medsupply.access.allow.
func NewOPAEvaluatorWithPolicy(ctx context.Context, policy string) (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// HealthCheck verifies that the in-process OPA Rego engine can evaluate the policy.
// Does not touch the database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"action": ActionAccountRead,
		"caller": map[string]interface{}{"id": "", "role": ""},
		"target": map[string]interface{}{"user_id": ""},
	}))
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// Allow evaluates req. Evaluation errors and undefined results deny.
func (e *OPAEvaluator) Allow(ctx context.Context, req AccessRequest) (bool, error) {
	if req.Caller == nil {
		return false, nil
	}
	input := map[string]interface{}{
		"action": req.Action,
		"caller": map[string]interface{}{
			"id":   req.Caller.ID,
			"role": string(req.Caller.Role),
		},
		"target": map[string]interface{}{
			"user_id": req.TargetUserID,
		},
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		log.Printf("policy: evaluation failed for %s: %v", req.Action, err)
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}
