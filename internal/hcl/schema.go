package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// rootSchema describes the top level of a pipeline file.
var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "concurrency"},
		{Name: "step_timeout"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "step", LabelNames: []string{"kind", "name"}},
	},
}

// stepBody is the content of a `step "<kind>" "<name>"` block.
type stepBody struct {
	Generator   string       `hcl:"generator,optional"`
	In          string       `hcl:"in,optional"`
	Op          string       `hcl:"op,optional"`
	Destination string       `hcl:"destination,optional"`
	Provider    string       `hcl:"provider,optional"`
	Out         string       `hcl:"out,optional"`
	Params      *paramsBlock `hcl:"params,block"`
}

// paramsBlock holds free-form collaborator parameters.
type paramsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
