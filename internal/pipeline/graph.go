package pipeline

import (
	"fmt"
	"sort"
)

// StepNode is the scheduling view of a step: where it sits in the pipeline,
// which variables it reads and which it binds.
type StepNode struct {
	Index        int
	Step         Step
	Dependencies map[string]struct{}
	Outputs      []string
}

// ID returns a stable identifier for logs and errors, e.g. "#2 transform.small".
func (n *StepNode) ID() string {
	if label := n.Step.Label(); label != "" {
		return fmt.Sprintf("#%d %s.%s", n.Index, n.Step.Kind(), label)
	}
	return fmt.Sprintf("#%d %s", n.Index, n.Step.Kind())
}

// DependencyNames returns the node's dependencies in sorted order.
func (n *StepNode) DependencyNames() []string {
	names := make([]string, 0, len(n.Dependencies))
	for name := range n.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildGraph derives the dependencies and outputs of every step from its
// variant and fields alone. It does not check the steps against each other;
// that is done by ComputeWaves.
func BuildGraph(steps []Step) []*StepNode {
	nodes := make([]*StepNode, 0, len(steps))
	for i, step := range steps {
		node := &StepNode{
			Index:        i,
			Step:         step,
			Dependencies: make(map[string]struct{}),
		}

		switch s := step.(type) {
		case GenerateStep:
			node.Outputs = []string{s.Out}
		case TransformStep:
			node.Dependencies[s.In] = struct{}{}
			node.Outputs = []string{s.Out}
		case SaveStep:
			node.Dependencies[s.In] = struct{}{}
			if s.Out != "" {
				node.Outputs = []string{s.Out}
			}
		default:
			panic(fmt.Sprintf("pipeline: unknown step type %T", step))
		}

		nodes = append(nodes, node)
	}
	return nodes
}
