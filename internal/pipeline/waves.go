package pipeline

import "sort"

// Wave is a set of steps that may run concurrently. Nodes keep the order in
// which their steps were declared.
type Wave []*StepNode

// ComputeWaves partitions nodes into waves. Every node of a wave depends only
// on outputs of earlier waves, so waves must run in the returned order.
//
// It returns a *DuplicateOutputError if two steps bind the same variable and
// a *SaveResultInputError if a step reads a variable bound by a save, and an
// *UnschedulableGraphError if some steps can never become ready, either
// because an input is never produced or because of a cycle.
func ComputeWaves(nodes []*StepNode) ([]Wave, error) {
	producers := make(map[string][]int)
	for _, n := range nodes {
		for _, out := range n.Outputs {
			producers[out] = append(producers[out], n.Index)
		}
	}
	if err := checkDuplicates(producers); err != nil {
		return nil, err
	}
	if err := checkSaveResultInputs(nodes); err != nil {
		return nil, err
	}

	satisfied := make(map[string]struct{}, len(producers))
	remaining := append([]*StepNode(nil), nodes...)
	var waves []Wave

	for len(remaining) > 0 {
		var wave Wave
		var blocked []*StepNode
		for _, n := range remaining {
			if ready(n, satisfied) {
				wave = append(wave, n)
			} else {
				blocked = append(blocked, n)
			}
		}

		if len(wave) == 0 {
			return nil, unschedulable(blocked, satisfied, producers)
		}

		for _, n := range wave {
			for _, out := range n.Outputs {
				satisfied[out] = struct{}{}
			}
		}
		waves = append(waves, wave)
		remaining = blocked
	}

	return waves, nil
}

func ready(n *StepNode, satisfied map[string]struct{}) bool {
	for dep := range n.Dependencies {
		if _, ok := satisfied[dep]; !ok {
			return false
		}
	}
	return true
}

func checkDuplicates(producers map[string][]int) error {
	var dupes []string
	for name, idx := range producers {
		if len(idx) > 1 {
			dupes = append(dupes, name)
		}
	}
	if len(dupes) == 0 {
		return nil
	}
	sort.Strings(dupes)
	return &DuplicateOutputError{Variable: dupes[0], Indexes: producers[dupes[0]]}
}

// checkSaveResultInputs rejects steps reading a variable bound by a save step.
// Such a variable holds a save result, and every step input must be an image.
func checkSaveResultInputs(nodes []*StepNode) error {
	savedBy := make(map[string]int)
	for _, n := range nodes {
		if n.Step.Kind() != KindSave {
			continue
		}
		for _, out := range n.Outputs {
			savedBy[out] = n.Index
		}
	}
	if len(savedBy) == 0 {
		return nil
	}
	for _, n := range nodes {
		for _, dep := range n.DependencyNames() {
			if producer, ok := savedBy[dep]; ok {
				return &SaveResultInputError{Variable: dep, Producer: producer, Consumer: n.Index}
			}
		}
	}
	return nil
}

func unschedulable(blocked []*StepNode, satisfied map[string]struct{}, producers map[string][]int) *UnschedulableGraphError {
	err := &UnschedulableGraphError{}
	missing := make(map[string]struct{})
	blockedVars := make(map[string]struct{})

	for _, n := range blocked {
		var unsatisfied []string
		for _, dep := range n.DependencyNames() {
			if _, ok := satisfied[dep]; ok {
				continue
			}
			unsatisfied = append(unsatisfied, dep)
			if _, produced := producers[dep]; produced {
				blockedVars[dep] = struct{}{}
			} else {
				missing[dep] = struct{}{}
			}
		}
		err.Steps = append(err.Steps, UnresolvedStep{
			Index:       n.Index,
			Kind:        n.Step.Kind(),
			Label:       n.Step.Label(),
			Unsatisfied: unsatisfied,
		})
	}

	err.Missing = sortedKeys(missing)
	err.Blocked = sortedKeys(blockedVars)
	return err
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
