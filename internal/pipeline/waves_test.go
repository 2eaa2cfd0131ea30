package pipeline

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waveIndexes flattens waves into step indexes for easy comparison.
func waveIndexes(waves []Wave) [][]int {
	out := make([][]int, len(waves))
	for i, w := range waves {
		for _, n := range w {
			out[i] = append(out[i], n.Index)
		}
	}
	return out
}

func TestComputeWaves_Linear(t *testing.T) {
	steps := []Step{
		GenerateStep{Generator: "shape", Out: "img1"},
		TransformStep{In: "img1", Op: "resize", Out: "img2"},
		SaveStep{In: "img2", Destination: "out.png"},
	}

	waves, err := ComputeWaves(BuildGraph(steps))
	require.NoError(t, err)

	if diff := cmp.Diff([][]int{{0}, {1}, {2}}, waveIndexes(waves)); diff != "" {
		t.Errorf("waves mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeWaves_FanOutFanIn(t *testing.T) {
	// Two independent generators, one transform each, then a merge step that
	// needs both transformed branches.
	steps := []Step{
		GenerateStep{Name: "gen1", Generator: "shape", Out: "a"},
		GenerateStep{Name: "gen2", Generator: "qrcode", Out: "b"},
		TransformStep{Name: "t1", In: "a", Op: "resize", Out: "a2"},
		TransformStep{Name: "t2", In: "b", Op: "resize", Out: "b2"},
		TransformStep{Name: "merge", In: "a2", Op: "grayscale", Out: "merged"},
	}
	// Step variants read a single input, so the second edge of the merge is
	// added on the node directly.
	nodes := BuildGraph(steps)
	nodes[4].Dependencies["b2"] = struct{}{}

	waves, err := ComputeWaves(nodes)
	require.NoError(t, err)

	if diff := cmp.Diff([][]int{{0, 1}, {2, 3}, {4}}, waveIndexes(waves)); diff != "" {
		t.Errorf("waves mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeWaves_OrderWithinWaveFollowsDeclaration(t *testing.T) {
	// The consumer is declared before its producer.
	steps := []Step{
		SaveStep{In: "img", Destination: "x.png"},
		GenerateStep{Generator: "shape", Out: "other"},
		GenerateStep{Generator: "shape", Out: "img"},
	}

	waves, err := ComputeWaves(BuildGraph(steps))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {0}}, waveIndexes(waves))
}

func TestComputeWaves_SaveOutputCanEndAPipeline(t *testing.T) {
	steps := []Step{
		GenerateStep{Generator: "shape", Out: "img"},
		SaveStep{In: "img", Destination: "s3://b/img.png", Out: "saved"},
	}

	waves, err := ComputeWaves(BuildGraph(steps))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}}, waveIndexes(waves))
}

func TestComputeWaves_SaveOutputAsInput(t *testing.T) {
	testCases := []struct {
		name     string
		reader   Step
	}{
		{name: "transform", reader: TransformStep{In: "saved", Op: "resize", Out: "after"}},
		{name: "save", reader: SaveStep{In: "saved", Destination: "again.png"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// The reader is declared before the save that binds its input.
			steps := []Step{
				GenerateStep{Generator: "shape", Out: "img"},
				tc.reader,
				SaveStep{In: "img", Destination: "s3://b/img.png", Out: "saved"},
			}

			waves, err := ComputeWaves(BuildGraph(steps))
			assert.Nil(t, waves)

			var saveErr *SaveResultInputError
			require.ErrorAs(t, err, &saveErr)
			assert.Equal(t, "saved", saveErr.Variable)
			assert.Equal(t, 2, saveErr.Producer)
			assert.Equal(t, 1, saveErr.Consumer)
			assert.ErrorIs(t, err, ErrNotAnArtifact)
			assert.ErrorContains(t, err, `step #1 reads "saved", which save step #2 binds`)
		})
	}
}

func TestComputeWaves_MissingInput(t *testing.T) {
	steps := []Step{
		GenerateStep{Generator: "shape", Out: "img1"},
		TransformStep{Name: "resize", In: "nope", Op: "resize", Out: "img2"},
		SaveStep{In: "img2", Destination: "out.png"},
	}

	_, err := ComputeWaves(BuildGraph(steps))
	require.Error(t, err)

	var unsched *UnschedulableGraphError
	require.True(t, errors.As(err, &unsched))
	assert.Equal(t, []string{"nope"}, unsched.Missing)
	assert.Equal(t, []string{"img2"}, unsched.Blocked)
	require.Len(t, unsched.Steps, 2)
	assert.Equal(t, 1, unsched.Steps[0].Index)
	assert.Equal(t, KindTransform, unsched.Steps[0].Kind)
	assert.Equal(t, []string{"nope"}, unsched.Steps[0].Unsatisfied)
	assert.Equal(t, KindSave, unsched.Steps[1].Kind)
	assert.ErrorContains(t, err, "missing variables: nope")
	assert.ErrorContains(t, err, "transform.resize waits on nope")
}

func TestComputeWaves_Cycle(t *testing.T) {
	steps := []Step{
		GenerateStep{Generator: "shape", Out: "seed"},
		TransformStep{In: "b", Op: "blur", Out: "a"},
		TransformStep{In: "a", Op: "blur", Out: "b"},
	}

	waves, err := ComputeWaves(BuildGraph(steps))
	require.Error(t, err)
	assert.Nil(t, waves)

	var unsched *UnschedulableGraphError
	require.True(t, errors.As(err, &unsched))
	assert.Empty(t, unsched.Missing)
	assert.Equal(t, []string{"a", "b"}, unsched.Blocked)
	assert.Len(t, unsched.Steps, 2)
}

func TestComputeWaves_SelfReference(t *testing.T) {
	steps := []Step{TransformStep{In: "x", Op: "blur", Out: "x"}}

	_, err := ComputeWaves(BuildGraph(steps))
	var unsched *UnschedulableGraphError
	require.ErrorAs(t, err, &unsched)
	assert.Equal(t, []string{"x"}, unsched.Blocked)
}

func TestComputeWaves_DuplicateOutput(t *testing.T) {
	steps := []Step{
		GenerateStep{Generator: "shape", Out: "img"},
		GenerateStep{Generator: "qrcode", Out: "img"},
	}

	_, err := ComputeWaves(BuildGraph(steps))
	var dup *DuplicateOutputError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "img", dup.Variable)
	assert.Equal(t, []int{0, 1}, dup.Indexes)
}

func TestComputeWaves_Empty(t *testing.T) {
	waves, err := ComputeWaves(nil)
	require.NoError(t, err)
	assert.Empty(t, waves)
}

// TestComputeWaves_Properties checks, over random acyclic pipelines, that every
// step lands in exactly one wave and only after all of its inputs.
func TestComputeWaves_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		// Build a random chain-and-branch pipeline, then shuffle it.
		// Only generate and transform outputs are images, so only those
		// are read by later steps.
		n := 1 + rng.Intn(15)
		var steps []Step
		var images []string
		for i := 0; i < n; i++ {
			out := fmt.Sprintf("v%d", i)
			if i == 0 || rng.Intn(3) == 0 {
				steps = append(steps, GenerateStep{Generator: "g", Out: out})
				images = append(images, out)
				continue
			}
			in := images[rng.Intn(len(images))]
			if rng.Intn(4) == 0 {
				steps = append(steps, SaveStep{In: in, Destination: out + ".png", Out: out})
			} else {
				steps = append(steps, TransformStep{In: in, Op: "op", Out: out})
				images = append(images, out)
			}
		}
		rng.Shuffle(len(steps), func(i, j int) { steps[i], steps[j] = steps[j], steps[i] })

		nodes := BuildGraph(steps)
		waves, err := ComputeWaves(nodes)
		require.NoError(t, err)

		waveOf := make(map[string]int) // variable -> wave that produced it
		seen := make(map[int]int)      // step index -> times scheduled
		for w, wave := range waves {
			for i, node := range wave {
				seen[node.Index]++
				if i > 0 {
					require.Less(t, wave[i-1].Index, node.Index, "wave members must keep declaration order")
				}
				for _, out := range node.Outputs {
					waveOf[out] = w
				}
			}
		}
		for w, wave := range waves {
			for _, node := range wave {
				for dep := range node.Dependencies {
					pw, ok := waveOf[dep]
					require.True(t, ok)
					require.Less(t, pw, w, "dependency %q must be produced in an earlier wave", dep)
				}
			}
		}
		require.Len(t, seen, len(steps))
		for idx, count := range seen {
			require.Equal(t, 1, count, "step %d scheduled %d times", idx, count)
		}
	}
}
