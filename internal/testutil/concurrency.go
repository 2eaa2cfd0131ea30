package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/mediagrid/internal/artifact"
)

// Call is one recorded collaborator invocation.
type Call struct {
	Method string // "generate", "transform" or "save"
	Name   string // generator, operation or destination
	Input  *artifact.Artifact
	Params map[string]any
	Record ExecutionRecord
}

// SpyCollaborators is a shared mock for engine tests. It implements the
// generate, transform and save collaborator methods, sleeps for a configurable
// duration on every call, records each call and tracks how many calls were in
// flight at once.
type SpyCollaborators struct {
	// Sleep is applied to every call.
	Sleep time.Duration
	// Fail maps a generator, operation or destination name to the error the
	// spy should return for it.
	Fail map[string]error

	mu       sync.Mutex
	calls    []Call
	produced map[string]*artifact.Artifact

	inFlight atomic.Int32
	peak     atomic.Int32
	seq      atomic.Int64
}

// NewSpyCollaborators creates a spy that sleeps for sleep on every call.
func NewSpyCollaborators(sleep time.Duration) *SpyCollaborators {
	return &SpyCollaborators{
		Sleep:    sleep,
		Fail:     make(map[string]error),
		produced: make(map[string]*artifact.Artifact),
	}
}

// Generate implements the generator collaborator. The returned artifact's
// Data is a unique tag so tests can trace exact values through a pipeline.
func (s *SpyCollaborators) Generate(ctx context.Context, name string, params map[string]any) (*artifact.Artifact, error) {
	rec, err := s.enter(ctx, name)
	if err != nil {
		s.record(Call{Method: "generate", Name: name, Params: params, Record: rec})
		return nil, err
	}
	a := &artifact.Artifact{
		Data:   []byte(fmt.Sprintf("gen:%s:%d", name, s.seq.Add(1))),
		Format: "png",
		Width:  1,
		Height: 1,
	}
	s.record(Call{Method: "generate", Name: name, Params: params, Record: rec})
	s.mu.Lock()
	s.produced[string(a.Data)] = a
	s.mu.Unlock()
	return a, nil
}

// Transform implements the transform collaborator.
func (s *SpyCollaborators) Transform(ctx context.Context, in *artifact.Artifact, op string, params map[string]any) (*artifact.Artifact, error) {
	rec, err := s.enter(ctx, op)
	s.record(Call{Method: "transform", Name: op, Input: in, Params: params, Record: rec})
	if err != nil {
		return nil, err
	}
	return &artifact.Artifact{
		Data:   []byte(fmt.Sprintf("%s(%s)", op, in.Data)),
		Format: in.Format,
		Width:  in.Width,
		Height: in.Height,
	}, nil
}

// Save implements the save collaborator.
func (s *SpyCollaborators) Save(ctx context.Context, in *artifact.Artifact, destination, provider string) (*artifact.SaveResult, error) {
	rec, err := s.enter(ctx, destination)
	s.record(Call{Method: "save", Name: destination, Input: in, Record: rec})
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = "spy"
	}
	return &artifact.SaveResult{Location: "spy://" + destination, Provider: provider, Size: in.Size()}, nil
}

// enter sleeps for the configured duration while counted as in flight.
func (s *SpyCollaborators) enter(ctx context.Context, name string) (ExecutionRecord, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		old := s.peak.Load()
		if n <= old || s.peak.CompareAndSwap(old, n) {
			break
		}
	}

	rec := ExecutionRecord{Start: time.Now()}
	if s.Sleep > 0 {
		select {
		case <-time.After(s.Sleep):
		case <-ctx.Done():
			rec.End = time.Now()
			return rec, ctx.Err()
		}
	}
	rec.End = time.Now()

	s.mu.Lock()
	err := s.Fail[name]
	s.mu.Unlock()
	return rec, err
}

func (s *SpyCollaborators) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

// Calls returns all recorded calls ordered by start time.
func (s *SpyCollaborators) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Call(nil), s.calls...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Record.Start.Before(out[j].Record.Start) })
	return out
}

// CallCount returns the number of recorded calls.
func (s *SpyCollaborators) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Peak returns the largest number of calls that were in flight at once.
func (s *SpyCollaborators) Peak() int {
	return int(s.peak.Load())
}

// Produced returns the artifact the spy generated with the given data tag.
func (s *SpyCollaborators) Produced(tag string) (*artifact.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.produced[tag]
	return a, ok
}
