package phantom

import (
	"fmt"
	"slices"
)

// History records the identifiers a client has created, oldest first. It is
// best-effort bookkeeping used to default "the most recent X" arguments and is
// never needed for correctness: every operation accepts an explicit ID.
//
// Like the Client, History is not safe for concurrent use.
type History struct {
	containers   []int
	artifacts    []int
	files        []int
	playbookRuns []int
	actionRuns   []int
	cases        []int

	artifactNames []string
	fileNames     []string
	playbookNames []string
	actionNames   []string
}

// Containers returns the IDs of created containers.
func (h *History) Containers() []int { return slices.Clone(h.containers) }

// Artifacts returns the IDs of created artifacts.
func (h *History) Artifacts() []int { return slices.Clone(h.artifacts) }

// Files returns the IDs of uploaded vault files.
func (h *History) Files() []int { return slices.Clone(h.files) }

// PlaybookRuns returns the IDs of started playbook runs.
func (h *History) PlaybookRuns() []int { return slices.Clone(h.playbookRuns) }

// ActionRuns returns the IDs of started action runs.
func (h *History) ActionRuns() []int { return slices.Clone(h.actionRuns) }

// Cases returns the IDs of containers promoted to cases.
func (h *History) Cases() []int { return slices.Clone(h.cases) }

// ArtifactNames returns the names of created artifacts.
func (h *History) ArtifactNames() []string { return slices.Clone(h.artifactNames) }

// FileNames returns the names of uploaded vault files.
func (h *History) FileNames() []string { return slices.Clone(h.fileNames) }

// PlaybookNames returns the names of started playbooks.
func (h *History) PlaybookNames() []string { return slices.Clone(h.playbookNames) }

// ActionNames returns the names of started actions.
func (h *History) ActionNames() []string { return slices.Clone(h.actionNames) }

// LastContainer returns the most recently created container ID.
func (h *History) LastContainer() (int, bool) { return last(h.containers) }

// LastArtifact returns the most recently created artifact ID.
func (h *History) LastArtifact() (int, bool) { return last(h.artifacts) }

// LastFile returns the most recently uploaded vault file ID.
func (h *History) LastFile() (int, bool) { return last(h.files) }

// LastPlaybookRun returns the most recently started playbook run ID.
func (h *History) LastPlaybookRun() (int, bool) { return last(h.playbookRuns) }

// LastActionRun returns the most recently started action run ID.
func (h *History) LastActionRun() (int, bool) { return last(h.actionRuns) }

// LastCase returns the most recently promoted case ID.
func (h *History) LastCase() (int, bool) { return last(h.cases) }

func last[T any](s []T) (T, bool) {
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	return s[len(s)-1], true
}

// resolve returns id, or the last element of s when id is zero.
func resolve(id int, s []int, what string) (int, error) {
	if id != 0 {
		return id, nil
	}
	if v, ok := last(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: no %s id given and none created by this client", ErrNoHistory, what)
}
