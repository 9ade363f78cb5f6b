package aggregates

import (
	"sort"

	"peoplenet/domain/core/valueobjects"
)

// IssueType classifies a malformed introduction
type IssueType string

const (
	IssueSelfLoop          IssueType = "self_loop"
	IssueDanglingRef       IssueType = "dangling_reference"
	IssueIntroducerCycle   IssueType = "cycle"
	IssueMissingIntroducer IssueType = "missing_introducer"
)

// Issue describes a malformed introduction found in a snapshot. Issues are
// diagnostics only; edge building and path reconstruction degrade around them.
type Issue struct {
	Type     IssueType               `json:"type"`
	PersonID valueobjects.PersonID   `json:"personId"`
	Related  []valueobjects.PersonID `json:"related,omitempty"`
}

// Validate reports self-loops, dangling references and introduction cycles
func (n *Network) Validate() []Issue {
	issues := []Issue{}
	inCycle := make(map[valueobjects.PersonID]bool)

	for _, p := range n.people {
		conn := p.Connection()
		if conn.IntroducedByType != valueobjects.IntroducedExisting {
			continue
		}
		ref := conn.IntroducedBy
		switch {
		case ref.IsZero():
			issues = append(issues, Issue{Type: IssueMissingIntroducer, PersonID: p.ID()})
			continue
		case ref.Equals(p.ID()):
			issues = append(issues, Issue{Type: IssueSelfLoop, PersonID: p.ID()})
			continue
		case n.IsRoot(ref):
			continue
		}
		if _, ok := n.index[ref]; !ok {
			issues = append(issues, Issue{Type: IssueDanglingRef, PersonID: p.ID(), Related: []valueobjects.PersonID{ref}})
			continue
		}

		if cycle := n.cycleFrom(p.ID()); len(cycle) > 0 && !inCycle[p.ID()] {
			for _, id := range cycle {
				inCycle[id] = true
			}
			issues = append(issues, Issue{Type: IssueIntroducerCycle, PersonID: p.ID(), Related: cycle})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].PersonID.String() < issues[j].PersonID.String()
	})
	return issues
}

// cycleFrom follows introducers from start and returns the members of the
// cycle containing start, or nil when start is not on a cycle
func (n *Network) cycleFrom(start valueobjects.PersonID) []valueobjects.PersonID {
	seen := map[valueobjects.PersonID]bool{start: true}
	members := []valueobjects.PersonID{start}
	current := start

	for {
		p := n.index[current]
		ref, ok := n.introducerOf(p)
		if !ok {
			return nil
		}
		if ref.Equals(start) {
			return members
		}
		if seen[ref] {
			// the walk entered a cycle that does not include start
			return nil
		}
		seen[ref] = true
		members = append(members, ref)
		current = ref
	}
}
