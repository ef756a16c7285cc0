package provision

import (
	"fmt"
	"strconv"
	"strings"
)

// namePool allocates unique room names from a snapshot of the names that
// already exist. Names allocated during a batch count against later
// allocations in the same batch.
type namePool struct {
	taken map[string]bool
}

func newNamePool(existing []string) *namePool {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	return &namePool{taken: taken}
}

// resolve picks the next free name for a base. The first room of a base
// gets the bare name; later ones get "{base} N" counting from 2. The
// suffix starts at one past the number of rooms already attributed to the
// base and probes upward past any collisions.
func (p *namePool) resolve(base string) string {
	total := 0
	for name := range p.taken {
		if belongsTo(name, base) {
			total++
		}
	}

	var candidate string
	if total == 0 {
		candidate = base
	} else {
		candidate = fmt.Sprintf("%s %d", base, total+1)
	}
	for p.taken[candidate] {
		total++
		candidate = fmt.Sprintf("%s %d", base, total+1)
	}

	p.taken[candidate] = true
	return candidate
}

// markTaken records a name allocated outside the pool, for example when an
// insert lost a race and the resolver needs to probe again.
func (p *namePool) markTaken(name string) {
	p.taken[name] = true
}

// belongsTo reports whether a room name is attributed to a base: either the
// bare base name or "{base} N" for a positive integer N.
func belongsTo(name, base string) bool {
	if name == base {
		return true
	}
	rest, ok := strings.CutPrefix(name, base+" ")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0
}
