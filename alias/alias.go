package alias

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xlab/treeprint"
)

// Alias is a relational selector which has been replaced by a marker class.
type Alias struct {
	Outer  string // selector context preceding the relational pseudo-class
	Inner  string // selector inside the relational pseudo-class' parentheses
	Marker string // class name substituted for the relational clause
}

func (a Alias) String() string {
	return fmt.Sprintf("%s:has(%s) => .%s", a.Outer, a.Inner, a.Marker)
}

// --- Marker IDs ------------------------------------------------------------

// unique is the process-wide counter for marker IDs. It is seeded with the
// start time of the process, so IDs differ between runs as well.
var unique = uint64(time.Now().UnixMilli())

const letters = "abcdefghijklmnopqrstuvwxyz"

var rnd = struct {
	sync.Mutex
	*rand.Rand
}{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}

// NewMarker returns a fresh class name. It starts with a random letter
// (class names must not start with a digit), followed by the base-36
// representation of a monotonic counter. Markers will never repeat during
// the lifetime of a process.
func NewMarker() string {
	n := atomic.AddUint64(&unique, 1)
	rnd.Lock()
	c := letters[rnd.Intn(len(letters))]
	rnd.Unlock()
	return string(c) + strconv.FormatUint(n, 36)
}

// --- Registry --------------------------------------------------------------

// Registry maps outer selectors to the aliases derived from them.
// Outer selectors are iterated in order of first registration, aliases for an
// outer selector are listed newest first.
//
// A Registry never shrinks. It is safe for concurrent use, although the
// update engine will operate it from a single goroutine.
type Registry struct {
	mx      sync.RWMutex
	outers  []string
	aliases map[string][]Alias
	count   int
}

// NewRegistry creates an empty alias registry.
func NewRegistry() *Registry {
	return &Registry{
		aliases: make(map[string][]Alias),
	}
}

// Add mints a new marker class for a relational clause and registers the
// resulting alias in front of all aliases for the same outer selector.
func (reg *Registry) Add(outer, inner string) Alias {
	a := Alias{Outer: outer, Inner: inner, Marker: NewMarker()}
	reg.mx.Lock()
	defer reg.mx.Unlock()
	list, ok := reg.aliases[outer]
	if !ok {
		reg.outers = append(reg.outers, outer)
	}
	reg.aliases[outer] = append([]Alias{a}, list...)
	reg.count++
	tracer().Debugf("registered alias %s", a)
	return a
}

// Outers returns all outer selectors known to the registry.
func (reg *Registry) Outers() []string {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	outers := make([]string, len(reg.outers))
	copy(outers, reg.outers)
	return outers
}

// Lookup returns the aliases for an outer selector, newest first.
func (reg *Registry) Lookup(outer string) []Alias {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	list := reg.aliases[outer]
	r := make([]Alias, len(list))
	copy(r, list)
	return r
}

// Len returns the number of aliases in the registry.
func (reg *Registry) Len() int {
	if reg == nil {
		return 0
	}
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	return reg.count
}

// All returns every alias, grouped by outer selector.
func (reg *Registry) All() []Alias {
	if reg == nil {
		return nil
	}
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	all := make([]Alias, 0, reg.count)
	for _, o := range reg.outers {
		all = append(all, reg.aliases[o]...)
	}
	return all
}

// String renders the registry as a tree, one branch per outer selector.
func (reg *Registry) String() string {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	t := treeprint.New()
	t.SetValue(fmt.Sprintf("aliases (%d)", reg.count))
	for _, o := range reg.outers {
		label := o
		if label == "" {
			label = "*"
		}
		b := t.AddBranch(label)
		for _, a := range reg.aliases[o] {
			b.AddMetaNode("."+a.Marker, ":has("+a.Inner+")")
		}
	}
	return t.String()
}
