package scene

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/fractal"
	"github.com/mogaika/fractal_browser/material"
	"github.com/mogaika/fractal_browser/mesh"
	"github.com/mogaika/fractal_browser/utils"
)

var ErrNotFound = errors.New("not found")

type Tree struct {
	ID      uuid.UUID
	Name    string
	Config  config.Config
	Seed    int64
	Root    *fractal.Fractal
	Created time.Time
	Age     time.Duration

	nodes map[uuid.UUID]*fractal.Fractal
	ids   map[*fractal.Fractal]uuid.UUID
	order []*fractal.Fractal
}

func (t *Tree) NodeID(f *fractal.Fractal) uuid.UUID {
	return t.ids[f]
}

func (t *Tree) Node(id uuid.UUID) (*fractal.Fractal, error) {
	if f, ok := t.nodes[id]; ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "node %v", id)
}

// Nodes returns live nodes in creation order.
func (t *Tree) Nodes() []*fractal.Fractal {
	return t.order
}

func (t *Tree) Len() int {
	return len(t.order)
}

// Done reports whether no node of the tree is still waiting to spawn.
func (t *Tree) Done() bool {
	for _, f := range t.order {
		if f.State() == fractal.SpawnWaiting {
			return false
		}
	}
	return true
}

func (t *Tree) register(f *fractal.Fractal) uuid.UUID {
	id := uuid.New()
	t.nodes[id] = f
	t.ids[f] = id
	t.order = append(t.order, f)
	return id
}

func (t *Tree) unregister(root *fractal.Fractal) int {
	removed := make(map[*fractal.Fractal]bool)
	root.Walk(func(f *fractal.Fractal) bool {
		removed[f] = true
		delete(t.nodes, t.ids[f])
		delete(t.ids, f)
		return true
	})
	order := t.order[:0]
	for _, f := range t.order {
		if !removed[f] {
			order = append(order, f)
		}
	}
	for i := len(order); i < len(t.order); i++ {
		t.order[i] = nil
	}
	t.order = order
	return len(removed)
}

// Scene hosts fractal trees: it owns their nodes, advances them in Step and
// tears them down on request. Node state is only touched under the scene lock.
type Scene struct {
	mu        sync.RWMutex
	trees     map[uuid.UUID]*Tree
	order     []uuid.UUID
	names     utils.RandomNameGenerator
	listeners []Listener

	// Verbose logs every spawned child, trees can also ask for it in their config.
	Verbose bool
}

func New() *Scene {
	return &Scene{
		trees: make(map[uuid.UUID]*Tree),
	}
}

// Listen registers l for scene events. Listeners run outside the scene lock but
// must not block.
func (s *Scene) Listen(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Scene) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// Spawn creates and activates the root of a new tree.
func (s *Scene) Spawn(cfg config.Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid config")
	}
	m, err := mesh.ByName(cfg.Mesh)
	if err != nil {
		return nil, err
	}
	low, high, err := cfg.Colors()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	template := material.Default()
	template.Name = cfg.Material.Name
	template.Roughness = cfg.Material.Roughness
	template.Metallic = cfg.Material.Metallic

	root := fractal.New(fractal.Settings{
		MaxDepth:         cfg.MaxDepth,
		ChildScale:       cfg.ChildScale,
		MaxRotationSpeed: cfg.MaxRotationSpeed,
		MaxTwist:         cfg.MaxTwist,
		SpawnDelayMin:    cfg.SpawnDelayMin,
		SpawnDelayMax:    cfg.SpawnDelayMax,
		LowColor:         low,
		HighColor:        high,
	}, m, template, rand.New(rand.NewSource(seed)))

	s.mu.Lock()
	t := &Tree{
		ID:      uuid.New(),
		Name:    s.names.RandomName(),
		Config:  cfg,
		Seed:    seed,
		Root:    root,
		Created: time.Now(),
		nodes:   make(map[uuid.UUID]*fractal.Fractal),
		ids:     make(map[*fractal.Fractal]uuid.UUID),
	}
	rootID := t.register(root)
	root.Activate()
	s.trees[t.ID] = t
	s.order = append(s.order, t.ID)
	ev := Event{
		Type:     EventTreeCreated,
		Tree:     t.ID,
		Node:     rootID,
		Nodes:    1,
		Expected: fractal.TreeSize(cfg.MaxDepth),
	}
	s.mu.Unlock()

	log.Printf("[scene] Spawned tree %q (%v) max depth %d seed %d", t.Name, t.ID, cfg.MaxDepth, seed)
	s.emit([]Event{ev})
	return t, nil
}

// Step advances every active node of every tree by dt. Children spawned during
// the step are first ticked on the next step.
func (s *Scene) Step(dt time.Duration) {
	seconds := float32(dt.Seconds())
	var events []Event

	s.mu.Lock()
	for _, treeID := range s.order {
		t := s.trees[treeID]
		t.Age += dt
		wasDone := t.Done()

		for _, f := range t.order {
			child := f.Tick(seconds)
			if child == nil {
				continue
			}
			id := t.register(child)
			if s.Verbose || t.Config.Verbose {
				log.Printf("[scene] %s: child scale is now %v", t.Name, child.ChildScale)
			}
			events = append(events, Event{
				Type:     EventNodeSpawned,
				Tree:     t.ID,
				Node:     id,
				Parent:   t.ids[f],
				Depth:    child.Depth(),
				Nodes:    t.Len(),
				Expected: fractal.TreeSize(t.Config.MaxDepth),
			})
		}

		if !wasDone && t.Done() {
			events = append(events, Event{
				Type:     EventTreeDone,
				Tree:     t.ID,
				Nodes:    t.Len(),
				Expected: fractal.TreeSize(t.Config.MaxDepth),
			})
		}
	}
	s.mu.Unlock()

	s.emit(events)
}

// Settle steps the scene with a fixed dt until every tree is done or maxSteps
// is reached, and returns the number of steps taken.
func (s *Scene) Settle(dt time.Duration, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if s.Done() {
			return i
		}
		s.Step(dt)
	}
	return maxSteps
}

func (s *Scene) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trees {
		if !t.Done() {
			return false
		}
	}
	return true
}

// Remove tears down the subtree rooted at nodeID. Pending spawns of every
// removed node are cancelled. Removing a root removes the whole tree.
func (s *Scene) Remove(treeID, nodeID uuid.UUID) (int, error) {
	s.mu.Lock()
	t, ok := s.trees[treeID]
	if !ok {
		s.mu.Unlock()
		return 0, errors.Wrapf(ErrNotFound, "tree %v", treeID)
	}
	f, err := t.Node(nodeID)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	if f == t.Root {
		s.mu.Unlock()
		return s.RemoveTree(treeID)
	}

	parentID := t.ids[f.Parent()]
	f.Deactivate()
	f.Detach()
	removed := t.unregister(f)
	ev := Event{
		Type:     EventNodeRemoved,
		Tree:     t.ID,
		Node:     nodeID,
		Parent:   parentID,
		Depth:    f.Depth(),
		Nodes:    t.Len(),
		Removed:  removed,
		Expected: fractal.TreeSize(t.Config.MaxDepth),
	}
	s.mu.Unlock()

	s.emit([]Event{ev})
	return removed, nil
}

func (s *Scene) RemoveTree(treeID uuid.UUID) (int, error) {
	s.mu.Lock()
	t, ok := s.trees[treeID]
	if !ok {
		s.mu.Unlock()
		return 0, errors.Wrapf(ErrNotFound, "tree %v", treeID)
	}
	t.Root.Deactivate()
	removed := t.unregister(t.Root)
	delete(s.trees, treeID)
	for i, id := range s.order {
		if id == treeID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	log.Printf("[scene] Removed tree %q (%d nodes)", t.Name, removed)
	s.emit([]Event{{Type: EventTreeRemoved, Tree: treeID, Removed: removed}})
	return removed, nil
}

// View runs fn with read access to a tree. fn must not keep references to
// nodes after it returns.
func (s *Scene) View(treeID uuid.UUID, fn func(t *Tree) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trees[treeID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "tree %v", treeID)
	}
	return fn(t)
}

// First returns the id of the oldest tree.
func (s *Scene) First() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return uuid.Nil, false
	}
	return s.order[0], true
}
