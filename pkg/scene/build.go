package scene

import (
	"fmt"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/link"
)

// Build creates the link forest described by the scene: one top-level
// hyperedge per entry of Links. Regions without an ID get a random one.
// Duplicate IDs are rejected.
func (s *Scene) Build() ([]*link.HyperEdge, error) {
	b := builder{seen: make(map[string]bool)}
	roots := make([]*link.HyperEdge, 0, len(s.Links))
	for i := range s.Links {
		e, err := b.link(&s.Links[i], "links")
		if err != nil {
			return nil, err
		}
		roots = append(roots, e)
	}
	return roots, nil
}

type builder struct {
	seen map[string]bool
}

func (b *builder) id(id, where string) error {
	if id == "" {
		return nil
	}
	if err := errors.ValidateID(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", where)
	}
	if b.seen[id] {
		return errors.New(errors.ErrCodeInvalidScene, "%s: duplicate id %q", where, id)
	}
	b.seen[id] = true
	return nil
}

func (b *builder) link(l *Link, where string) (*link.HyperEdge, error) {
	if err := b.id(l.ID, where); err != nil {
		return nil, err
	}
	e := link.NewHyperEdge()
	if l.ID != "" {
		e.ID = l.ID
	}
	for k, v := range l.Props {
		e.Props.Set(k, v)
	}

	for i := range l.Regions {
		n, err := b.region(&l.Regions[i], where+"."+regionName(&l.Regions[i], i))
		if err != nil {
			return nil, err
		}
		if err := e.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", where)
		}
	}
	return e, nil
}

func (b *builder) region(r *Region, where string) (*link.Node, error) {
	if err := b.id(r.ID, where); err != nil {
		return nil, err
	}
	n := link.NewNode(r.Vertices)
	if r.ID != "" {
		n.ID = r.ID
	}
	if len(r.LinkPoints) > 0 {
		n.SetLinkPoints(r.LinkPoints)
	}
	if len(r.LinkPointsChildren) > 0 {
		n.SetLinkPointsChildren(r.LinkPointsChildren)
	}
	for k, v := range r.Props {
		n.Props.Set(k, v)
	}

	for i := range r.Links {
		child, err := b.link(&r.Links[i], where+".links")
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", where)
		}
	}
	return n, nil
}

func regionName(r *Region, i int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("regions[%d]", i)
}
