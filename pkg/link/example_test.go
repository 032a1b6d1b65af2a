package link_test

import (
	"fmt"

	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
)

func ExampleHyperEdge_AddNode() {
	// A search result with two matches
	e := link.NewHyperEdge()
	a := link.NewNode([]geom.Point{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 30}})
	b := link.NewNode([]geom.Point{{X: 200, Y: 80}, {X: 260, Y: 80}})
	_ = e.AddNode(a)
	_ = e.AddNode(b)

	fmt.Println("Members:", len(e.Nodes()))
	fmt.Println("Revision:", e.Revision())
	fmt.Println("Parent set:", a.Parent() == e)
	fmt.Println("Center:", e.UpdateCenter())
	// Output:
	// Members: 2
	// Revision: 2
	// Parent set: true
	// Center: {105 45}
}

func ExampleNode_LinkPointsChildren() {
	n := link.NewNode([]geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}})

	// Without overrides every point set falls back to the vertices
	fmt.Println(n.LinkPoints())
	fmt.Println(n.LinkPointsChildren())

	n.SetLinkPoints([]geom.Point{{X: 9, Y: 9}})
	fmt.Println(n.LinkPointsChildren())
	// Output:
	// [{1 2} {3 4}]
	// [{1 2} {3 4}]
	// [{9 9}]
}
