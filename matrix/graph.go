// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

package matrix

import (
	"container/heap"
	"math"
)

// edge is a weighted out-edge (to, weight).
type edge struct {
	to     int
	weight float64
}

// Graph is the small static weighted graph of spec §4.3: vertex count fixed
// at construction, each vertex owning an adjacency list.
type Graph struct {
	adj [][]edge
}

// NewGraph returns a graph with n vertices and no edges.
func NewGraph(n int) *Graph {
	return &Graph{adj: make([][]edge, n)}
}

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return len(g.adj) }

// AddEdge adds a directed edge from->to with the given weight. Callers
// model an undirected edge by calling AddEdge twice, matching the source's
// convention of a per-vertex singly-linked adjacency list of (to, weight).
func (g *Graph) AddEdge(from, to int, weight float64) {
	g.adj[from] = append(g.adj[from], edge{to: to, weight: weight})
}

type pqItem struct {
	vertex int
	dist   float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// ShortestPaths runs Dijkstra's algorithm from source over a binary-heap
// priority queue of (distance, vertex) pairs (spec §4.3), returning the
// shortest-path distance from source to every vertex. Unreachable vertices
// carry math.Inf(1).
func (g *Graph) ShortestPaths(source int) []float64 {
	n := g.NumVertices()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0

	pq := &priorityQueue{{vertex: source, dist: 0}}
	heap.Init(pq)
	visited := make([]bool, n)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		u := item.vertex
		if visited[u] {
			continue
		}
		visited[u] = true
		for _, e := range g.adj[u] {
			nd := dist[u] + e.weight
			if nd < dist[e.to] {
				dist[e.to] = nd
				heap.Push(pq, pqItem{vertex: e.to, dist: nd})
			}
		}
	}
	return dist
}
