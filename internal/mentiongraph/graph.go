// Package mentiongraph turns aggregated mention records into the node and edge
// sequences consumed by the mention network view.
package mentiongraph

import (
	"fmt"
	"strconv"
	"strings"
)

// Edge is one aggregated "fromUser mentioned toUser count times" record.
type Edge struct {
	FromUser          string `json:"from_user"`
	FromUserAvatarURL string `json:"from_user_avatar_url"`
	ToUser            string `json:"to_user"`
	ToUserAvatarURL   string `json:"to_user_avatar_url"`
	Count             int    `json:"count"`
}

// Node is a graph vertex for one distinct user.
type Node struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// GraphEdge is a display edge. Label holds the merged counts as text
// ("3 + 4"); Weight is their numeric sum.
type GraphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Graph is the render-ready output of Build.
type Graph struct {
	Nodes []Node      `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Mode selects the edge merge strategy.
type Mode string

const (
	// ModeDirectional merges a record only into an edge whose id is the exact
	// reverse of the record's direction.
	ModeDirectional Mode = "directional"
	// ModePair merges every record of an unordered user pair into one edge.
	ModePair Mode = "pair"
)

// ParseMode maps a query value to a Mode. The empty string is ModeDirectional.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDirectional:
		return ModeDirectional, nil
	case ModePair:
		return ModePair, nil
	default:
		return "", fmt.Errorf("unknown graph mode %q", s)
	}
}

// Build derives nodes and edges from records using the given mode.
func Build(edges []Edge, mode Mode) Graph {
	g := Graph{Nodes: BuildNodes(edges)}
	if mode == ModePair {
		g.Edges = BuildPairEdges(edges)
	} else {
		g.Edges = BuildEdges(edges)
	}
	return g
}

// BuildNodes returns one node per distinct user id in first-occurrence order.
// A user's avatar is taken from the side of the edge where it first appeared.
func BuildNodes(edges []Edge) []Node {
	nodes := make([]Node, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))

	add := func(id, avatar string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		nodes = append(nodes, Node{ID: id, Label: id, AvatarURL: avatar})
	}

	for _, e := range edges {
		add(e.FromUser, e.FromUserAvatarURL)
		add(e.ToUser, e.ToUserAvatarURL)
	}
	return nodes
}

// BuildEdges emits one edge per record unless an earlier edge has the id
// "{to}-{from}", in which case the record's count is appended to that edge's
// label. Edges keep the id and direction of the record that created them, so a
// pair seen more than twice can yield several edges sharing an id.
func BuildEdges(edges []Edge) []GraphEdge {
	out := make([]GraphEdge, 0, len(edges))
	// first index per id, matching a front-to-back search of out
	firstByID := make(map[string]int, len(edges))

	for _, e := range edges {
		if i, ok := firstByID[edgeID(e.ToUser, e.FromUser)]; ok {
			out[i].Label += " + " + strconv.Itoa(e.Count)
			out[i].Weight += e.Count
			continue
		}

		id := edgeID(e.FromUser, e.ToUser)
		if _, ok := firstByID[id]; !ok {
			firstByID[id] = len(out)
		}
		out = append(out, GraphEdge{
			ID:     id,
			Source: e.FromUser,
			Target: e.ToUser,
			Label:  strconv.Itoa(e.Count),
			Weight: e.Count,
		})
	}
	return out
}

// BuildPairEdges emits exactly one edge per unordered user pair, in first-seen
// order. The edge keeps the first-seen direction; its label lists every
// contributing count in encounter order.
func BuildPairEdges(edges []Edge) []GraphEdge {
	out := make([]GraphEdge, 0, len(edges))
	byPair := make(map[pairKey]int, len(edges))

	for _, e := range edges {
		key := newPairKey(e.FromUser, e.ToUser)
		if i, ok := byPair[key]; ok {
			out[i].Label += " + " + strconv.Itoa(e.Count)
			out[i].Weight += e.Count
			continue
		}
		byPair[key] = len(out)
		out = append(out, GraphEdge{
			ID:     edgeID(e.FromUser, e.ToUser),
			Source: e.FromUser,
			Target: e.ToUser,
			Label:  strconv.Itoa(e.Count),
			Weight: e.Count,
		})
	}
	return out
}

type pairKey struct {
	lo, hi string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

func edgeID(from, to string) string {
	return from + "-" + to
}
