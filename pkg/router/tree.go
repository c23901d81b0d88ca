package router

import (
	"strings"

	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/routepath"
)

// node is a node in the radix tree.
type node struct {
	// segment is the static path segment this node matches
	segment string

	// isParam indicates this is a parameter segment (:id)
	isParam bool

	// isCatchAll indicates this is a catch-all segment (*slug)
	isCatchAll bool

	// paramName is the parameter name (without : or *)
	paramName string

	// paramType is the expected parameter type (int, string, uuid)
	paramType string

	// record is the route record registered at this node
	record *route.Record

	children      []*node
	paramChild    *node
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name, paramType string) *node {
	if n.paramChild != nil {
		return n.paramChild
	}
	child := newNode("")
	child.isParam = true
	child.paramName = name
	child.paramType = paramType
	n.paramChild = child
	return child
}

func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	child := newNode("")
	child.isCatchAll = true
	child.paramName = name
	child.paramType = "[]string"
	n.catchAllChild = child
	return child
}

// insert walks (and grows) the tree along pattern and returns the leaf.
func (n *node) insert(pattern string) *node {
	current := n
	for _, seg := range routepath.Segments(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the path
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			current = current.addParamChild(name, paramType)
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match finds the node holding a record for segments.
// Static children win over params, params win over catch-alls; a failed
// branch backtracks and removes the params it captured.
func (n *node) match(segments []string, params map[string]string) *node {
	if len(segments) == 0 {
		if n.record != nil {
			return n
		}
		return nil
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if found := child.match(remaining, params); found != nil {
			return found
		}
	}

	if pc := n.paramChild; pc != nil {
		if value, err := routepath.DecodeSegment(segment, false); err == nil && ValidateParam(value, pc.paramType) == nil {
			params[pc.paramName] = value
			if found := pc.match(remaining, params); found != nil {
				return found
			}
			delete(params, pc.paramName)
		}
	}

	if cc := n.catchAllChild; cc != nil && cc.record != nil {
		value, err := routepath.DecodeSegment(strings.Join(segments, "/"), true)
		if err == nil {
			params[cc.paramName] = value
			return cc
		}
	}

	return nil
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
