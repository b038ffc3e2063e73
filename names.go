// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import "strconv"

// ID is a name id in a symbol table.
//
type ID int

// None is the ID of the unnamed output pin of single output devices. It never
// resolves to a name.
//
const None ID = -1

// Names is a symbol table mapping strings to stable integer ids.
//
// Ids are allocated sequentially and never reused. A range of ids can be
// reserved for error codes with UniqueErrorCodes; these ids never resolve to a
// string.
//
// Names is not safe for concurrent mutation.
//
type Names struct {
	ids      map[string]ID
	names    []string // indexed by ID
	reserved map[ID]struct{}
}

// NewNames returns a new empty symbol table.
//
func NewNames() *Names {
	return &Names{ids: make(map[string]ID), reserved: make(map[ID]struct{})}
}

// Lookup returns the ids of the given names, interning new names as needed.
// The returned slice has the same order as names.
//
func (n *Names) Lookup(names ...string) []ID {
	ids := make([]ID, len(names))
	for i, s := range names {
		id, ok := n.ids[s]
		if !ok {
			id = ID(len(n.names))
			n.names = append(n.names, s)
			n.ids[s] = id
		}
		ids[i] = id
	}
	return ids
}

// Query returns the id of name without interning it.
//
func (n *Names) Query(name string) (ID, bool) {
	id, ok := n.ids[name]
	return id, ok
}

// GetString returns the name bound to id. It returns false for unknown ids
// and reserved error codes.
//
func (n *Names) GetString(id ID) (string, bool) {
	if id < 0 || int(id) >= len(n.names) {
		return "", false
	}
	if _, ok := n.reserved[id]; ok {
		return "", false
	}
	return n.names[id], true
}

// UniqueErrorCodes reserves count contiguous ids. Reserved ids are never bound
// to a string.
//
func (n *Names) UniqueErrorCodes(count int) []ID {
	ids := make([]ID, count)
	for i := range ids {
		ids[i] = ID(len(n.names))
		n.names = append(n.names, "")
		n.reserved[ids[i]] = struct{}{}
	}
	return ids
}

// Len returns the number of allocated ids, including reserved error codes.
//
func (n *Names) Len() int {
	return len(n.names)
}

// Name is like GetString but returns a printable placeholder for ids that are
// not bound to a name.
//
func (n *Names) Name(id ID) string {
	if s, ok := n.GetString(id); ok {
		return s
	}
	if id == None {
		return "<none>"
	}
	return "#" + strconv.Itoa(int(id))
}
