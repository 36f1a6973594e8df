package polyglot

import (
	"plait/interpreter-go/pkg/ast"
)

// Block is one inline guest fragment found in a statement list, with the
// variables it reads and writes.
type Block struct {
	Node   *ast.InlineCodeExpr
	Target string // variable the result binds to, "" for bare expressions
	Reads  []string
	Writes []string
	Index  int // position in the enclosing statement list
}

// Group is a set of blocks with no data dependency on each other. Groups
// execute in order; blocks within a group may run concurrently.
type Group struct {
	Blocks []Block
}

// ExtractBlocks finds the inline fragments in a statement list: declarations
// and assignments initialized by inline code, and bare inline expression
// statements.
func ExtractBlocks(statements []ast.Statement) []Block {
	var blocks []Block
	for i, stmt := range statements {
		switch s := stmt.(type) {
		case *ast.VarDeclStmt:
			if inline, ok := s.Init.(*ast.InlineCodeExpr); ok {
				blocks = append(blocks, Block{
					Node:   inline,
					Target: s.Name,
					Reads:  inline.Bindings,
					Writes: []string{s.Name},
					Index:  i,
				})
			}
		case *ast.AssignStmt:
			ident, okTarget := s.Target.(*ast.Identifier)
			inline, okValue := s.Value.(*ast.InlineCodeExpr)
			if okTarget && okValue {
				blocks = append(blocks, Block{
					Node:   inline,
					Target: ident.Name,
					Reads:  inline.Bindings,
					Writes: []string{ident.Name},
					Index:  i,
				})
			}
		case *ast.ExprStmt:
			if inline, ok := s.Expr.(*ast.InlineCodeExpr); ok {
				blocks = append(blocks, Block{
					Node:  inline,
					Reads: inline.Bindings,
					Index: i,
				})
			}
		}
	}
	return blocks
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// dependsOn reports whether b must wait for a. Covers read-after-write,
// write-after-write and write-after-read hazards, all keyed on source order.
func dependsOn(a, b Block) bool {
	if a.Index >= b.Index {
		return false
	}
	if intersects(a.Writes, b.Reads) { // RAW
		return true
	}
	if intersects(a.Writes, b.Writes) { // WAW
		return true
	}
	if intersects(a.Reads, b.Writes) { // WAR
		return true
	}
	return false
}

// buildGroups partitions blocks into ordered levels. Each pass picks every
// block whose unprocessed predecessors are exhausted and that does not
// conflict with a block already chosen this pass.
func buildGroups(blocks []Block) []Group {
	if len(blocks) == 0 {
		return nil
	}
	var groups []Group
	processed := make([]bool, len(blocks))
	for {
		var current []Block
		var chosen []int
		for i, b := range blocks {
			if processed[i] {
				continue
			}
			waiting := false
			for j := 0; j < i; j++ {
				if !processed[j] && dependsOn(blocks[j], b) {
					waiting = true
					break
				}
			}
			if waiting {
				continue
			}
			conflict := false
			for _, member := range current {
				if dependsOn(member, b) || dependsOn(b, member) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}
			current = append(current, b)
			chosen = append(chosen, i)
		}
		if len(current) == 0 {
			break
		}
		for _, i := range chosen {
			processed[i] = true
		}
		groups = append(groups, Group{Blocks: current})
		done := true
		for _, p := range processed {
			if !p {
				done = false
				break
			}
		}
		if done {
			break
		}
	}
	return groups
}

// Analyze partitions the inline fragments of a statement list into ordered
// dependency groups. Blocks separated by a gap of two or more non-inline
// statements land in separate batches, since such gaps commonly declare
// variables the later blocks read.
func Analyze(statements []ast.Statement) []Group {
	blocks := ExtractBlocks(statements)
	if len(blocks) == 0 {
		return nil
	}
	if len(blocks) == 1 {
		return []Group{{Blocks: blocks}}
	}

	var batches [][]Block
	current := []Block{blocks[0]}
	for _, b := range blocks[1:] {
		gap := b.Index - current[len(current)-1].Index - 1
		if gap >= 2 {
			batches = append(batches, current)
			current = nil
		}
		current = append(current, b)
	}
	batches = append(batches, current)

	var groups []Group
	for _, batch := range batches {
		groups = append(groups, buildGroups(batch)...)
	}
	return groups
}
