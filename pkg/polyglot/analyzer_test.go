package polyglot

import (
	"testing"

	"plait/interpreter-go/pkg/ast"
)

func TestAnalyzeIndependentBlocksShareGroup(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("a", ast.Inline("python", "print(1)")),
		ast.Decl("b", ast.Inline("python", "print(2)")),
	}
	groups := Analyze(statements)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if len(groups[0].Blocks) != 2 {
		t.Fatalf("expected both blocks in the group, got %d", len(groups[0].Blocks))
	}
}

func TestAnalyzeReadAfterWriteSplitsGroups(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("a", ast.Inline("python", "print(1)")),
		ast.Decl("b", ast.Inline("python", "print(a)", "a")),
	}
	groups := Analyze(statements)
	if len(groups) != 2 {
		t.Fatalf("expected two groups for a RAW hazard, got %d", len(groups))
	}
	if groups[0].Blocks[0].Target != "a" || groups[1].Blocks[0].Target != "b" {
		t.Fatalf("groups out of order: %#v", groups)
	}
}

func TestAnalyzeWriteAfterWriteSplitsGroups(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("a", ast.Inline("python", "print(1)")),
		ast.Assign(ast.ID("a"), ast.Inline("python", "print(2)")),
	}
	groups := Analyze(statements)
	if len(groups) != 2 {
		t.Fatalf("expected two groups for a WAW hazard, got %d", len(groups))
	}
}

func TestAnalyzeWriteAfterReadSplitsGroups(t *testing.T) {
	statements := []ast.Statement{
		ast.ExprS(ast.Inline("python", "print(x)", "x")),
		ast.Assign(ast.ID("x"), ast.Inline("python", "print(2)")),
	}
	groups := Analyze(statements)
	if len(groups) != 2 {
		t.Fatalf("expected two groups for a WAR hazard, got %d", len(groups))
	}
}

func TestAnalyzeStatementGapStartsNewBatch(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("a", ast.Inline("python", "print(1)")),
		ast.Decl("x", ast.Int(1)),
		ast.Decl("y", ast.Int(2)),
		ast.Decl("b", ast.Inline("python", "print(2)")),
	}
	groups := Analyze(statements)
	if len(groups) != 2 {
		t.Fatalf("expected a gap of two plain statements to split batches, got %d groups", len(groups))
	}
}

func TestAnalyzeSingleGapKeepsOneBatch(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("a", ast.Inline("python", "print(1)")),
		ast.Decl("x", ast.Int(1)),
		ast.Decl("b", ast.Inline("python", "print(2)")),
	}
	groups := Analyze(statements)
	if len(groups) != 1 {
		t.Fatalf("expected one group across a single-statement gap, got %d", len(groups))
	}
}

func TestExtractBlocksSkipsPlainStatements(t *testing.T) {
	statements := []ast.Statement{
		ast.Decl("x", ast.Int(1)),
		ast.ExprS(ast.Inline("shell", "echo hi")),
	}
	blocks := ExtractBlocks(statements)
	if len(blocks) != 1 {
		t.Fatalf("expected a single block, got %d", len(blocks))
	}
	if blocks[0].Index != 1 || blocks[0].Target != "" {
		t.Fatalf("unexpected block %#v", blocks[0])
	}
}
