package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// parseCSharp parses source into a tree-sitter tree using the C# grammar.
// Callers must call tree.Close() once done with the returned root node.
func parseCSharp(ctx context.Context, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())
	return parser.ParseCtx(ctx, nil, source)
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

// childByType returns the first direct child of n whose Type() matches
// typ, or nil.
func childByType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == typ {
			return child
		}
	}
	return nil
}
