package pulllist

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

// The host-facing surface of Model is read through godoc, so each of these
// needs a comment.
var documented = []string{
	"Model", "New", "Options",
	"Init", "Update", "View",
	"BeginRefresh", "EndRefresh", "BeginLoadMore", "EndLoadMore",
	"SetDataSource", "EndReached", "FillPage", "Close",
	"RefreshDoneMsg", "LoadMoreDoneMsg", "DataSourceMsg",
}

func TestPublicSurfaceIsDocumented(t *testing.T) {
	fset := token.NewFileSet()
	docs := map[string]bool{}
	for _, file := range []string{"model.go", "options.go"} {
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parsing %s: %v", file, err)
		}
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				docs[d.Name.Name] = d.Doc != nil
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, s := range d.Specs {
					ts := s.(*ast.TypeSpec)
					docs[ts.Name.Name] = d.Doc != nil || ts.Doc != nil
				}
			}
		}
	}

	for _, name := range documented {
		has, found := docs[name]
		if !found {
			t.Errorf("%s not declared in model.go or options.go", name)
			continue
		}
		if !has {
			t.Errorf("%s has no doc comment", name)
		}
	}
}
