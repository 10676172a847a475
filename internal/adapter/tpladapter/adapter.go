package tpladapter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	_ "embed"

	"github.com/jgivc/libmvbundle/internal/common"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/spf13/afero"
)

const (
	templateName = "descriptor"
	indent       = "    "

	funcNameLines = "lines"
)

// Fields of entity.Classification every descriptor template must use.
var requiredSlots = []string{"Sources", "Headers", "ThirdPartySources", "ThirdPartyHeaders", "Tests"}

//go:embed templates/CMakeLists.txt.tmpl
var defaultTemplate string

type tplAdapter struct {
	tpl *template.Template
}

func NewTplAdapter(templateFileName string) (*tplAdapter, error) {
	return NewTplAdapterWithFS(afero.NewOsFs(), templateFileName)
}

// NewTplAdapterWithFS uses the embedded template unless templateFileName is set.
func NewTplAdapterWithFS(fs afero.Fs, templateFileName string) (*tplAdapter, error) {
	src := defaultTemplate
	if templateFileName != "" {
		data, err := afero.ReadFile(fs, templateFileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read template: %w", err)
		}

		src = string(data)
	}

	tpl, err := template.New(templateName).Funcs(template.FuncMap{
		funcNameLines: renderLines,
	}).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	if missing := missingSlots(tpl); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrTemplateSlotMissing, strings.Join(missing, ", "))
	}

	return &tplAdapter{tpl: tpl}, nil
}

func (a *tplAdapter) Render(c *entity.Classification) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := a.tpl.Execute(&buf, c); err != nil {
		return nil, fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.Bytes(), nil
}

// renderLines puts one item per line with the list indentation.
func renderLines(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(indent)
		sb.WriteString(item)
	}

	return sb.String()
}

func missingSlots(tpl *template.Template) []string {
	fields := make(map[string]struct{})
	for _, t := range tpl.Templates() {
		if t.Tree != nil {
			collectFields(t.Tree.Root, fields)
		}
	}

	var missing []string
	for _, slot := range requiredSlots {
		if _, ok := fields[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	sort.Strings(missing)

	return missing
}

func collectFields(node parse.Node, fields map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectFields(child, fields)
		}
	case *parse.ActionNode:
		collectFields(n.Pipe, fields)
	case *parse.IfNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.TemplateNode:
		collectFields(n.Pipe, fields)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			collectFields(cmd, fields)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			collectFields(arg, fields)
		}
	case *parse.ChainNode:
		collectFields(n.Node, fields)
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			fields[n.Ident[0]] = struct{}{}
		}
	}
}

func collectBranch(n *parse.BranchNode, fields map[string]struct{}) {
	collectFields(n.Pipe, fields)
	collectFields(n.List, fields)
	collectFields(n.ElseList, fields)
}
