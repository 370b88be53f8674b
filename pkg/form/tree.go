package form

import (
	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// Tree is the visual tree of a form: sections in stored order, each with
// its field nodes in stored order.
type Tree struct {
	Sections []SectionNode
	Disabled bool
}

// SectionNode is one rendered section.
type SectionNode struct {
	ID          string
	Title       string
	Description string
	Fields      []FieldNode
}

// FieldNode is one rendered field. Nested group nodes carry their children.
type FieldNode struct {
	Path     string
	Control  fields.Control
	Value    any
	Errors   []string
	Children []FieldNode
}

// Walk visits every node depth-first in render order.
func (t Tree) Walk(fn func(section SectionNode, node FieldNode)) {
	var visit func(SectionNode, []FieldNode)
	visit = func(section SectionNode, nodes []FieldNode) {
		for _, node := range nodes {
			fn(section, node)
			visit(section, node.Children)
		}
	}
	for _, section := range t.Sections {
		visit(section, section.Fields)
	}
}

// Render walks the structure and returns the visual tree. Sections are not
// re-sorted by their Order attribute; stored order is render order. Error
// messages come from the last Validate or SetErrors.
func (f *Form) Render() Tree {
	tree := Tree{Disabled: f.disabled, Sections: make([]SectionNode, 0, len(f.structure.Sections))}
	for _, section := range f.structure.Sections {
		tree.Sections = append(tree.Sections, SectionNode{
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
			Fields:      f.renderFields("", section.Fields),
		})
	}
	return tree
}

func (f *Form) renderFields(prefix string, list []schema.Field) []FieldNode {
	nodes := make([]FieldNode, 0, len(list))
	for _, field := range list {
		path := joinPath(prefix, field.ID)
		entry, renderer, err := f.entry(path)
		if err != nil {
			continue
		}
		stored, present := f.state.get(path)
		value := renderer.Initial(entry.Field, stored, present)
		node := FieldNode{
			Path:    path,
			Control: renderer.Control(entry.Field, value, f.disabled),
			Value:   value,
			Errors:  append([]string(nil), f.state.errors[path]...),
		}
		if children := field.Children(); len(children) > 0 {
			node.Children = f.renderFields(path, children)
		}
		nodes = append(nodes, node)
	}
	return nodes
}
