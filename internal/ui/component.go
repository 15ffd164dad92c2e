// Package ui implements the retained-mode engine: the component tree and the
// differential frame renderer that replays minimal terminal writes.
package ui

import "lumen-cli/internal/ui/render"

// Component is the unit of composition: anything visible renders itself to
// styled lines for a given width. Render must be side-effect-free so the
// renderer may call it any number of times per frame.
type Component interface {
	Render(width int) []render.Line
}

// Container owns an ordered list of child components. Insertion order is
// display order; rendering is exactly the concatenation of the children.
type Container struct {
	children []Component
}

func NewContainer(children ...Component) *Container {
	return &Container{children: append([]Component{}, children...)}
}

// AddChild appends a child. The container takes exclusive ownership.
func (c *Container) AddChild(child Component) {
	if c == nil || child == nil {
		return
	}
	c.children = append(c.children, child)
}

// RemoveChild detaches a child by identity.
func (c *Container) RemoveChild(child Component) {
	if c == nil || child == nil {
		return
	}
	for i, cur := range c.children {
		if cur == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// Clear detaches and discards all children.
func (c *Container) Clear() {
	if c == nil {
		return
	}
	c.children = nil
}

// Children exposes the child list for read-only introspection.
func (c *Container) Children() []Component {
	if c == nil {
		return nil
	}
	return append([]Component{}, c.children...)
}

// Len 返回子组件数量。
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.children)
}

// Render 依序拼接子组件的渲染结果。
func (c *Container) Render(width int) []render.Line {
	if c == nil {
		return nil
	}
	var out []render.Line
	for _, child := range c.children {
		out = append(out, child.Render(width)...)
	}
	return out
}

// Text is the trivial leaf component: static, pre-wrapped by the renderer.
type Text struct {
	Content string
}

func (t Text) Render(width int) []render.Line {
	return render.WrapLines(t.Content, width, textStyle)
}
