package tree

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Builder is the object builder (§4.E E1): it constructs a tree via node
// edits rather than emitting directly into a backing buffer (that's the
// compact builder in package compact).
type Builder struct {
	event   *Node
	current *Node
	stack   []*Node
}

// NewBuilder starts a builder whose event (root bank) is tag/num, with
// containerType declaring what kind of children the root accepts.
func NewBuilder(tag uint16, num uint8, containerType dtype.Type) *Builder {
	event := NewBank(tag, num, containerType)
	return &Builder{event: event, current: event}
}

// GetEvent returns the root node of the tree under construction.
func (b *Builder) GetEvent() *Node { return b.event }

// Current returns the container currently receiving children (initially
// the event itself).
func (b *Builder) Current() *Node { return b.current }

// OpenBank pushes a new bank child onto the current container and makes it
// current. childContainerType declares what kind of children the new bank
// itself will accept (may be a leaf type if it will hold data instead).
func (b *Builder) OpenBank(tag uint16, num uint8, childContainerType dtype.Type) (*Node, error) {
	child := NewBank(tag, num, childContainerType)
	if err := b.current.AddChild(child); err != nil {
		return nil, err
	}
	b.stack = append(b.stack, b.current)
	b.current = child
	return child, nil
}

// OpenSegment is OpenBank's segment-kind counterpart.
func (b *Builder) OpenSegment(tag uint16, childContainerType dtype.Type) (*Node, error) {
	child := NewSegment(tag, childContainerType)
	if err := b.current.AddChild(child); err != nil {
		return nil, err
	}
	b.stack = append(b.stack, b.current)
	b.current = child
	return child, nil
}

// OpenTagsegment is OpenBank's tagsegment-kind counterpart.
func (b *Builder) OpenTagsegment(tag uint16, childContainerType dtype.Type) (*Node, error) {
	child := NewTagsegment(tag, childContainerType)
	if err := b.current.AddChild(child); err != nil {
		return nil, err
	}
	b.stack = append(b.stack, b.current)
	b.current = child
	return child, nil
}

// AddChild attaches an already-constructed node to parent without
// affecting the open-container stack.
func (b *Builder) AddChild(parent, child *Node) error {
	return parent.AddChild(child)
}

// CloseStructure pops the current container back to its parent. It is the
// object-builder analogue of the compact builder's frame-patching close;
// here there's no byte offset to patch, only the cursor to move.
func (b *Builder) CloseStructure() error {
	if len(b.stack) == 0 {
		return fmt.Errorf("%w: no open container to close", xerr.ErrStackUnderflow)
	}
	b.current = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// CloseAll pops every remaining open container and recomputes lengths
// bottom-up across the whole event, per the tree's up-to-date-lengths
// invariant.
func (b *Builder) CloseAll() error {
	for len(b.stack) > 0 {
		if err := b.CloseStructure(); err != nil {
			return err
		}
	}
	_, err := b.event.Normalize()
	return err
}

// RemoveChild removes the i-th child of parent.
func (b *Builder) RemoveChild(parent *Node, i int) error {
	return parent.RemoveChild(i)
}

// RemoveStructure removes child from parent's child list by identity.
func (b *Builder) RemoveStructure(parent, child *Node) error {
	for i, c := range parent.Children {
		if c == child {
			return parent.RemoveChild(i)
		}
	}
	return fmt.Errorf("%w: child not found in parent", xerr.ErrStackUnderflow)
}
