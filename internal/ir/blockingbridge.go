package ir

import "fmt"

// BlockingDomainBridge marks a boundary between two differently-blocked
// regions of the design (spec.md §4.4 bullet 2, SPEC_FULL.md §4). It
// encodes a block-size change rather than a partition (thread) change;
// when its output crosses a partition boundary, partition.InsertFIFOs
// folds it into the inserted ThreadCrossingFIFO and removes it from the
// design. FIFO merging never treats it as a FIFO. Whether it can itself
// ever be merged with a
// neighboring FIFO is the Open Question carried from spec.md §9.
type BlockingDomainBridge struct {
	NodeBase

	BlockSize          int
	SubBlockSizeIn     int
	SubBlockSizeOut    int
	BaseSubBlockSizeIn  int
	BaseSubBlockSizeOut int
}

func NewBlockingDomainBridge(name string, blockSize int) *BlockingDomainBridge {
	b := &BlockingDomainBridge{BlockSize: blockSize}
	InitBase(&b.NodeBase, b, 1, 1)
	b.SetName(name)
	return b
}

func (b *BlockingDomainBridge) TypeName() string { return "BlockingDomainBridge" }
func (b *BlockingDomainBridge) Label() string {
	return fmt.Sprintf("BlockingDomainBridge(%s, block=%d)", b.Name(), b.BlockSize)
}
func (b *BlockingDomainBridge) CanExpand() bool { return false }

func (b *BlockingDomainBridge) Validate() error {
	if b.BlockSize <= 0 {
		return NewStructuralError(b, "block size must be positive")
	}
	if b.SubBlockSizeIn > 0 && b.BlockSize%b.SubBlockSizeIn != 0 {
		return NewInvariantError(b, "block size must be a multiple of input sub-block size")
	}
	if b.SubBlockSizeOut > 0 && b.BlockSize%b.SubBlockSizeOut != 0 {
		return NewInvariantError(b, "block size must be a multiple of output sub-block size")
	}
	return nil
}

func (b *BlockingDomainBridge) ShallowClone(newParent Node) Node {
	clone := &BlockingDomainBridge{
		BlockSize:           b.BlockSize,
		SubBlockSizeIn:      b.SubBlockSizeIn,
		SubBlockSizeOut:     b.SubBlockSizeOut,
		BaseSubBlockSizeIn:  b.BaseSubBlockSizeIn,
		BaseSubBlockSizeOut: b.BaseSubBlockSizeOut,
	}
	InitBase(&clone.NodeBase, clone, len(b.InputPorts()), len(b.OutputPorts()))
	CloneBaseInto(&b.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}
